package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

type fakeJobs struct {
	mu       sync.Mutex
	today    time.Time
	calls    []string
	asOf     []time.Time
	failWith error
}

func (f *fakeJobs) record(name string, asOf time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.asOf = append(f.asOf, asOf)
}

func (f *fakeJobs) Today() time.Time { return f.today }

func (f *fakeJobs) SendReminders(_ context.Context, asOf time.Time) (*operations.ReminderReport, error) {
	f.record("reminders", asOf)
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &operations.ReminderReport{AsOf: asOf, Notifications: 3}, nil
}

func (f *fakeJobs) ResetSickDays(_ context.Context, asOf time.Time) (int, error) {
	f.record("sick", asOf)
	return 2, f.failWith
}

func (f *fakeJobs) ResetFloatingHolidays(_ context.Context, asOf time.Time) (int, error) {
	f.record("floating", asOf)
	return 2, f.failWith
}

func newScheduler(jobs Jobs, specs Specs) *Scheduler {
	return New(jobs, specs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestJobs_PassToday(t *testing.T) {
	today := hr.Date(2024, time.October, 1)
	jobs := &fakeJobs{today: today}
	s := newScheduler(jobs, DefaultSpecs())
	ctx := context.Background()

	require.NoError(t, s.RunReminders(ctx))
	require.NoError(t, s.RunSickReset(ctx))
	require.NoError(t, s.RunFloatingReset(ctx))

	assert.Equal(t, []string{"reminders", "sick", "floating"}, jobs.calls)
	for _, d := range jobs.asOf {
		assert.True(t, d.Equal(today))
	}
}

func TestJobs_ErrorsPropagate(t *testing.T) {
	boom := errors.New("database is locked")
	s := newScheduler(&fakeJobs{failWith: boom}, DefaultSpecs())

	assert.ErrorIs(t, s.RunReminders(context.Background()), boom)
	assert.ErrorIs(t, s.RunSickReset(context.Background()), boom)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := newScheduler(&fakeJobs{}, Specs{Reminders: "every morning"})

	err := s.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminders")
}

func TestStart_RegistersConfiguredJobs(t *testing.T) {
	s := newScheduler(&fakeJobs{}, Specs{Reminders: "0 6 * * *"})

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	assert.Len(t, s.cron.Entries(), 1, "empty specs are skipped")
	assert.Error(t, s.Start(), "second start")
}

func TestStart_Disabled(t *testing.T) {
	s := newScheduler(&fakeJobs{}, DefaultSpecs())
	s.Enabled = false

	require.NoError(t, s.Start())

	assert.Nil(t, s.cron)
}

func TestRun_StopsWithContext(t *testing.T) {
	s := newScheduler(&fakeJobs{}, DefaultSpecs())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunJob_LogsFailureWithoutPanicking(t *testing.T) {
	jobs := &fakeJobs{failWith: errors.New("boom")}
	s := newScheduler(jobs, DefaultSpecs())

	s.runJob("reminders", s.RunReminders)

	assert.Equal(t, []string{"reminders"}, jobs.calls)
}
