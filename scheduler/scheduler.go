/*
scheduler.go - Periodic HR jobs

PURPOSE:
  Runs the jobs nobody triggers by hand: the daily unsigned-document
  reminder sweep, the October 1 sick-day reset and the January 1
  floating-holiday reset.

DESIGN:
  - robfig/cron with SkipIfStillRunning, so a slow sweep never overlaps
    the next one
  - Each job passes today's date to the service; the service itself does
    no calendar gating
  - Every run is bounded by Timeout and logged with its outcome

CONFIGURATION:
  - Specs:   Cron expressions per job (standard 5-field syntax)
  - Enabled: Whether the scheduler starts at all (default: true)
  - Timeout: Upper bound for one job run (default: 5 minutes)

USAGE:
  s := scheduler.New(svc, scheduler.DefaultSpecs(), log)
  err := s.Run(ctx) // blocks until ctx is done

SEE ALSO:
  - operations/reminders.go: SendReminders and the balance resets
  - cmd/hrops/serve.go: Runs the scheduler next to the HTTP server
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/warp/division-ops/operations"
)

// Jobs is the part of operations.Service the scheduler drives.
type Jobs interface {
	Today() time.Time
	SendReminders(ctx context.Context, asOf time.Time) (*operations.ReminderReport, error)
	ResetSickDays(ctx context.Context, asOf time.Time) (int, error)
	ResetFloatingHolidays(ctx context.Context, asOf time.Time) (int, error)
}

// Specs holds the cron expression of each job. An empty spec disables
// that job.
type Specs struct {
	Reminders     string `yaml:"reminders"`
	SickReset     string `yaml:"sick_reset"`
	FloatingReset string `yaml:"floating_reset"`
}

// DefaultSpecs runs reminders every morning and the resets on their
// calendar dates.
func DefaultSpecs() Specs {
	return Specs{
		Reminders:     "0 6 * * *",
		SickReset:     "0 1 1 10 *",
		FloatingReset: "0 1 1 1 *",
	}
}

// Scheduler runs the periodic jobs.
type Scheduler struct {
	Jobs     Jobs
	Specs    Specs
	Enabled  bool
	Timeout  time.Duration
	Location *time.Location

	log  *slog.Logger
	cron *cron.Cron
	mu   sync.Mutex
}

// New creates a scheduler.
func New(jobs Jobs, specs Specs, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Jobs:     jobs,
		Specs:    specs,
		Enabled:  true,
		Timeout:  5 * time.Minute,
		Location: time.Local,
		log:      log.With("component", "scheduler"),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.log.Info("disabled, not starting")
		return nil
	}
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New(
		cron.WithLocation(s.Location),
		cron.WithLogger(cronLogger{s.log}),
		cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})),
	)
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"reminders", s.Specs.Reminders, s.RunReminders},
		{"sick_reset", s.Specs.SickReset, s.RunSickReset},
		{"floating_reset", s.Specs.FloatingReset, s.RunFloatingReset},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		j := j
		if _, err := c.AddFunc(j.spec, func() { s.runJob(j.name, j.run) }); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", j.name, j.spec, err)
		}
		s.log.Info("job scheduled", "job", j.name, "spec", j.spec)
	}

	s.cron = c
	c.Start()
	s.log.Info("started", "jobs", len(c.Entries()))
	return nil
}

// Stop stops the cron loop and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("stopped with jobs still running")
	}
	s.cron = nil
	s.log.Info("stopped")
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	s.Stop(stopCtx)
	return nil
}

// =============================================================================
// JOBS
// =============================================================================

// RunReminders sends the reminders due today.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	report, err := s.Jobs.SendReminders(ctx, s.Jobs.Today())
	if err != nil {
		return err
	}
	s.log.Info("reminders sent", "as_of", report.AsOf.Format("2006-01-02"), "notifications", report.Notifications)
	return nil
}

// RunSickReset refills sick-day balances.
func (s *Scheduler) RunSickReset(ctx context.Context) error {
	n, err := s.Jobs.ResetSickDays(ctx, s.Jobs.Today())
	if err != nil {
		return err
	}
	s.log.Info("sick days reset", "employees", n)
	return nil
}

// RunFloatingReset refills floating-holiday balances.
func (s *Scheduler) RunFloatingReset(ctx context.Context) error {
	n, err := s.Jobs.ResetFloatingHolidays(ctx, s.Jobs.Today())
	if err != nil {
		return err
	}
	s.log.Info("floating holidays reset", "employees", n)
	return nil
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	start := time.Now()
	if err := run(ctx); err != nil {
		s.log.Error("job failed", "job", name, "err", err, "took", time.Since(start))
		return
	}
	s.log.Debug("job finished", "job", name, "took", time.Since(start))
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
