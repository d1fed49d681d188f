package operations_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// =============================================================================
// UNSIGNED DOCUMENT REMINDERS
// =============================================================================

func TestSendReminders_AttendanceLadder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	res, err := f.svc.AssignAttendance(ctx, manager, driver, operations.AttendanceInput{
		IncidentDate: today,
		IssuedDate:   today,
		Reason:       hr.ReasonUnexcused,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		days int
		want []hr.NotificationType
	}{
		{"before first step", 4, nil},
		{"first step", 5, []hr.NotificationType{hr.NotifyAttendanceDocDay5}},
		{"between steps", 6, nil},
		{"second step repeats the first", 7, []hr.NotificationType{hr.NotifyAttendanceDocDay5, hr.NotifyAttendanceDocDay7}},
		{"past the last step", 20, []hr.NotificationType{
			hr.NotifyAttendanceDocDay5, hr.NotifyAttendanceDocDay7,
			hr.NotifyAttendanceDocDay10, hr.NotifyAttendanceDocDay14,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.queue.Reset()
			report, err := f.svc.SendReminders(ctx, today.AddDate(0, 0, tt.days))
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), report.Notifications)
			assert.Equal(t, tt.want, f.published())
		})
	}

	// WHEN: the signed document is uploaded, the reminders stop
	require.NoError(t, f.svc.MarkUploaded(ctx, hr.RecordRef{Kind: hr.KindAttendance, ID: res.Record.ID}))
	report, err := f.svc.SendReminders(ctx, today.AddDate(0, 0, 20))
	require.NoError(t, err)
	assert.Zero(t, report.Notifications)
}

func TestSendReminders_SafetyAndSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	_, err := f.svc.AssignSafetyPoint(ctx, manager, driver, operations.SafetyInput{
		IncidentDate: today,
		IssuedDate:   today,
		Reason:       "0",
	})
	require.NoError(t, err)
	_, err = f.svc.CreateSettlement(ctx, manager, driver, "Terms")
	require.NoError(t, err)
	f.queue.Reset()

	report, err := f.svc.SendReminders(ctx, today.AddDate(0, 0, 3))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Notifications)
	assert.ElementsMatch(t, []hr.NotificationType{hr.NotifySafetyDocDay3, hr.NotifySettlementDoc}, f.published())
}

func TestSendReminders_RespectsPreferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	_, err := f.svc.CreateSettlement(ctx, manager, driver, "Terms")
	require.NoError(t, err)
	require.NoError(t, f.svc.SetNotificationPreferences(ctx, supervisor, hr.Preferences{hr.NotifySettlementDoc: false}))
	f.queue.Reset()

	report, err := f.svc.SendReminders(ctx, today.AddDate(0, 0, 4))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Notifications, "event queued")
	assert.Empty(t, f.published(), "nobody subscribed")
}

// =============================================================================
// BALANCE RESETS
// =============================================================================

func TestResetSickDays_NeedsAYearOfTenure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	f.hire(t, 2001, today.AddDate(0, 0, -100))
	october := hr.Date(2024, time.October, 1)

	n, err := f.svc.ResetSickDays(ctx, october)
	require.NoError(t, err)

	assert.Equal(t, 2, n, "the veteran and the supervisor")
	vet := f.employee(t, driver)
	assert.Equal(t, operations.ResetPaidSick, vet.PaidSick)
	assert.Equal(t, operations.ResetUnpaidSick, vet.UnpaidSick)
	rookie := f.employee(t, 2001)
	assert.Equal(t, hr.DefaultPaidSick, rookie.PaidSick)
	assert.Equal(t, hr.DefaultUnpaidSick, rookie.UnpaidSick)
}

func TestResetFloatingHolidays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	f.floatingHolidays(t, driver, 0)

	_, err := f.svc.ResetFloatingHolidays(ctx, hr.Date(2025, time.January, 1))
	require.NoError(t, err)

	assert.Equal(t, operations.ResetFloatingHoliday, f.employee(t, driver).FloatingHoliday)
}
