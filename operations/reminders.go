package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// UNSIGNED DOCUMENT REMINDERS
// =============================================================================

// reminderStep fires its notification once a document has been waiting
// for at least After days.
type reminderStep struct {
	After int
	Type  hr.NotificationType
}

// A reminder ladder is cumulative: on the day a step is reached every
// earlier step is sent again, and past the last step all of them are sent
// every day.
var (
	attendanceReminders = []reminderStep{
		{5, hr.NotifyAttendanceDocDay5},
		{7, hr.NotifyAttendanceDocDay7},
		{10, hr.NotifyAttendanceDocDay10},
		{14, hr.NotifyAttendanceDocDay14},
	}
	safetyReminders = []reminderStep{
		{3, hr.NotifySafetyDocDay3},
		{5, hr.NotifySafetyDocDay5},
		{7, hr.NotifySafetyDocDay7},
		{10, hr.NotifySafetyDocDay10},
	}
	counselingReminders = []reminderStep{
		{3, hr.NotifyCounselingDocDay3},
		{5, hr.NotifyCounselingDocDay5},
		{7, hr.NotifyCounselingDocDay7},
		{10, hr.NotifyCounselingDocDay10},
	}
)

// dueReminders returns the notifications owed after days. Reminders go
// out on the exact day of a step and every day past the last one.
func dueReminders(steps []reminderStep, days int) []hr.NotificationType {
	if len(steps) == 0 {
		return nil
	}
	last := steps[len(steps)-1].After
	var out []hr.NotificationType
	for _, st := range steps {
		if days < st.After {
			break
		}
		out = append(out, st.Type)
	}
	if days >= last {
		return out
	}
	for _, st := range steps {
		if st.After == days {
			return out
		}
	}
	return nil
}

// ReminderReport counts the reminders queued by a sweep.
type ReminderReport struct {
	AsOf          time.Time `json:"as_of"`
	Notifications int       `json:"notifications"`
}

// SendReminders queues a notification for every active record whose
// signed document has not been uploaded, following the reminder ladder of
// its kind. Settlements are reminded daily from the third day.
func (s *Service) SendReminders(ctx context.Context, asOf time.Time) (*ReminderReport, error) {
	if asOf.IsZero() {
		asOf = s.clock.Today()
	}
	asOf = hr.Truncate(asOf)

	employees, err := s.store.ListEmployees(ctx, EmployeeFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	var out outbox
	remind := func(emp *hr.Employee, steps []reminderStep, issued time.Time, what string) {
		days := hr.DaysBetween(issued, asOf)
		message := fmt.Sprintf("%s was given to %s %d days ago and no signed document has been uploaded yet.",
			what, emp.FullName(), days)
		for _, t := range dueReminders(steps, days) {
			out.add(notificationEvent(0, emp, t, message))
		}
	}

	for i := range employees {
		emp := &employees[i]

		attendance, err := s.store.ListAttendance(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range attendance {
			if r.IsActive && !r.Signature.Uploaded {
				remind(emp, attendanceReminders, r.IssuedDate, "An attendance point")
			}
		}

		safety, err := s.store.ListSafetyPoints(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range safety {
			if r.IsActive && !r.Signature.Uploaded {
				remind(emp, safetyReminders, r.IssuedDate, "A safety point")
			}
		}

		counseling, err := s.store.ListCounseling(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range counseling {
			if c.IsActive && !c.Signature.Uploaded {
				remind(emp, counselingReminders, c.IssuedDate, "A counseling")
			}
		}

		settlements, err := s.store.ListSettlements(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		for _, st := range settlements {
			days := hr.DaysBetween(st.IssuedDate, asOf)
			if st.IsActive && !st.Uploaded && days >= 3 {
				out.add(notificationEvent(0, emp, hr.NotifySettlementDoc, fmt.Sprintf(
					"A settlement was created for %s %d days ago and no signed document has been uploaded yet.",
					emp.FullName(), days)))
			}
		}
	}

	s.log.Info("reminder sweep finished", "as_of", asOf.Format(hr.DateLayout), "notifications", len(out.events))
	s.dispatch(ctx, out.events)
	return &ReminderReport{AsOf: asOf, Notifications: len(out.events)}, nil
}

// MarkUploaded records that the signed document of a record was scanned
// in, which stops its reminders.
func (s *Service) MarkUploaded(ctx context.Context, ref hr.RecordRef) error {
	if ref.Kind == hr.KindSettlement {
		return s.MarkSettlementUploaded(ctx, ref.ID)
	}
	return s.run(ctx, func(tx Store, _ *outbox) error {
		switch ref.Kind {
		case hr.KindAttendance:
			r, err := tx.GetAttendance(ctx, ref.ID)
			if err != nil {
				return err
			}
			r.Signature.Uploaded = true
			return tx.UpdateAttendance(ctx, *r)
		case hr.KindSafetyPoint:
			r, err := tx.GetSafetyPoint(ctx, ref.ID)
			if err != nil {
				return err
			}
			r.Signature.Uploaded = true
			return tx.UpdateSafetyPoint(ctx, *r)
		case hr.KindCounseling:
			c, err := tx.GetCounseling(ctx, ref.ID)
			if err != nil {
				return err
			}
			c.Signature.Uploaded = true
			return tx.UpdateCounseling(ctx, *c)
		}
		return hr.Invalid("kind", "unknown record kind %q", string(ref.Kind))
	})
}

// =============================================================================
// BALANCE RESETS
// =============================================================================

// Yearly balances for employees with at least a year of tenure.
const (
	ResetPaidSick        = 3
	ResetUnpaidSick      = 2
	ResetFloatingHoliday = 2
	resetTenureDays      = 365
)

// ResetSickDays refills the sick-day balances of every active employee
// hired at least a year before asOf. The scheduler runs it on October 1.
func (s *Service) ResetSickDays(ctx context.Context, asOf time.Time) (int, error) {
	return s.resetBalances(ctx, asOf, "sick days", func(emp *hr.Employee) {
		emp.PaidSick = ResetPaidSick
		emp.UnpaidSick = ResetUnpaidSick
	})
}

// ResetFloatingHolidays refills the floating holidays of every active
// employee hired at least a year before asOf. The scheduler runs it on
// January 1.
func (s *Service) ResetFloatingHolidays(ctx context.Context, asOf time.Time) (int, error) {
	return s.resetBalances(ctx, asOf, "floating holidays", func(emp *hr.Employee) {
		emp.FloatingHoliday = ResetFloatingHoliday
	})
}

func (s *Service) resetBalances(ctx context.Context, asOf time.Time, what string, reset func(*hr.Employee)) (int, error) {
	if asOf.IsZero() {
		asOf = s.clock.Today()
	}
	asOf = hr.Truncate(asOf)

	var n int
	err := s.run(ctx, func(tx Store, _ *outbox) error {
		n = 0
		employees, err := tx.ListEmployees(ctx, EmployeeFilter{ActiveOnly: true})
		if err != nil {
			return err
		}
		for i := range employees {
			emp := &employees[i]
			if hr.DaysBetween(emp.HireDate, asOf) < resetTenureDays {
				continue
			}
			reset(emp)
			if err := tx.UpdateEmployee(ctx, *emp); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("balances reset", "balance", what, "as_of", asOf.Format(hr.DateLayout), "employees", n)
	return n, nil
}
