package operations

import (
	"context"
	"fmt"

	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// CASCADES
// =============================================================================
//
// The helpers below are the consistency repairs shared by several
// operations. They all run on the caller's transaction and treat a
// missing counseling or hold as the normal case.

// removeHold deletes the employee's hold, if any. Removing a "Pending
// Termination" hold also clears the pending-termination marker.
func removeHold(ctx context.Context, tx Store, actor int64, emp *hr.Employee, out *outbox) error {
	hold, err := tx.GetHold(ctx, emp.ID)
	if err != nil {
		return err
	}
	if hold == nil {
		return nil
	}

	if hold.Reason == hr.HoldPendingTermination {
		emp.IsPendingTerm = false
		emp.RemovalDate = nil
		if err := tx.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
	}
	if err := tx.DeleteHold(ctx, emp.ID); err != nil {
		return err
	}
	out.add(notificationEvent(actor, emp, hr.NotifyRemoveHold,
		fmt.Sprintf("%s's hold has been removed", emp.FullName())))
	return nil
}

// placePendingTermination replaces any hold with a "Pending Termination"
// hold and marks the employee as removed from service today.
func placePendingTermination(ctx context.Context, tx Store, actor int64, emp *hr.Employee, today hr.Clock, out *outbox) error {
	if err := removeHold(ctx, tx, actor, emp, out); err != nil {
		return err
	}
	hold := hr.Hold{
		EmployeeID: emp.ID,
		AssignedBy: actor,
		Reason:     hr.HoldPendingTermination,
		HoldDate:   today.Today(),
		CreatedAt:  today.Now(),
	}
	if err := tx.CreateHold(ctx, &hold); err != nil {
		return err
	}

	emp.IsPendingTerm = true
	emp.RemovalDate = ptr(today.Today())
	if err := tx.UpdateEmployee(ctx, *emp); err != nil {
		return err
	}
	out.add(notificationEvent(actor, emp, hr.NotifyAddHold,
		fmt.Sprintf("%s has been placed on hold. Reason: %s", emp.FullName(), hold.Reason)))
	return nil
}

// dropCounseling hard-deletes an engine-generated counseling that the
// records no longer justify. Like any counseling deletion it releases
// the employee's hold.
func dropCounseling(ctx context.Context, tx Store, actor int64, emp *hr.Employee, c hr.Counseling, out *outbox) error {
	if err := tx.DeleteCounseling(ctx, c.ID); err != nil {
		return err
	}
	return removeHold(ctx, tx, actor, emp, out)
}

// deactivateCounseling soft-deletes a counseling.
func deactivateCounseling(ctx context.Context, tx Store, c *hr.Counseling) error {
	if c == nil || !c.IsActive {
		return nil
	}
	c.IsActive = false
	return tx.UpdateCounseling(ctx, *c)
}

// sweepAttendanceCounseling deletes attendance-linked written warnings
// and removals the current attendance total no longer supports.
func (s *Service) sweepAttendanceCounseling(ctx context.Context, tx Store, actor int64, emp *hr.Employee, out *outbox) error {
	records, err := tx.ListAttendance(ctx, emp.ID)
	if err != nil {
		return err
	}
	counseling, err := tx.ListCounseling(ctx, emp.ID)
	if err != nil {
		return err
	}

	total := s.engine.TotalAttendancePoints(records, s.clock.Today(), 0)
	for _, c := range s.engine.UnjustifiedCounseling(total, counseling) {
		s.log.Info("dropping unjustified counseling",
			"employee_id", emp.ID, "counseling_id", c.ID, "action_type", string(c.ActionType), "total", total.String())
		if err := dropCounseling(ctx, tx, actor, emp, c, out); err != nil {
			return err
		}
	}
	return nil
}

// applyAttendanceDecision runs the attendance decision for rec and, when a
// threshold is crossed, creates the written warning or removal linked to
// the reference record.
func (s *Service) applyAttendanceDecision(ctx context.Context, tx Store, actor int64, emp *hr.Employee, rec hr.AttendancePoint, out *outbox) (discipline.AttendanceDecision, error) {
	records, err := tx.ListAttendance(ctx, emp.ID)
	if err != nil {
		return discipline.AttendanceDecision{}, err
	}
	counseling, err := tx.ListCounseling(ctx, emp.ID)
	if err != nil {
		return discipline.AttendanceDecision{}, err
	}

	decision, err := s.engine.DecideAttendance(discipline.AttendanceInput{
		Records:      records,
		Counseling:   counseling,
		Reason:       rec.Reason,
		Exemption:    rec.Exemption,
		IncidentDate: rec.IncidentDate,
		ExcludeID:    rec.ID,
		Today:        s.clock.Today(),
	})
	if err != nil {
		return decision, err
	}
	if decision.Level == discipline.LevelNone || !rec.Points.IsPositive() {
		return decision, nil
	}

	ref := discipline.ReferenceRecord(records, counseling)
	if ref == nil {
		return decision, nil
	}

	text := s.engine.Rules.Text
	c := hr.Counseling{
		EmployeeID:   emp.ID,
		AssignedBy:   actor,
		IssuedDate:   *decision.IssuedOn,
		ActionType:   decision.Level.Action(),
		AttendanceID: ptr(ref.ID),
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}
	notification, message := hr.NotifySevenAttendance,
		fmt.Sprintf("%s has received a written warning for reaching %s attendance points", emp.FullName(), s.engine.Rules.WrittenWarningAt)
	c.Conduct, c.Conversation = text.WrittenWarningConduct, text.WrittenWarningConversation
	if decision.Level == discipline.LevelRemoval {
		c.Conduct, c.Conversation = text.RemovalConduct, text.RemovalConversation
		notification, message = hr.NotifyTenAttendance,
			fmt.Sprintf("%s has been removed from service for reaching %s attendance points", emp.FullName(), s.engine.Rules.RemovalAt)
	}
	if err := tx.CreateCounseling(ctx, &c); err != nil {
		return decision, err
	}

	s.log.Info("attendance counseling created",
		"employee_id", emp.ID, "counseling_id", c.ID, "level", decision.Level.String(), "total", decision.Total.String())
	out.add(documentEvent(emp.ID, hr.KindCounseling, c.ID))
	out.add(notificationEvent(actor, emp, notification, message))
	return decision, nil
}

// applySafetyDecision replaces the counseling linked to sp with the
// outcome of the safety decision. A removal puts the employee on a
// pending-termination hold.
func (s *Service) applySafetyDecision(ctx context.Context, tx Store, actor int64, emp *hr.Employee, sp hr.SafetyPoint, out *outbox) (discipline.SafetyDecision, error) {
	existing, err := tx.CounselingForSafetyPoint(ctx, sp.ID)
	if err != nil {
		return discipline.SafetyDecision{}, err
	}
	if existing != nil {
		if err := dropCounseling(ctx, tx, actor, emp, *existing, out); err != nil {
			return discipline.SafetyDecision{}, err
		}
	}

	records, err := tx.ListSafetyPoints(ctx, emp.ID)
	if err != nil {
		return discipline.SafetyDecision{}, err
	}
	decision := s.engine.DecideSafety(discipline.SafetyInput{
		HireDate: emp.HireDate,
		Records:  records,
		Today:    s.clock.Today(),
	})
	if !decision.Remove {
		return decision, nil
	}

	c := hr.Counseling{
		EmployeeID:    emp.ID,
		AssignedBy:    actor,
		IssuedDate:    s.clock.Today(),
		ActionType:    hr.ActionAdministrativeRemoval,
		Conduct:       s.engine.Conduct(decision),
		Conversation:  s.engine.Rules.Text.SafetyConversation,
		SafetyPointID: ptr(sp.ID),
		IsActive:      true,
		CreatedAt:     s.clock.Now(),
	}
	if err := tx.CreateCounseling(ctx, &c); err != nil {
		return decision, err
	}
	s.log.Info("safety removal created",
		"employee_id", emp.ID, "counseling_id", c.ID, "variant", decision.Variant.String(), "total", decision.Total)

	out.add(documentEvent(emp.ID, hr.KindCounseling, c.ID))
	if err := s.counselingCreated(ctx, tx, actor, emp, c, out); err != nil {
		return decision, err
	}
	return decision, nil
}

// counselingCreated emits the notification of a manually assigned or
// safety-generated counseling and places the pending-termination hold
// for discharge and removal.
func (s *Service) counselingCreated(ctx context.Context, tx Store, actor int64, emp *hr.Employee, c hr.Counseling, out *outbox) error {
	switch c.ActionType {
	case hr.ActionFirstWrittenWarning:
		out.add(notificationEvent(actor, emp, hr.NotifyWritten,
			fmt.Sprintf("%s has received a written warning", emp.FullName())))
	case hr.ActionLastAndFinal:
		out.add(notificationEvent(actor, emp, hr.NotifyLastFinal,
			fmt.Sprintf("%s has received a last and final", emp.FullName())))
	case hr.ActionDischarge, hr.ActionAdministrativeRemoval:
		out.add(notificationEvent(actor, emp, hr.NotifyRemoval,
			fmt.Sprintf("%s has been removed from service", emp.FullName())))
		return placePendingTermination(ctx, tx, actor, emp, s.clock, out)
	}
	return nil
}
