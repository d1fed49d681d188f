package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// SAFETY POINTS
// =============================================================================

// SafetyInput is a safety assessment to assign or the new state of an edit.
type SafetyInput struct {
	IncidentDate time.Time
	IssuedDate   time.Time
	Reason       hr.SafetyReason
	Details      string
}

// SafetyResult is the stored record with the decision it produced.
type SafetyResult struct {
	Record   hr.SafetyPoint            `json:"record"`
	Decision discipline.SafetyDecision `json:"decision"`
}

func (in SafetyInput) validate() *hr.ValidationError {
	verr := &hr.ValidationError{}
	if in.IncidentDate.IsZero() {
		verr.Add("incident_date", "This field is required.")
	}
	if in.IssuedDate.IsZero() {
		verr.Add("issued_date", "This field is required.")
	}
	if !in.Reason.Valid() {
		verr.Add("reason", "Select a valid choice. %q is not one of the available choices.", string(in.Reason))
	}
	return verr
}

// AssignSafetyPoint records an assessment and applies the removal rules.
func (s *Service) AssignSafetyPoint(ctx context.Context, actor, employeeID int64, in SafetyInput) (*SafetyResult, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var result SafetyResult
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		points, err := s.engine.Rules.SafetyPointValue(in.Reason)
		if err != nil {
			return err
		}
		rec := hr.SafetyPoint{
			EmployeeID:   emp.ID,
			AssignedBy:   actor,
			IncidentDate: hr.Truncate(in.IncidentDate),
			IssuedDate:   hr.Truncate(in.IssuedDate),
			Reason:       in.Reason,
			Points:       points,
			Details:      in.Details,
			IsActive:     true,
			CreatedAt:    s.clock.Now(),
		}
		if err := tx.CreateSafetyPoint(ctx, &rec); err != nil {
			return err
		}
		out.add(documentEvent(emp.ID, hr.KindSafetyPoint, rec.ID))

		decision, err := s.applySafetyDecision(ctx, tx, actor, emp, rec, out)
		if err != nil {
			return err
		}

		message := fmt.Sprintf("%s has received a Safety Point", emp.FullName())
		if decision.Remove {
			message += " and been removed from service"
		}
		out.add(notificationEvent(actor, emp, hr.NotifySafetyPoint, message))
		result = SafetyResult{Record: rec, Decision: decision}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EditSafetyPoint replaces an assessment's fields, resets its signature
// and document, and recomputes the removal decision.
func (s *Service) EditSafetyPoint(ctx context.Context, actor, id int64, in SafetyInput) (*SafetyResult, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var result SafetyResult
	err := s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetSafetyPoint(ctx, id)
		if err != nil {
			return err
		}
		if !rec.IsActive {
			return hr.NotFound(string(hr.KindSafetyPoint), id)
		}
		emp, err := tx.GetEmployee(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}
		points, err := s.engine.Rules.SafetyPointValue(in.Reason)
		if err != nil {
			return err
		}

		rec.IncidentDate = hr.Truncate(in.IncidentDate)
		rec.IssuedDate = hr.Truncate(in.IssuedDate)
		rec.Reason = in.Reason
		rec.Points = points
		rec.Details = in.Details
		rec.Signature = hr.Signature{}
		rec.EditedBy = ptr(actor)
		rec.EditedAt = ptr(s.clock.Now())
		if err := tx.UpdateSafetyPoint(ctx, *rec); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindSafetyPoint, ID: rec.ID}); err != nil {
			return err
		}
		rec.HasDocument = false
		out.add(documentEvent(emp.ID, hr.KindSafetyPoint, rec.ID))

		decision, err := s.applySafetyDecision(ctx, tx, actor, emp, *rec, out)
		if err != nil {
			return err
		}
		result = SafetyResult{Record: *rec, Decision: decision}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSafetyPoint soft-deletes an assessment, deactivates the removal
// it produced and releases the employee's hold.
func (s *Service) DeleteSafetyPoint(ctx context.Context, actor, id int64) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetSafetyPoint(ctx, id)
		if err != nil {
			return err
		}
		if !rec.IsActive {
			return nil
		}
		emp, err := tx.GetEmployee(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}

		rec.IsActive = false
		if err := tx.UpdateSafetyPoint(ctx, *rec); err != nil {
			return err
		}
		linked, err := tx.CounselingForSafetyPoint(ctx, rec.ID)
		if err != nil {
			return err
		}
		if err := deactivateCounseling(ctx, tx, linked); err != nil {
			return err
		}
		return removeHold(ctx, tx, actor, emp, out)
	})
}

// SignSafetyPoint marks the assessment's document as signed and regenerates it.
func (s *Service) SignSafetyPoint(ctx context.Context, id int64, in SignInput) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetSafetyPoint(ctx, id)
		if err != nil {
			return err
		}
		rec.Signature = hr.Signature{Signed: true, Refused: in.Refused, Comments: in.Comments}
		if err := tx.UpdateSafetyPoint(ctx, *rec); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindSafetyPoint, ID: rec.ID}); err != nil {
			return err
		}
		out.add(documentEvent(rec.EmployeeID, hr.KindSafetyPoint, rec.ID))
		return nil
	})
}

// SafetyReport is an employee's current safety standing.
type SafetyReport struct {
	EmployeeID   int64            `json:"employee_id"`
	AsOf         time.Time        `json:"as_of"`
	Introductory bool             `json:"introductory"`
	Total        int              `json:"total"`
	Incidents    int              `json:"incidents"`
	Records      []hr.SafetyPoint `json:"records"`
}

// SafetyHistory returns the windowed safety totals of an employee.
func (s *Service) SafetyHistory(ctx context.Context, employeeID int64, asOf time.Time) (*SafetyReport, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Today()
	}
	asOf = hr.Truncate(asOf)

	records, err := s.store.ListSafetyPoints(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	active := make([]hr.SafetyPoint, 0, len(records))
	for _, r := range records {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return &SafetyReport{
		EmployeeID:   employeeID,
		AsOf:         asOf,
		Introductory: s.engine.IsIntroductory(emp.HireDate, asOf),
		Total:        s.engine.TotalSafetyPoints(records, asOf, 0),
		Incidents:    s.engine.SafetyIncidentCount(records, asOf, 0),
		Records:      active,
	}, nil
}

// ListSafetyPoints returns every safety record of an employee.
func (s *Service) ListSafetyPoints(ctx context.Context, employeeID int64) ([]hr.SafetyPoint, error) {
	return s.store.ListSafetyPoints(ctx, employeeID)
}
