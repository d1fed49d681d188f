package operations

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// ATTENDANCE POINTS
// =============================================================================

// AttendanceInput is an incident to assign or the new state of an edit.
type AttendanceInput struct {
	IncidentDate time.Time
	// IssuedDate defaults to today on assignment and is kept on edit when zero.
	IssuedDate time.Time
	Reason     hr.AttendanceReason
	Exemption  hr.Exemption
}

// AttendanceResult is the stored record with the decision it produced.
type AttendanceResult struct {
	Record   hr.AttendancePoint            `json:"record"`
	Decision discipline.AttendanceDecision `json:"decision"`
}

func (in AttendanceInput) validate() *hr.ValidationError {
	verr := &hr.ValidationError{}
	if in.IncidentDate.IsZero() {
		verr.Add("incident_date", "This field is required.")
	}
	if !in.Reason.Valid() {
		verr.Add("reason", "Select a valid choice. %q is not one of the available choices.", string(in.Reason))
	}
	if !in.Exemption.Valid() {
		verr.Add("exemption", "Select a valid choice. %q is not one of the available choices.", string(in.Exemption))
	}
	return verr
}

// requireSickDay rejects an exemption whose balance is used up.
func requireSickDay(emp *hr.Employee, ex hr.Exemption) error {
	if !ex.ConsumesSickDay() || emp.SickBalance(ex) > 0 {
		return nil
	}
	return hr.Invalid("exemption", "%s does not have %s days available", emp.FullName(), ex)
}

// AssignAttendance records an incident, debits a sick day for sick
// exemptions, and runs the attendance decision.
func (s *Service) AssignAttendance(ctx context.Context, actor, employeeID int64, in AttendanceInput) (*AttendanceResult, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var result AttendanceResult
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		if err := requireSickDay(emp, in.Exemption); err != nil {
			return err
		}
		rec, err := s.newAttendance(actor, emp.ID, in)
		if err != nil {
			return err
		}
		if err := tx.CreateAttendance(ctx, &rec); err != nil {
			return err
		}
		if in.Exemption.ConsumesSickDay() {
			emp.AdjustSick(in.Exemption, -1)
			if err := tx.UpdateEmployee(ctx, *emp); err != nil {
				return err
			}
		}
		out.add(documentEvent(emp.ID, hr.KindAttendance, rec.ID))

		decision, err := s.applyAttendanceDecision(ctx, tx, actor, emp, rec, out)
		if err != nil {
			return err
		}
		if err := s.sweepAttendanceCounseling(ctx, tx, actor, emp, out); err != nil {
			return err
		}
		result = AttendanceResult{Record: rec, Decision: decision}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// newAttendance builds a record whose points follow from reason and exemption.
func (s *Service) newAttendance(actor, employeeID int64, in AttendanceInput) (hr.AttendancePoint, error) {
	points, err := s.engine.Rules.AttendancePointValue(in.Reason, in.Exemption)
	if err != nil {
		return hr.AttendancePoint{}, err
	}
	issued := in.IssuedDate
	if issued.IsZero() {
		issued = s.clock.Today()
	}
	return hr.AttendancePoint{
		EmployeeID:   employeeID,
		AssignedBy:   actor,
		IncidentDate: hr.Truncate(in.IncidentDate),
		IssuedDate:   hr.Truncate(issued),
		Reason:       in.Reason,
		Exemption:    in.Exemption,
		Points:       points,
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}, nil
}

// EditAttendance replaces an incident's fields. Sick-day balances follow
// the exemption change, points are recomputed, and the signature and
// document are reset before the decision and sweep run again.
func (s *Service) EditAttendance(ctx context.Context, actor, id int64, in AttendanceInput) (*AttendanceResult, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var result AttendanceResult
	err := s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		if !rec.IsActive {
			return hr.NotFound(string(hr.KindAttendance), id)
		}
		emp, err := tx.GetEmployee(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}

		old := rec.Exemption
		if in.Exemption != old {
			if err := requireSickDay(emp, in.Exemption); err != nil {
				return err
			}
			emp.AdjustSick(in.Exemption, -1)
			emp.AdjustSick(old, +1)
			if old.ConsumesSickDay() || in.Exemption.ConsumesSickDay() {
				if err := tx.UpdateEmployee(ctx, *emp); err != nil {
					return err
				}
			}
		}

		points, err := s.engine.Rules.AttendancePointValue(in.Reason, in.Exemption)
		if err != nil {
			return err
		}
		rec.IncidentDate = hr.Truncate(in.IncidentDate)
		if !in.IssuedDate.IsZero() {
			rec.IssuedDate = hr.Truncate(in.IssuedDate)
		}
		rec.Reason = in.Reason
		rec.Exemption = in.Exemption
		rec.Points = points
		rec.Signature = hr.Signature{}
		rec.EditedBy = ptr(actor)
		rec.EditedAt = ptr(s.clock.Now())
		if err := tx.UpdateAttendance(ctx, *rec); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindAttendance, ID: rec.ID}); err != nil {
			return err
		}
		rec.HasDocument = false
		out.add(documentEvent(emp.ID, hr.KindAttendance, rec.ID))

		decision, err := s.applyAttendanceDecision(ctx, tx, actor, emp, *rec, out)
		if err != nil {
			return err
		}
		if err := s.sweepAttendanceCounseling(ctx, tx, actor, emp, out); err != nil {
			return err
		}
		result = AttendanceResult{Record: *rec, Decision: decision}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteAttendance soft-deletes an incident, gives back the sick day it
// consumed, and sweeps the counseling the lower total no longer supports.
// A counseling linked to the incident is deactivated and, like any
// counseling deletion, releases the employee's hold.
func (s *Service) DeleteAttendance(ctx context.Context, actor, id int64) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetAttendance(ctx, id)
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
		if err := tx.UpdateAttendance(ctx, *rec); err != nil {
			return err
		}
		if rec.Exemption.ConsumesSickDay() {
			emp.AdjustSick(rec.Exemption, +1)
			if err := tx.UpdateEmployee(ctx, *emp); err != nil {
				return err
			}
		}

		linked, err := tx.CounselingForAttendance(ctx, rec.ID)
		if err != nil {
			return err
		}
		if linked != nil && linked.IsActive {
			if err := deactivateCounseling(ctx, tx, linked); err != nil {
				return err
			}
			if err := removeHold(ctx, tx, actor, emp, out); err != nil {
				return err
			}
		}
		return s.sweepAttendanceCounseling(ctx, tx, actor, emp, out)
	})
}

// SignInput records the employee's signature on a document.
type SignInput struct {
	Refused  bool
	Comments string
}

// SignAttendance marks the incident's document as signed and regenerates it.
func (s *Service) SignAttendance(ctx context.Context, id int64, in SignInput) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		rec, err := tx.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		rec.Signature = hr.Signature{Signed: true, Refused: in.Refused, Comments: in.Comments}
		if err := tx.UpdateAttendance(ctx, *rec); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindAttendance, ID: rec.ID}); err != nil {
			return err
		}
		out.add(documentEvent(rec.EmployeeID, hr.KindAttendance, rec.ID))
		return nil
	})
}

// AttendanceReport is an employee's current attendance standing.
type AttendanceReport struct {
	EmployeeID   int64                `json:"employee_id"`
	AsOf         time.Time            `json:"as_of"`
	Total        decimal.Decimal      `json:"total"`
	History      []discipline.Bucket  `json:"history"`
	Records      []hr.AttendancePoint `json:"records"`
	PriorWarning *time.Time           `json:"prior_warning,omitempty"`
}

// AttendanceHistory returns the bucketed history, the windowed total and
// the active records of an employee.
func (s *Service) AttendanceHistory(ctx context.Context, employeeID int64, asOf time.Time) (*AttendanceReport, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Today()
	}
	asOf = hr.Truncate(asOf)

	records, err := s.store.ListAttendance(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	counseling, err := s.store.ListCounseling(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	active := make([]hr.AttendancePoint, 0, len(records))
	for _, r := range records {
		if r.IsActive {
			active = append(active, r)
		}
	}
	report := &AttendanceReport{
		EmployeeID: employeeID,
		AsOf:       asOf,
		Total:      s.engine.TotalAttendancePoints(records, asOf, 0),
		History:    s.engine.AttendanceHistory(records, asOf).Buckets(),
		Records:    active,
	}
	report.PriorWarning = discipline.PriorWrittenWarning(counseling)
	return report, nil
}

// ListAttendance returns every attendance record of an employee.
func (s *Service) ListAttendance(ctx context.Context, employeeID int64) ([]hr.AttendancePoint, error) {
	return s.store.ListAttendance(ctx, employeeID)
}
