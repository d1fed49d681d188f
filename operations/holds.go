package operations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// HOLDS
// =============================================================================

// HoldInput places or edits a hold.
type HoldInput struct {
	Reason      string
	OtherReason string
	ReleaseDate *time.Time
	TrainingAt  *time.Time
}

func (in HoldInput) validate() *hr.ValidationError {
	verr := &hr.ValidationError{}
	if strings.TrimSpace(in.Reason) == "" {
		verr.Add("reason", "This field is required.")
	}
	if in.Reason == hr.HoldOther && strings.TrimSpace(in.OtherReason) == "" {
		verr.Add("other_reason", "Please specify the reason.")
	}
	if len(in.OtherReason) > 30 {
		verr.Add("other_reason", "Ensure this value has at most 30 characters (it has %d).", len(in.OtherReason))
	}
	return verr
}

// PlaceHold puts an employee on hold. An employee holds at most one.
func (s *Service) PlaceHold(ctx context.Context, actor, employeeID int64, in HoldInput) (*hr.Hold, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var created hr.Hold
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		existing, err := tx.GetHold(ctx, emp.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return hr.Invalid("reason", "%s is already on hold (%s)", emp.FullName(), existing.DisplayReason())
		}

		h := hr.Hold{
			EmployeeID:  emp.ID,
			AssignedBy:  actor,
			Reason:      in.Reason,
			OtherReason: in.OtherReason,
			HoldDate:    s.clock.Today(),
			ReleaseDate: in.ReleaseDate,
			TrainingAt:  in.TrainingAt,
			CreatedAt:   s.clock.Now(),
		}
		if err := tx.CreateHold(ctx, &h); err != nil {
			return err
		}
		if h.Reason == hr.HoldPendingTermination {
			emp.IsPendingTerm = true
			emp.RemovalDate = ptr(s.clock.Today())
			if err := tx.UpdateEmployee(ctx, *emp); err != nil {
				return err
			}
		}
		out.add(notificationEvent(actor, emp, hr.NotifyAddHold,
			fmt.Sprintf("%s has been placed on hold. Reason: %s", emp.FullName(), h.DisplayReason())))
		created = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetHold returns the employee's hold or nil.
func (s *Service) GetHold(ctx context.Context, employeeID int64) (*hr.Hold, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.GetHold(ctx, employeeID)
}

// EditHold changes the reason and dates of the employee's hold.
func (s *Service) EditHold(ctx context.Context, employeeID int64, in HoldInput) (*hr.Hold, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var updated hr.Hold
	err := s.run(ctx, func(tx Store, _ *outbox) error {
		h, err := tx.GetHold(ctx, employeeID)
		if err != nil {
			return err
		}
		if h == nil {
			return hr.NotFound("hold", employeeID)
		}
		h.Reason = in.Reason
		h.OtherReason = in.OtherReason
		h.ReleaseDate = in.ReleaseDate
		h.TrainingAt = in.TrainingAt
		if err := tx.UpdateHold(ctx, *h); err != nil {
			return err
		}
		updated = *h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveHold releases the employee's hold. Releasing a "Pending
// Termination" hold clears the pending-termination marker.
func (s *Service) RemoveHold(ctx context.Context, actor, employeeID int64) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := tx.GetEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		h, err := tx.GetHold(ctx, emp.ID)
		if err != nil {
			return err
		}
		if h == nil {
			return hr.NotFound("hold", employeeID)
		}
		return removeHold(ctx, tx, actor, emp, out)
	})
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

// CreateSettlement records negotiated terms and releases the hold.
func (s *Service) CreateSettlement(ctx context.Context, actor, employeeID int64, details string) (*hr.Settlement, error) {
	if strings.TrimSpace(details) == "" {
		return nil, hr.Invalid("details", "This field is required.")
	}

	var created hr.Settlement
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := tx.GetEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if err := removeHold(ctx, tx, actor, emp, out); err != nil {
			return err
		}
		st := hr.Settlement{
			EmployeeID: emp.ID,
			AssignedBy: actor,
			IssuedDate: s.clock.Today(),
			Details:    details,
			IsActive:   true,
			CreatedAt:  s.clock.Now(),
		}
		if err := tx.CreateSettlement(ctx, &st); err != nil {
			return err
		}
		out.add(documentEvent(emp.ID, hr.KindSettlement, st.ID))
		out.add(notificationEvent(actor, emp, hr.NotifyAddSettlement,
			fmt.Sprintf("New Settlement Created for %s", emp.FullName())))
		created = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EditSettlement replaces the details and regenerates the document.
func (s *Service) EditSettlement(ctx context.Context, id int64, details string) (*hr.Settlement, error) {
	if strings.TrimSpace(details) == "" {
		return nil, hr.Invalid("details", "This field is required.")
	}
	var updated hr.Settlement
	err := s.run(ctx, func(tx Store, out *outbox) error {
		st, err := tx.GetSettlement(ctx, id)
		if err != nil {
			return err
		}
		st.Details = details
		if err := tx.UpdateSettlement(ctx, *st); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindSettlement, ID: st.ID}); err != nil {
			return err
		}
		st.HasDocument = false
		out.add(documentEvent(st.EmployeeID, hr.KindSettlement, st.ID))
		updated = *st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSettlement soft-deletes a settlement.
func (s *Service) DeleteSettlement(ctx context.Context, id int64) error {
	return s.run(ctx, func(tx Store, _ *outbox) error {
		st, err := tx.GetSettlement(ctx, id)
		if err != nil {
			return err
		}
		st.IsActive = false
		return tx.UpdateSettlement(ctx, *st)
	})
}

// MarkSettlementUploaded records that the signed settlement was scanned in.
func (s *Service) MarkSettlementUploaded(ctx context.Context, id int64) error {
	return s.run(ctx, func(tx Store, _ *outbox) error {
		st, err := tx.GetSettlement(ctx, id)
		if err != nil {
			return err
		}
		st.Uploaded = true
		return tx.UpdateSettlement(ctx, *st)
	})
}

// ListSettlements returns every settlement of an employee.
func (s *Service) ListSettlements(ctx context.Context, employeeID int64) ([]hr.Settlement, error) {
	return s.store.ListSettlements(ctx, employeeID)
}
