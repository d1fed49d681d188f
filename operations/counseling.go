package operations

import (
	"context"
	"strings"
	"time"

	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// COUNSELING
// =============================================================================

// CounselingInput is a manual counseling to assign or the new state of an edit.
type CounselingInput struct {
	IssuedDate   time.Time
	ActionType   hr.ActionType
	HearingAt    *time.Time
	Conduct      string
	Conversation string
	// Override skips the progressive-discipline check. Whether the actor
	// may grant it is decided by the caller.
	Override bool
}

func (in CounselingInput) validate() *hr.ValidationError {
	verr := &hr.ValidationError{}
	if in.IssuedDate.IsZero() {
		verr.Add("issued_date", "This field is required.")
	}
	if !in.ActionType.Valid() {
		verr.Add("action_type", "Select a valid choice. %q is not one of the available choices.", string(in.ActionType))
	}
	if strings.TrimSpace(in.Conduct) == "" {
		verr.Add("conduct", "This field is required.")
	}
	if strings.TrimSpace(in.Conversation) == "" {
		verr.Add("conversation", "This field is required.")
	}
	return verr
}

// NextCounselingStep returns the action the progressive ladder requires next.
func (s *Service) NextCounselingStep(ctx context.Context, employeeID int64) (hr.ActionType, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return "", err
	}
	counseling, err := s.store.ListCounseling(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return discipline.BuildLadder(counseling).NextStep(), nil
}

// AssignCounseling records a manual counseling. The action must be the
// next ladder step unless overridden. Discharge and removal place the
// employee on a pending-termination hold.
func (s *Service) AssignCounseling(ctx context.Context, actor, employeeID int64, in CounselingInput) (*hr.Counseling, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var created hr.Counseling
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		existing, err := tx.ListCounseling(ctx, emp.ID)
		if err != nil {
			return err
		}
		if err := discipline.ValidateStep(discipline.StepInput{
			Proposed:   in.ActionType,
			Counseling: existing,
			Override:   in.Override,
		}); err != nil {
			return err
		}

		c := hr.Counseling{
			EmployeeID:   emp.ID,
			AssignedBy:   actor,
			IssuedDate:   hr.Truncate(in.IssuedDate),
			ActionType:   in.ActionType,
			HearingAt:    in.HearingAt,
			Conduct:      in.Conduct,
			Conversation: in.Conversation,
			IsActive:     true,
			CreatedAt:    s.clock.Now(),
		}
		if in.Override {
			c.OverrideBy = ptr(actor)
		}
		if err := tx.CreateCounseling(ctx, &c); err != nil {
			return err
		}
		out.add(documentEvent(emp.ID, hr.KindCounseling, c.ID))
		if err := s.counselingCreated(ctx, tx, actor, emp, c, out); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EditCounseling replaces a counseling's fields. The step check counts the
// edited record like any other, and a recorded override keeps applying
// while the action type stays the same. Toggling Override grants or revokes it.
func (s *Service) EditCounseling(ctx context.Context, actor, id int64, in CounselingInput) (*hr.Counseling, error) {
	if err := in.validate().OrNil(); err != nil {
		return nil, err
	}

	var updated hr.Counseling
	err := s.run(ctx, func(tx Store, out *outbox) error {
		c, err := tx.GetCounseling(ctx, id)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return hr.NotFound(string(hr.KindCounseling), id)
		}
		if !c.IsAttendanceLinked() && !c.IsSafetyLinked() {
			existing, err := tx.ListCounseling(ctx, c.EmployeeID)
			if err != nil {
				return err
			}
			if err := discipline.ValidateStep(discipline.StepInput{
				Proposed:   in.ActionType,
				Counseling: existing,
				Editing:    c,
				Override:   in.Override,
			}); err != nil {
				return err
			}
		}

		if in.Override && c.OverrideBy == nil {
			c.OverrideBy = ptr(actor)
		}
		if !in.Override && c.OverrideBy != nil && c.ActionType != in.ActionType {
			c.OverrideBy = nil
		}
		c.IssuedDate = hr.Truncate(in.IssuedDate)
		c.ActionType = in.ActionType
		c.HearingAt = in.HearingAt
		c.Conduct = in.Conduct
		c.Conversation = in.Conversation
		c.Signature = hr.Signature{}
		c.EditedBy = ptr(actor)
		c.EditedAt = ptr(s.clock.Now())
		if err := tx.UpdateCounseling(ctx, *c); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindCounseling, ID: c.ID}); err != nil {
			return err
		}
		c.HasDocument = false
		out.add(documentEvent(c.EmployeeID, hr.KindCounseling, c.ID))
		updated = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCounseling soft-deletes a counseling and releases the employee's hold.
func (s *Service) DeleteCounseling(ctx context.Context, actor, id int64) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		c, err := tx.GetCounseling(ctx, id)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return nil
		}
		emp, err := tx.GetEmployee(ctx, c.EmployeeID)
		if err != nil {
			return err
		}
		if err := deactivateCounseling(ctx, tx, c); err != nil {
			return err
		}
		return removeHold(ctx, tx, actor, emp, out)
	})
}

// SignCounseling marks the counseling's document as signed and regenerates it.
func (s *Service) SignCounseling(ctx context.Context, id int64, in SignInput) error {
	return s.run(ctx, func(tx Store, out *outbox) error {
		c, err := tx.GetCounseling(ctx, id)
		if err != nil {
			return err
		}
		c.Signature = hr.Signature{Signed: true, Refused: in.Refused, Comments: in.Comments}
		if err := tx.UpdateCounseling(ctx, *c); err != nil {
			return err
		}
		if err := tx.DeleteDocument(ctx, hr.RecordRef{Kind: hr.KindCounseling, ID: c.ID}); err != nil {
			return err
		}
		out.add(documentEvent(c.EmployeeID, hr.KindCounseling, c.ID))
		return nil
	})
}

// ListCounseling returns every counseling record of an employee.
func (s *Service) ListCounseling(ctx context.Context, employeeID int64) ([]hr.Counseling, error) {
	return s.store.ListCounseling(ctx, employeeID)
}
