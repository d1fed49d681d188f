package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// HOLDS (operations.HoldStore interface)
// =============================================================================

const holdColumns = `id, employee_id, assigned_by, reason, other_reason,
	hold_date, release_date, training_at, created_at`

// GetHold returns the employee's hold, or nil.
func (s *Store) GetHold(ctx context.Context, employeeID int64) (*hr.Hold, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+holdColumns+` FROM holds WHERE employee_id = ?`, employeeID)

	var (
		h                   hr.Hold
		holdDate, createdAt string
		release, training   sql.NullString
	)
	err := row.Scan(&h.ID, &h.EmployeeID, &h.AssignedBy, &h.Reason, &h.OtherReason,
		&holdDate, &release, &training, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hold of employee %d: %w", employeeID, err)
	}

	var d decoder
	h.HoldDate = d.date("hold_date", holdDate)
	h.ReleaseDate = d.datePtr("release_date", release)
	h.TrainingAt = d.timePtr("training_at", training)
	h.CreatedAt = d.time("created_at", createdAt)
	if d.err != nil {
		return nil, d.err
	}
	return &h, nil
}

// CreateHold inserts a hold. An employee holds at most one.
func (s *Store) CreateHold(ctx context.Context, h *hr.Hold) error {
	query := `
		INSERT INTO holds (employee_id, assigned_by, reason, other_reason, hold_date, release_date, training_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		h.EmployeeID, h.AssignedBy, h.Reason, h.OtherReason,
		formatDate(h.HoldDate), nullDate(h.ReleaseDate), nullTime(h.TrainingAt), formatTime(h.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return hr.Invalid("reason", "Employee %d is already on hold", h.EmployeeID)
		}
		return fmt.Errorf("failed to create hold: %w", err)
	}
	h.ID, err = res.LastInsertId()
	return err
}

// UpdateHold overwrites the reason and dates of a hold.
func (s *Store) UpdateHold(ctx context.Context, h hr.Hold) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE holds SET reason = ?, other_reason = ?, release_date = ?, training_at = ?
		WHERE employee_id = ?
	`, h.Reason, h.OtherReason, nullDate(h.ReleaseDate), nullTime(h.TrainingAt), h.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to update hold of employee %d: %w", h.EmployeeID, err)
	}
	return mustAffect(res, "hold", h.EmployeeID)
}

// DeleteHold removes the employee's hold. Deleting a missing hold is a no-op.
func (s *Store) DeleteHold(ctx context.Context, employeeID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM holds WHERE employee_id = ?`, employeeID); err != nil {
		return fmt.Errorf("failed to delete hold of employee %d: %w", employeeID, err)
	}
	return nil
}

// =============================================================================
// SETTLEMENTS (operations.SettlementStore interface)
// =============================================================================

const settlementColumns = `id, employee_id, assigned_by, issued_date, details,
	is_active, has_document, uploaded, created_at`

// CreateSettlement inserts a settlement and sets its ID.
func (s *Store) CreateSettlement(ctx context.Context, st *hr.Settlement) error {
	query := `
		INSERT INTO settlements (employee_id, assigned_by, issued_date, details, is_active, has_document, uploaded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		st.EmployeeID, st.AssignedBy, formatDate(st.IssuedDate), st.Details,
		st.IsActive, st.HasDocument, st.Uploaded, formatTime(st.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	st.ID, err = res.LastInsertId()
	return err
}

// GetSettlement retrieves a settlement by ID, active or not.
func (s *Store) GetSettlement(ctx context.Context, id int64) (*hr.Settlement, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, id)
	st, err := scanSettlement(row)
	if err != nil {
		return nil, notFound(err, string(hr.KindSettlement), id)
	}
	return st, nil
}

// UpdateSettlement overwrites the mutable columns of a settlement.
func (s *Store) UpdateSettlement(ctx context.Context, st hr.Settlement) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE settlements SET details = ?, is_active = ?, has_document = ?, uploaded = ?
		WHERE id = ?
	`, st.Details, st.IsActive, st.HasDocument, st.Uploaded, st.ID)
	if err != nil {
		return fmt.Errorf("failed to update settlement %d: %w", st.ID, err)
	}
	return mustAffect(res, string(hr.KindSettlement), st.ID)
}

// ListSettlements returns all settlements of an employee, newest first.
func (s *Store) ListSettlements(ctx context.Context, employeeID int64) ([]hr.Settlement, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE employee_id = ? ORDER BY issued_date DESC, id DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var out []hr.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func scanSettlement(row scanner) (*hr.Settlement, error) {
	var (
		st                hr.Settlement
		issued, createdAt string
	)
	err := row.Scan(&st.ID, &st.EmployeeID, &st.AssignedBy, &issued, &st.Details,
		&st.IsActive, &st.HasDocument, &st.Uploaded, &createdAt)
	if err != nil {
		return nil, err
	}
	var d decoder
	st.IssuedDate = d.date("issued_date", issued)
	st.CreatedAt = d.time("created_at", createdAt)
	if d.err != nil {
		return nil, d.err
	}
	return &st, nil
}
