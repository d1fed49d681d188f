package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// COUNSELING (operations.CounselingStore interface)
// =============================================================================

const counselingColumns = `id, employee_id, assigned_by, issued_date, action_type, hearing_at,
	conduct, conversation, attendance_id, safety_point_id, override_by,
	is_active, has_document, signed, refused, sign_comments, uploaded,
	edited_by, edited_at, created_at`

// CreateCounseling inserts a counseling record and sets its ID.
func (s *Store) CreateCounseling(ctx context.Context, c *hr.Counseling) error {
	query := `
		INSERT INTO counseling
		(employee_id, assigned_by, issued_date, action_type, hearing_at, conduct, conversation,
		 attendance_id, safety_point_id, override_by, is_active, has_document,
		 signed, refused, sign_comments, uploaded, edited_by, edited_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		c.EmployeeID, c.AssignedBy, formatDate(c.IssuedDate), string(c.ActionType), nullTime(c.HearingAt),
		c.Conduct, c.Conversation,
		nullInt(c.AttendanceID), nullInt(c.SafetyPointID), nullInt(c.OverrideBy),
		c.IsActive, c.HasDocument,
		c.Signature.Signed, c.Signature.Refused, c.Signature.Comments, c.Signature.Uploaded,
		nullInt(c.EditedBy), nullTime(c.EditedAt), formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create counseling: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// GetCounseling retrieves a counseling record by ID, active or not.
func (s *Store) GetCounseling(ctx context.Context, id int64) (*hr.Counseling, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+counselingColumns+` FROM counseling WHERE id = ?`, id)
	c, err := scanCounseling(row)
	if err != nil {
		return nil, notFound(err, string(hr.KindCounseling), id)
	}
	return c, nil
}

// UpdateCounseling overwrites the mutable columns of a counseling record.
func (s *Store) UpdateCounseling(ctx context.Context, c hr.Counseling) error {
	query := `
		UPDATE counseling SET
			assigned_by = ?, issued_date = ?, action_type = ?, hearing_at = ?, conduct = ?, conversation = ?,
			attendance_id = ?, safety_point_id = ?, override_by = ?, is_active = ?, has_document = ?,
			signed = ?, refused = ?, sign_comments = ?, uploaded = ?, edited_by = ?, edited_at = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		c.AssignedBy, formatDate(c.IssuedDate), string(c.ActionType), nullTime(c.HearingAt),
		c.Conduct, c.Conversation,
		nullInt(c.AttendanceID), nullInt(c.SafetyPointID), nullInt(c.OverrideBy),
		c.IsActive, c.HasDocument,
		c.Signature.Signed, c.Signature.Refused, c.Signature.Comments, c.Signature.Uploaded,
		nullInt(c.EditedBy), nullTime(c.EditedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update counseling %d: %w", c.ID, err)
	}
	return mustAffect(res, string(hr.KindCounseling), c.ID)
}

// DeleteCounseling removes a counseling record and its document.
func (s *Store) DeleteCounseling(ctx context.Context, id int64) error {
	return s.atomic(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx,
			`DELETE FROM documents WHERE kind = ? AND record_id = ?`, string(hr.KindCounseling), id,
		); err != nil {
			return fmt.Errorf("failed to delete counseling document %d: %w", id, err)
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM counseling WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete counseling %d: %w", id, err)
		}
		return mustAffect(res, string(hr.KindCounseling), id)
	})
}

// ListCounseling returns all counseling records of an employee, inactive
// ones included, oldest first.
func (s *Store) ListCounseling(ctx context.Context, employeeID int64) ([]hr.Counseling, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+counselingColumns+` FROM counseling WHERE employee_id = ? ORDER BY issued_date, id`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query counseling: %w", err)
	}
	defer rows.Close()

	var records []hr.Counseling
	for rows.Next() {
		c, err := scanCounseling(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *c)
	}
	return records, rows.Err()
}

// CounselingForAttendance returns the active counseling produced by an
// attendance point, or nil.
func (s *Store) CounselingForAttendance(ctx context.Context, attendanceID int64) (*hr.Counseling, error) {
	return s.linkedCounseling(ctx, "attendance_id", attendanceID)
}

// CounselingForSafetyPoint returns the active counseling produced by a
// safety point, or nil.
func (s *Store) CounselingForSafetyPoint(ctx context.Context, safetyPointID int64) (*hr.Counseling, error) {
	return s.linkedCounseling(ctx, "safety_point_id", safetyPointID)
}

func (s *Store) linkedCounseling(ctx context.Context, column string, id int64) (*hr.Counseling, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+counselingColumns+` FROM counseling WHERE `+column+` = ? AND is_active = 1 ORDER BY id DESC LIMIT 1`,
		id,
	)
	c, err := scanCounseling(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load counseling by %s %d: %w", column, id, err)
	}
	return c, nil
}

func scanCounseling(row scanner) (*hr.Counseling, error) {
	var (
		c                                hr.Counseling
		issued, action, createdAt        string
		hearingAt, editedAt              sql.NullString
		attendanceID, safetyID, override sql.NullInt64
		editedBy                         sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.AssignedBy, &issued, &action, &hearingAt,
		&c.Conduct, &c.Conversation, &attendanceID, &safetyID, &override,
		&c.IsActive, &c.HasDocument, &c.Signature.Signed, &c.Signature.Refused, &c.Signature.Comments, &c.Signature.Uploaded,
		&editedBy, &editedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	var d decoder
	c.IssuedDate = d.date("issued_date", issued)
	c.HearingAt = d.timePtr("hearing_at", hearingAt)
	c.EditedAt = d.timePtr("edited_at", editedAt)
	c.CreatedAt = d.time("created_at", createdAt)
	c.ActionType = hr.ActionType(action)
	c.AttendanceID = intPtr(attendanceID)
	c.SafetyPointID = intPtr(safetyID)
	c.OverrideBy = intPtr(override)
	c.EditedBy = intPtr(editedBy)
	if d.err != nil {
		return nil, d.err
	}
	return &c, nil
}
