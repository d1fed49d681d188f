package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// ATTENDANCE POINTS (operations.PointStore interface)
// =============================================================================

const attendanceColumns = `id, employee_id, assigned_by, incident_date, issued_date,
	reason, exemption, points, is_active, has_document,
	signed, refused, sign_comments, uploaded, edited_by, edited_at, created_at`

// CreateAttendance inserts an attendance point and sets its ID.
func (s *Store) CreateAttendance(ctx context.Context, rec *hr.AttendancePoint) error {
	query := `
		INSERT INTO attendance_points
		(employee_id, assigned_by, incident_date, issued_date, reason, exemption, points,
		 is_active, has_document, signed, refused, sign_comments, uploaded, edited_by, edited_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		rec.EmployeeID, rec.AssignedBy, formatDate(rec.IncidentDate), formatDate(rec.IssuedDate),
		string(rec.Reason), string(rec.Exemption), rec.Points.String(),
		rec.IsActive, rec.HasDocument,
		rec.Signature.Signed, rec.Signature.Refused, rec.Signature.Comments, rec.Signature.Uploaded,
		nullInt(rec.EditedBy), nullTime(rec.EditedAt), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create attendance point: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// GetAttendance retrieves an attendance point by ID, active or not.
func (s *Store) GetAttendance(ctx context.Context, id int64) (*hr.AttendancePoint, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance_points WHERE id = ?`, id)
	rec, err := scanAttendance(row)
	if err != nil {
		return nil, notFound(err, string(hr.KindAttendance), id)
	}
	return rec, nil
}

// UpdateAttendance overwrites the mutable columns of an attendance point.
func (s *Store) UpdateAttendance(ctx context.Context, rec hr.AttendancePoint) error {
	query := `
		UPDATE attendance_points SET
			assigned_by = ?, incident_date = ?, issued_date = ?, reason = ?, exemption = ?, points = ?,
			is_active = ?, has_document = ?, signed = ?, refused = ?, sign_comments = ?, uploaded = ?,
			edited_by = ?, edited_at = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		rec.AssignedBy, formatDate(rec.IncidentDate), formatDate(rec.IssuedDate),
		string(rec.Reason), string(rec.Exemption), rec.Points.String(),
		rec.IsActive, rec.HasDocument,
		rec.Signature.Signed, rec.Signature.Refused, rec.Signature.Comments, rec.Signature.Uploaded,
		nullInt(rec.EditedBy), nullTime(rec.EditedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance point %d: %w", rec.ID, err)
	}
	return mustAffect(res, string(hr.KindAttendance), rec.ID)
}

// ListAttendance returns all attendance points of an employee, inactive
// ones included, oldest incident first.
func (s *Store) ListAttendance(ctx context.Context, employeeID int64) ([]hr.AttendancePoint, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_points WHERE employee_id = ? ORDER BY incident_date, id`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance points: %w", err)
	}
	defer rows.Close()

	var records []hr.AttendancePoint
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanAttendance(row scanner) (*hr.AttendancePoint, error) {
	var (
		rec                                         hr.AttendancePoint
		incident, issued, reason, exemption, points string
		createdAt                                   string
		editedBy                                    sql.NullInt64
		editedAt                                    sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.AssignedBy, &incident, &issued,
		&reason, &exemption, &points, &rec.IsActive, &rec.HasDocument,
		&rec.Signature.Signed, &rec.Signature.Refused, &rec.Signature.Comments, &rec.Signature.Uploaded,
		&editedBy, &editedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	var d decoder
	rec.IncidentDate = d.date("incident_date", incident)
	rec.IssuedDate = d.date("issued_date", issued)
	rec.Points = d.decimal("points", points)
	rec.EditedAt = d.timePtr("edited_at", editedAt)
	rec.CreatedAt = d.time("created_at", createdAt)
	rec.Reason = hr.AttendanceReason(reason)
	rec.Exemption = hr.Exemption(exemption)
	rec.EditedBy = intPtr(editedBy)
	if d.err != nil {
		return nil, d.err
	}
	return &rec, nil
}

// =============================================================================
// SAFETY POINTS (operations.PointStore interface)
// =============================================================================

const safetyColumns = `id, employee_id, assigned_by, incident_date, issued_date,
	reason, points, details, is_active, has_document,
	signed, refused, sign_comments, uploaded, edited_by, edited_at, created_at`

// CreateSafetyPoint inserts a safety point and sets its ID.
func (s *Store) CreateSafetyPoint(ctx context.Context, rec *hr.SafetyPoint) error {
	query := `
		INSERT INTO safety_points
		(employee_id, assigned_by, incident_date, issued_date, reason, points, details,
		 is_active, has_document, signed, refused, sign_comments, uploaded, edited_by, edited_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.q.ExecContext(ctx, query,
		rec.EmployeeID, rec.AssignedBy, formatDate(rec.IncidentDate), formatDate(rec.IssuedDate),
		string(rec.Reason), rec.Points, rec.Details,
		rec.IsActive, rec.HasDocument,
		rec.Signature.Signed, rec.Signature.Refused, rec.Signature.Comments, rec.Signature.Uploaded,
		nullInt(rec.EditedBy), nullTime(rec.EditedAt), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create safety point: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// GetSafetyPoint retrieves a safety point by ID, active or not.
func (s *Store) GetSafetyPoint(ctx context.Context, id int64) (*hr.SafetyPoint, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+safetyColumns+` FROM safety_points WHERE id = ?`, id)
	rec, err := scanSafety(row)
	if err != nil {
		return nil, notFound(err, string(hr.KindSafetyPoint), id)
	}
	return rec, nil
}

// UpdateSafetyPoint overwrites the mutable columns of a safety point.
func (s *Store) UpdateSafetyPoint(ctx context.Context, rec hr.SafetyPoint) error {
	query := `
		UPDATE safety_points SET
			assigned_by = ?, incident_date = ?, issued_date = ?, reason = ?, points = ?, details = ?,
			is_active = ?, has_document = ?, signed = ?, refused = ?, sign_comments = ?, uploaded = ?,
			edited_by = ?, edited_at = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		rec.AssignedBy, formatDate(rec.IncidentDate), formatDate(rec.IssuedDate),
		string(rec.Reason), rec.Points, rec.Details,
		rec.IsActive, rec.HasDocument,
		rec.Signature.Signed, rec.Signature.Refused, rec.Signature.Comments, rec.Signature.Uploaded,
		nullInt(rec.EditedBy), nullTime(rec.EditedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update safety point %d: %w", rec.ID, err)
	}
	return mustAffect(res, string(hr.KindSafetyPoint), rec.ID)
}

// ListSafetyPoints returns all safety points of an employee, inactive
// ones included, oldest incident first.
func (s *Store) ListSafetyPoints(ctx context.Context, employeeID int64) ([]hr.SafetyPoint, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+safetyColumns+` FROM safety_points WHERE employee_id = ? ORDER BY incident_date, id`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query safety points: %w", err)
	}
	defer rows.Close()

	var records []hr.SafetyPoint
	for rows.Next() {
		rec, err := scanSafety(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanSafety(row scanner) (*hr.SafetyPoint, error) {
	var (
		rec                                 hr.SafetyPoint
		incident, issued, reason, createdAt string
		editedBy                            sql.NullInt64
		editedAt                            sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.AssignedBy, &incident, &issued,
		&reason, &rec.Points, &rec.Details, &rec.IsActive, &rec.HasDocument,
		&rec.Signature.Signed, &rec.Signature.Refused, &rec.Signature.Comments, &rec.Signature.Uploaded,
		&editedBy, &editedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	var d decoder
	rec.IncidentDate = d.date("incident_date", incident)
	rec.IssuedDate = d.date("issued_date", issued)
	rec.EditedAt = d.timePtr("edited_at", editedAt)
	rec.CreatedAt = d.time("created_at", createdAt)
	rec.Reason = hr.SafetyReason(reason)
	rec.EditedBy = intPtr(editedBy)
	if d.err != nil {
		return nil, d.err
	}
	return &rec, nil
}
