package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// TIME OFF (operations.TimeOffStore interface)
// =============================================================================

const timeOffColumns = `id, employee_id, request_type, status, comments, reviewed_by, is_active, created_at`

// CreateTimeOff inserts a request with its days and sets their IDs.
func (s *Store) CreateTimeOff(ctx context.Context, req *hr.TimeOffRequest) error {
	return s.atomic(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `
			INSERT INTO time_off_requests (employee_id, request_type, status, comments, reviewed_by, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, req.EmployeeID, string(req.RequestType), string(req.Status), req.Comments,
			nullInt(req.ReviewedBy), req.IsActive, formatTime(req.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to create time off request: %w", err)
		}
		if req.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		for i := range req.Days {
			day := &req.Days[i]
			day.RequestID = req.ID
			day.EmployeeID = req.EmployeeID
			res, err := tx.q.ExecContext(ctx,
				`INSERT INTO days_off (request_id, employee_id, date, is_active) VALUES (?, ?, ?, ?)`,
				day.RequestID, day.EmployeeID, formatDate(day.Date), day.IsActive,
			)
			if err != nil {
				return fmt.Errorf("failed to create day off %s: %w", formatDate(day.Date), err)
			}
			if day.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTimeOff retrieves a request with its days.
func (s *Store) GetTimeOff(ctx context.Context, id int64) (*hr.TimeOffRequest, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+timeOffColumns+` FROM time_off_requests WHERE id = ?`, id)
	req, err := scanTimeOff(row)
	if err != nil {
		return nil, notFound(err, "time_off", id)
	}
	if req.Days, err = s.daysOff(ctx, `request_id = ?`, id); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateTimeOff overwrites the request and the active flag of its days.
func (s *Store) UpdateTimeOff(ctx context.Context, req hr.TimeOffRequest) error {
	return s.atomic(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `
			UPDATE time_off_requests SET status = ?, comments = ?, reviewed_by = ?, is_active = ?
			WHERE id = ?
		`, string(req.Status), req.Comments, nullInt(req.ReviewedBy), req.IsActive, req.ID)
		if err != nil {
			return fmt.Errorf("failed to update time off request %d: %w", req.ID, err)
		}
		if err := mustAffect(res, "time_off", req.ID); err != nil {
			return err
		}
		for _, day := range req.Days {
			if _, err := tx.q.ExecContext(ctx,
				`UPDATE days_off SET is_active = ? WHERE id = ? AND request_id = ?`,
				day.IsActive, day.ID, req.ID,
			); err != nil {
				return fmt.Errorf("failed to update day off %d: %w", day.ID, err)
			}
		}
		return nil
	})
}

// ListTimeOff returns all requests of an employee, newest first.
func (s *Store) ListTimeOff(ctx context.Context, employeeID int64) ([]hr.TimeOffRequest, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+timeOffColumns+` FROM time_off_requests WHERE employee_id = ? ORDER BY id DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query time off requests: %w", err)
	}
	var requests []hr.TimeOffRequest
	for rows.Next() {
		req, err := scanTimeOff(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		requests = append(requests, *req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Days are loaded after the cursor is closed: the pool holds one connection.
	days, err := s.daysOff(ctx, `employee_id = ?`, employeeID)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]hr.DayOff, len(requests))
	for _, d := range days {
		byRequest[d.RequestID] = append(byRequest[d.RequestID], d)
	}
	for i := range requests {
		requests[i].Days = byRequest[requests[i].ID]
	}
	return requests, nil
}

// ActiveDaysOff returns the employee's active days off, ignoring denied
// and withdrawn requests.
func (s *Store) ActiveDaysOff(ctx context.Context, employeeID int64) ([]hr.DayOff, error) {
	return s.daysOff(ctx, `employee_id = ? AND is_active = 1 AND request_id IN (
		SELECT id FROM time_off_requests WHERE is_active = 1 AND status != ?)`,
		employeeID, string(hr.TimeOffDenied))
}

// CountDaysOff counts active days off on date among employees with the
// given NeighborLink flag.
func (s *Store) CountDaysOff(ctx context.Context, date time.Time, neighborLink bool) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM days_off d
		JOIN time_off_requests r ON r.id = d.request_id
		JOIN employees e ON e.id = d.employee_id
		WHERE d.date = ? AND d.is_active = 1
		  AND r.is_active = 1 AND r.status != ?
		  AND e.is_neighbor_link = ?
	`, formatDate(date), string(hr.TimeOffDenied), neighborLink).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count days off on %s: %w", formatDate(date), err)
	}
	return n, nil
}

func (s *Store) daysOff(ctx context.Context, where string, args ...any) ([]hr.DayOff, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, request_id, employee_id, date, is_active FROM days_off WHERE `+where+` ORDER BY date, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query days off: %w", err)
	}
	defer rows.Close()

	var days []hr.DayOff
	for rows.Next() {
		var (
			day  hr.DayOff
			date string
			d    decoder
		)
		if err := rows.Scan(&day.ID, &day.RequestID, &day.EmployeeID, &date, &day.IsActive); err != nil {
			return nil, err
		}
		day.Date = d.date("date", date)
		if d.err != nil {
			return nil, d.err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanTimeOff(row scanner) (*hr.TimeOffRequest, error) {
	var (
		req                            hr.TimeOffRequest
		requestType, status, createdAt string
		reviewedBy                     sql.NullInt64
	)
	err := row.Scan(&req.ID, &req.EmployeeID, &requestType, &status, &req.Comments,
		&reviewedBy, &req.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	var d decoder
	req.CreatedAt = d.time("created_at", createdAt)
	req.RequestType = hr.TimeOffType(requestType)
	req.Status = hr.TimeOffStatus(status)
	req.ReviewedBy = intPtr(reviewedBy)
	if d.err != nil {
		return nil, d.err
	}
	return &req, nil
}
