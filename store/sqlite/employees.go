package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// =============================================================================
// EMPLOYEE STORE (operations.EmployeeStore interface)
// =============================================================================

const employeeColumns = `id, first_name, last_name, position, email, phone,
	hire_date, application_date, classroom_date, termination_date, removal_date,
	paid_sick, unpaid_sick, floating_holiday,
	is_active, is_pending_term, is_staff, is_part_time, is_neighbor_link,
	termination_type, termination_comments, notifications_json, created_at`

// CreateEmployee inserts an employee under its employee number.
func (s *Store) CreateEmployee(ctx context.Context, emp *hr.Employee) error {
	prefs, err := encodePreferences(emp.Notifications)
	if err != nil {
		return err
	}

	query := `INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.q.ExecContext(ctx, query,
		emp.ID, emp.FirstName, emp.LastName, emp.Position, emp.Email, emp.Phone,
		formatDate(emp.HireDate), nullDate(emp.ApplicationDate), nullDate(emp.ClassroomDate),
		nullDate(emp.TerminationDate), nullDate(emp.RemovalDate),
		emp.PaidSick, emp.UnpaidSick, emp.FloatingHoliday,
		emp.IsActive, emp.IsPendingTerm, emp.IsStaff, emp.IsPartTime, emp.IsNeighborLink,
		string(emp.TerminationType), emp.TerminationComments, prefs, formatTime(emp.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return hr.Invalid("id", "Employee ID %d already exists", emp.ID)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by number.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*hr.Employee, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}
	return emp, nil
}

// UpdateEmployee overwrites every mutable column.
func (s *Store) UpdateEmployee(ctx context.Context, emp hr.Employee) error {
	prefs, err := encodePreferences(emp.Notifications)
	if err != nil {
		return err
	}

	query := `
		UPDATE employees SET
			first_name = ?, last_name = ?, position = ?, email = ?, phone = ?,
			hire_date = ?, application_date = ?, classroom_date = ?,
			termination_date = ?, removal_date = ?,
			paid_sick = ?, unpaid_sick = ?, floating_holiday = ?,
			is_active = ?, is_pending_term = ?, is_staff = ?, is_part_time = ?, is_neighbor_link = ?,
			termination_type = ?, termination_comments = ?, notifications_json = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		emp.FirstName, emp.LastName, emp.Position, emp.Email, emp.Phone,
		formatDate(emp.HireDate), nullDate(emp.ApplicationDate), nullDate(emp.ClassroomDate),
		nullDate(emp.TerminationDate), nullDate(emp.RemovalDate),
		emp.PaidSick, emp.UnpaidSick, emp.FloatingHoliday,
		emp.IsActive, emp.IsPendingTerm, emp.IsStaff, emp.IsPartTime, emp.IsNeighborLink,
		string(emp.TerminationType), emp.TerminationComments, prefs,
		emp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee %d: %w", emp.ID, err)
	}
	return mustAffect(res, "employee", emp.ID)
}

// ListEmployees returns employees ordered by last then first name.
func (s *Store) ListEmployees(ctx context.Context, filter operations.EmployeeFilter) ([]hr.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1 = 1`
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	if filter.StaffOnly {
		query += ` AND is_staff = 1`
	}
	query += ` ORDER BY last_name, first_name, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []hr.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func scanEmployee(row scanner) (*hr.Employee, error) {
	var (
		emp                                         hr.Employee
		hireDate, createdAt, prefs, termType        string
		application, classroom, terminated, removal sql.NullString
	)
	err := row.Scan(
		&emp.ID, &emp.FirstName, &emp.LastName, &emp.Position, &emp.Email, &emp.Phone,
		&hireDate, &application, &classroom, &terminated, &removal,
		&emp.PaidSick, &emp.UnpaidSick, &emp.FloatingHoliday,
		&emp.IsActive, &emp.IsPendingTerm, &emp.IsStaff, &emp.IsPartTime, &emp.IsNeighborLink,
		&termType, &emp.TerminationComments, &prefs, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	var d decoder
	emp.HireDate = d.date("hire_date", hireDate)
	emp.ApplicationDate = d.datePtr("application_date", application)
	emp.ClassroomDate = d.datePtr("classroom_date", classroom)
	emp.TerminationDate = d.datePtr("termination_date", terminated)
	emp.RemovalDate = d.datePtr("removal_date", removal)
	emp.CreatedAt = d.time("created_at", createdAt)
	emp.TerminationType = hr.TerminationType(termType)
	if d.err != nil {
		return nil, d.err
	}
	if err := json.Unmarshal([]byte(prefs), &emp.Notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notification preferences of employee %d: %w", emp.ID, err)
	}
	return &emp, nil
}

func encodePreferences(prefs hr.Preferences) (string, error) {
	if prefs == nil {
		return "{}", nil
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("failed to encode notification preferences: %w", err)
	}
	return string(data), nil
}
