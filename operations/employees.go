package operations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// NewEmployeeInput describes a hire.
type NewEmployeeInput struct {
	ID              int64
	FirstName       string
	LastName        string
	Position        string
	Email           string
	Phone           string
	HireDate        time.Time
	ApplicationDate *time.Time
	ClassroomDate   *time.Time
	IsStaff         bool
	IsPartTime      bool
	IsNeighborLink  bool
}

// EmployeeUpdate changes the fields that are set.
type EmployeeUpdate struct {
	FirstName       *string
	LastName        *string
	Position        *string
	Email           *string
	Phone           *string
	HireDate        *time.Time
	IsStaff         *bool
	IsPartTime      *bool
	IsNeighborLink  *bool
	PaidSick        *int
	UnpaidSick      *int
	FloatingHoliday *int
}

// TerminationInput ends an employment.
type TerminationInput struct {
	Type     hr.TerminationType
	Comments string
}

// CreateEmployee hires an employee with the default sick-day balances.
func (s *Service) CreateEmployee(ctx context.Context, actor int64, in NewEmployeeInput) (*hr.Employee, error) {
	verr := &hr.ValidationError{}
	if in.ID <= 0 {
		verr.Add("id", "Employee ID must be a positive number")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.Add("first_name", "This field is required.")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.Add("last_name", "This field is required.")
	}
	if in.HireDate.IsZero() {
		verr.Add("hire_date", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var created hr.Employee
	err := s.run(ctx, func(tx Store, out *outbox) error {
		existing, err := tx.GetEmployee(ctx, in.ID)
		if err != nil && !hr.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return hr.Invalid("id", "Employee ID %d already exists", in.ID)
		}

		emp := hr.NewEmployee(in.ID, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), in.HireDate)
		emp.Position = in.Position
		emp.Email = in.Email
		emp.Phone = in.Phone
		emp.ApplicationDate = in.ApplicationDate
		emp.ClassroomDate = in.ClassroomDate
		emp.IsStaff = in.IsStaff
		emp.IsPartTime = in.IsPartTime
		emp.IsNeighborLink = in.IsNeighborLink
		emp.CreatedAt = s.clock.Now()
		if err := tx.CreateEmployee(ctx, &emp); err != nil {
			return err
		}

		out.add(notificationEvent(actor, &emp, hr.NotifyNewEmployee,
			fmt.Sprintf("New Employee added: %s", emp.FullName())))
		created = emp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetEmployee returns one employee.
func (s *Service) GetEmployee(ctx context.Context, id int64) (*hr.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// ListEmployees returns employees matching filter.
func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]hr.Employee, error) {
	return s.store.ListEmployees(ctx, filter)
}

// UpdateEmployee edits profile fields and balances.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, in EmployeeUpdate) (*hr.Employee, error) {
	verr := &hr.ValidationError{}
	balances := []struct {
		field string
		value *int
	}{
		{"paid_sick", in.PaidSick},
		{"unpaid_sick", in.UnpaidSick},
		{"floating_holiday", in.FloatingHoliday},
	}
	for _, b := range balances {
		if b.value != nil && *b.value < 0 {
			verr.Add(b.field, "Ensure this value is greater than or equal to 0.")
		}
	}
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		verr.Add("first_name", "This field is required.")
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) == "" {
		verr.Add("last_name", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var updated hr.Employee
	err := s.run(ctx, func(tx Store, _ *outbox) error {
		emp, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		setIf(&emp.FirstName, in.FirstName)
		setIf(&emp.LastName, in.LastName)
		setIf(&emp.Position, in.Position)
		setIf(&emp.Email, in.Email)
		setIf(&emp.Phone, in.Phone)
		setIf(&emp.IsStaff, in.IsStaff)
		setIf(&emp.IsPartTime, in.IsPartTime)
		setIf(&emp.IsNeighborLink, in.IsNeighborLink)
		setIf(&emp.PaidSick, in.PaidSick)
		setIf(&emp.UnpaidSick, in.UnpaidSick)
		setIf(&emp.FloatingHoliday, in.FloatingHoliday)
		if in.HireDate != nil {
			emp.HireDate = hr.Truncate(*in.HireDate)
		}
		if err := tx.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
		updated = *emp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetNotificationPreferences records explicit opt-ins and opt-outs.
func (s *Service) SetNotificationPreferences(ctx context.Context, id int64, prefs hr.Preferences) error {
	for t := range prefs {
		if !t.Valid() {
			return hr.Invalid("notifications", "unknown notification type %q", string(t))
		}
	}
	return s.run(ctx, func(tx Store, _ *outbox) error {
		emp, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		merged := make(hr.Preferences, len(emp.Notifications)+len(prefs))
		for t, v := range emp.Notifications {
			merged[t] = v
		}
		for t, v := range prefs {
			merged[t] = v
		}
		emp.Notifications = merged
		return tx.UpdateEmployee(ctx, *emp)
	})
}

// TerminateEmployee ends the employment today.
func (s *Service) TerminateEmployee(ctx context.Context, actor, id int64, in TerminationInput) error {
	verr := &hr.ValidationError{}
	if !in.Type.Valid() {
		verr.Add("termination_type", "Select a valid choice. %q is not one of the available choices.", string(in.Type))
	}
	if strings.TrimSpace(in.Comments) == "" {
		verr.Add("termination_comments", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	return s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, id)
		if err != nil {
			return err
		}
		emp.TerminationType = in.Type
		emp.TerminationComments = in.Comments
		emp.TerminationDate = ptr(s.clock.Today())
		emp.IsActive = false
		emp.IsPendingTerm = false
		if err := tx.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
		s.log.Info("employee terminated", "employee_id", emp.ID, "type", in.Type.String())
		out.add(notificationEvent(actor, emp, hr.NotifyTermination,
			fmt.Sprintf("%s has been terminated (%s)", emp.FullName(), in.Type)))
		return nil
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
