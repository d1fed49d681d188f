/*
dto.go - Request bodies for the HR API

PURPOSE:
  Defines the JSON bodies clients send. Responses reuse the hr and
  operations types directly; their json tags are the wire contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - ErrorResponse: The single error envelope

DATES:
  Calendar dates travel as YYYY-MM-DD strings, instants (hearing and
  training times) as RFC 3339.

VALIDATION:
  Shape checks (required, formats, lengths) are validator/v10 struct tags
  checked by bind(). Business rules stay in the operations package; both
  kinds of rejection reach the client in the same ErrorResponse.Fields.

SEE ALSO:
  - handlers.go: Uses these types
  - operations/: Input types these convert to
*/
package api

import (
	"time"

	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployeeRequest hires an employee.
type CreateEmployeeRequest struct {
	ID              int64  `json:"id" validate:"required,gt=0"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Position        string `json:"position" validate:"max=100"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"max=20"`
	HireDate        string `json:"hire_date" validate:"required,datetime=2006-01-02"`
	ApplicationDate string `json:"application_date" validate:"omitempty,datetime=2006-01-02"`
	ClassroomDate   string `json:"classroom_date" validate:"omitempty,datetime=2006-01-02"`
	IsStaff         bool   `json:"is_staff"`
	IsPartTime      bool   `json:"is_part_time"`
	IsNeighborLink  bool   `json:"is_neighbor_link"`
}

func (r CreateEmployeeRequest) input() operations.NewEmployeeInput {
	hired, _ := hr.ParseDate(r.HireDate)
	return operations.NewEmployeeInput{
		ID:              r.ID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Position:        r.Position,
		Email:           r.Email,
		Phone:           r.Phone,
		HireDate:        hired,
		ApplicationDate: optionalDate(r.ApplicationDate),
		ClassroomDate:   optionalDate(r.ClassroomDate),
		IsStaff:         r.IsStaff,
		IsPartTime:      r.IsPartTime,
		IsNeighborLink:  r.IsNeighborLink,
	}
}

// UpdateEmployeeRequest changes the fields present in the body.
type UpdateEmployeeRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Position        *string `json:"position" validate:"omitempty,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	HireDate        *string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	IsStaff         *bool   `json:"is_staff"`
	IsPartTime      *bool   `json:"is_part_time"`
	IsNeighborLink  *bool   `json:"is_neighbor_link"`
	PaidSick        *int    `json:"paid_sick" validate:"omitempty,gte=0"`
	UnpaidSick      *int    `json:"unpaid_sick" validate:"omitempty,gte=0"`
	FloatingHoliday *int    `json:"floating_holiday" validate:"omitempty,gte=0"`
}

func (r UpdateEmployeeRequest) input() operations.EmployeeUpdate {
	var hired *time.Time
	if r.HireDate != nil {
		hired = optionalDate(*r.HireDate)
	}
	return operations.EmployeeUpdate{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Position:        r.Position,
		Email:           r.Email,
		Phone:           r.Phone,
		HireDate:        hired,
		IsStaff:         r.IsStaff,
		IsPartTime:      r.IsPartTime,
		IsNeighborLink:  r.IsNeighborLink,
		PaidSick:        r.PaidSick,
		UnpaidSick:      r.UnpaidSick,
		FloatingHoliday: r.FloatingHoliday,
	}
}

// TerminateRequest ends an employment.
type TerminateRequest struct {
	Type     hr.TerminationType `json:"termination_type" validate:"required"`
	Comments string             `json:"termination_comments" validate:"required"`
}

// =============================================================================
// POINTS AND COUNSELING
// =============================================================================

// AttendanceRequest assigns or edits an attendance point.
type AttendanceRequest struct {
	IncidentDate string              `json:"incident_date" validate:"required,datetime=2006-01-02"`
	IssuedDate   string              `json:"issued_date" validate:"omitempty,datetime=2006-01-02"`
	Reason       hr.AttendanceReason `json:"reason" validate:"required"`
	Exemption    hr.Exemption        `json:"exemption"`
}

func (r AttendanceRequest) input() operations.AttendanceInput {
	incident, _ := hr.ParseDate(r.IncidentDate)
	return operations.AttendanceInput{
		IncidentDate: incident,
		IssuedDate:   dateOrZero(r.IssuedDate),
		Reason:       r.Reason,
		Exemption:    r.Exemption,
	}
}

// SafetyRequest assigns or edits a safety point.
type SafetyRequest struct {
	IncidentDate string          `json:"incident_date" validate:"required,datetime=2006-01-02"`
	IssuedDate   string          `json:"issued_date" validate:"omitempty,datetime=2006-01-02"`
	Reason       hr.SafetyReason `json:"reason" validate:"required"`
	Details      string          `json:"details"`
}

func (r SafetyRequest) input() operations.SafetyInput {
	incident, _ := hr.ParseDate(r.IncidentDate)
	return operations.SafetyInput{
		IncidentDate: incident,
		IssuedDate:   dateOrZero(r.IssuedDate),
		Reason:       r.Reason,
		Details:      r.Details,
	}
}

// CounselingRequest assigns or edits a manual counseling.
type CounselingRequest struct {
	IssuedDate   string        `json:"issued_date" validate:"required,datetime=2006-01-02"`
	ActionType   hr.ActionType `json:"action_type" validate:"required"`
	HearingAt    string        `json:"hearing_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Conduct      string        `json:"conduct" validate:"required"`
	Conversation string        `json:"conversation" validate:"required"`
	Override     bool          `json:"override"`
}

func (r CounselingRequest) input() operations.CounselingInput {
	issued, _ := hr.ParseDate(r.IssuedDate)
	return operations.CounselingInput{
		IssuedDate:   issued,
		ActionType:   r.ActionType,
		HearingAt:    optionalInstant(r.HearingAt),
		Conduct:      r.Conduct,
		Conversation: r.Conversation,
		Override:     r.Override,
	}
}

// SignRequest records the employee's signature.
type SignRequest struct {
	Refused  bool   `json:"refused"`
	Comments string `json:"comments" validate:"max=1000"`
}

func (r SignRequest) input() operations.SignInput {
	return operations.SignInput{Refused: r.Refused, Comments: r.Comments}
}

// =============================================================================
// HOLDS, SETTLEMENTS, TIME OFF
// =============================================================================

// HoldRequest places or edits a hold.
type HoldRequest struct {
	Reason      string `json:"reason" validate:"required"`
	OtherReason string `json:"other_reason" validate:"max=30"`
	ReleaseDate string `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	TrainingAt  string `json:"training_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r HoldRequest) input() operations.HoldInput {
	return operations.HoldInput{
		Reason:      r.Reason,
		OtherReason: r.OtherReason,
		ReleaseDate: optionalDate(r.ReleaseDate),
		TrainingAt:  optionalInstant(r.TrainingAt),
	}
}

// SettlementRequest creates or edits a settlement.
type SettlementRequest struct {
	Details string `json:"details" validate:"required"`
}

// TimeOffRequest asks for days off.
type TimeOffRequest struct {
	Dates    []string       `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	Type     hr.TimeOffType `json:"request_type" validate:"required"`
	Comments string         `json:"comments" validate:"max=500"`
}

func (r TimeOffRequest) input() operations.TimeOffInput {
	dates := make([]time.Time, 0, len(r.Dates))
	for _, s := range r.Dates {
		if d, err := hr.ParseDate(s); err == nil {
			dates = append(dates, d)
		}
	}
	return operations.TimeOffInput{Dates: dates, Type: r.Type, Comments: r.Comments}
}

// TimeOffStatusRequest approves, denies or reopens a request.
type TimeOffStatusRequest struct {
	Status hr.TimeOffStatus `json:"status" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details string          `json:"details,omitempty"`
	Fields  []hr.FieldError `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// Inputs are validated before conversion, so parse failures cannot occur.

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := hr.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func dateOrZero(s string) time.Time {
	if d := optionalDate(s); d != nil {
		return *d
	}
	return time.Time{}
}

func optionalInstant(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
