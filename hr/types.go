/*
types.go - Records owned by the Employee aggregate

PURPOSE:
  Plain data records for employees and everything hung off them:
  attendance points, safety points, counseling, holds, time off and
  settlements. The records carry no behaviour beyond small helpers;
  rules live in the rules and discipline packages and the workflows in
  operations.

OPTIONAL REFERENCES:
  One-to-one relations that are usually absent are pointers
  (Counseling.AttendanceID, Counseling.SafetyPointID, the employee's hold).
  A nil pointer is the normal "not there" branch, never an error.

DATES:
  Calendar dates are time.Time values truncated to midnight UTC
  (see time.go). Timestamps (CreatedAt, hearing and training times) keep
  their time of day.

SEE ALSO:
  - codes.go: Code sets
  - operations/store.go: Persistence interface
*/
package hr

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the aggregate root. ID is the company employee number.
type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	HireDate        time.Time  `json:"hire_date"`
	ApplicationDate *time.Time `json:"application_date,omitempty"`
	ClassroomDate   *time.Time `json:"classroom_date,omitempty"`
	TerminationDate *time.Time `json:"termination_date,omitempty"`
	RemovalDate     *time.Time `json:"removal_date,omitempty"`

	PaidSick        int `json:"paid_sick"`
	UnpaidSick      int `json:"unpaid_sick"`
	FloatingHoliday int `json:"floating_holiday"`

	IsActive       bool `json:"is_active"`
	IsPendingTerm  bool `json:"is_pending_term"`
	IsStaff        bool `json:"is_staff"`
	IsPartTime     bool `json:"is_part_time"`
	IsNeighborLink bool `json:"is_neighbor_link"`

	TerminationType     TerminationType `json:"termination_type,omitempty"`
	TerminationComments string          `json:"termination_comments,omitempty"`

	Notifications Preferences `json:"notifications"`

	CreatedAt time.Time `json:"created_at"`
}

// Default sick-day balances for new hires.
const (
	DefaultPaidSick   = 0
	DefaultUnpaidSick = 2
)

// NewEmployee returns an active employee with the default balances.
func NewEmployee(id int64, first, last string, hired time.Time) Employee {
	return Employee{
		ID:         id,
		FirstName:  first,
		LastName:   last,
		HireDate:   Truncate(hired),
		PaidSick:   DefaultPaidSick,
		UnpaidSick: DefaultUnpaidSick,
		IsActive:   true,
	}
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// SickBalance returns the balance an exemption draws from.
func (e Employee) SickBalance(ex Exemption) int {
	switch ex {
	case ExemptionPaidSick:
		return e.PaidSick
	case ExemptionUnpaidSick:
		return e.UnpaidSick
	}
	return 0
}

// AdjustSick moves the balance an exemption draws from by delta.
// Exemptions that do not consume sick days are ignored.
func (e *Employee) AdjustSick(ex Exemption, delta int) {
	switch ex {
	case ExemptionPaidSick:
		e.PaidSick += delta
	case ExemptionUnpaidSick:
		e.UnpaidSick += delta
	}
}

// =============================================================================
// SIGNATURE STATE
// =============================================================================

// Signature tracks whether the document for a record was signed.
type Signature struct {
	Signed   bool   `json:"signed"`
	Refused  bool   `json:"refused"`
	Comments string `json:"comments,omitempty"`
	Uploaded bool   `json:"uploaded"`
}

// =============================================================================
// POINTS
// =============================================================================

// AttendancePoint is a single attendance incident.
type AttendancePoint struct {
	ID           int64            `json:"id"`
	EmployeeID   int64            `json:"employee_id"`
	AssignedBy   int64            `json:"assigned_by"`
	IncidentDate time.Time        `json:"incident_date"`
	IssuedDate   time.Time        `json:"issued_date"`
	Reason       AttendanceReason `json:"reason"`
	Exemption    Exemption        `json:"exemption"`
	Points       decimal.Decimal  `json:"points"`
	IsActive     bool             `json:"is_active"`
	HasDocument  bool             `json:"has_document"`
	Signature    Signature        `json:"signature"`
	EditedBy     *int64           `json:"edited_by,omitempty"`
	EditedAt     *time.Time       `json:"edited_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// SafetyPoint is a single safety assessment.
type SafetyPoint struct {
	ID           int64        `json:"id"`
	EmployeeID   int64        `json:"employee_id"`
	AssignedBy   int64        `json:"assigned_by"`
	IncidentDate time.Time    `json:"incident_date"`
	IssuedDate   time.Time    `json:"issued_date"`
	Reason       SafetyReason `json:"reason"`
	Points       int          `json:"points"`
	Details      string       `json:"details,omitempty"`
	IsActive     bool         `json:"is_active"`
	HasDocument  bool         `json:"has_document"`
	Signature    Signature    `json:"signature"`
	EditedBy     *int64       `json:"edited_by,omitempty"`
	EditedAt     *time.Time   `json:"edited_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// =============================================================================
// COUNSELING
// =============================================================================

// Counseling is a disciplinary record. AttendanceID or SafetyPointID is
// set when the record was produced by the discipline engine.
type Counseling struct {
	ID            int64      `json:"id"`
	EmployeeID    int64      `json:"employee_id"`
	AssignedBy    int64      `json:"assigned_by"`
	IssuedDate    time.Time  `json:"issued_date"`
	ActionType    ActionType `json:"action_type"`
	HearingAt     *time.Time `json:"hearing_at,omitempty"`
	Conduct       string     `json:"conduct"`
	Conversation  string     `json:"conversation"`
	AttendanceID  *int64     `json:"attendance_id,omitempty"`
	SafetyPointID *int64     `json:"safety_point_id,omitempty"`
	OverrideBy    *int64     `json:"override_by,omitempty"`
	IsActive      bool       `json:"is_active"`
	HasDocument   bool       `json:"has_document"`
	Signature     Signature  `json:"signature"`
	EditedBy      *int64     `json:"edited_by,omitempty"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsAttendanceLinked reports whether the attendance engine created the record.
func (c Counseling) IsAttendanceLinked() bool { return c.AttendanceID != nil }

// IsSafetyLinked reports whether the safety engine created the record.
func (c Counseling) IsSafetyLinked() bool { return c.SafetyPointID != nil }

// =============================================================================
// HOLD
// =============================================================================

// Hold locks an employee out of normal scheduling. At most one per employee.
type Hold struct {
	ID          int64      `json:"id"`
	EmployeeID  int64      `json:"employee_id"`
	AssignedBy  int64      `json:"assigned_by"`
	Reason      string     `json:"reason"`
	OtherReason string     `json:"other_reason,omitempty"`
	HoldDate    time.Time  `json:"hold_date"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	TrainingAt  *time.Time `json:"training_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DisplayReason returns the free-text reason for "Other" holds.
func (h Hold) DisplayReason() string {
	if h.Reason == HoldOther && h.OtherReason != "" {
		return h.OtherReason
	}
	return h.Reason
}

// =============================================================================
// TIME OFF
// =============================================================================

// TimeOffRequest owns one DayOff entry per requested date.
type TimeOffRequest struct {
	ID          int64         `json:"id"`
	EmployeeID  int64         `json:"employee_id"`
	RequestType TimeOffType   `json:"request_type"`
	Status      TimeOffStatus `json:"status"`
	Comments    string        `json:"comments,omitempty"`
	ReviewedBy  *int64        `json:"reviewed_by,omitempty"`
	IsActive    bool          `json:"is_active"`
	Days        []DayOff      `json:"days"`
	CreatedAt   time.Time     `json:"created_at"`
}

// DayOff is one requested calendar date.
type DayOff struct {
	ID         int64     `json:"id"`
	RequestID  int64     `json:"request_id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	IsActive   bool      `json:"is_active"`
}

// Dates returns the requested dates in request order.
func (r TimeOffRequest) Dates() []time.Time {
	out := make([]time.Time, 0, len(r.Days))
	for _, d := range r.Days {
		out = append(out, d.Date)
	}
	return out
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// Settlement resolves a pending-termination hold with negotiated terms.
type Settlement struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employee_id"`
	AssignedBy  int64     `json:"assigned_by"`
	IssuedDate  time.Time `json:"issued_date"`
	Details     string    `json:"details"`
	IsActive    bool      `json:"is_active"`
	HasDocument bool      `json:"has_document"`
	Uploaded    bool      `json:"uploaded"`
	CreatedAt   time.Time `json:"created_at"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// RecordKind names a document-bearing record type.
type RecordKind string

const (
	KindAttendance  RecordKind = "attendance"
	KindSafetyPoint RecordKind = "safety_point"
	KindCounseling  RecordKind = "counseling"
	KindSettlement  RecordKind = "settlement"
)

// RecordRef points at a document-bearing record.
type RecordRef struct {
	Kind RecordKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Document is a generated document attached to a record.
type Document struct {
	Key         string    `json:"key"`
	Ref         RecordRef `json:"ref"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
