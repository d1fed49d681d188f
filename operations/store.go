/*
store.go - Persistence interfaces used by the operations service

PURPOSE:
  Defines what the service needs from storage, split by record family.
  store/sqlite implements all of them in one type.

TRANSACTIONS:
  WithTx runs fn against a Store bound to a single transaction. Every
  read and write made through that Store belongs to the transaction; an
  error returned by fn rolls everything back. Each multi-step cascade in
  the service runs inside exactly one WithTx call.

ABSENT RELATIONS:
  GetHold, CounselingForAttendance, CounselingForSafetyPoint and
  GetDocument return (nil, nil) when nothing is there. Lookups by primary
  key return an hr.NotFoundError instead.

SEE ALSO:
  - store/sqlite/sqlite.go: Implementation
  - service.go: Consumer
*/
package operations

import (
	"context"
	"time"

	"github.com/warp/division-ops/hr"
)

// EmployeeFilter narrows ListEmployees.
type EmployeeFilter struct {
	ActiveOnly bool
	StaffOnly  bool
}

// EmployeeStore persists employees.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, emp *hr.Employee) error
	GetEmployee(ctx context.Context, id int64) (*hr.Employee, error)
	UpdateEmployee(ctx context.Context, emp hr.Employee) error
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]hr.Employee, error)
}

// PointStore persists attendance and safety points.
type PointStore interface {
	CreateAttendance(ctx context.Context, rec *hr.AttendancePoint) error
	GetAttendance(ctx context.Context, id int64) (*hr.AttendancePoint, error)
	UpdateAttendance(ctx context.Context, rec hr.AttendancePoint) error
	ListAttendance(ctx context.Context, employeeID int64) ([]hr.AttendancePoint, error)

	CreateSafetyPoint(ctx context.Context, rec *hr.SafetyPoint) error
	GetSafetyPoint(ctx context.Context, id int64) (*hr.SafetyPoint, error)
	UpdateSafetyPoint(ctx context.Context, rec hr.SafetyPoint) error
	ListSafetyPoints(ctx context.Context, employeeID int64) ([]hr.SafetyPoint, error)
}

// CounselingStore persists counseling records.
type CounselingStore interface {
	CreateCounseling(ctx context.Context, c *hr.Counseling) error
	GetCounseling(ctx context.Context, id int64) (*hr.Counseling, error)
	UpdateCounseling(ctx context.Context, c hr.Counseling) error
	DeleteCounseling(ctx context.Context, id int64) error
	ListCounseling(ctx context.Context, employeeID int64) ([]hr.Counseling, error)
	CounselingForAttendance(ctx context.Context, attendanceID int64) (*hr.Counseling, error)
	CounselingForSafetyPoint(ctx context.Context, safetyPointID int64) (*hr.Counseling, error)
}

// HoldStore persists the single hold of an employee.
type HoldStore interface {
	GetHold(ctx context.Context, employeeID int64) (*hr.Hold, error)
	CreateHold(ctx context.Context, h *hr.Hold) error
	UpdateHold(ctx context.Context, h hr.Hold) error
	DeleteHold(ctx context.Context, employeeID int64) error
}

// TimeOffStore persists time-off requests and their days.
type TimeOffStore interface {
	CreateTimeOff(ctx context.Context, req *hr.TimeOffRequest) error
	GetTimeOff(ctx context.Context, id int64) (*hr.TimeOffRequest, error)
	UpdateTimeOff(ctx context.Context, req hr.TimeOffRequest) error
	ListTimeOff(ctx context.Context, employeeID int64) ([]hr.TimeOffRequest, error)
	// ActiveDaysOff returns the employee's active days off, ignoring
	// denied requests.
	ActiveDaysOff(ctx context.Context, employeeID int64) ([]hr.DayOff, error)
	// CountDaysOff counts active days off on date among employees with the
	// given NeighborLink flag, ignoring denied requests.
	CountDaysOff(ctx context.Context, date time.Time, neighborLink bool) (int, error)
}

// SettlementStore persists settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, s *hr.Settlement) error
	GetSettlement(ctx context.Context, id int64) (*hr.Settlement, error)
	UpdateSettlement(ctx context.Context, s hr.Settlement) error
	ListSettlements(ctx context.Context, employeeID int64) ([]hr.Settlement, error)
}

// DocumentStore persists generated documents. Saving or deleting a
// document also flips the has_document flag of the referenced record.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc hr.Document) error
	GetDocument(ctx context.Context, ref hr.RecordRef) (*hr.Document, error)
	DeleteDocument(ctx context.Context, ref hr.RecordRef) error
}

// Store is the full persistence surface of the service.
type Store interface {
	EmployeeStore
	PointStore
	CounselingStore
	HoldStore
	TimeOffStore
	SettlementStore
	DocumentStore

	WithTx(ctx context.Context, fn func(tx Store) error) error
}
