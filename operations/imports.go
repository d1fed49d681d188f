package operations

import (
	"context"
	"io"
	"time"

	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/importer"
)

// =============================================================================
// BULK IMPORTS
// =============================================================================

// ImportReport summarises a bulk import.
type ImportReport struct {
	Imported int                 `json:"imported"`
	Rejected []importer.RowError `json:"rejected"`
}

func (r *ImportReport) reject(row int, err error) {
	r.Rejected = append(r.Rejected, importer.RowError{Row: row, Reason: err.Error()})
}

// applyRow records the outcome of one row. Client errors and unknown
// employees reject the row; anything else aborts the import.
func (r *ImportReport) applyRow(row int, err error) error {
	switch {
	case err == nil:
		r.Imported++
		return nil
	case hr.IsClientError(err), hr.IsNotFound(err):
		r.reject(row, err)
		return nil
	default:
		return err
	}
}

func actorOr(assignedBy, actor int64) int64 {
	if assignedBy != 0 {
		return assignedBy
	}
	return actor
}

// ImportAttendance assigns every row of an attendance workbook. Each row
// commits on its own, so a rejected row leaves the others in place.
func (s *Service) ImportAttendance(ctx context.Context, actor int64, r io.Reader) (*ImportReport, error) {
	rows, rejected, err := importer.ReadAttendance(r)
	if err != nil {
		return nil, err
	}
	report := &ImportReport{Rejected: rejected}
	for _, row := range rows {
		_, err := s.AssignAttendance(ctx, actorOr(row.AssignedBy, actor), row.EmployeeID, AttendanceInput{
			IncidentDate: row.IncidentDate,
			Reason:       row.Reason,
			Exemption:    row.Exemption,
		})
		if err := report.applyRow(row.Row, err); err != nil {
			return report, err
		}
	}
	s.log.Info("attendance import finished", "imported", report.Imported, "rejected", len(report.Rejected))
	return report, nil
}

// ImportSafetyPoints assigns every row of a safety workbook.
func (s *Service) ImportSafetyPoints(ctx context.Context, actor int64, r io.Reader) (*ImportReport, error) {
	rows, rejected, err := importer.ReadSafetyPoints(r)
	if err != nil {
		return nil, err
	}
	report := &ImportReport{Rejected: rejected}
	for _, row := range rows {
		issued := row.IssuedDate
		if issued.IsZero() {
			issued = s.clock.Today()
		}
		_, err := s.AssignSafetyPoint(ctx, actorOr(row.AssignedBy, actor), row.EmployeeID, SafetyInput{
			IncidentDate: row.IncidentDate,
			IssuedDate:   issued,
			Reason:       row.Reason,
		})
		if err := report.applyRow(row.Row, err); err != nil {
			return report, err
		}
	}
	s.log.Info("safety import finished", "imported", report.Imported, "rejected", len(report.Rejected))
	return report, nil
}

// ImportDrivers hires every driver of a roster workbook or zip.
func (s *Service) ImportDrivers(ctx context.Context, actor int64, r io.Reader) (*ImportReport, error) {
	rows, rejected, err := importer.ReadDrivers(r)
	if err != nil {
		return nil, err
	}
	report := &ImportReport{Rejected: rejected}
	for _, row := range rows {
		_, err := s.CreateEmployee(ctx, actor, NewEmployeeInput{
			ID:              row.EmployeeID,
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			Position:        row.Position,
			Phone:           row.PrimaryPhone,
			HireDate:        row.HireDate,
			ApplicationDate: optionalDate(row.ApplicationDate),
			ClassroomDate:   optionalDate(row.ClassroomDate),
			IsPartTime:      row.IsPartTime,
		})
		if err := report.applyRow(row.Row, err); err != nil {
			return report, err
		}
	}
	s.log.Info("driver import finished", "imported", report.Imported, "rejected", len(report.Rejected))
	return report, nil
}

func optionalDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return ptr(hr.Truncate(t))
}
