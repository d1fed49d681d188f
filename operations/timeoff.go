package operations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/warp/division-ops/hr"
)

// =============================================================================
// TIME OFF
// =============================================================================

// Request caps per calendar date, counted among employees sharing the
// requester's NeighborLink flag.
const (
	TimeOffLeadDays      = 7
	WeekdayCap           = 10
	WeekendCap           = 4
	NeighborLinkDailyCap = 2
)

// TimeOffInput is a request for one or more days off.
type TimeOffInput struct {
	Dates    []time.Time
	Type     hr.TimeOffType
	Comments string
}

// dailyCap returns how many requests may fall on date.
func dailyCap(date time.Time, neighborLink bool) int {
	switch {
	case neighborLink:
		return NeighborLinkDailyCap
	case hr.IsWeekend(date):
		return WeekendCap
	default:
		return WeekdayCap
	}
}

func joinDates(dates []time.Time) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format("01/02/2006"))
	}
	return strings.Join(parts, ", ")
}

// RequestTimeOff creates a pending request. Every date must be at least a
// week out, not already requested by the employee, and under its daily
// cap. A floating-holiday request takes one day from the balance.
func (s *Service) RequestTimeOff(ctx context.Context, actor, employeeID int64, in TimeOffInput) (*hr.TimeOffRequest, error) {
	verr := &hr.ValidationError{}
	if len(in.Dates) == 0 {
		verr.Add("dates", "This field is required.")
	}
	if !in.Type.Valid() {
		verr.Add("request_type", "Select a valid choice. %q is not one of the available choices.", string(in.Type))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// De-duplicate and order the requested dates.
	seen := make(map[time.Time]bool, len(in.Dates))
	dates := make([]time.Time, 0, len(in.Dates))
	for _, d := range in.Dates {
		d = hr.Truncate(d)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var created hr.TimeOffRequest
	err := s.run(ctx, func(tx Store, out *outbox) error {
		emp, err := activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}

		today := s.clock.Today()
		for _, d := range dates {
			if hr.DaysBetween(today, d) < TimeOffLeadDays {
				return hr.Invalid("dates", "The dates selected must be %d days in the future", TimeOffLeadDays)
			}
		}

		taken, err := tx.ActiveDaysOff(ctx, emp.ID)
		if err != nil {
			return err
		}
		already := make(map[time.Time]bool, len(taken))
		for _, d := range taken {
			already[hr.Truncate(d.Date)] = true
		}
		var dup []time.Time
		for _, d := range dates {
			if already[d] {
				dup = append(dup, d)
			}
		}
		if len(dup) > 0 {
			return hr.Invalid("dates", "The following days have already been requested off: %s", joinDates(dup))
		}

		if in.Type == hr.TimeOffFloatingHoliday && emp.FloatingHoliday < 1 {
			return hr.Invalid("request_type", "No more floating holidays")
		}

		var full []time.Time
		for _, d := range dates {
			n, err := tx.CountDaysOff(ctx, d, emp.IsNeighborLink)
			if err != nil {
				return err
			}
			if n >= dailyCap(d, emp.IsNeighborLink) {
				full = append(full, d)
			}
		}
		if len(full) > 0 {
			return hr.Invalid("dates", "The following dates have reached their request limit: %s. Please see a Manager with any questions", joinDates(full))
		}

		req := hr.TimeOffRequest{
			EmployeeID:  emp.ID,
			RequestType: in.Type,
			Status:      hr.TimeOffPending,
			Comments:    in.Comments,
			IsActive:    true,
			CreatedAt:   s.clock.Now(),
		}
		for _, d := range dates {
			req.Days = append(req.Days, hr.DayOff{EmployeeID: emp.ID, Date: d, IsActive: true})
		}
		if err := tx.CreateTimeOff(ctx, &req); err != nil {
			return err
		}
		if in.Type == hr.TimeOffFloatingHoliday {
			emp.FloatingHoliday--
			if err := tx.UpdateEmployee(ctx, *emp); err != nil {
				return err
			}
		}

		out.add(notificationEvent(actor, emp, hr.NotifyNewTimeOff,
			fmt.Sprintf("%s has requested %s on %s", emp.FullName(), in.Type, joinDates(dates))))
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SetTimeOffStatus approves, denies or reopens a request. Denying a
// floating holiday gives the day back; leaving the denied state takes it
// again.
func (s *Service) SetTimeOffStatus(ctx context.Context, actor, id int64, status hr.TimeOffStatus) (*hr.TimeOffRequest, error) {
	if !status.Valid() {
		return nil, hr.Invalid("status", "Select a valid choice. %q is not one of the available choices.", string(status))
	}

	var updated hr.TimeOffRequest
	err := s.run(ctx, func(tx Store, _ *outbox) error {
		req, err := tx.GetTimeOff(ctx, id)
		if err != nil {
			return err
		}
		if !req.IsActive {
			return hr.NotFound("time_off", id)
		}

		if req.RequestType == hr.TimeOffFloatingHoliday && req.Status != status {
			delta := 0
			switch {
			case status == hr.TimeOffDenied:
				delta = +1
			case req.Status == hr.TimeOffDenied:
				delta = -1
			}
			if delta != 0 {
				emp, err := tx.GetEmployee(ctx, req.EmployeeID)
				if err != nil {
					return err
				}
				if delta < 0 && emp.FloatingHoliday < 1 {
					return hr.Invalid("status", "No more floating holidays")
				}
				emp.FloatingHoliday += delta
				if err := tx.UpdateEmployee(ctx, *emp); err != nil {
					return err
				}
			}
		}

		req.Status = status
		req.ReviewedBy = ptr(actor)
		if err := tx.UpdateTimeOff(ctx, *req); err != nil {
			return err
		}
		s.log.Info("time off reviewed", "request_id", req.ID, "status", status.String(), "by", actor)
		updated = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveTimeOff withdraws a pending request and frees its days.
func (s *Service) RemoveTimeOff(ctx context.Context, id int64) error {
	return s.run(ctx, func(tx Store, _ *outbox) error {
		req, err := tx.GetTimeOff(ctx, id)
		if err != nil {
			return err
		}
		if !req.IsActive {
			return hr.NotFound("time_off", id)
		}
		if req.Status != hr.TimeOffPending {
			return hr.Invalid("status", "Only pending requests can be removed")
		}

		req.IsActive = false
		for i := range req.Days {
			req.Days[i].IsActive = false
		}
		if err := tx.UpdateTimeOff(ctx, *req); err != nil {
			return err
		}
		if req.RequestType == hr.TimeOffFloatingHoliday {
			emp, err := tx.GetEmployee(ctx, req.EmployeeID)
			if err != nil {
				return err
			}
			emp.FloatingHoliday++
			return tx.UpdateEmployee(ctx, *emp)
		}
		return nil
	})
}

// GetTimeOff returns one request with its days.
func (s *Service) GetTimeOff(ctx context.Context, id int64) (*hr.TimeOffRequest, error) {
	return s.store.GetTimeOff(ctx, id)
}

// ListTimeOff returns every request of an employee.
func (s *Service) ListTimeOff(ctx context.Context, employeeID int64) ([]hr.TimeOffRequest, error) {
	return s.store.ListTimeOff(ctx, employeeID)
}
