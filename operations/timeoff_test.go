package operations_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

const vacation hr.TimeOffType = "1"

var (
	nextMonday   = hr.Date(2024, time.June, 10)
	nextSaturday = hr.Date(2024, time.June, 15)
)

func (f *fixture) requestOff(id int64, typ hr.TimeOffType, dates ...time.Time) (*hr.TimeOffRequest, error) {
	return f.svc.RequestTimeOff(context.Background(), id, id, operations.TimeOffInput{Dates: dates, Type: typ})
}

func (f *fixture) floatingHolidays(t *testing.T, id int64, n int) {
	t.Helper()
	_, err := f.svc.UpdateEmployee(context.Background(), id, operations.EmployeeUpdate{FloatingHoliday: &n})
	require.NoError(t, err)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestRequestTimeOff_CreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	f.veteran(t)

	req, err := f.requestOff(driver, vacation, nextMonday.AddDate(0, 0, 1), nextMonday, nextMonday)

	require.NoError(t, err)
	assert.Equal(t, hr.TimeOffPending, req.Status)
	require.Len(t, req.Days, 2, "duplicate dates collapse")
	assert.True(t, req.Days[0].Date.Equal(nextMonday), "dates are ordered")
	assert.Contains(t, f.published(), hr.NotifyNewTimeOff)
}

func TestRequestTimeOff_NotifiesTheRequester(t *testing.T) {
	f := newFixture(t)

	// WHEN: the only subscriber requests their own time off
	_, err := f.requestOff(supervisor, vacation, nextMonday)

	// THEN: the request notification still reaches them
	require.NoError(t, err)
	require.Equal(t, []hr.NotificationType{hr.NotifyNewTimeOff}, f.published())
	assert.Equal(t, supervisor, f.queue.Published()[0].Recipients[0].EmployeeID)
}

func TestRequestTimeOff_NeedsLeadTime(t *testing.T) {
	f := newFixture(t)
	f.veteran(t)

	_, err := f.requestOff(driver, vacation, today.AddDate(0, 0, 6))
	verr := requireValidation(t, err, "dates")
	assert.Contains(t, verr.Error(), "7 days in the future")

	_, err = f.requestOff(driver, vacation, today.AddDate(0, 0, 7))
	assert.NoError(t, err)
}

func TestRequestTimeOff_RejectsDaysAlreadyRequested(t *testing.T) {
	f := newFixture(t)
	f.veteran(t)
	_, err := f.requestOff(driver, vacation, nextMonday)
	require.NoError(t, err)

	_, err = f.requestOff(driver, vacation, nextMonday, nextMonday.AddDate(0, 0, 1))

	verr := requireValidation(t, err, "dates")
	assert.Contains(t, verr.Error(), "06/10/2024")
}

func TestRequestTimeOff_WeekendCap(t *testing.T) {
	f := newFixture(t)

	// GIVEN: four drivers off on Saturday
	for id := int64(1); id <= 4; id++ {
		f.hire(t, id, hr.Date(2019, time.April, 1))
		_, err := f.requestOff(id, vacation, nextSaturday)
		require.NoError(t, err)
	}

	// WHEN: a fifth asks for the same day
	f.hire(t, 5, hr.Date(2019, time.April, 1))
	_, err := f.requestOff(5, vacation, nextSaturday)

	// THEN: the day is full
	verr := requireValidation(t, err, "dates")
	assert.Contains(t, verr.Error(), "request limit")

	// A weekday still has room.
	_, err = f.requestOff(5, vacation, nextMonday)
	assert.NoError(t, err)
}

func TestRequestTimeOff_DeniedRequestsFreeTheCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var first *hr.TimeOffRequest
	for id := int64(1); id <= 4; id++ {
		f.hire(t, id, hr.Date(2019, time.April, 1))
		req, err := f.requestOff(id, vacation, nextSaturday)
		require.NoError(t, err)
		if first == nil {
			first = req
		}
	}
	f.hire(t, 5, hr.Date(2019, time.April, 1))

	_, err := f.svc.SetTimeOffStatus(ctx, supervisor, first.ID, hr.TimeOffDenied)
	require.NoError(t, err)

	_, err = f.requestOff(5, vacation, nextSaturday)
	assert.NoError(t, err)
}

func TestRequestTimeOff_NeighborLinkPool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for id := int64(1); id <= 3; id++ {
		f.hire(t, id, hr.Date(2019, time.April, 1))
		yes := true
		_, err := f.svc.UpdateEmployee(ctx, id, operations.EmployeeUpdate{IsNeighborLink: &yes})
		require.NoError(t, err)
	}

	_, err := f.requestOff(1, vacation, nextMonday)
	require.NoError(t, err)
	_, err = f.requestOff(2, vacation, nextMonday)
	require.NoError(t, err)
	_, err = f.requestOff(3, vacation, nextMonday)
	requireValidation(t, err, "dates")

	// The regular pool is separate.
	f.hire(t, 4, hr.Date(2019, time.April, 1))
	_, err = f.requestOff(4, vacation, nextMonday)
	assert.NoError(t, err)
}

// =============================================================================
// FLOATING HOLIDAYS
// =============================================================================

func TestFloatingHoliday_BalanceFollowsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	// GIVEN: no floating holidays
	_, err := f.requestOff(driver, hr.TimeOffFloatingHoliday, nextMonday)
	requireValidation(t, err, "request_type")

	// GIVEN: one floating holiday, spent at request time
	f.floatingHolidays(t, driver, 1)
	req, err := f.requestOff(driver, hr.TimeOffFloatingHoliday, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 0, f.employee(t, driver).FloatingHoliday)

	// WHEN: denied, the day comes back
	denied, err := f.svc.SetTimeOffStatus(ctx, supervisor, req.ID, hr.TimeOffDenied)
	require.NoError(t, err)
	require.NotNil(t, denied.ReviewedBy)
	assert.Equal(t, supervisor, *denied.ReviewedBy)
	assert.Equal(t, 1, f.employee(t, driver).FloatingHoliday)

	// WHEN: approved after all, it is taken again
	_, err = f.svc.SetTimeOffStatus(ctx, supervisor, req.ID, hr.TimeOffApproved)
	require.NoError(t, err)
	assert.Equal(t, 0, f.employee(t, driver).FloatingHoliday)

	// Approving twice does not debit twice.
	_, err = f.svc.SetTimeOffStatus(ctx, supervisor, req.ID, hr.TimeOffApproved)
	require.NoError(t, err)
	assert.Equal(t, 0, f.employee(t, driver).FloatingHoliday)
}

func TestFloatingHoliday_LeavingDeniedNeedsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	f.floatingHolidays(t, driver, 1)
	req, err := f.requestOff(driver, hr.TimeOffFloatingHoliday, nextMonday)
	require.NoError(t, err)
	_, err = f.svc.SetTimeOffStatus(ctx, supervisor, req.ID, hr.TimeOffDenied)
	require.NoError(t, err)

	// GIVEN: the returned day is spent elsewhere
	_, err = f.requestOff(driver, hr.TimeOffFloatingHoliday, nextMonday.AddDate(0, 0, 1))
	require.NoError(t, err)

	// WHEN: the denied request is reopened
	_, err = f.svc.SetTimeOffStatus(ctx, supervisor, req.ID, hr.TimeOffPending)

	// THEN: there is nothing left to take
	requireValidation(t, err, "status")
}

func TestRemoveTimeOff_OnlyPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	f.floatingHolidays(t, driver, 2)

	pending, err := f.requestOff(driver, hr.TimeOffFloatingHoliday, nextMonday)
	require.NoError(t, err)
	approved, err := f.requestOff(driver, hr.TimeOffFloatingHoliday, nextSaturday)
	require.NoError(t, err)
	_, err = f.svc.SetTimeOffStatus(ctx, supervisor, approved.ID, hr.TimeOffApproved)
	require.NoError(t, err)
	assert.Equal(t, 0, f.employee(t, driver).FloatingHoliday)

	// An approved request stays.
	err = f.svc.RemoveTimeOff(ctx, approved.ID)
	requireValidation(t, err, "status")

	// A pending one is withdrawn, its day credited and its date freed.
	require.NoError(t, f.svc.RemoveTimeOff(ctx, pending.ID))
	assert.Equal(t, 1, f.employee(t, driver).FloatingHoliday)
	_, err = f.requestOff(driver, vacation, nextMonday)
	assert.NoError(t, err)

	// Removing it twice reports it missing.
	err = f.svc.RemoveTimeOff(ctx, pending.ID)
	assert.True(t, hr.IsNotFound(err))
}
