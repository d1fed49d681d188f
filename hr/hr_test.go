package hr_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/division-ops/hr"
)

func TestActionType_Level(t *testing.T) {
	assert.Equal(t, 0, hr.ActionVerbalCounseling.Level())
	assert.Equal(t, 4, hr.ActionLastAndFinal.Level())
	assert.Equal(t, 6, hr.ActionAdministrativeRemoval.Level())
	assert.Equal(t, -1, hr.ActionType("9").Level())
	assert.Equal(t, hr.ActionFinalWrittenWarning, hr.ActionForLevel(3))
	assert.True(t, hr.ActionDischarge.EndsEmployment())
	assert.False(t, hr.ActionLastAndFinal.EndsEmployment())
}

func TestEmployee_AdjustSick(t *testing.T) {
	emp := hr.NewEmployee(100, "Pat", "Doe", hr.Date(2024, time.March, 1))
	assert.Equal(t, hr.DefaultPaidSick, emp.PaidSick)
	assert.Equal(t, hr.DefaultUnpaidSick, emp.UnpaidSick)

	emp.AdjustSick(hr.ExemptionPaidSick, 1)
	emp.AdjustSick(hr.ExemptionUnpaidSick, -1)
	emp.AdjustSick(hr.ExemptionFMLA, -1)

	assert.Equal(t, 1, emp.PaidSick)
	assert.Equal(t, 1, emp.UnpaidSick)
	assert.Equal(t, 1, emp.SickBalance(hr.ExemptionPaidSick))
	assert.Equal(t, 0, emp.SickBalance(hr.ExemptionFMLA))
}

func TestPreferences_DefaultEnabled(t *testing.T) {
	var prefs hr.Preferences
	assert.True(t, prefs.Wants(hr.NotifyWritten))

	prefs = hr.Preferences{hr.NotifyWritten: false}
	assert.False(t, prefs.Wants(hr.NotifyWritten))
	assert.True(t, prefs.Wants(hr.NotifyRemoval))
}

func TestDaysBetween(t *testing.T) {
	a := hr.Date(2024, time.January, 30)
	b := time.Date(2024, time.February, 2, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, 3, hr.DaysBetween(a, b))
	assert.Equal(t, -3, hr.DaysBetween(b, a))
}

func TestErrors_Classification(t *testing.T) {
	verr := hr.Invalid("exemption", "%s does not have Paid Sick days available", "Pat Doe")
	wrapped := fmt.Errorf("assign attendance: %w", verr)

	assert.True(t, hr.IsClientError(wrapped))
	assert.False(t, hr.IsNotFound(wrapped))

	var target *hr.ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "exemption", target.Fields[0].Field)

	nf := fmt.Errorf("load: %w", hr.NotFound("employee", 7))
	assert.True(t, hr.IsNotFound(nf))
	assert.EqualError(t, nf, "load: employee 7 not found")

	empty := &hr.ValidationError{}
	assert.NoError(t, empty.OrNil())
}
