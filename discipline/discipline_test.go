package discipline_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/rules"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var today = hr.Date(2024, time.June, 3)

func newEngine() *discipline.Engine {
	return discipline.New(rules.Default())
}

func attendance(id int64, daysAgo int, reason hr.AttendanceReason, exemption hr.Exemption) hr.AttendancePoint {
	points, err := rules.Default().AttendancePointValue(reason, exemption)
	if err != nil {
		panic(err)
	}
	return hr.AttendancePoint{
		ID:           id,
		EmployeeID:   1,
		IncidentDate: today.AddDate(0, 0, -daysAgo),
		IssuedDate:   today.AddDate(0, 0, -daysAgo),
		Reason:       reason,
		Exemption:    exemption,
		Points:       points,
		IsActive:     true,
	}
}

func linkedCounseling(id, attendanceID int64, action hr.ActionType, issued time.Time) hr.Counseling {
	return hr.Counseling{
		ID:           id,
		EmployeeID:   1,
		IssuedDate:   issued,
		ActionType:   action,
		AttendanceID: &attendanceID,
		IsActive:     true,
	}
}

func manualCounseling(id int64, action hr.ActionType) hr.Counseling {
	return hr.Counseling{ID: id, EmployeeID: 1, ActionType: action, IsActive: true, IssuedDate: today}
}

func safety(id int64, daysAgo int, reason hr.SafetyReason) hr.SafetyPoint {
	points, err := rules.Default().SafetyPointValue(reason)
	if err != nil {
		panic(err)
	}
	return hr.SafetyPoint{
		ID:           id,
		EmployeeID:   1,
		IncidentDate: today.AddDate(0, 0, -daysAgo),
		IssuedDate:   today.AddDate(0, 0, -daysAgo),
		Reason:       reason,
		Points:       points,
		IsActive:     true,
	}
}

// =============================================================================
// HISTORY AGGREGATOR
// =============================================================================

func TestAttendanceHistory_CollapsesAndFolds(t *testing.T) {
	// GIVEN: A mix of reasons, an exempt record, an inactive record and a
	// record after the as-of date
	records := []hr.AttendancePoint{
		attendance(1, 30, hr.ReasonUnexcused, ""),
		attendance(2, 29, hr.ReasonConsecutive, ""),
		attendance(3, 20, hr.ReasonLateLunch, ""),
		attendance(4, 19, hr.ReasonUnderFifteenMinutes, ""),
		attendance(5, 10, hr.ReasonNoCallNoShow, hr.ExemptionFMLA),
		attendance(6, 5, hr.ReasonUnexcused, ""),
		attendance(7, 1, hr.ReasonUnderOneHour, ""),
	}
	records[5].IsActive = false

	// WHEN: History is computed as of two days ago
	history := newEngine().AttendanceHistory(records, today.AddDate(0, 0, -2))

	// THEN: Consecutive and exempt are ignored, late lunch joins "< 15 MIN"
	want := discipline.History{
		hr.ReasonUnexcused:           1,
		hr.ReasonUnderFifteenMinutes: 2,
		hr.ReasonOverFifteenMinutes:  0,
		hr.ReasonUnderOneHour:        0,
		hr.ReasonFailureToComplete:   0,
		hr.ReasonMissedSafetyMeeting: 0,
		hr.ReasonNoCallNoShow:        0,
	}
	if diff := cmp.Diff(want, history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	buckets := history.Buckets()
	require.Len(t, buckets, 7)
	assert.Equal(t, hr.ReasonUnexcused, buckets[0].Reason)
	assert.Equal(t, hr.ReasonUnderFifteenMinutes, buckets[1].Reason)
	assert.Equal(t, hr.ReasonNoCallNoShow, buckets[6].Reason)
	assert.Equal(t, "< 15 MIN", buckets[1].Label)
}

func TestTotalAttendancePoints_Exclude(t *testing.T) {
	records := []hr.AttendancePoint{
		attendance(1, 10, hr.ReasonUnderOneHour, ""),
		attendance(2, 9, hr.ReasonUnderFifteenMinutes, ""),
		attendance(3, 8, hr.ReasonNoCallNoShow, ""),
	}
	e := newEngine()

	assert.Equal(t, "6", e.TotalAttendancePoints(records, today, 0).String())
	assert.Equal(t, "2", e.TotalAttendancePoints(records, today, 3).String())
}

func TestTotalAttendancePoints_RollingWindow(t *testing.T) {
	// GIVEN: One record older than twelve months and recent ones close together
	records := []hr.AttendancePoint{
		attendance(1, 400, hr.ReasonNoCallNoShow, ""),
		attendance(2, 150, hr.ReasonUnexcused, ""),
		attendance(3, 60, hr.ReasonUnexcused, ""),
	}

	// THEN: Only the in-window records count
	assert.Equal(t, "2", newEngine().TotalAttendancePoints(records, today, 0).String())
}

func TestTotalAttendancePoints_OccurrenceFreeReset(t *testing.T) {
	// GIVEN: Two points, a seven month gap, then one point
	records := []hr.AttendancePoint{
		attendance(1, 330, hr.ReasonUnexcused, ""),
		attendance(2, 320, hr.ReasonUnexcused, ""),
		attendance(3, 100, hr.ReasonUnexcused, ""),
	}
	e := newEngine()

	// THEN: The gap wipes the earlier points
	assert.Equal(t, "1", e.TotalAttendancePoints(records, today, 0).String())

	// AND: Seven clean months after the last point wipes everything
	later := today.AddDate(0, 5, 0)
	assert.True(t, e.TotalAttendancePoints(records, later, 0).IsZero())
}

func TestTotalAttendancePoints_WindowsDisabled(t *testing.T) {
	rs := rules.Default()
	rs.AttendanceWindowMonths = 0
	rs.OccurrenceFreeMonths = 0
	records := []hr.AttendancePoint{
		attendance(1, 900, hr.ReasonNoCallNoShow, ""),
		attendance(2, 10, hr.ReasonUnexcused, ""),
	}
	assert.Equal(t, "5", discipline.New(rs).TotalAttendancePoints(records, today, 0).String())
}

func TestSafetyTotals_EighteenMonthWindow(t *testing.T) {
	records := []hr.SafetyPoint{
		safety(1, 600, "9"),
		safety(2, 500, "7"),
		safety(3, 30, "0"),
	}
	e := newEngine()
	assert.Equal(t, 4, e.TotalSafetyPoints(records, today, 0))
	assert.Equal(t, 2, e.SafetyIncidentCount(records, today, 0))
	assert.Equal(t, 3, e.TotalSafetyPoints(records, today, 3))
}

// =============================================================================
// ATTENDANCE DECISION
// =============================================================================

func TestDecideAttendance_SeventhPointIssuesWrittenWarning(t *testing.T) {
	// GIVEN: Six prior unexcused points and no counseling
	var records []hr.AttendancePoint
	for i := int64(1); i <= 6; i++ {
		records = append(records, attendance(i, int(40-i), hr.ReasonUnexcused, ""))
	}
	seventh := attendance(7, 0, hr.ReasonUnexcused, "")
	records = append(records, seventh)

	// WHEN: The seventh point is evaluated
	d, err := newEngine().DecideAttendance(discipline.AttendanceInput{
		Records:   records,
		Reason:    seventh.Reason,
		Exemption: seventh.Exemption,
		ExcludeID: seventh.ID,
		Today:     today,
	})

	// THEN: A written warning is issued today
	require.NoError(t, err)
	assert.Equal(t, discipline.LevelWrittenWarning, d.Level)
	assert.Equal(t, "7", d.Total.String())
	require.NotNil(t, d.IssuedOn)
	assert.Equal(t, today, *d.IssuedOn)
	assert.Nil(t, d.PriorWarning)
	assert.Equal(t, hr.ActionFirstWrittenWarning, d.Level.Action())
}

func TestDecideAttendance_TenthPointRemovesWithPriorWarningDate(t *testing.T) {
	// GIVEN: Nine points and a written warning issued three weeks ago
	var records []hr.AttendancePoint
	for i := int64(1); i <= 9; i++ {
		records = append(records, attendance(i, int(60-i), hr.ReasonUnexcused, ""))
	}
	warnedOn := today.AddDate(0, 0, -21)
	counseling := []hr.Counseling{linkedCounseling(1, 7, hr.ActionFirstWrittenWarning, warnedOn)}

	// WHEN: A tenth point is proposed
	d, err := newEngine().DecideAttendance(discipline.AttendanceInput{
		Records:    records,
		Counseling: counseling,
		Reason:     hr.ReasonUnexcused,
		Today:      today,
	})

	// THEN: Removal carries the warning date forward
	require.NoError(t, err)
	assert.Equal(t, discipline.LevelRemoval, d.Level)
	require.NotNil(t, d.PriorWarning)
	assert.Equal(t, warnedOn, *d.PriorWarning)
	assert.Equal(t, today, *d.IssuedOn)
	assert.Equal(t, hr.ActionAdministrativeRemoval, d.Level.Action())
}

func TestDecideAttendance_BackdatedIncidentOutsideWindow(t *testing.T) {
	// GIVEN: Six recent one-point incidents
	var records []hr.AttendancePoint
	for i := int64(1); i <= 6; i++ {
		records = append(records, attendance(i, int(30-i), hr.ReasonUnexcused, ""))
	}

	// WHEN: A seventh incident dated thirteen months back is evaluated
	d, err := newEngine().DecideAttendance(discipline.AttendanceInput{
		Records:      records,
		Reason:       hr.ReasonUnexcused,
		IncidentDate: today.AddDate(0, -13, 0),
		Today:        today,
	})

	// THEN: It falls outside the rolling window and triggers nothing
	require.NoError(t, err)
	assert.Equal(t, discipline.LevelNone, d.Level)
	assert.Equal(t, "6", d.Total.String())
	assert.Nil(t, d.IssuedOn)
}

func TestDecideAttendance_PriorWarningBelowRemoval(t *testing.T) {
	records := []hr.AttendancePoint{attendance(1, 5, hr.ReasonNoCallNoShow, ""), attendance(2, 4, hr.ReasonNoCallNoShow, "")}
	warnedOn := today.AddDate(0, 0, -4)
	d, err := newEngine().DecideAttendance(discipline.AttendanceInput{
		Records:    records,
		Counseling: []hr.Counseling{linkedCounseling(1, 2, hr.ActionFirstWrittenWarning, warnedOn)},
		Reason:     hr.ReasonUnexcused,
		Today:      today,
	})
	require.NoError(t, err)
	assert.Equal(t, discipline.LevelNone, d.Level)
	assert.Equal(t, warnedOn, *d.PriorWarning)
	assert.Nil(t, d.IssuedOn)
}

func TestDecideAttendance_ExemptProposalAddsNothing(t *testing.T) {
	var records []hr.AttendancePoint
	for i := int64(1); i <= 6; i++ {
		records = append(records, attendance(i, int(20-i), hr.ReasonUnexcused, ""))
	}
	d, err := newEngine().DecideAttendance(discipline.AttendanceInput{
		Records:   records,
		Reason:    hr.ReasonNoCallNoShow,
		Exemption: hr.ExemptionPaidSick,
		Today:     today,
	})
	require.NoError(t, err)
	assert.Equal(t, discipline.LevelNone, d.Level)
	assert.True(t, d.Point.IsZero())
}

func TestDecideAttendance_MonotonicInTotal(t *testing.T) {
	// GIVEN: Growing histories with and without a prior written warning
	// THEN: The level never decreases as the total grows
	e := newEngine()
	for _, withWarning := range []bool{false, true} {
		var counseling []hr.Counseling
		if withWarning {
			counseling = []hr.Counseling{linkedCounseling(1, 1, hr.ActionFirstWrittenWarning, today)}
		}
		previous := discipline.LevelNone
		var records []hr.AttendancePoint
		for i := int64(1); i <= 24; i++ {
			d, err := e.DecideAttendance(discipline.AttendanceInput{
				Records:    records,
				Counseling: counseling,
				Reason:     hr.ReasonUnderFifteenMinutes,
				Today:      today,
			})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, int(d.Level), int(previous), "total %s", d.Total)
			previous = d.Level
			records = append(records, attendance(i, 24-int(i), hr.ReasonUnderFifteenMinutes, ""))
		}
	}
}

func TestDecideAttendance_UnknownReasonIsFatal(t *testing.T) {
	_, err := newEngine().DecideAttendance(discipline.AttendanceInput{Reason: "x", Today: today})
	assert.ErrorIs(t, err, hr.ErrUnknownCode)
}

func TestReferenceRecord(t *testing.T) {
	records := []hr.AttendancePoint{
		attendance(1, 9, hr.ReasonUnexcused, ""),
		attendance(2, 8, hr.ReasonUnexcused, ""),
		attendance(3, 7, hr.ReasonUnexcused, hr.ExemptionPaidSick),
		attendance(4, 6, hr.ReasonConsecutive, ""),
	}
	counseling := []hr.Counseling{linkedCounseling(1, 2, hr.ActionFirstWrittenWarning, today)}

	ref := discipline.ReferenceRecord(records, counseling)
	require.NotNil(t, ref)
	assert.Equal(t, int64(1), ref.ID)

	counseling = append(counseling, linkedCounseling(2, 1, hr.ActionAdministrativeRemoval, today))
	assert.Nil(t, discipline.ReferenceRecord(records, counseling))
}

func TestUnjustifiedCounseling(t *testing.T) {
	e := newEngine()
	counseling := []hr.Counseling{
		linkedCounseling(1, 1, hr.ActionFirstWrittenWarning, today),
		linkedCounseling(2, 2, hr.ActionAdministrativeRemoval, today),
		manualCounseling(3, hr.ActionFirstWrittenWarning),
	}

	assert.Empty(t, e.UnjustifiedCounseling(decimal.NewFromInt(10), counseling))

	below10 := e.UnjustifiedCounseling(decimal.RequireFromString("9.5"), counseling)
	require.Len(t, below10, 1)
	assert.Equal(t, int64(2), below10[0].ID)

	below7 := e.UnjustifiedCounseling(decimal.RequireFromString("6.5"), counseling)
	assert.Len(t, below7, 2)
}

// =============================================================================
// SAFETY DECISION
// =============================================================================

func TestDecideSafety_IntroductoryThresholds(t *testing.T) {
	e := newEngine()
	hired := today.AddDate(0, 0, -30)

	// GIVEN: Exactly 3 points in one incident
	one := []hr.SafetyPoint{safety(1, 1, "7")}
	d := e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: one, Today: today})
	assert.True(t, d.Introductory)
	assert.False(t, d.Remove, "3 points, 1 incident never removes")

	// WHEN: A fourth point arrives on the same incident
	four := []hr.SafetyPoint{safety(1, 1, "8")}
	d = e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: four, Today: today})
	assert.True(t, d.Remove)
	assert.Equal(t, rules.SafetyIntroductoryPoints, d.Variant)

	// WHEN: A second separate incident arrives
	two := []hr.SafetyPoint{safety(1, 2, "0"), safety(2, 1, "0")}
	d = e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: two, Today: today})
	assert.True(t, d.Remove)
	assert.Equal(t, rules.SafetyIntroductoryIncidents, d.Variant)
}

func TestDecideSafety_PointRuleTakesPrecedence(t *testing.T) {
	// GIVEN: A new hire with 4 points across 2 incidents
	records := []hr.SafetyPoint{safety(1, 2, "3"), safety(2, 0, "4")}
	d := newEngine().DecideSafety(discipline.SafetyInput{HireDate: today, Records: records, Today: today})

	// THEN: Removal fires through the point rule, checked first
	assert.True(t, d.Remove)
	assert.Equal(t, rules.SafetyIntroductoryPoints, d.Variant)
	assert.Equal(t, 4, d.Total)
	assert.Equal(t, 2, d.Incidents)
}

func TestDecideSafety_StandardThresholds(t *testing.T) {
	e := newEngine()
	hired := today.AddDate(-2, 0, 0)

	d := e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: []hr.SafetyPoint{safety(1, 3, "3"), safety(2, 1, "7")}, Today: today})
	assert.False(t, d.Introductory)
	assert.False(t, d.Remove, "5 points over 2 incidents is within limits")

	d = e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: []hr.SafetyPoint{safety(1, 1, "9")}, Today: today})
	assert.True(t, d.Remove)
	assert.Equal(t, rules.SafetyStandardPoints, d.Variant)
	assert.Contains(t, e.Conduct(d), "total of 6 points")

	three := []hr.SafetyPoint{safety(1, 9, "0"), safety(2, 5, "0"), safety(3, 1, "0")}
	d = e.DecideSafety(discipline.SafetyInput{HireDate: hired, Records: three, Today: today})
	assert.True(t, d.Remove)
	assert.Equal(t, rules.SafetyStandardIncidents, d.Variant)
}

func TestIsIntroductory_Boundary(t *testing.T) {
	e := newEngine()
	assert.True(t, e.IsIntroductory(today.AddDate(0, 0, -89), today))
	assert.False(t, e.IsIntroductory(today.AddDate(0, 0, -90), today))
}

// =============================================================================
// PROGRESSIVE LADDER
// =============================================================================

func TestNextStep(t *testing.T) {
	cases := []struct {
		name    string
		history []hr.ActionType
		want    hr.ActionType
	}{
		{"no history", nil, hr.ActionVerbalCounseling},
		{"verbal counseling only", []hr.ActionType{"0"}, hr.ActionVerbalWarning},
		{"contiguous to 2", []hr.ActionType{"0", "1", "2"}, hr.ActionFinalWrittenWarning},
		{"gap at 1", []hr.ActionType{"0", "2"}, hr.ActionFirstWrittenWarning},
		{"only 2", []hr.ActionType{"2"}, hr.ActionVerbalWarning},
		{"gaps at 0 and 2", []hr.ActionType{"1", "3"}, hr.ActionFirstWrittenWarning},
		{"full ladder", []hr.ActionType{"0", "1", "2", "3", "4"}, hr.ActionAdministrativeRemoval},
		{"removal ignored", []hr.ActionType{"0", "6", "5"}, hr.ActionVerbalWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var counseling []hr.Counseling
			for i, a := range tc.history {
				counseling = append(counseling, manualCounseling(int64(i+1), a))
			}
			ladder := discipline.BuildLadder(counseling)
			assert.Equal(t, tc.want, ladder.NextStep())
			assert.Equal(t, ladder.NextStep(), discipline.BuildLadder(counseling).NextStep(), "idempotent")
		})
	}
}

func TestBuildLadder_IgnoresAttendanceLinkedAndInactive(t *testing.T) {
	inactive := manualCounseling(2, hr.ActionVerbalWarning)
	inactive.IsActive = false
	counseling := []hr.Counseling{
		linkedCounseling(1, 5, hr.ActionFirstWrittenWarning, today),
		inactive,
	}
	assert.Equal(t, hr.ActionVerbalCounseling, discipline.BuildLadder(counseling).NextStep())
}

func TestValidateStep(t *testing.T) {
	history := []hr.Counseling{manualCounseling(1, "0")}

	err := discipline.ValidateStep(discipline.StepInput{Proposed: "2", Counseling: history})
	require.Error(t, err)
	assert.True(t, hr.IsClientError(err))
	assert.Contains(t, err.Error(), "The next step in progressive discipline would be Verbal Warning.")

	assert.NoError(t, discipline.ValidateStep(discipline.StepInput{Proposed: "1", Counseling: history}))
	assert.NoError(t, discipline.ValidateStep(discipline.StepInput{Proposed: "2", Counseling: history, Override: true}))
	assert.NoError(t, discipline.ValidateStep(discipline.StepInput{Proposed: "5", Counseling: history}))
	assert.NoError(t, discipline.ValidateStep(discipline.StepInput{Proposed: "6", Counseling: history}))
}

func TestValidateStep_EditingCountsItself(t *testing.T) {
	// GIVEN: A verbal counseling and the verbal warning being edited
	editing := manualCounseling(2, "1")
	history := []hr.Counseling{manualCounseling(1, "0"), editing}

	// THEN: Moving it to the step after itself is valid
	in := discipline.StepInput{Proposed: "2", Counseling: history, Editing: &editing}
	assert.NoError(t, discipline.ValidateStep(in))

	// THEN: Re-saving it at its own level is checked against a ladder that
	// still holds it
	in.Proposed = "1"
	err := discipline.ValidateStep(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would be First Written Warning Notice")

	// WHEN: An override is given
	in.Override = true

	// THEN: The same action is accepted
	assert.NoError(t, discipline.ValidateStep(in))
}

func TestValidateStep_PriorOverrideAppliesToSameActionOnly(t *testing.T) {
	by := int64(900)
	editing := manualCounseling(2, "3")
	editing.OverrideBy = &by
	history := []hr.Counseling{manualCounseling(1, "0"), editing}

	in := discipline.StepInput{Proposed: "3", Counseling: history, Editing: &editing}
	assert.NoError(t, discipline.ValidateStep(in))

	in.Proposed = "4"
	assert.Error(t, discipline.ValidateStep(in))
}
