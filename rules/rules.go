/*
Package rules holds the point tables and thresholds of the discipline engine.

PURPOSE:
  One versioned RuleSet replaces the lookup literals that would otherwise
  be repeated wherever points are computed. The RuleSet is built once
  (Default or Load) and injected into the discipline engine and the
  operations service.

TABLES:
  Attendance reason -> points (fractional, decimal)
  Safety reason     -> points (whole)

THRESHOLDS:
  WrittenWarningAt  attendance total that issues a written warning (>=)
  RemovalAt         attendance total that removes from service (>=, only
                    once a written warning exists)
  IntroductoryDays  tenure (days since hire) still counted introductory
  Safety            removal thresholds for introductory and standard
                    employees (strictly greater than)

WINDOWS:
  AttendanceWindowMonths  trailing window for attendance totals
  OccurrenceFreeMonths    a gap this long between incidents wipes prior points
  SafetyWindowMonths      trailing window for safety totals
  A zero window disables the filter.

SEE ALSO:
  - load.go: YAML rule files
  - text.go: Canned counseling text
  - discipline/: Consumers
*/
package rules

import (
	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/hr"
)

// DefaultVersion identifies the handbook tables compiled into the binary.
const DefaultVersion = "handbook-2021"

// SafetyThresholds are "strictly greater than" limits for one tenure class.
type SafetyThresholds struct {
	MaxPoints    int `json:"max_points"`
	MaxIncidents int `json:"max_incidents"`
}

// RuleSet is the complete, versioned rule configuration.
type RuleSet struct {
	Version string `json:"version"`

	AttendancePoints map[hr.AttendanceReason]decimal.Decimal `json:"attendance_points"`
	SafetyPoints     map[hr.SafetyReason]int                 `json:"safety_points"`

	WrittenWarningAt decimal.Decimal `json:"written_warning_at"`
	RemovalAt        decimal.Decimal `json:"removal_at"`

	IntroductoryDays   int              `json:"introductory_days"`
	IntroductorySafety SafetyThresholds `json:"introductory_safety"`
	StandardSafety     SafetyThresholds `json:"standard_safety"`

	AttendanceWindowMonths int `json:"attendance_window_months"`
	OccurrenceFreeMonths   int `json:"occurrence_free_months"`
	SafetyWindowMonths     int `json:"safety_window_months"`

	Text Text `json:"-"`
}

// Default returns the handbook rule set.
func Default() *RuleSet {
	return &RuleSet{
		Version: DefaultVersion,
		AttendancePoints: map[hr.AttendanceReason]decimal.Decimal{
			hr.ReasonUnexcused:           decimal.NewFromInt(1),
			hr.ReasonConsecutive:         decimal.Zero,
			hr.ReasonUnderOneHour:        decimal.RequireFromString("1.5"),
			hr.ReasonNoCallNoShow:        decimal.NewFromInt(4),
			hr.ReasonFailureToComplete:   decimal.NewFromInt(1),
			hr.ReasonMissedSafetyMeeting: decimal.NewFromInt(1),
			hr.ReasonUnderFifteenMinutes: decimal.RequireFromString("0.5"),
			hr.ReasonOverFifteenMinutes:  decimal.NewFromInt(1),
			hr.ReasonLateLunch:           decimal.RequireFromString("0.5"),
		},
		SafetyPoints: map[hr.SafetyReason]int{
			"0": 1, "1": 1, "2": 1,
			"3": 2, "4": 2, "5": 2, "6": 2,
			"7": 3,
			"8": 4,
			"9": 6, "10": 6, "11": 6, "12": 6, "13": 6, "14": 6,
		},
		WrittenWarningAt:       decimal.NewFromInt(7),
		RemovalAt:              decimal.NewFromInt(10),
		IntroductoryDays:       89,
		IntroductorySafety:     SafetyThresholds{MaxPoints: 3, MaxIncidents: 1},
		StandardSafety:         SafetyThresholds{MaxPoints: 5, MaxIncidents: 2},
		AttendanceWindowMonths: 12,
		OccurrenceFreeMonths:   6,
		SafetyWindowMonths:     18,
		Text:                   DefaultText("the company"),
	}
}

// AttendancePointValue returns the points of an incident. Exempt incidents
// are worth zero; an unknown reason is an integrity error.
func (rs *RuleSet) AttendancePointValue(reason hr.AttendanceReason, exemption hr.Exemption) (decimal.Decimal, error) {
	value, ok := rs.AttendancePoints[reason]
	if !ok {
		return decimal.Zero, &hr.UnknownCodeError{Table: "attendance reason", Code: string(reason)}
	}
	if exemption.IsExempt() {
		return decimal.Zero, nil
	}
	return value, nil
}

// SafetyPointValue returns the points of a safety reason.
func (rs *RuleSet) SafetyPointValue(reason hr.SafetyReason) (int, error) {
	value, ok := rs.SafetyPoints[reason]
	if !ok {
		return 0, &hr.UnknownCodeError{Table: "safety reason", Code: string(reason)}
	}
	return value, nil
}

// SafetyThresholdsFor returns the thresholds of the given tenure class.
func (rs *RuleSet) SafetyThresholdsFor(introductory bool) SafetyThresholds {
	if introductory {
		return rs.IntroductorySafety
	}
	return rs.StandardSafety
}

// WithCompany returns a copy whose canned text names the company.
func (rs *RuleSet) WithCompany(company string) *RuleSet {
	cp := *rs
	cp.Text = DefaultText(company)
	return &cp
}
