/*
Package discipline is the rules engine: history aggregation, the
attendance and safety decisions and the progressive-discipline ladder.

PURPOSE:
  Pure functions over an employee's records. Nothing here touches
  storage; the operations package loads the records, asks the Engine
  for a decision, and persists the outcome inside one transaction.

ROLLING WINDOWS:
  Attendance: records older than AttendanceWindowMonths are ignored,
  and a gap of OccurrenceFreeMonths between occurrences (or between the
  last occurrence and the as-of date) wipes everything before it.
  Safety: records older than SafetyWindowMonths are ignored.

EXCLUSION:
  Totals accept an exclude ID so a caller can ask "what is the total
  without this record" before adding the record's proposed value.
  IDs start at 1, so 0 excludes nothing.

SEE ALSO:
  - attendance.go: Attendance decision table
  - safety.go: Safety removal rules
  - progressive.go: Next-step validator
  - rules/: Tables and thresholds
*/
package discipline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/rules"
)

// Engine evaluates records against one RuleSet.
type Engine struct {
	Rules *rules.RuleSet
}

// New creates an engine. A nil rule set uses the handbook defaults.
func New(rs *rules.RuleSet) *Engine {
	if rs == nil {
		rs = rules.Default()
	}
	return &Engine{Rules: rs}
}

// =============================================================================
// ATTENDANCE HISTORY
// =============================================================================

// historyOrder is the display order of the history buckets.
var historyOrder = []hr.AttendanceReason{
	hr.ReasonUnexcused,
	hr.ReasonUnderFifteenMinutes,
	hr.ReasonOverFifteenMinutes,
	hr.ReasonUnderOneHour,
	hr.ReasonFailureToComplete,
	hr.ReasonMissedSafetyMeeting,
	hr.ReasonNoCallNoShow,
}

// History counts incidents per reason bucket.
type History map[hr.AttendanceReason]int

// Bucket is one row of an ordered history.
type Bucket struct {
	Reason hr.AttendanceReason `json:"reason"`
	Label  string              `json:"label"`
	Count  int                 `json:"count"`
}

// Buckets returns every bucket in display order, zero counts included.
func (h History) Buckets() []Bucket {
	out := make([]Bucket, 0, len(historyOrder))
	for _, reason := range historyOrder {
		out = append(out, Bucket{Reason: reason, Label: reason.String(), Count: h[reason]})
	}
	return out
}

// AttendanceHistory counts active, non-exempt incidents up to asOf.
// Consecutive days carry no weight and late lunches count as "< 15 MIN".
func (e *Engine) AttendanceHistory(records []hr.AttendancePoint, asOf time.Time) History {
	asOf = hr.Truncate(asOf)
	history := make(History, len(historyOrder))
	for _, reason := range historyOrder {
		history[reason] = 0
	}

	for _, r := range e.effectiveAttendance(records, asOf, 0) {
		if r.Exemption.IsExempt() || r.IncidentDate.After(asOf) {
			continue
		}
		switch r.Reason {
		case hr.ReasonConsecutive:
			continue
		case hr.ReasonLateLunch:
			history[hr.ReasonUnderFifteenMinutes]++
		default:
			history[r.Reason]++
		}
	}
	return history
}

// TotalAttendancePoints sums the points of the records in effect at asOf,
// leaving out the record with ID exclude.
func (e *Engine) TotalAttendancePoints(records []hr.AttendancePoint, asOf time.Time, exclude int64) decimal.Decimal {
	total := decimal.Zero
	for _, r := range e.effectiveAttendance(records, hr.Truncate(asOf), exclude) {
		total = total.Add(r.Points)
	}
	return total
}

// effectiveAttendance filters to active records inside the windows.
func (e *Engine) effectiveAttendance(records []hr.AttendancePoint, asOf time.Time, exclude int64) []hr.AttendancePoint {
	var windowStart time.Time
	if months := e.Rules.AttendanceWindowMonths; months > 0 {
		windowStart = asOf.AddDate(0, -months, 0)
	}

	kept := make([]hr.AttendancePoint, 0, len(records))
	for _, r := range records {
		if !r.IsActive || (exclude != 0 && r.ID == exclude) {
			continue
		}
		if !windowStart.IsZero() && !r.IncidentDate.After(windowStart) {
			continue
		}
		kept = append(kept, r)
	}

	months := e.Rules.OccurrenceFreeMonths
	if months <= 0 || len(kept) == 0 {
		return kept
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].IncidentDate.Before(kept[j].IncidentDate) })

	// Exempt records are not occurrences and never anchor a reset.
	var cutoff, last time.Time
	for _, r := range kept {
		if r.Exemption.IsExempt() {
			continue
		}
		if !last.IsZero() && r.IncidentDate.After(last.AddDate(0, months, 0)) {
			cutoff = r.IncidentDate
		}
		last = r.IncidentDate
	}
	if !last.IsZero() && asOf.After(last.AddDate(0, months, 0)) {
		return nil
	}
	if cutoff.IsZero() {
		return kept
	}

	out := kept[:0]
	for _, r := range kept {
		if !r.IncidentDate.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// SAFETY TOTALS
// =============================================================================

// TotalSafetyPoints sums the safety points in effect at asOf.
func (e *Engine) TotalSafetyPoints(records []hr.SafetyPoint, asOf time.Time, exclude int64) int {
	total := 0
	for _, r := range e.effectiveSafety(records, hr.Truncate(asOf), exclude) {
		total += r.Points
	}
	return total
}

// SafetyIncidentCount counts separate safety assessments in effect at asOf.
func (e *Engine) SafetyIncidentCount(records []hr.SafetyPoint, asOf time.Time, exclude int64) int {
	return len(e.effectiveSafety(records, hr.Truncate(asOf), exclude))
}

func (e *Engine) effectiveSafety(records []hr.SafetyPoint, asOf time.Time, exclude int64) []hr.SafetyPoint {
	var windowStart time.Time
	if months := e.Rules.SafetyWindowMonths; months > 0 {
		windowStart = asOf.AddDate(0, -months, 0)
	}

	kept := make([]hr.SafetyPoint, 0, len(records))
	for _, r := range records {
		if !r.IsActive || (exclude != 0 && r.ID == exclude) {
			continue
		}
		if !windowStart.IsZero() && !r.IncidentDate.After(windowStart) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
