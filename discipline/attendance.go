package discipline

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// ATTENDANCE DECISION
// =============================================================================

// Level is the outcome of the attendance decision table.
type Level int

const (
	LevelNone Level = iota
	LevelWrittenWarning
	LevelRemoval
)

func (l Level) String() string {
	switch l {
	case LevelWrittenWarning:
		return "written_warning"
	case LevelRemoval:
		return "removal"
	}
	return "none"
}

// Action returns the counseling action created for the level.
func (l Level) Action() hr.ActionType {
	switch l {
	case LevelWrittenWarning:
		return hr.ActionFirstWrittenWarning
	case LevelRemoval:
		return hr.ActionAdministrativeRemoval
	}
	return ""
}

// AttendanceInput is a proposed incident evaluated against the employee's records.
type AttendanceInput struct {
	Records    []hr.AttendancePoint
	Counseling []hr.Counseling
	Reason     hr.AttendanceReason
	Exemption  hr.Exemption
	// IncidentDate places the proposed incident in the windows. Zero means today.
	IncidentDate time.Time
	// ExcludeID is the record being assigned or edited; its stored state
	// is replaced by the proposed one.
	ExcludeID int64
	Today     time.Time
}

// AttendanceDecision is the result of the decision table.
type AttendanceDecision struct {
	Level        Level           `json:"level"`
	Point        decimal.Decimal `json:"point"`
	Total        decimal.Decimal `json:"total"`
	PriorWarning *time.Time      `json:"prior_warning,omitempty"`
	IssuedOn     *time.Time      `json:"issued_on,omitempty"`
}

// DecideAttendance runs the decision table. First match wins:
//
//	prior written warning, total >= removal     -> removal
//	no prior written warning, total >= warning  -> written warning
//	prior written warning                       -> none, prior date reported
//	otherwise                                   -> none
func (e *Engine) DecideAttendance(in AttendanceInput) (AttendanceDecision, error) {
	point, err := e.Rules.AttendancePointValue(in.Reason, in.Exemption)
	if err != nil {
		return AttendanceDecision{}, err
	}

	today := hr.Truncate(in.Today)
	total := e.TotalAttendancePoints(withProposed(in, point, today), today, 0)
	prior := PriorWrittenWarning(in.Counseling)

	decision := AttendanceDecision{Point: point, Total: total}
	switch {
	case prior != nil && total.GreaterThanOrEqual(e.Rules.RemovalAt):
		decision.Level = LevelRemoval
		decision.PriorWarning = prior
		decision.IssuedOn = &today
	case prior == nil && total.GreaterThanOrEqual(e.Rules.WrittenWarningAt):
		decision.Level = LevelWrittenWarning
		decision.IssuedOn = &today
	case prior != nil:
		decision.PriorWarning = prior
	}
	return decision, nil
}

// withProposed returns the records with the proposed incident in place of
// the excluded one, so the windows apply to it like to any stored record.
func withProposed(in AttendanceInput, point decimal.Decimal, today time.Time) []hr.AttendancePoint {
	incident := hr.Truncate(in.IncidentDate)
	if incident.IsZero() {
		incident = today
	}
	out := make([]hr.AttendancePoint, 0, len(in.Records)+1)
	for _, r := range in.Records {
		if in.ExcludeID != 0 && r.ID == in.ExcludeID {
			continue
		}
		out = append(out, r)
	}
	return append(out, hr.AttendancePoint{
		ID:           in.ExcludeID,
		IncidentDate: incident,
		Reason:       in.Reason,
		Exemption:    in.Exemption,
		Points:       point,
		IsActive:     true,
	})
}

// PriorWrittenWarning returns the issued date of the latest active
// attendance-linked written warning, or nil.
func PriorWrittenWarning(counseling []hr.Counseling) *time.Time {
	var latest *hr.Counseling
	for i := range counseling {
		c := &counseling[i]
		if !c.IsActive || !c.IsAttendanceLinked() || c.ActionType != hr.ActionFirstWrittenWarning {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			latest = c
		}
	}
	if latest == nil {
		return nil
	}
	issued := latest.IssuedDate
	return &issued
}

// ReferenceRecord picks the record an engine-generated counseling links to:
// the most recent active record carrying points that no counseling links to.
func ReferenceRecord(records []hr.AttendancePoint, counseling []hr.Counseling) *hr.AttendancePoint {
	linked := make(map[int64]bool, len(counseling))
	for _, c := range counseling {
		if c.AttendanceID != nil {
			linked[*c.AttendanceID] = true
		}
	}

	var ref *hr.AttendancePoint
	for i := range records {
		r := &records[i]
		if !r.IsActive || r.Exemption.IsExempt() || !r.Points.IsPositive() || linked[r.ID] {
			continue
		}
		if ref == nil || r.ID > ref.ID {
			ref = r
		}
	}
	return ref
}

// UnjustifiedCounseling returns the active attendance-linked counseling a
// total no longer supports: written warnings below the warning threshold
// and removals below the removal threshold.
func (e *Engine) UnjustifiedCounseling(total decimal.Decimal, counseling []hr.Counseling) []hr.Counseling {
	var out []hr.Counseling
	for _, c := range counseling {
		if !c.IsActive || !c.IsAttendanceLinked() {
			continue
		}
		switch {
		case c.ActionType == hr.ActionFirstWrittenWarning && total.LessThan(e.Rules.WrittenWarningAt):
			out = append(out, c)
		case c.ActionType == hr.ActionAdministrativeRemoval && total.LessThan(e.Rules.RemovalAt):
			out = append(out, c)
		}
	}
	return out
}
