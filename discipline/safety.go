package discipline

import (
	"time"

	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/rules"
)

// =============================================================================
// SAFETY DECISION
// =============================================================================

// SafetyInput is the employee's safety history after a safety point save.
type SafetyInput struct {
	HireDate time.Time
	Records  []hr.SafetyPoint
	Today    time.Time
}

// SafetyDecision reports whether the employee must be removed from service.
type SafetyDecision struct {
	Remove       bool                `json:"remove"`
	Variant      rules.SafetyVariant `json:"variant"`
	Introductory bool                `json:"introductory"`
	Total        int                 `json:"total"`
	Incidents    int                 `json:"incidents"`
}

// IsIntroductory reports whether the employee is still in the introductory period.
func (e *Engine) IsIntroductory(hireDate, today time.Time) bool {
	return hr.DaysBetween(hireDate, today) <= e.Rules.IntroductoryDays
}

// DecideSafety applies the removal thresholds. The incident-count rule is
// only consulted when the point-total rule does not fire.
func (e *Engine) DecideSafety(in SafetyInput) SafetyDecision {
	today := hr.Truncate(in.Today)
	d := SafetyDecision{
		Introductory: e.IsIntroductory(in.HireDate, today),
		Total:        e.TotalSafetyPoints(in.Records, today, 0),
		Incidents:    e.SafetyIncidentCount(in.Records, today, 0),
	}

	limits := e.Rules.SafetyThresholdsFor(d.Introductory)
	switch {
	case d.Total > limits.MaxPoints:
		d.Remove = true
		d.Variant = rules.SafetyStandardPoints
		if d.Introductory {
			d.Variant = rules.SafetyIntroductoryPoints
		}
	case d.Incidents > limits.MaxIncidents:
		d.Remove = true
		d.Variant = rules.SafetyStandardIncidents
		if d.Introductory {
			d.Variant = rules.SafetyIntroductoryIncidents
		}
	}
	return d
}

// Conduct returns the canned conduct text for a removal decision.
func (e *Engine) Conduct(d SafetyDecision) string {
	return e.Rules.Text.SafetyConduct(d.Variant, d.Total)
}
