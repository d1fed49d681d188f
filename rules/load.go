/*
load.go - YAML rule files

PURPOSE:
  Lets HR revise point tables and thresholds without a code change. A rule
  file overlays the compiled-in handbook defaults: any key left out keeps
  its default value. The result is validated before use.

YAML SCHEMA:
  version: handbook-2024
  attendance_points:        # reason code -> decimal string
    "0": "1"
    "2": "1.5"
  safety_points:            # reason code -> whole points
    "7": 3
  written_warning_at: "7"
  removal_at: "10"
  introductory_days: 89
  introductory_safety: {max_points: 3, max_incidents: 1}
  standard_safety: {max_points: 5, max_incidents: 2}
  windows:
    attendance_months: 12
    occurrence_free_months: 6
    safety_months: 18

Decimals are strings so that 0.5 and 1.5 survive exactly.

SEE ALSO:
  - rules.go: RuleSet and defaults
  - config/config.go: rules.path setting
*/
package rules

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/hr"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

type fileRuleSet struct {
	Version            string            `yaml:"version"`
	AttendancePoints   map[string]string `yaml:"attendance_points"`
	SafetyPoints       map[string]int    `yaml:"safety_points"`
	WrittenWarningAt   string            `yaml:"written_warning_at"`
	RemovalAt          string            `yaml:"removal_at"`
	IntroductoryDays   *int              `yaml:"introductory_days"`
	IntroductorySafety *fileThresholds   `yaml:"introductory_safety"`
	StandardSafety     *fileThresholds   `yaml:"standard_safety"`
	Windows            *fileWindows      `yaml:"windows"`
}

type fileThresholds struct {
	MaxPoints    int `yaml:"max_points"`
	MaxIncidents int `yaml:"max_incidents"`
}

type fileWindows struct {
	AttendanceMonths     *int `yaml:"attendance_months"`
	OccurrenceFreeMonths *int `yaml:"occurrence_free_months"`
	SafetyMonths         *int `yaml:"safety_months"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a YAML rule file. An empty path returns the defaults.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return Parse(data)
}

// Parse overlays a YAML document on the defaults and validates the result.
func Parse(data []byte) (*RuleSet, error) {
	var fr fileRuleSet
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}

	rs := Default()
	if fr.Version != "" {
		rs.Version = fr.Version
	}

	for code, raw := range fr.AttendancePoints {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("attendance_points[%s]: %w", code, err)
		}
		rs.AttendancePoints[hr.AttendanceReason(code)] = value
	}
	for code, value := range fr.SafetyPoints {
		rs.SafetyPoints[hr.SafetyReason(code)] = value
	}

	var err error
	if rs.WrittenWarningAt, err = overlayDecimal(rs.WrittenWarningAt, fr.WrittenWarningAt); err != nil {
		return nil, fmt.Errorf("written_warning_at: %w", err)
	}
	if rs.RemovalAt, err = overlayDecimal(rs.RemovalAt, fr.RemovalAt); err != nil {
		return nil, fmt.Errorf("removal_at: %w", err)
	}

	if fr.IntroductoryDays != nil {
		rs.IntroductoryDays = *fr.IntroductoryDays
	}
	if fr.IntroductorySafety != nil {
		rs.IntroductorySafety = SafetyThresholds(*fr.IntroductorySafety)
	}
	if fr.StandardSafety != nil {
		rs.StandardSafety = SafetyThresholds(*fr.StandardSafety)
	}
	if w := fr.Windows; w != nil {
		if w.AttendanceMonths != nil {
			rs.AttendanceWindowMonths = *w.AttendanceMonths
		}
		if w.OccurrenceFreeMonths != nil {
			rs.OccurrenceFreeMonths = *w.OccurrenceFreeMonths
		}
		if w.SafetyMonths != nil {
			rs.SafetyWindowMonths = *w.SafetyMonths
		}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func overlayDecimal(current decimal.Decimal, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return current, nil
	}
	return decimal.NewFromString(raw)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that every code has a value and thresholds are sane.
func (rs *RuleSet) Validate() error {
	for _, reason := range hr.AttendanceReasons() {
		value, ok := rs.AttendancePoints[reason]
		if !ok {
			return fmt.Errorf("rule set %s: missing attendance reason %q", rs.Version, reason)
		}
		if value.IsNegative() {
			return fmt.Errorf("rule set %s: negative points for attendance reason %q", rs.Version, reason)
		}
	}
	for code := range rs.AttendancePoints {
		if !code.Valid() {
			return fmt.Errorf("rule set %s: unknown attendance reason %q", rs.Version, code)
		}
	}
	for _, reason := range hr.SafetyReasons() {
		value, ok := rs.SafetyPoints[reason]
		if !ok {
			return fmt.Errorf("rule set %s: missing safety reason %q", rs.Version, reason)
		}
		if value < 0 {
			return fmt.Errorf("rule set %s: negative points for safety reason %q", rs.Version, reason)
		}
	}
	for code := range rs.SafetyPoints {
		if !code.Valid() {
			return fmt.Errorf("rule set %s: unknown safety reason %q", rs.Version, code)
		}
	}
	if !rs.WrittenWarningAt.IsPositive() || !rs.RemovalAt.IsPositive() {
		return fmt.Errorf("rule set %s: attendance thresholds must be positive", rs.Version)
	}
	if rs.RemovalAt.LessThan(rs.WrittenWarningAt) {
		return fmt.Errorf("rule set %s: removal_at below written_warning_at", rs.Version)
	}
	if rs.IntroductoryDays < 0 {
		return fmt.Errorf("rule set %s: introductory_days must not be negative", rs.Version)
	}
	if rs.AttendanceWindowMonths < 0 || rs.OccurrenceFreeMonths < 0 || rs.SafetyWindowMonths < 0 {
		return fmt.Errorf("rule set %s: windows must not be negative", rs.Version)
	}
	return nil
}
