package discipline

import (
	"github.com/warp/division-ops/hr"
)

// =============================================================================
// PROGRESSIVE DISCIPLINE LADDER
// =============================================================================

// Ladder marks which progressive levels (0-4) an employee already received.
type Ladder [hr.LadderLevels]bool

// BuildLadder marks the levels of active, manually assigned counseling.
// Attendance-linked records and discharge/removal actions sit outside the
// ladder.
func BuildLadder(counseling []hr.Counseling) Ladder {
	var ladder Ladder
	for _, c := range counseling {
		if !c.IsActive || c.IsAttendanceLinked() || c.ActionType.EndsEmployment() {
			continue
		}
		if level := c.ActionType.Level(); level >= 0 && level < hr.LadderLevels {
			ladder[level] = true
		}
	}
	return ladder
}

// NextStep returns the action the ladder requires next. With no history the
// ladder starts at Verbal Counseling. Otherwise every unmarked level below
// the highest marked one is a deficiency that pulls the next step down, so
// a deleted step is filled back in before the ladder advances. Anything
// past Last & Final becomes Administrative Removal.
func (l Ladder) NextStep() hr.ActionType {
	current := -1
	for level, marked := range l {
		if marked {
			current = level
		}
	}
	if current < 0 {
		return hr.ActionVerbalCounseling
	}

	next := current + 1
	if current > 0 {
		deficiency := 0
		for level := current; level >= 0; level-- {
			if !l[level] {
				deficiency++
			}
		}
		if deficiency > 0 {
			next = current - deficiency + 1
		}
	}

	if next >= hr.LadderLevels {
		return hr.ActionAdministrativeRemoval
	}
	return hr.ActionForLevel(next)
}

// StepInput is a manual counseling assignment or edit.
type StepInput struct {
	Proposed   hr.ActionType
	Counseling []hr.Counseling
	// Editing is the stored record when an existing counseling is edited.
	Editing *hr.Counseling
	// Override skips the check; granting it is the caller's permission concern.
	Override bool
}

// ValidateStep rejects a proposed action that is not the next ladder step.
// Discharge and removal are always allowed. The edited record stays on the
// ladder it is checked against, so re-saving it needs an override. An
// override recorded on it keeps applying while its action type is unchanged.
func ValidateStep(in StepInput) error {
	if in.Override {
		return nil
	}
	if in.Editing != nil && in.Editing.OverrideBy != nil && in.Editing.ActionType == in.Proposed {
		return nil
	}
	if in.Proposed.EndsEmployment() {
		return nil
	}
	if !in.Proposed.Valid() {
		return hr.Invalid("action_type", "unknown action type %q", string(in.Proposed))
	}

	next := BuildLadder(in.Counseling).NextStep()
	if in.Proposed != next {
		return hr.Invalid("action_type", "The next step in progressive discipline would be %s.", next)
	}
	return nil
}
