/*
codes.go - Category codes used across the discipline engine

PURPOSE:
  Every categorical field (attendance reason, exemption, safety reason,
  counseling action, time-off type, hold reason) is stored as a short
  string code. The typed wrappers here give each code set a name, a
  validity check and a display string.

CODE SETS:
  AttendanceReason  '0'..'8'
  Exemption         ''  (none) or '0'..'5'
  SafetyReason      '0'..'14'
  ActionType        '0'..'6'  (progressive discipline ladder + removal)
  TimeOffType       '0'..'10'
  TimeOffStatus     '0' Pending, '1' Approved, '2' Denied
  TerminationType   '0' Voluntary, '1' Involuntary

SEE ALSO:
  - rules/rules.go: Point values per code
  - types.go: Records carrying these codes
*/
package hr

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceReason is the incident category of an attendance point.
type AttendanceReason string

const (
	ReasonUnexcused           AttendanceReason = "0"
	ReasonConsecutive         AttendanceReason = "1"
	ReasonUnderOneHour        AttendanceReason = "2"
	ReasonNoCallNoShow        AttendanceReason = "3"
	ReasonFailureToComplete   AttendanceReason = "4"
	ReasonMissedSafetyMeeting AttendanceReason = "5"
	ReasonUnderFifteenMinutes AttendanceReason = "6"
	ReasonOverFifteenMinutes  AttendanceReason = "7"
	ReasonLateLunch           AttendanceReason = "8"
)

var attendanceReasonNames = map[AttendanceReason]string{
	ReasonUnexcused:           "Unexcused",
	ReasonConsecutive:         "Consecutive",
	ReasonUnderOneHour:        "< 1 HR",
	ReasonNoCallNoShow:        "NCNS",
	ReasonFailureToComplete:   "FTC",
	ReasonMissedSafetyMeeting: "Missing Safety Meeting",
	ReasonUnderFifteenMinutes: "< 15 MIN",
	ReasonOverFifteenMinutes:  "> 15 MIN",
	ReasonLateLunch:           "Late Lunch",
}

// AttendanceReasons lists every reason code in code order.
func AttendanceReasons() []AttendanceReason {
	return []AttendanceReason{
		ReasonUnexcused, ReasonConsecutive, ReasonUnderOneHour,
		ReasonNoCallNoShow, ReasonFailureToComplete, ReasonMissedSafetyMeeting,
		ReasonUnderFifteenMinutes, ReasonOverFifteenMinutes, ReasonLateLunch,
	}
}

func (r AttendanceReason) Valid() bool { _, ok := attendanceReasonNames[r]; return ok }

func (r AttendanceReason) String() string {
	if name, ok := attendanceReasonNames[r]; ok {
		return name
	}
	return string(r)
}

// Exemption zeroes the points of an attendance incident. The empty
// exemption means the incident is not exempt.
type Exemption string

const (
	ExemptionNone                Exemption = ""
	ExemptionFMLA                Exemption = "0"
	ExemptionPaidSick            Exemption = "1"
	ExemptionUnpaidSick          Exemption = "2"
	ExemptionUnionAgreement      Exemption = "3"
	ExemptionExcusedAbsence      Exemption = "4"
	ExemptionAttendanceIncentive Exemption = "5"
)

var exemptionNames = map[Exemption]string{
	ExemptionNone:                "",
	ExemptionFMLA:                "FMLA",
	ExemptionPaidSick:            "Paid Sick",
	ExemptionUnpaidSick:          "Unpaid Sick",
	ExemptionUnionAgreement:      "Union Agreement",
	ExemptionExcusedAbsence:      "Excused Absence",
	ExemptionAttendanceIncentive: "Attendance Incentive",
}

func (e Exemption) Valid() bool    { _, ok := exemptionNames[e]; return ok }
func (e Exemption) IsExempt() bool { return e != ExemptionNone }

// ConsumesSickDay reports whether the exemption draws from a sick-day balance.
func (e Exemption) ConsumesSickDay() bool {
	return e == ExemptionPaidSick || e == ExemptionUnpaidSick
}

func (e Exemption) String() string {
	if name, ok := exemptionNames[e]; ok {
		return name
	}
	return string(e)
}

// =============================================================================
// SAFETY
// =============================================================================

// SafetyReason is the behaviour category of a safety point.
type SafetyReason string

var safetyReasonNames = map[SafetyReason]string{
	"0":  "Unsafe maneuver(s) or act",
	"1":  "Failure to cycle wheelchair lift",
	"2":  "Failure to do a proper vehicle inspection (DVI)",
	"3":  "Improper following distance",
	"4":  "Conviction of a minor traffic violation",
	"5":  "Backing Accident",
	"6":  "Minor Preventable incident",
	"7":  "Use of a cell phone or non company-issued device while operating a vehicle",
	"8":  "Major preventable incident without serious injury or damage over $25,000",
	"9":  "Major preventable incident with serious injury, death or damage over $25,000",
	"10": "Preventable roll-away incident",
	"11": "Failure to properly secure/transport a mobility device",
	"12": "Failure to immediately report a citation or incident in a company vehicle",
	"13": "Tampering with or interfering with monitoring equipment",
	"14": "Conviction of a major traffic violation",
}

// SafetyReasons lists every safety reason code in code order.
func SafetyReasons() []SafetyReason {
	return []SafetyReason{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14"}
}

func (r SafetyReason) Valid() bool { _, ok := safetyReasonNames[r]; return ok }

func (r SafetyReason) String() string {
	if name, ok := safetyReasonNames[r]; ok {
		return name
	}
	return string(r)
}

// =============================================================================
// COUNSELING
// =============================================================================

// ActionType is a step on the disciplinary ladder. Levels 0-4 are the
// progressive steps; 5 and 6 end employment and sit outside the ladder.
type ActionType string

const (
	ActionVerbalCounseling      ActionType = "0"
	ActionVerbalWarning         ActionType = "1"
	ActionFirstWrittenWarning   ActionType = "2"
	ActionFinalWrittenWarning   ActionType = "3"
	ActionLastAndFinal          ActionType = "4"
	ActionDischarge             ActionType = "5"
	ActionAdministrativeRemoval ActionType = "6"
)

var actionNames = map[ActionType]string{
	ActionVerbalCounseling:      "Verbal Counseling",
	ActionVerbalWarning:         "Verbal Warning",
	ActionFirstWrittenWarning:   "First Written Warning Notice",
	ActionFinalWrittenWarning:   "Final Written Warning Notice & 3 Day Suspension",
	ActionLastAndFinal:          "Last & Final Warning",
	ActionDischarge:             "Discharge for \"Just Cause\"",
	ActionAdministrativeRemoval: "Administrative Removal from Service",
}

// LadderLevels is the number of progressive steps (0 through 4).
const LadderLevels = 5

func (a ActionType) Valid() bool { _, ok := actionNames[a]; return ok }

// Level returns the numeric level of the action, or -1 if the code is unknown.
func (a ActionType) Level() int {
	if !a.Valid() {
		return -1
	}
	return int(a[0] - '0')
}

// EndsEmployment reports whether the action is a discharge or a removal.
func (a ActionType) EndsEmployment() bool {
	return a == ActionDischarge || a == ActionAdministrativeRemoval
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return string(a)
}

// ActionForLevel converts a ladder level back to its code.
func ActionForLevel(level int) ActionType {
	return ActionType(rune('0' + level))
}

// =============================================================================
// TIME OFF
// =============================================================================

type TimeOffType string

const TimeOffFloatingHoliday TimeOffType = "7"

var timeOffTypeNames = map[TimeOffType]string{
	"0":  "Day(s) Off (Unpaid)",
	"1":  "Vacation (Paid)",
	"2":  "Leave of Absence",
	"3":  "Jury Duty / Subpoena",
	"4":  "Military Leave",
	"5":  "Extended Medical Leave",
	"6":  "Family Medical Leave",
	"7":  "Floating Holiday",
	"8":  "Personal",
	"9":  "Doctor Appointment",
	"10": "Other",
}

func (t TimeOffType) Valid() bool { _, ok := timeOffTypeNames[t]; return ok }

func (t TimeOffType) String() string {
	if name, ok := timeOffTypeNames[t]; ok {
		return name
	}
	return string(t)
}

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "0"
	TimeOffApproved TimeOffStatus = "1"
	TimeOffDenied   TimeOffStatus = "2"
)

func (s TimeOffStatus) Valid() bool {
	return s == TimeOffPending || s == TimeOffApproved || s == TimeOffDenied
}

func (s TimeOffStatus) String() string {
	switch s {
	case TimeOffPending:
		return "Pending"
	case TimeOffApproved:
		return "Approved"
	case TimeOffDenied:
		return "Denied"
	}
	return string(s)
}

// =============================================================================
// HOLDS AND TERMINATION
// =============================================================================

// Hold reasons offered by the hold form. Any other value is accepted as
// long as OtherReason explains it.
const (
	HoldTraining           = "Training"
	HoldRetraining         = "Re-Training"
	HoldBehindTheWheel     = "BTW"
	HoldFMLA               = "FMLA"
	HoldPersonal           = "Personal"
	HoldLightDuty          = "Light Duty"
	HoldSafety             = "Safety"
	HoldPendingTermination = "Pending Termination"
	HoldResigned           = "Resigned"
	HoldOther              = "Other"
)

type TerminationType string

const (
	TerminationVoluntary   TerminationType = "0"
	TerminationInvoluntary TerminationType = "1"
)

func (t TerminationType) Valid() bool {
	return t == TerminationVoluntary || t == TerminationInvoluntary
}

func (t TerminationType) String() string {
	switch t {
	case TerminationVoluntary:
		return "Voluntary"
	case TerminationInvoluntary:
		return "Involuntary"
	}
	return string(t)
}
