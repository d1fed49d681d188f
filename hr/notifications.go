package hr

// NotificationType is one opt-in notification channel. Each value matches
// a preference flag on Employee.
type NotificationType string

const (
	NotifySevenAttendance NotificationType = "7attendance"
	NotifyTenAttendance   NotificationType = "10attendance"
	NotifyWritten         NotificationType = "written"
	NotifyLastFinal       NotificationType = "last_final"
	NotifyRemoval         NotificationType = "removal"
	NotifySafetyPoint     NotificationType = "safety_point"
	NotifyTermination     NotificationType = "termination"
	NotifyAddHold         NotificationType = "add_hold"
	NotifyRemoveHold      NotificationType = "rem_hold"
	NotifyAddSettlement   NotificationType = "add_settlement"
	NotifyNewTimeOff      NotificationType = "new_time_off"
	NotifyNewEmployee     NotificationType = "new_employee"

	NotifyAttendanceDocDay5  NotificationType = "attendance_doc_day5"
	NotifyAttendanceDocDay7  NotificationType = "attendance_doc_day7"
	NotifyAttendanceDocDay10 NotificationType = "attendance_doc_day10"
	NotifyAttendanceDocDay14 NotificationType = "attendance_doc_day14"
	NotifySafetyDocDay3      NotificationType = "safety_doc_day3"
	NotifySafetyDocDay5      NotificationType = "safety_doc_day5"
	NotifySafetyDocDay7      NotificationType = "safety_doc_day7"
	NotifySafetyDocDay10     NotificationType = "safety_doc_day10"
	NotifyCounselingDocDay3  NotificationType = "counseling_doc_day3"
	NotifyCounselingDocDay5  NotificationType = "counseling_doc_day5"
	NotifyCounselingDocDay7  NotificationType = "counseling_doc_day7"
	NotifyCounselingDocDay10 NotificationType = "counseling_doc_day10"
	NotifySettlementDoc      NotificationType = "settlement_doc"
)

var notificationLabels = map[NotificationType]string{
	NotifySevenAttendance:    "7 Attendance Points",
	NotifyTenAttendance:      "10 Attendance Points",
	NotifyWritten:            "Written Warning",
	NotifyLastFinal:          "Last and Final",
	NotifyRemoval:            "Removal from Service",
	NotifySafetyPoint:        "Safety Point",
	NotifyTermination:        "Termination",
	NotifyAddHold:            "Placed on Hold",
	NotifyRemoveHold:         "Removed from Hold",
	NotifyAddSettlement:      "Assign Settlement",
	NotifyNewTimeOff:         "New Time Off",
	NotifyNewEmployee:        "New Employee",
	NotifyAttendanceDocDay5:  "5 Days Past Due Attendance",
	NotifyAttendanceDocDay7:  "7 Days Past Due Attendance",
	NotifyAttendanceDocDay10: "10 Days Past Due Attendance",
	NotifyAttendanceDocDay14: "14 Days Past Due Attendance",
	NotifySafetyDocDay3:      "3 Days Past Due Safety Point",
	NotifySafetyDocDay5:      "5 Days Past Due Safety Point",
	NotifySafetyDocDay7:      "7 Days Past Due Safety Point",
	NotifySafetyDocDay10:     "10 Days Past Due Safety Point",
	NotifyCounselingDocDay3:  "3 Days Past Due Counseling",
	NotifyCounselingDocDay5:  "5 Days Past Due Counseling",
	NotifyCounselingDocDay7:  "7 Days Past Due Counseling",
	NotifyCounselingDocDay10: "10 Days Past Due Counseling",
	NotifySettlementDoc:      "Past Due Settlement",
}

// NotificationTypes lists every notification type.
func NotificationTypes() []NotificationType {
	out := make([]NotificationType, 0, len(notificationLabels))
	for t := range notificationLabels {
		out = append(out, t)
	}
	return out
}

func (t NotificationType) Valid() bool { _, ok := notificationLabels[t]; return ok }

func (t NotificationType) String() string {
	if label, ok := notificationLabels[t]; ok {
		return label
	}
	return string(t)
}

// NotifiesActor reports whether the staff member who triggered an event of
// type t is notified too. New hires and time-off requests reach every
// subscriber.
func (t NotificationType) NotifiesActor() bool {
	return t == NotifyNewTimeOff || t == NotifyNewEmployee
}

// Preferences holds explicit opt-in/opt-out choices. Types without an
// entry are enabled.
type Preferences map[NotificationType]bool

// Wants reports whether the employee receives notifications of type t.
func (p Preferences) Wants(t NotificationType) bool {
	enabled, ok := p[t]
	return !ok || enabled
}
