package rules

import "fmt"

// SafetyVariant names which removal threshold a safety decision tripped.
type SafetyVariant int

const (
	SafetyNone SafetyVariant = iota
	SafetyIntroductoryPoints
	SafetyIntroductoryIncidents
	SafetyStandardPoints
	SafetyStandardIncidents
)

func (v SafetyVariant) String() string {
	switch v {
	case SafetyIntroductoryPoints:
		return "introductory_points"
	case SafetyIntroductoryIncidents:
		return "introductory_incidents"
	case SafetyStandardPoints:
		return "standard_points"
	case SafetyStandardIncidents:
		return "standard_incidents"
	}
	return "none"
}

// Text is the boilerplate written into engine-generated counseling.
type Text struct {
	WrittenWarningConduct      string
	WrittenWarningConversation string
	RemovalConduct             string
	RemovalConversation        string
	SafetyConversation         string
}

// DefaultText builds the handbook wording for the named company.
func DefaultText(company string) Text {
	return Text{
		WrittenWarningConduct: fmt.Sprintf("You have reached the maximum allowable attendance points according to %s's"+
			" Employee Handbook which cause a Written Warning to be issued.", company),
		WrittenWarningConversation: "According to the Employee Handbook, employees are allowed a maximum of seven (7)" +
			" occurrences within a rolling 12 month period before a Written Warning is issued. If an employee goes" +
			" \"occurrence free\" for a consecutive six (6) month period, the attendance record is wiped clean and" +
			" prior points are not considered as a basis for disciplinary action. This document is your Written" +
			" Warning Notice.",
		RemovalConduct: fmt.Sprintf("You have exceeded the maximum allowable attendance points according to %s's"+
			" Employee Handbook.", company),
		RemovalConversation: "According to the Employee Handbook, employees are allowed a maximum of seven (7)" +
			" occurrences within a rolling 12 month period before a written warning is issued. An employee who" +
			" reaches ten (10) occurrences within a rolling 12 month period will be terminated. You have been" +
			" removed from service pending possible termination of employment. Management will contact you at a" +
			" later date to attend a Fair & Impartial Hearing.",
		SafetyConversation: "The driver has been explained the importance of making Safety their top priority," +
			" driving with continuous unsafe behaviors is intolerable.",
	}
}

// SafetyConduct returns the conduct text quoting the tripped threshold.
func (t Text) SafetyConduct(variant SafetyVariant, total int) string {
	switch variant {
	case SafetyIntroductoryPoints:
		return fmt.Sprintf("The driver has met/exceeded the number of allotted safety points within the"+
			" introductory period with a total of %d points. According to the Employee Handbook \"For"+
			" introductory period employees: Receipt of four (4) or more points during the introductory period"+
			" will result in termination.\"", total)
	case SafetyIntroductoryIncidents:
		return "The driver has met/exceeded the number of allotted safety point assessments within the" +
			" introductory period. According to the Employee Handbook \"... receipt of 2 separate safety point" +
			" assessments during the introductory period will result in termination, regardless of the" +
			" employee's total point count.\""
	case SafetyStandardPoints:
		return fmt.Sprintf("The driver has met/exceeded the number of allotted safety points within a rolling"+
			" 18 month period with a total of %d points. According to the Employee Handbook \"For"+
			" non-introductory period employees: In any rolling 18 month period of employment, receipt of six (6)"+
			" or more points will result in termination.\"", total)
	case SafetyStandardIncidents:
		return "The driver has met/exceeded the number of allotted safety point assessments within a rolling" +
			" one year period. According to the Employee Handbook \"... receipt of 3 separate safety point" +
			" assessments in any rolling one year period will result in termination, regardless of the" +
			" employee's total point count.\""
	}
	return ""
}
