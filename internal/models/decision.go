package models

// DecisionState names the terminal state of one promotion evaluation.
type DecisionState string

const (
	// DecisionNotPromotable: current status is outside the promotable set.
	DecisionNotPromotable DecisionState = "not_promotable"
	// DecisionNoCourses: promotable but no registered courses survived filtering.
	DecisionNoCourses DecisionState = "promotable_no_courses"
	// DecisionNoAttendanceData: promotable with courses but zero valid meeting
	// dates; promotion cannot be disproven without attendance evidence.
	DecisionNoAttendanceData DecisionState = "promotable_no_attendance_data"
	// DecisionPromote: participation precedes the activation date.
	DecisionPromote DecisionState = "promote"
	// DecisionReject: the activation date postdates all known participation.
	DecisionReject DecisionState = "reject_promotion"
)

// ErrorFlags are data-completeness conditions. They are decision outcomes for
// human review, never errors.
type ErrorFlags struct {
	NoRegisteredCourses          bool
	ActivationAfterParticipation bool
}

// PromotionDecision is the decision engine output for one enrollment.
type PromotionDecision struct {
	State            DecisionState
	MustUpdateStatus bool
	// ActivationDate is the end-of-day normalised EAD; empty means no data.
	ActivationDate            string
	Flags                     ErrorFlags
	MissingAttendanceSections []int64
}
