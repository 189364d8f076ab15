// Package dto defines the orchestrator contract documents for each pipeline
// stage. Field names are part of the wire contract; downstream notification
// stages key on them.
package dto

import (
	"github.com/noah-isme/participation-sync-api/internal/models"
)

// TermResolveRequest asks for the active term pair on both platforms.
type TermResolveRequest struct {
	// ReferenceDate defaults to today when empty.
	ReferenceDate   string  `json:"referenceDate"`
	ExcludedTermIDs []int64 `json:"excludedTermIds"`
}

// TermResolveResponse pairs the active SIS term with its LMS counterpart.
type TermResolveResponse struct {
	SISTermID   int64  `json:"sisTermId"`
	SISTermCode string `json:"sisTermCode"`
	LMSTermID   int64  `json:"lmsTermId"`
}

// StudentsRequest lists the promotable roster.
type StudentsRequest struct {
	PromotableStatusCodes []string `json:"promotableStatusCodes" validate:"required,min=1"`
	// CheckIDs optionally narrows the roster to known enrollment period ids.
	CheckIDs []int64 `json:"checkIds"`
}

// RosterEntry is one promotable enrollment period.
type RosterEntry struct {
	StudentID                 int64 `json:"studentId"`
	StudentEnrollmentPeriodID int64 `json:"studentEnrollmentPeriodId"`
	SchoolStatusID            int   `json:"schoolStatusId"`
}

// StudentsResponse is the promotable roster plus the resolved status id set.
type StudentsResponse struct {
	Students            []RosterEntry `json:"students"`
	PromotableStatusIDs []int         `json:"promotableStatusIds"`
}

// StudentNumbersRequest asks for student id → student number enrichment.
type StudentNumbersRequest struct {
	StudentIDs []int64 `json:"studentIds" validate:"required,min=1"`
}

// StudentNumberPair is one resolved mapping.
type StudentNumberPair struct {
	StudentID     int64  `json:"studentId"`
	StudentNumber string `json:"studentNumber"`
}

// StudentNumbersResponse returns every requested mapping.
type StudentNumbersResponse struct {
	Numbers []StudentNumberPair `json:"numbers"`
}

// CoursesRequest lists the term's courses minus zero-credit ones.
type CoursesRequest struct {
	LMSTermID           int64    `json:"lmsTermId" validate:"required"`
	ExcludedCourseCodes []string `json:"excludedCourseCodes"`
}

// CoursesResponse pairs LMS course ids with their SIS counterparts.
type CoursesResponse struct {
	Courses []models.CoursePair `json:"courses"`
}

// SubmissionsRequest collects per-course submission activity.
type SubmissionsRequest struct {
	CourseIDs []int64 `json:"courseIds" validate:"required,min=1"`
	// SubmittedSince is the last successful run timestamp (UTC, RFC3339).
	SubmittedSince string `json:"submittedSince" validate:"required"`
}

// StudentWindow is one student's submission window within a course, in UTC.
type StudentWindow struct {
	SISUserID string `json:"sisUserId"`
	Earliest  string `json:"earliest"`
	Latest    string `json:"latest"`
}

// CourseWindow groups the windows observed in one LMS course.
type CourseWindow struct {
	CourseID int64           `json:"courseId"`
	Students []StudentWindow `json:"students"`
}

// SubmissionsResponse is the raw per-course collection output.
type SubmissionsResponse struct {
	Courses []CourseWindow `json:"courses"`
}

// RosterIdentity maps a student number to the SIS identifiers needed downstream.
type RosterIdentity struct {
	StudentID           int64   `json:"studentId"`
	EnrollmentPeriodIDs []int64 `json:"studentEnrollmentPeriodIds"`
}

// AggregateRequest folds per-course windows into per-student participation.
type AggregateRequest struct {
	Courses []CourseWindow      `json:"courses" validate:"required"`
	Pairs   []models.CoursePair `json:"coursePairs"`
	// Roster keys student numbers to their SIS identity.
	Roster map[string]RosterIdentity `json:"roster" validate:"required"`
}

// AggregateResponse splits single- from multi-enrollment students; the latter
// go to manual review instead of automatic promotion.
type AggregateResponse struct {
	Students           []models.StudentParticipation `json:"students"`
	MultipleEnrollment []models.StudentParticipation `json:"multipleEnrollmentStudents"`
}

// EvaluateRequest is the core stage input for one enrollment.
type EvaluateRequest struct {
	StudentID                 int64    `json:"studentId" validate:"required"`
	StudentEnrollmentPeriodID int64    `json:"studentEnrollmentPeriodId" validate:"required"`
	Earliest                  string   `json:"earliest" validate:"required"`
	Latest                    string   `json:"latest" validate:"required"`
	PromotableStatusIDs       []int    `json:"promotableStatusIds" validate:"required,min=1"`
	ExcludedCourseCodes       []string `json:"excludedCourseCodes"`
	// AttendanceWindowEnd bounds the upstream attendance query.
	AttendanceWindowEnd string `json:"attendanceWindowEnd" validate:"required"`
	CampusID            int64  `json:"campusId"`
}

// Field-state strings of the aggregated response.
const (
	FieldUnchanged = "No changes made to this field"
	changedPrefix  = "Changed to "
)

// FieldState renders a reconciliation outcome for the aggregated response.
func FieldState(changed bool, value string) string {
	if !changed {
		return FieldUnchanged
	}
	return changedPrefix + value
}

// EvaluateResponse is the flat stage result consumed by the notification
// stages. Every recognised ambiguity mode appears as an explicit boolean.
type EvaluateResponse struct {
	StudentEnrollmentPeriodID int64  `json:"studentEnrollmentPeriodId"`
	FirstParticipation        string `json:"first_date_of_participation"`
	LastParticipation         string `json:"last_date_of_participation"`
	SchoolStatus              string `json:"school_status"`
	ActualStartDate           string `json:"actual_start_date"`
	StatusChangeDate          string `json:"school_status_change_date"`
	ActivationDate            string `json:"enrollment_activation_date"`
	EarliestParticipation     string `json:"earliest_participation"`
	Promoted                  bool   `json:"promoted"`

	NoRegisteredCourses          bool `json:"error_flag_participation_but_no_registered_courses"`
	ActivationAfterParticipation bool `json:"error_flag_EAD_gt_earliest_participation"`

	MissingAttendanceSections []int64                     `json:"courses_with_missing_attendance_data"`
	CourseStatusChanges       []models.CourseStatusChange `json:"course_status_changes"`
}

// AlertStudent identifies one student for alert payload assembly.
type AlertStudent struct {
	StudentID                 int64 `json:"studentId" validate:"required"`
	StudentEnrollmentPeriodID int64 `json:"studentEnrollmentPeriodId"`
	// Sections lists class-section ids missing attendance data; unused by the
	// no-registered-courses alert.
	Sections []int64 `json:"sections"`
}

// AlertRequest assembles reviewer-facing alert payloads.
type AlertRequest struct {
	Students []AlertStudent `json:"students" validate:"required,min=1"`
}

// AlertEntry is one reviewer-facing alert row.
type AlertEntry struct {
	StudentID     int64    `json:"studentId"`
	StudentNumber string   `json:"studentNumber"`
	StudentName   string   `json:"studentName"`
	ProfileLink   string   `json:"profileLink"`
	Courses       []string `json:"courses,omitempty"`
}

// AlertResponse is the assembled alert payload.
type AlertResponse struct {
	Alerts []AlertEntry `json:"alerts"`
}
