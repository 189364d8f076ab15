package models

// ParticipationWindow is the earliest/latest observed submission timestamps
// for one student, widened as submissions fold in.
type ParticipationWindow struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// StudentParticipation aggregates one student's learning-platform activity.
// EnrollmentPeriodIDs is ordered and non-empty; more than one entry means the
// student holds concurrent enrollments and is routed to manual review instead
// of automatic promotion.
type StudentParticipation struct {
	StudentNumber       string  `json:"studentNumber"`
	StudentID           int64   `json:"studentId,omitempty"`
	EnrollmentPeriodIDs []int64 `json:"studentEnrollmentPeriodIds"`
	Earliest            string  `json:"earliest"`
	Latest              string  `json:"latest"`
	SISCourseIDs        []int64 `json:"sisCourseIds"`
}

// MultipleEnrollments reports whether the student has more than one
// concurrent enrollment period.
func (p StudentParticipation) MultipleEnrollments() bool {
	return len(p.EnrollmentPeriodIDs) > 1
}
