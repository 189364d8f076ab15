package models

// CourseStatusCodes is the institution-specific letter-code table for course
// registration statuses, supplied through configuration.
type CourseStatusCodes struct {
	Completed string
	Scheduled string
	Dropped   string
}

// Countable reports whether a course in the given status participates in
// activation-date calculations.
func (c CourseStatusCodes) Countable(status string) bool {
	return status == c.Completed || status == c.Scheduled || status == c.Dropped
}

// StudentCourse is one course registration from the SIS OData surface.
type StudentCourse struct {
	ID                        int64   `json:"Id"`
	StudentID                 int64   `json:"StudentId"`
	StudentEnrollmentPeriodID int64   `json:"StudentEnrollmentPeriodId"`
	ClassSectionID            int64   `json:"ClassSectionId"`
	Status                    string  `json:"Status"`
	DropDate                  *string `json:"DropDate"`
}

// CourseRef identifies one course for attendance resolution.
type CourseRef struct {
	StudentCourseID int64   `json:"studentCourseId"`
	ClassSectionID  int64   `json:"classSectionId"`
	DropDate        *string `json:"dropDate"`
}

// ClassSection is one scheduled section from the SIS.
type ClassSection struct {
	ID          int64    `json:"Id"`
	CourseCode  string   `json:"CourseCode"`
	CreditHours *float64 `json:"EnrollmentStatusCreditHours"`
}

// LMSCourse is one course from the learning platform.
type LMSCourse struct {
	ID          int64  `json:"id"`
	SISCourseID string `json:"sis_course_id"`
	CourseCode  string `json:"course_code"`
	Name        string `json:"name"`
}

// CoursePair links a learning-platform course to its SIS counterpart.
type CoursePair struct {
	LMSCourseID int64 `json:"lms_course_id"`
	SISCourseID int64 `json:"sis_course_id"`
}

// CourseStatusChange logs one scheduled-to-completed transition.
type CourseStatusChange struct {
	StudentID                 int64  `json:"studentId"`
	StudentEnrollmentPeriodID int64  `json:"studentEnrollmentPeriodId"`
	StudentCourseID           int64  `json:"studentCourseId"`
	PriorCourseStatus         string `json:"priorCourseStatus"`
	NewCourseStatus           string `json:"newCourseStatus"`
}
