package models

// CourseMeeting is one scheduled class meeting from the SIS attendance detail
// feed. AttendedMinutes is nil when attendance was never recorded for the
// meeting, which is distinct from 0 (a recorded absence).
type CourseMeeting struct {
	AttendanceDate  string   `json:"AttendanceDate"`
	AttendedMinutes *float64 `json:"Attended"`
	Status          string   `json:"Status"`
}

// CourseAttendance is the resolver output for one course: the meeting dates
// that count as genuine attendance, and whether any meeting that should
// already have occurred is missing an attendance record.
type CourseAttendance struct {
	ValidDates        []string
	MissingAttendance bool
}
