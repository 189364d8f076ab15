package service

import (
	"time"

	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
)

// AttendanceResolver decides which class meetings of one course count as
// genuine attendance data points, and whether the course is missing
// attendance records it should already have.
type AttendanceResolver struct {
	cancelledCode string
}

// NewAttendanceResolver constructs a resolver with the institution's
// cancelled-meeting status code.
func NewAttendanceResolver(cancelledCode string) *AttendanceResolver {
	return &AttendanceResolver{cancelledCode: cancelledCode}
}

// Resolve filters the course's meetings to valid attendance dates and scans
// for missing attendance records.
//
// A meeting is valid when it was not cancelled and attendance was either
// recorded positive or never recorded at all; an unrecorded meeting is
// presumed attended. For dropped courses only meetings strictly before the
// drop date (by calendar date) are eligible.
//
// The missing-data scan runs over every meeting regardless of validity: a
// meeting with unrecorded attendance dated before the reference participation
// date means a session happened that nobody marked.
func (r *AttendanceResolver) Resolve(course models.CourseRef, meetings []models.CourseMeeting, earliestParticipation string) (models.CourseAttendance, error) {
	var result models.CourseAttendance

	referenceDay, err := dates.Parse(earliestParticipation)
	if err != nil {
		return result, err
	}
	referenceDay = dates.DayOf(referenceDay)

	var dropDay time.Time
	dropped := course.DropDate != nil && *course.DropDate != ""
	if dropped {
		parsed, err := dates.Parse(*course.DropDate)
		if err != nil {
			return result, err
		}
		dropDay = dates.DayOf(parsed)
	}

	for _, meeting := range meetings {
		meetingTime, err := dates.Parse(meeting.AttendanceDate)
		if err != nil {
			return result, err
		}
		meetingDay := dates.DayOf(meetingTime)

		attended := meeting.AttendedMinutes == nil || *meeting.AttendedMinutes > 0
		if attended && meeting.Status != r.cancelledCode {
			if !dropped || meetingDay.Before(dropDay) {
				result.ValidDates = append(result.ValidDates, meeting.AttendanceDate)
			}
		}

		if meeting.AttendedMinutes == nil && meetingDay.Before(referenceDay) {
			result.MissingAttendance = true
		}
	}

	return result, nil
}
