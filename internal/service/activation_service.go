package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
)

// AttendanceSource fetches the class meeting list for one registered course.
type AttendanceSource interface {
	AttendanceDetail(ctx context.Context, studentCourseID, classSectionID int64, startDate, endDate string) ([]models.CourseMeeting, error)
}

// ActivationService computes the enrollment activation date: the earliest
// qualifying attendance date across every registered course of one student.
type ActivationService struct {
	attendance AttendanceSource
	resolver   *AttendanceResolver
	logger     *zap.Logger
}

// NewActivationService constructs the service.
func NewActivationService(attendance AttendanceSource, resolver *AttendanceResolver, logger *zap.Logger) *ActivationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivationService{attendance: attendance, resolver: resolver, logger: logger}
}

// EligibleCourses filters a registration list down to the courses that count
// toward activation: completed, scheduled or dropped status, and a section not
// in the caller's exclusion set.
func EligibleCourses(courses []models.StudentCourse, codes models.CourseStatusCodes, excludedSections map[int64]struct{}) []models.CourseRef {
	var eligible []models.CourseRef
	for _, course := range courses {
		if !codes.Countable(course.Status) {
			continue
		}
		if _, skip := excludedSections[course.ClassSectionID]; skip {
			continue
		}
		eligible = append(eligible, models.CourseRef{
			StudentCourseID: course.ID,
			ClassSectionID:  course.ClassSectionID,
			DropDate:        course.DropDate,
		})
	}
	return eligible
}

// Compute fetches attendance per course, resolves the valid meeting dates and
// returns the activation date as the minimum date across all courses pinned to
// end of day. An empty activation date means no valid meeting was found; the
// caller must branch on that explicitly rather than treat it as a date.
//
// The second return value lists class sections missing attendance records for
// sessions dated before the reference participation date.
func (s *ActivationService) Compute(ctx context.Context, courses []models.CourseRef, earliestParticipation, windowStart, windowEnd string) (string, []int64, error) {
	var (
		minDate time.Time
		found   bool
		missing []int64
	)

	for _, course := range courses {
		meetings, err := s.attendance.AttendanceDetail(ctx, course.StudentCourseID, course.ClassSectionID, windowStart, windowEnd)
		if err != nil {
			return "", nil, err
		}

		resolved, err := s.resolver.Resolve(course, meetings, earliestParticipation)
		if err != nil {
			return "", nil, err
		}
		if resolved.MissingAttendance {
			missing = append(missing, course.ClassSectionID)
		}

		for _, raw := range resolved.ValidDates {
			t, err := dates.Parse(raw)
			if err != nil {
				return "", nil, err
			}
			if !found || t.Before(minDate) {
				minDate = t
				found = true
			}
		}
	}

	if !found {
		s.logger.Debug("activation_no_valid_meetings", zap.Int("courses", len(courses)))
		return "", missing, nil
	}
	return dates.FormatEndOfDay(minDate), missing, nil
}
