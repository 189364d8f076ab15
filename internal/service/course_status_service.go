package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/internal/sis"
)

type studentCourseWriter interface {
	GetStudentCourse(ctx context.Context, id int64) (sis.Record, error)
	UpdateStudentCourse(ctx context.Context, campusID int64, record sis.Record) error
}

// CourseStatusService moves a promoted student's scheduled courses to the
// completed status, returning a change log per transition.
type CourseStatusService struct {
	sis    studentCourseWriter
	codes  models.CourseStatusCodes
	logger *zap.Logger
}

// NewCourseStatusService constructs the service.
func NewCourseStatusService(sisClient studentCourseWriter, codes models.CourseStatusCodes, logger *zap.Logger) *CourseStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseStatusService{sis: sisClient, codes: codes, logger: logger}
}

// CompleteScheduled updates every scheduled course in the list. Courses in any
// other status are untouched.
func (s *CourseStatusService) CompleteScheduled(ctx context.Context, studentID, enrollmentPeriodID, campusID int64, courses []models.StudentCourse) ([]models.CourseStatusChange, error) {
	var changes []models.CourseStatusChange

	for _, course := range courses {
		if course.Status != s.codes.Scheduled {
			continue
		}

		record, err := s.sis.GetStudentCourse(ctx, course.ID)
		if err != nil {
			return changes, err
		}
		if err := record.Set("status", s.codes.Completed); err != nil {
			return changes, err
		}
		if err := s.sis.UpdateStudentCourse(ctx, campusID, record); err != nil {
			return changes, err
		}

		changes = append(changes, models.CourseStatusChange{
			StudentID:                 studentID,
			StudentEnrollmentPeriodID: enrollmentPeriodID,
			StudentCourseID:           course.ID,
			PriorCourseStatus:         s.codes.Scheduled,
			NewCourseStatus:           s.codes.Completed,
		})
		s.logger.Info("course_completed",
			zap.Int64("student_id", studentID),
			zap.Int64("student_course_id", course.ID))
	}

	return changes, nil
}
