package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/lms"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type submissionReader interface {
	ListSubmissions(ctx context.Context, courseID int64, submittedSince string) ([]lms.StudentSubmissions, error)
}

// SubmissionService collects per-course submission activity since the last
// successful run and folds it into per-student windows, still in UTC.
type SubmissionService struct {
	lms       submissionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the service.
func NewSubmissionService(lmsClient submissionReader, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{lms: lmsClient, validator: validate, logger: logger}
}

// Collect walks every requested course and reduces each student's submissions
// to an earliest/latest pair. Students without a SIS user id are skipped:
// they cannot be joined back to an enrollment.
func (s *SubmissionService) Collect(ctx context.Context, req dto.SubmissionsRequest) (*dto.SubmissionsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submissions request")
	}

	var courses []dto.CourseWindow
	for _, courseID := range req.CourseIDs {
		grouped, err := s.lms.ListSubmissions(ctx, courseID, req.SubmittedSince)
		if err != nil {
			return nil, err
		}

		window := dto.CourseWindow{CourseID: courseID}
		for _, student := range grouped {
			if student.SISUserID == "" {
				continue
			}
			var earliest, latest string
			for _, submission := range student.Submissions {
				if submission.SubmittedAt == "" {
					continue
				}
				// RFC3339 UTC timestamps order lexicographically
				if earliest == "" || submission.SubmittedAt < earliest {
					earliest = submission.SubmittedAt
				}
				if latest == "" || submission.SubmittedAt > latest {
					latest = submission.SubmittedAt
				}
			}
			if earliest == "" {
				continue
			}
			window.Students = append(window.Students, dto.StudentWindow{
				SISUserID: student.SISUserID,
				Earliest:  earliest,
				Latest:    latest,
			})
		}
		if len(window.Students) > 0 {
			courses = append(courses, window)
		}
	}

	s.logger.Info("submissions_collected", zap.Int("requested_courses", len(req.CourseIDs)), zap.Int("courses_with_activity", len(courses)))
	return &dto.SubmissionsResponse{Courses: courses}, nil
}
