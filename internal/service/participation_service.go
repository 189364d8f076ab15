package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

// ParticipationService folds per-course submission windows into one
// participation window per student, remapping course ids to the SIS side and
// converting timestamps from UTC to campus time.
type ParticipationService struct {
	location  *time.Location
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParticipationService constructs the service for the campus timezone.
func NewParticipationService(timezone string, validate *validator.Validate, logger *zap.Logger) (*ParticipationService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unknown campus timezone")
	}
	return &ParticipationService{location: location, validator: validate, logger: logger}, nil
}

// Aggregate folds the windows per student with a fresh accumulator, widening
// earliest/latest across courses, then splits students by enrollment count.
// Participation dates in the result are campus-local.
func (s *ParticipationService) Aggregate(ctx context.Context, req dto.AggregateRequest) (*dto.AggregateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid aggregate request")
	}

	sisByLMS := make(map[int64]int64, len(req.Pairs))
	for _, pair := range req.Pairs {
		sisByLMS[pair.LMSCourseID] = pair.SISCourseID
	}

	type accumulator struct {
		earliest  time.Time
		latest    time.Time
		courseIDs map[int64]struct{}
	}
	byNumber := make(map[string]*accumulator)

	for _, course := range req.Courses {
		sisCourseID, mapped := sisByLMS[course.CourseID]
		for _, student := range course.Students {
			earliest, err := dates.Parse(student.Earliest)
			if err != nil {
				return nil, err
			}
			latest, err := dates.Parse(student.Latest)
			if err != nil {
				return nil, err
			}

			acc, ok := byNumber[student.SISUserID]
			if !ok {
				acc = &accumulator{earliest: earliest, latest: latest, courseIDs: map[int64]struct{}{}}
				byNumber[student.SISUserID] = acc
			} else {
				if earliest.Before(acc.earliest) {
					acc.earliest = earliest
				}
				if latest.After(acc.latest) {
					acc.latest = latest
				}
			}
			if mapped {
				acc.courseIDs[sisCourseID] = struct{}{}
			}
		}
	}

	// deterministic output order for the orchestrator
	numbers := make([]string, 0, len(byNumber))
	for number := range byNumber {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	response := &dto.AggregateResponse{}
	for _, number := range numbers {
		acc := byNumber[number]
		identity, known := req.Roster[number]
		if !known {
			s.logger.Warn("participation_unknown_student", zap.String("student_number", number))
			continue
		}

		courseIDs := make([]int64, 0, len(acc.courseIDs))
		for id := range acc.courseIDs {
			courseIDs = append(courseIDs, id)
		}
		sort.Slice(courseIDs, func(i, j int) bool { return courseIDs[i] < courseIDs[j] })

		participation := models.StudentParticipation{
			StudentNumber:       number,
			StudentID:           identity.StudentID,
			EnrollmentPeriodIDs: identity.EnrollmentPeriodIDs,
			Earliest:            acc.earliest.UTC().In(s.location).Format(dates.CanonicalLayout),
			Latest:              acc.latest.UTC().In(s.location).Format(dates.CanonicalLayout),
			SISCourseIDs:        courseIDs,
		}
		if participation.MultipleEnrollments() {
			response.MultipleEnrollment = append(response.MultipleEnrollment, participation)
		} else {
			response.Students = append(response.Students, participation)
		}
	}

	s.logger.Info("participation_aggregated",
		zap.Int("students", len(response.Students)),
		zap.Int("multiple_enrollment", len(response.MultipleEnrollment)))
	return response, nil
}
