package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type sectionLabeler interface {
	SectionLabels(ctx context.Context, sectionIDs []int64) ([]string, error)
}

// AlertService assembles the reviewer-facing payloads for the two ambiguity
// conditions: students with participation but no registered courses, and
// courses missing attendance records.
type AlertService struct {
	students   studentReader
	lookup     sectionLabeler
	sisBaseURL string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAlertService constructs the service.
func NewAlertService(students studentReader, lookup sectionLabeler, sisBaseURL string, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		students:   students,
		lookup:     lookup,
		sisBaseURL: strings.TrimRight(sisBaseURL, "/"),
		validator:  validate,
		logger:     logger,
	}
}

func (s *AlertService) identify(ctx context.Context, studentID int64) (dto.AlertEntry, error) {
	record, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return dto.AlertEntry{}, err
	}

	firstName, _ := record.String("firstName")
	lastName, _ := record.String("lastName")
	number, _ := record.String("studentNumber")

	return dto.AlertEntry{
		StudentID:     studentID,
		StudentNumber: number,
		StudentName:   strings.TrimSpace(firstName + " " + lastName),
		ProfileLink:   fmt.Sprintf("%s/#/students/%d", s.sisBaseURL, studentID),
	}, nil
}

// NoRegisteredCourses builds one alert row per student flagged with
// participation but no countable course registrations.
func (s *AlertService) NoRegisteredCourses(ctx context.Context, req dto.AlertRequest) (*dto.AlertResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert request")
	}

	response := &dto.AlertResponse{}
	for _, student := range req.Students {
		entry, err := s.identify(ctx, student.StudentID)
		if err != nil {
			return nil, err
		}
		response.Alerts = append(response.Alerts, entry)
	}
	s.logger.Info("alerts_no_registered_courses", zap.Int("students", len(response.Alerts)))
	return response, nil
}

// MissingAttendance builds one alert row per student, labelling the class
// sections whose attendance was never recorded.
func (s *AlertService) MissingAttendance(ctx context.Context, req dto.AlertRequest) (*dto.AlertResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert request")
	}

	response := &dto.AlertResponse{}
	for _, student := range req.Students {
		entry, err := s.identify(ctx, student.StudentID)
		if err != nil {
			return nil, err
		}
		entry.Courses, err = s.lookup.SectionLabels(ctx, student.Sections)
		if err != nil {
			return nil, err
		}
		response.Alerts = append(response.Alerts, entry)
	}
	s.logger.Info("alerts_missing_attendance", zap.Int("students", len(response.Alerts)))
	return response, nil
}
