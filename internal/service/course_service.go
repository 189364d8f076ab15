package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

// sisSectionIDPrefix prefixes every cross-listed course id on the learning
// platform; the remainder is the SIS class section id.
const sisSectionIDPrefix = "AdClassSched_"

type lmsCourseReader interface {
	ListCoursesByTerm(ctx context.Context, termID int64) ([]models.LMSCourse, error)
}

type zeroCreditResolver interface {
	ZeroCreditSectionIDs(ctx context.Context) (map[int64]struct{}, error)
}

// CourseService pairs the term's learning-platform courses with their SIS
// sections, dropping zero-credit and caller-excluded courses.
type CourseService struct {
	lms       lmsCourseReader
	lookup    zeroCreditResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(lms lmsCourseReader, lookup zeroCreditResolver, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{lms: lms, lookup: lookup, validator: validate, logger: logger}
}

// ParseSISCourseID extracts the SIS class section id from a learning-platform
// cross-listing id. ok is false for courses never cross-listed.
func ParseSISCourseID(raw string) (int64, bool) {
	trimmed := strings.TrimPrefix(raw, sisSectionIDPrefix)
	if trimmed == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// List returns LMS↔SIS course id pairs for the term.
func (s *CourseService) List(ctx context.Context, req dto.CoursesRequest) (*dto.CoursesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid courses request")
	}

	zeroCredit, err := s.lookup.ZeroCreditSectionIDs(ctx)
	if err != nil {
		return nil, err
	}

	excludedCodes := make(map[string]struct{}, len(req.ExcludedCourseCodes))
	for _, code := range req.ExcludedCourseCodes {
		excludedCodes[code] = struct{}{}
	}

	courses, err := s.lms.ListCoursesByTerm(ctx, req.LMSTermID)
	if err != nil {
		return nil, err
	}

	var pairs []models.CoursePair
	for _, course := range courses {
		if _, skip := excludedCodes[course.CourseCode]; skip {
			continue
		}
		sisID, ok := ParseSISCourseID(course.SISCourseID)
		if !ok {
			continue
		}
		if _, skip := zeroCredit[sisID]; skip {
			continue
		}
		pairs = append(pairs, models.CoursePair{LMSCourseID: course.ID, SISCourseID: sisID})
	}

	s.logger.Info("courses_paired", zap.Int64("lms_term_id", req.LMSTermID), zap.Int("courses", len(courses)), zap.Int("pairs", len(pairs)))
	return &dto.CoursesResponse{Courses: pairs}, nil
}
