package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type statusIDResolver interface {
	SchoolStatusIDs(ctx context.Context, codes []string) ([]int, error)
}

type enrollmentPeriodLister interface {
	ListEnrollmentPeriodsByStatus(ctx context.Context, statusID int) ([]models.EnrollmentPeriodSummary, error)
}

// RosterService lists the promotable roster: every enrollment period sitting
// in one of the caller's promotable statuses.
type RosterService struct {
	lookup    statusIDResolver
	sis       enrollmentPeriodLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(lookup statusIDResolver, sis enrollmentPeriodLister, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{lookup: lookup, sis: sis, validator: validate, logger: logger}
}

// List resolves the caller's status codes to ids and gathers the enrollment
// periods per status. An optional check-id allowlist narrows the roster.
func (s *RosterService) List(ctx context.Context, req dto.StudentsRequest) (*dto.StudentsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster request")
	}

	statusIDs, err := s.lookup.SchoolStatusIDs(ctx, req.PromotableStatusCodes)
	if err != nil {
		return nil, err
	}

	var allowlist map[int64]struct{}
	if len(req.CheckIDs) > 0 {
		allowlist = make(map[int64]struct{}, len(req.CheckIDs))
		for _, id := range req.CheckIDs {
			allowlist[id] = struct{}{}
		}
	}

	var students []dto.RosterEntry
	for _, statusID := range statusIDs {
		periods, err := s.sis.ListEnrollmentPeriodsByStatus(ctx, statusID)
		if err != nil {
			return nil, err
		}
		for _, period := range periods {
			if allowlist != nil {
				if _, ok := allowlist[period.ID]; !ok {
					continue
				}
			}
			students = append(students, dto.RosterEntry{
				StudentID:                 period.StudentID,
				StudentEnrollmentPeriodID: period.ID,
				SchoolStatusID:            period.SchoolStatusID,
			})
		}
	}

	s.logger.Info("roster_listed", zap.Int("statuses", len(statusIDs)), zap.Int("students", len(students)))
	return &dto.StudentsResponse{Students: students, PromotableStatusIDs: statusIDs}, nil
}
