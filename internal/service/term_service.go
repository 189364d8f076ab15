package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type lmsTermReader interface {
	ListTerms(ctx context.Context) ([]models.LMSTerm, error)
}

type sisTermSource interface {
	Terms(ctx context.Context) ([]models.Term, error)
}

// TermService resolves the active academic term on both platforms. The SIS
// side is authoritative; the LMS enrollment term is matched by SIS term code.
type TermService struct {
	terms  sisTermSource
	lms    lmsTermReader
	logger *zap.Logger
	now    func() time.Time
}

// NewTermService constructs the service.
func NewTermService(terms sisTermSource, lms lmsTermReader, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{terms: terms, lms: lms, logger: logger, now: time.Now}
}

// Resolve finds the SIS term covering the reference date, skipping any
// caller-excluded term ids, and pairs it with the LMS enrollment term whose
// SIS id matches the term code.
func (s *TermService) Resolve(ctx context.Context, req dto.TermResolveRequest) (*dto.TermResolveResponse, error) {
	reference := s.now().UTC()
	if req.ReferenceDate != "" {
		parsed, err := dates.Parse(req.ReferenceDate)
		if err != nil {
			return nil, err
		}
		reference = parsed
	}
	referenceDay := dates.DayOf(reference)

	excluded := make(map[int64]struct{}, len(req.ExcludedTermIDs))
	for _, id := range req.ExcludedTermIDs {
		excluded[id] = struct{}{}
	}

	sisTerms, err := s.terms.Terms(ctx)
	if err != nil {
		return nil, err
	}

	var active *models.Term
	for i := range sisTerms {
		term := &sisTerms[i]
		if _, skip := excluded[int64(term.ID)]; skip {
			continue
		}
		start, err := dates.Parse(term.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := dates.Parse(term.EndDate)
		if err != nil {
			return nil, err
		}
		if dates.SameOrBefore(dates.DayOf(start), referenceDay) && dates.SameOrBefore(referenceDay, dates.DayOf(end)) {
			active = term
			break
		}
	}
	if active == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term covers the reference date")
	}

	lmsTerms, err := s.lms.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	for _, term := range lmsTerms {
		if term.SISTermID == active.Code {
			s.logger.Info("term_resolved",
				zap.Int("sis_term_id", active.ID),
				zap.String("sis_term_code", active.Code),
				zap.Int64("lms_term_id", term.ID))
			return &dto.TermResolveResponse{
				SISTermID:   int64(active.ID),
				SISTermCode: active.Code,
				LMSTermID:   term.ID,
			}, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no learning-platform term matches code %q", active.Code))
}
