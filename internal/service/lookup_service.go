package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type sisReferenceReader interface {
	ListSchoolStatuses(ctx context.Context) ([]models.SchoolStatus, error)
	ListClassSections(ctx context.Context) ([]models.ClassSection, error)
	ListTerms(ctx context.Context) ([]models.Term, error)
}

type lookupCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// LookupService resolves SIS reference data (status code→id maps, class
// section sets, term lists) through a Redis-backed cache. Reference data
// changes rarely; every stage run hitting the platform for it is wasted quota.
type LookupService struct {
	sis    sisReferenceReader
	cache  lookupCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewLookupService constructs the service.
func NewLookupService(sis sisReferenceReader, cache lookupCache, ttl time.Duration, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{sis: sis, cache: cache, ttl: ttl, logger: logger}
}

func (s *LookupService) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error), assign func(interface{})) error {
	if s.cache != nil {
		err := s.cache.Get(ctx, key, dest)
		if err == nil {
			return nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("lookup_cache_read_failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := fetch()
	if err != nil {
		return err
	}
	assign(value)
	if s.cache != nil {
		s.cache.Set(ctx, key, value, s.ttl)
	}
	return nil
}

// SchoolStatusIDs maps status codes to their SIS ids. Unknown codes are an
// input error: a silently dropped code would shrink the promotable roster.
func (s *LookupService) SchoolStatusIDs(ctx context.Context, codes []string) ([]int, error) {
	var statuses []models.SchoolStatus
	err := s.cached(ctx, "lookup:school_statuses", &statuses,
		func() (interface{}, error) { return s.sis.ListSchoolStatuses(ctx) },
		func(v interface{}) { statuses = v.([]models.SchoolStatus) },
	)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]int, len(statuses))
	for _, status := range statuses {
		byCode[status.Code] = status.ID
	}

	ids := make([]int, 0, len(codes))
	for _, code := range codes {
		id, ok := byCode[code]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown school status code %q", code))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *LookupService) classSections(ctx context.Context) ([]models.ClassSection, error) {
	var sections []models.ClassSection
	err := s.cached(ctx, "lookup:class_sections", &sections,
		func() (interface{}, error) { return s.sis.ListClassSections(ctx) },
		func(v interface{}) { sections = v.([]models.ClassSection) },
	)
	return sections, err
}

// ExcludedSectionIDs resolves the caller's excluded course codes to the class
// section ids carrying those codes.
func (s *LookupService) ExcludedSectionIDs(ctx context.Context, courseCodes []string) (map[int64]struct{}, error) {
	if len(courseCodes) == 0 {
		return map[int64]struct{}{}, nil
	}

	sections, err := s.classSections(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(courseCodes))
	for _, code := range courseCodes {
		excluded[code] = struct{}{}
	}

	ids := make(map[int64]struct{})
	for _, section := range sections {
		if _, ok := excluded[section.CourseCode]; ok {
			ids[section.ID] = struct{}{}
		}
	}
	return ids, nil
}

// ZeroCreditSectionIDs returns the sections carrying no credit hours; their
// LMS counterparts never participate in submission collection.
func (s *LookupService) ZeroCreditSectionIDs(ctx context.Context) (map[int64]struct{}, error) {
	sections, err := s.classSections(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]struct{})
	for _, section := range sections {
		if section.CreditHours == nil || *section.CreditHours == 0 {
			ids[section.ID] = struct{}{}
		}
	}
	return ids, nil
}

// SectionLabels renders reviewer-facing labels for the given section ids.
func (s *LookupService) SectionLabels(ctx context.Context, sectionIDs []int64) ([]string, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}

	sections, err := s.classSections(ctx)
	if err != nil {
		return nil, err
	}

	codeByID := make(map[int64]string, len(sections))
	for _, section := range sections {
		codeByID[section.ID] = section.CourseCode
	}

	labels := make([]string, 0, len(sectionIDs))
	for _, id := range sectionIDs {
		label := fmt.Sprintf("ClassSectionId #%d", id)
		if code, ok := codeByID[id]; ok && code != "" {
			label = fmt.Sprintf("%s - %s", label, code)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// Terms returns the SIS term list through the cache.
func (s *LookupService) Terms(ctx context.Context) ([]models.Term, error) {
	var terms []models.Term
	err := s.cached(ctx, "lookup:terms", &terms,
		func() (interface{}, error) { return s.sis.ListTerms(ctx) },
		func(v interface{}) { terms = v.([]models.Term) },
	)
	return terms, err
}
