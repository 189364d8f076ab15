package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type sisReferenceMock struct {
	statuses     []models.SchoolStatus
	sections     []models.ClassSection
	terms        []models.Term
	statusCalls  int
	sectionCalls int
}

func (m *sisReferenceMock) ListSchoolStatuses(context.Context) ([]models.SchoolStatus, error) {
	m.statusCalls++
	return m.statuses, nil
}

func (m *sisReferenceMock) ListClassSections(context.Context) ([]models.ClassSection, error) {
	m.sectionCalls++
	return m.sections, nil
}

func (m *sisReferenceMock) ListTerms(context.Context) ([]models.Term, error) {
	return m.terms, nil
}

type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	raw, _ := json.Marshal(value)
	c.values[key] = raw
}

func TestSchoolStatusIDsResolvesAndCaches(t *testing.T) {
	sisMock := &sisReferenceMock{statuses: []models.SchoolStatus{
		{ID: 5, Code: "PEND"},
		{ID: 6, Code: "PROG"},
		{ID: 13, Code: "ENRL"},
	}}
	svc := NewLookupService(sisMock, newMemoryCache(), time.Hour, zap.NewNop())

	ids, err := svc.SchoolStatusIDs(context.Background(), []string{"PEND", "PROG"})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, ids)

	_, err = svc.SchoolStatusIDs(context.Background(), []string{"ENRL"})
	require.NoError(t, err)
	assert.Equal(t, 1, sisMock.statusCalls)
}

func TestSchoolStatusIDsUnknownCode(t *testing.T) {
	svc := NewLookupService(&sisReferenceMock{statuses: []models.SchoolStatus{{ID: 5, Code: "PEND"}}}, nil, time.Hour, zap.NewNop())

	_, err := svc.SchoolStatusIDs(context.Background(), []string{"NOPE"})
	require.Error(t, err)
}

func TestExcludedSectionIDsMatchesCourseCodes(t *testing.T) {
	svc := NewLookupService(&sisReferenceMock{sections: []models.ClassSection{
		{ID: 10, CourseCode: "ORIENT"},
		{ID: 11, CourseCode: "MATH101"},
		{ID: 12, CourseCode: "ORIENT"},
	}}, nil, time.Hour, zap.NewNop())

	ids, err := svc.ExcludedSectionIDs(context.Background(), []string{"ORIENT"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, int64(10))
	assert.Contains(t, ids, int64(12))
}

func TestExcludedSectionIDsEmptyCodes(t *testing.T) {
	sisMock := &sisReferenceMock{}
	svc := NewLookupService(sisMock, nil, time.Hour, zap.NewNop())

	ids, err := svc.ExcludedSectionIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, sisMock.sectionCalls)
}

func TestZeroCreditSectionIDs(t *testing.T) {
	zero := 0.0
	four := 4.0
	svc := NewLookupService(&sisReferenceMock{sections: []models.ClassSection{
		{ID: 10, CourseCode: "LAB", CreditHours: &zero},
		{ID: 11, CourseCode: "MATH101", CreditHours: &four},
		{ID: 12, CourseCode: "SEM"},
	}}, nil, time.Hour, zap.NewNop())

	ids, err := svc.ZeroCreditSectionIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, int64(10))
	assert.Contains(t, ids, int64(12))
}

func TestSectionLabels(t *testing.T) {
	svc := NewLookupService(&sisReferenceMock{sections: []models.ClassSection{
		{ID: 42, CourseCode: "MATH101"},
	}}, nil, time.Hour, zap.NewNop())

	labels, err := svc.SectionLabels(context.Background(), []int64{42, 77})
	require.NoError(t, err)
	assert.Equal(t, []string{"ClassSectionId #42 - MATH101", "ClassSectionId #77"}, labels)
}
