package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
)

type sisTermsMock struct{ terms []models.Term }

func (m *sisTermsMock) Terms(context.Context) ([]models.Term, error) { return m.terms, nil }

type lmsTermsMock struct{ terms []models.LMSTerm }

func (m *lmsTermsMock) ListTerms(context.Context) ([]models.LMSTerm, error) { return m.terms, nil }

func TestResolveMatchesActiveTermPair(t *testing.T) {
	svc := NewTermService(
		&sisTermsMock{terms: []models.Term{
			{ID: 1, Code: "2023FA", StartDate: "2023-09-01T00:00:00", EndDate: "2023-12-15T00:00:00"},
			{ID: 2, Code: "2024SP", StartDate: "2024-01-08T00:00:00", EndDate: "2024-05-10T00:00:00"},
		}},
		&lmsTermsMock{terms: []models.LMSTerm{
			{ID: 900, SISTermID: "2023FA", Name: "Fall 2023"},
			{ID: 901, SISTermID: "2024SP", Name: "Spring 2024"},
		}},
		zap.NewNop(),
	)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC) }

	resp, err := svc.Resolve(context.Background(), dto.TermResolveRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.SISTermID)
	assert.Equal(t, "2024SP", resp.SISTermCode)
	assert.Equal(t, int64(901), resp.LMSTermID)
}

func TestResolveSkipsExcludedTerms(t *testing.T) {
	svc := NewTermService(
		&sisTermsMock{terms: []models.Term{
			{ID: 2, Code: "2024SP", StartDate: "2024-01-08T00:00:00", EndDate: "2024-05-10T00:00:00"},
			{ID: 3, Code: "2024SP2", StartDate: "2024-01-08T00:00:00", EndDate: "2024-05-10T00:00:00"},
		}},
		&lmsTermsMock{terms: []models.LMSTerm{{ID: 902, SISTermID: "2024SP2"}}},
		zap.NewNop(),
	)

	resp, err := svc.Resolve(context.Background(), dto.TermResolveRequest{
		ReferenceDate:   "2024-02-01T00:00:00",
		ExcludedTermIDs: []int64{2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.SISTermID)
}

func TestResolveNoActiveTerm(t *testing.T) {
	svc := NewTermService(
		&sisTermsMock{terms: []models.Term{
			{ID: 1, Code: "2023FA", StartDate: "2023-09-01T00:00:00", EndDate: "2023-12-15T00:00:00"},
		}},
		&lmsTermsMock{},
		zap.NewNop(),
	)

	_, err := svc.Resolve(context.Background(), dto.TermResolveRequest{ReferenceDate: "2024-02-01T00:00:00"})
	require.Error(t, err)
}

func TestResolveNoMatchingLMSTerm(t *testing.T) {
	svc := NewTermService(
		&sisTermsMock{terms: []models.Term{
			{ID: 2, Code: "2024SP", StartDate: "2024-01-08T00:00:00", EndDate: "2024-05-10T00:00:00"},
		}},
		&lmsTermsMock{terms: []models.LMSTerm{{ID: 900, SISTermID: "2023FA"}}},
		zap.NewNop(),
	)

	_, err := svc.Resolve(context.Background(), dto.TermResolveRequest{ReferenceDate: "2024-02-01T00:00:00"})
	require.Error(t, err)
}

func TestResolveTermBoundaryDaysInclusive(t *testing.T) {
	svc := NewTermService(
		&sisTermsMock{terms: []models.Term{
			{ID: 2, Code: "2024SP", StartDate: "2024-01-08T00:00:00", EndDate: "2024-05-10T00:00:00"},
		}},
		&lmsTermsMock{terms: []models.LMSTerm{{ID: 901, SISTermID: "2024SP"}}},
		zap.NewNop(),
	)

	resp, err := svc.Resolve(context.Background(), dto.TermResolveRequest{ReferenceDate: "2024-05-10T18:30:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.SISTermID)
}
