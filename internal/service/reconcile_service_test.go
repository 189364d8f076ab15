package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/participation-sync-api/internal/models"
)

const enrolledID = 13

func enrollmentWith(first, last *string) *models.EnrollmentRecord {
	return &models.EnrollmentRecord{
		ID:             100,
		StudentID:      7,
		SchoolStatusID: 5,
		ExtendedProperties: []models.ExtendedProperty{
			{Name: models.PropFirstParticipation, Value: first},
			{Name: models.PropLastParticipation, Value: last},
		},
	}
}

func TestApplySetsParticipationWindowWhenEmpty(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(nil, nil)

	result, err := svc.Apply(record, models.PromotionDecision{}, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.False(t, result.NoChanges)
	assert.True(t, result.FirstParticipation.Changed)
	assert.Equal(t, "2024-01-10T09:00:00", result.FirstParticipation.Value)
	assert.True(t, result.LastParticipation.Changed)
	assert.Equal(t, "2024-02-01T17:00:00", result.LastParticipation.Value)
	require.NotNil(t, record.FirstParticipation())
	assert.Equal(t, "2024-01-10T09:00:00", *record.FirstParticipation())
}

func TestApplyNeverOverwritesFirstParticipation(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-05T08:00:00"), strPtr("2024-02-10T17:00:00"))

	result, err := svc.Apply(record, models.PromotionDecision{}, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.False(t, result.FirstParticipation.Changed)
	assert.Equal(t, "2024-01-05T08:00:00", *record.FirstParticipation())
}

func TestApplyWidensLastParticipationOnly(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-05T08:00:00"), strPtr("2024-01-20T17:00:00"))

	result, err := svc.Apply(record, models.PromotionDecision{}, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.True(t, result.LastParticipation.Changed)
	assert.Equal(t, "2024-02-01T17:00:00", *record.LastParticipation())
}

func TestApplyIdempotentOnReconciledRecord(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-05T08:00:00"), strPtr("2024-02-10T17:00:00"))

	result, err := svc.Apply(record, models.PromotionDecision{}, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.False(t, result.FirstParticipation.Changed)
	assert.False(t, result.LastParticipation.Changed)
}

func TestApplyPromotionSetsStatusAndStartDate(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(nil, nil)

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.True(t, result.SchoolStatus.Changed)
	assert.Equal(t, enrolledID, record.SchoolStatusID)
	assert.True(t, result.ActualStartDate.Changed)
	require.NotNil(t, record.ActualStartDate)
	assert.Equal(t, "2024/01/10 00:00:00", *record.ActualStartDate)
	assert.True(t, result.StatusChangeDate.Changed)
	assert.Equal(t, "2024/01/10 00:00:00", *record.SchoolStatusChangeDate)
	assert.Equal(t, "2024-01-10T09:00:00", result.EarliestParticipation)
}

func TestApplyPromotionUsesEarlierPersistedFirstParticipation(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-03T08:00:00"), nil)

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.Equal(t, "2024-01-03T08:00:00", result.EarliestParticipation)
	require.NotNil(t, record.ActualStartDate)
	assert.Equal(t, "2024/01/03 00:00:00", *record.ActualStartDate)
}

func TestApplyPromotionKeepsManualStartDate(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(nil, nil)
	record.ActualStartDate = strPtr("2023/09/01 00:00:00")

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.False(t, result.ActualStartDate.Changed)
	assert.Equal(t, "2023/09/01 00:00:00", *record.ActualStartDate)
}

func TestApplyPromotionAdvancesStatusChangeDateOnlyForward(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(nil, nil)
	record.SchoolStatusChangeDate = strPtr("2024/03/01 00:00:00")

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.False(t, result.StatusChangeDate.Changed)
	assert.Equal(t, "2024/03/01 00:00:00", *record.SchoolStatusChangeDate)
}

func TestApplyPromotionAlreadyEnrolledStatusUnchanged(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-10T09:00:00"), strPtr("2024-02-01T17:00:00"))
	record.SchoolStatusID = enrolledID
	record.ActualStartDate = strPtr("2024/01/10 00:00:00")
	record.SchoolStatusChangeDate = strPtr("2024/01/10 00:00:00")

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.False(t, result.SchoolStatus.Changed)
	assert.True(t, result.NoChanges)
}

func TestApplySkipsStatusUpdateWhenWindowUnchanged(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(strPtr("2024-01-10T09:00:00"), strPtr("2024-03-01T17:00:00"))

	decision := models.PromotionDecision{State: models.DecisionPromote, MustUpdateStatus: true}
	result, err := svc.Apply(record, decision, "2024-01-15T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.False(t, result.SchoolStatus.Changed)
	assert.Equal(t, 5, record.SchoolStatusID)
	assert.Nil(t, record.ActualStartDate)
	assert.Nil(t, record.SchoolStatusChangeDate)
}

func TestApplyAppendsMissingPropertyEntries(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := &models.EnrollmentRecord{ID: 100, StudentID: 7, SchoolStatusID: 5}

	result, err := svc.Apply(record, models.PromotionDecision{}, "2024-01-10T09:00:00", "2024-02-01T17:00:00")

	require.NoError(t, err)
	assert.True(t, result.FirstParticipation.Changed)
	require.NotNil(t, record.FirstParticipation())
	require.NotNil(t, record.LastParticipation())
}

func TestApplyMalformedObservedDateFails(t *testing.T) {
	svc := NewReconcileService(enrolledID)
	record := enrollmentWith(nil, nil)

	_, err := svc.Apply(record, models.PromotionDecision{}, "bogus", "2024-02-01T17:00:00")
	require.Error(t, err)
}
