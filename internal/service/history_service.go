package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/sis"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type statusHistoryStore interface {
	LatestStatusHistoryID(ctx context.Context, studentID, enrollmentPeriodID int64) (int64, bool, error)
	GetStatusHistory(ctx context.Context, id int64) (sis.Record, error)
	SaveNewStatusHistory(ctx context.Context, record sis.Record) error
}

// HistoryService appends the status-history record documenting a promotion.
// The platform requires a full history row, so the newest existing row is
// cloned and rewritten rather than built from scratch.
type HistoryService struct {
	sis              statusHistoryStore
	enrolledStatusID int
	logger           *zap.Logger
}

// NewHistoryService constructs the service.
func NewHistoryService(sisClient statusHistoryStore, enrolledStatusID int, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{sis: sisClient, enrolledStatusID: enrolledStatusID, logger: logger}
}

// RecordPromotion appends an activation history row effective at the earliest
// participation date. When the newest row already carries the enrolled status
// the promotion was recorded before and nothing is appended.
func (s *HistoryService) RecordPromotion(ctx context.Context, studentID, enrollmentPeriodID int64, effectiveDate string) error {
	latestID, ok, err := s.sis.LatestStatusHistoryID(ctx, studentID, enrollmentPeriodID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrUpstream, "enrollment has no status history to clone")
	}

	record, err := s.sis.GetStatusHistory(ctx, latestID)
	if err != nil {
		return err
	}

	if current, found := record.Int("newSchoolStatusId"); found && current == s.enrolledStatusID {
		s.logger.Info("history_already_enrolled",
			zap.Int64("student_id", studentID),
			zap.Int64("student_enrollment_period_id", enrollmentPeriodID))
		return nil
	}

	clone := record.Clone()
	previousStatus, _ := record.Int("newSchoolStatusId")

	clone.SetNull("id")
	if err := clone.Set("previousSchoolStatusId", previousStatus); err != nil {
		return err
	}
	if err := clone.Set("newSchoolStatusId", s.enrolledStatusID); err != nil {
		return err
	}
	if err := clone.Set("statusChangeType", "S"); err != nil {
		return err
	}
	if err := clone.Set("internalNote", "Active Enrollment"); err != nil {
		return err
	}
	if err := clone.Set("note", "Activated by Participation"); err != nil {
		return err
	}
	if err := clone.Set("effectiveDate", effectiveDate); err != nil {
		return err
	}

	if err := s.sis.SaveNewStatusHistory(ctx, clone); err != nil {
		return err
	}
	s.logger.Info("history_recorded",
		zap.Int64("student_id", studentID),
		zap.Int64("student_enrollment_period_id", enrollmentPeriodID),
		zap.String("effective_date", effectiveDate))
	return nil
}
