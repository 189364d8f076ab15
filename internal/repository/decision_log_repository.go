package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DecisionLog is one denormalized promotion decision row for reporting.
type DecisionLog struct {
	StudentID                    int64
	StudentEnrollmentPeriodID    int64
	State                        string
	ActivationDate               string
	EarliestParticipation        string
	Promoted                     bool
	NoRegisteredCourses          bool
	ActivationAfterParticipation bool
	MissingAttendanceSections    []int64
}

// DecisionLogRepository persists decision outcomes to the reporting database.
type DecisionLogRepository struct {
	db *sqlx.DB
}

// NewDecisionLogRepository constructs the repository.
func NewDecisionLogRepository(db *sqlx.DB) *DecisionLogRepository {
	return &DecisionLogRepository{db: db}
}

// Insert writes one decision row.
func (r *DecisionLogRepository) Insert(ctx context.Context, log DecisionLog) error {
	const query = `INSERT INTO promotion_decision_logs
	(id, student_id, student_enrollment_period_id, state, activation_date, earliest_participation,
	 promoted, no_registered_courses, activation_after_participation, missing_attendance_sections, decided_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		log.StudentID,
		log.StudentEnrollmentPeriodID,
		log.State,
		log.ActivationDate,
		log.EarliestParticipation,
		log.Promoted,
		log.NoRegisteredCourses,
		log.ActivationAfterParticipation,
		pq.Array(log.MissingAttendanceSections),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert decision log: %w", err)
	}
	return nil
}
