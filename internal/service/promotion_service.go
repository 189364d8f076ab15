package service

import (
	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
)

// PromotionInput carries everything the decision needs, fully resolved. All
// fetching happens before this point; the decision itself performs no I/O.
type PromotionInput struct {
	CurrentStatusID int
	// PromotableStatusIDs is caller supplied, never hardcoded.
	PromotableStatusIDs map[int]struct{}
	HasCourses          bool
	// FirstParticipation is the enrollment's existing first-participation
	// date; nil when never recorded.
	FirstParticipation *string
	// EarliestObserved is the earliest submission timestamp seen on the
	// learning platform for this student.
	EarliestObserved string
	// ActivationDate is the end-of-day normalised activation date; empty
	// means no valid attendance data exists.
	ActivationDate            string
	MissingAttendanceSections []int64
}

// PromotionService is the state transition over one enrollment.
type PromotionService struct{}

// NewPromotionService constructs the decision engine.
func NewPromotionService() *PromotionService {
	return &PromotionService{}
}

// Decide evaluates one enrollment. It is a pure function of its input.
func (s *PromotionService) Decide(in PromotionInput) (models.PromotionDecision, error) {
	decision := models.PromotionDecision{
		ActivationDate:            in.ActivationDate,
		MissingAttendanceSections: in.MissingAttendanceSections,
	}

	if _, ok := in.PromotableStatusIDs[in.CurrentStatusID]; !ok {
		decision.State = models.DecisionNotPromotable
		return decision, nil
	}

	if !in.HasCourses {
		decision.State = models.DecisionNoCourses
		decision.Flags.NoRegisteredCourses = true
		decision.ActivationDate = ""
		return decision, nil
	}

	if in.ActivationDate == "" {
		// No attendance evidence either way. Absence of contrary evidence
		// favours promotion.
		decision.State = models.DecisionNoAttendanceData
		decision.MustUpdateStatus = true
		return decision, nil
	}

	activation, err := dates.Parse(in.ActivationDate)
	if err != nil {
		return decision, err
	}

	if in.FirstParticipation != nil && *in.FirstParticipation != "" {
		first, err := dates.Parse(*in.FirstParticipation)
		if err != nil {
			return decision, err
		}
		if dates.SameOrBefore(first, activation) {
			decision.State = models.DecisionPromote
			decision.MustUpdateStatus = true
			return decision, nil
		}
	}

	earliest, err := dates.Parse(in.EarliestObserved)
	if err != nil {
		return decision, err
	}
	if dates.SameOrBefore(earliest, activation) {
		decision.State = models.DecisionPromote
		decision.MustUpdateStatus = true
		return decision, nil
	}

	decision.State = models.DecisionReject
	decision.Flags.ActivationAfterParticipation = true
	return decision, nil
}
