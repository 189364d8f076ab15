package service

import (
	"time"

	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
)

// FieldChange records whether a reconciliation touched one field and the value
// it was set to.
type FieldChange struct {
	Changed bool
	Value   string
}

// ReconcileResult describes every field-level outcome of one reconciliation.
// NoChanges is true when neither participation bound moved; it short-circuits
// all downstream write-backs, the status update itself included.
type ReconcileResult struct {
	NoChanges          bool
	FirstParticipation FieldChange
	LastParticipation  FieldChange
	SchoolStatus       FieldChange
	ActualStartDate    FieldChange
	StatusChangeDate   FieldChange
	// EarliestParticipation is the earlier of the persisted first-participation
	// date and the observed earliest; downstream history records use it as the
	// effective date.
	EarliestParticipation string
}

// ReconcileService applies a promotion decision to an enrollment record in
// place. Participation dates only widen, never shrink, and a manually set
// start date is never overwritten.
type ReconcileService struct {
	enrolledStatusID int
}

// NewReconcileService constructs the reconciler with the institution's
// "Enrolled" status id.
func NewReconcileService(enrolledStatusID int) *ReconcileService {
	return &ReconcileService{enrolledStatusID: enrolledStatusID}
}

func setProperty(record *models.EnrollmentRecord, name, value string) {
	if !record.SetExtendedProperty(name, value) {
		v := value
		record.ExtendedProperties = append(record.ExtendedProperties, models.ExtendedProperty{Name: name, Value: &v})
	}
}

func blank(s *string) bool {
	return s == nil || *s == ""
}

// Apply mutates the record per the decision and reports what changed.
// earliest and latest are the observed participation window bounds.
func (s *ReconcileService) Apply(record *models.EnrollmentRecord, decision models.PromotionDecision, earliest, latest string) (ReconcileResult, error) {
	var result ReconcileResult

	observedEarliest, err := dates.Parse(earliest)
	if err != nil {
		return result, err
	}
	observedLatest, err := dates.Parse(latest)
	if err != nil {
		return result, err
	}

	// The effective earliest participation is the earlier of the persisted
	// first-participation date and the observed one.
	effective := observedEarliest
	existingFirst := record.FirstParticipation()
	if !blank(existingFirst) {
		first, err := dates.Parse(*existingFirst)
		if err != nil {
			return result, err
		}
		if first.Before(effective) {
			effective = first
		}
	}
	result.EarliestParticipation = effective.Format(dates.CanonicalLayout)

	if blank(existingFirst) {
		setProperty(record, models.PropFirstParticipation, earliest)
		result.FirstParticipation = FieldChange{Changed: true, Value: earliest}
	}

	existingLast := record.LastParticipation()
	widenLast := blank(existingLast)
	if !widenLast {
		last, err := dates.Parse(*existingLast)
		if err != nil {
			return result, err
		}
		widenLast = last.Before(observedLatest)
	}
	if widenLast {
		setProperty(record, models.PropLastParticipation, latest)
		result.LastParticipation = FieldChange{Changed: true, Value: latest}
	}

	// The participation window is the write gate: when neither bound moved,
	// nothing is written back, the status fields included.
	result.NoChanges = !result.FirstParticipation.Changed && !result.LastParticipation.Changed
	if result.NoChanges {
		return result, nil
	}

	if decision.MustUpdateStatus {
		s.applyPromotion(record, effective, &result)
	}
	return result, nil
}

func (s *ReconcileService) applyPromotion(record *models.EnrollmentRecord, effective time.Time, result *ReconcileResult) {
	if record.SchoolStatusID != s.enrolledStatusID {
		record.SchoolStatusID = s.enrolledStatusID
		result.SchoolStatus = FieldChange{Changed: true, Value: "Enrolled"}
	}

	startDate := dates.FormatSISDate(effective)

	// A pre-existing start date is manual data and is left alone.
	if blank(record.ActualStartDate) {
		v := startDate
		record.ActualStartDate = &v
		result.ActualStartDate = FieldChange{Changed: true, Value: startDate}
	}

	advance := blank(record.SchoolStatusChangeDate)
	if !advance {
		if existing, err := dates.Parse(*record.SchoolStatusChangeDate); err == nil {
			advance = existing.Before(dates.DayOf(effective))
		}
	}
	if advance {
		v := startDate
		record.SchoolStatusChangeDate = &v
		result.StatusChangeDate = FieldChange{Changed: true, Value: startDate}
	}
}
