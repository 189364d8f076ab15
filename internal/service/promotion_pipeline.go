package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/internal/repository"
	"github.com/noah-isme/participation-sync-api/internal/sis"
	"github.com/noah-isme/participation-sync-api/pkg/dates"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type enrollmentStore interface {
	GetEnrollmentPeriod(ctx context.Context, id int64) (*models.EnrollmentRecord, error)
	SaveEnrollmentPeriod(ctx context.Context, record *models.EnrollmentRecord) error
	ListStudentCourses(ctx context.Context, studentID, enrollmentPeriodID int64) ([]models.StudentCourse, error)
}

type studentStatusWriter interface {
	GetStudent(ctx context.Context, studentID int64) (sis.Record, error)
	SaveStudent(ctx context.Context, record sis.Record) error
}

type sectionExcluder interface {
	ExcludedSectionIDs(ctx context.Context, courseCodes []string) (map[int64]struct{}, error)
}

type activationComputer interface {
	Compute(ctx context.Context, courses []models.CourseRef, earliestParticipation, windowStart, windowEnd string) (string, []int64, error)
}

type promotionRecorder interface {
	RecordPromotion(ctx context.Context, studentID, enrollmentPeriodID int64, effectiveDate string) error
}

type courseCompleter interface {
	CompleteScheduled(ctx context.Context, studentID, enrollmentPeriodID, campusID int64, courses []models.StudentCourse) ([]models.CourseStatusChange, error)
}

type decisionLogWriter interface {
	Insert(ctx context.Context, log repository.DecisionLog) error
}

// PromotionPipeline runs the core stage for one enrollment: fetch, decide,
// reconcile, write back, aggregate. All upstream data is resolved before the
// decision engine runs; the decision itself never blocks.
type PromotionPipeline struct {
	enrollments enrollmentStore
	students    studentStatusWriter
	lookup      sectionExcluder
	activation  activationComputer
	decide      *PromotionService
	reconcile   *ReconcileService
	history     promotionRecorder
	courses     courseCompleter
	decisions   decisionLogWriter

	codes            models.CourseStatusCodes
	enrolledStatusID int
	windowStart      string

	validator *validator.Validate
	logger    *zap.Logger
}

// NewPromotionPipeline constructs the pipeline.
func NewPromotionPipeline(
	enrollments enrollmentStore,
	students studentStatusWriter,
	lookup sectionExcluder,
	activation activationComputer,
	decide *PromotionService,
	reconcile *ReconcileService,
	history promotionRecorder,
	courses courseCompleter,
	decisions decisionLogWriter,
	codes models.CourseStatusCodes,
	enrolledStatusID int,
	windowStart string,
	validate *validator.Validate,
	logger *zap.Logger,
) *PromotionPipeline {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionPipeline{
		enrollments:      enrollments,
		students:         students,
		lookup:           lookup,
		activation:       activation,
		decide:           decide,
		reconcile:        reconcile,
		history:          history,
		courses:          courses,
		decisions:        decisions,
		codes:            codes,
		enrolledStatusID: enrolledStatusID,
		windowStart:      windowStart,
		validator:        validate,
		logger:           logger,
	}
}

// Evaluate runs the full decision flow for one enrollment.
func (p *PromotionPipeline) Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
	if err := p.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluate request")
	}

	record, err := p.enrollments.GetEnrollmentPeriod(ctx, req.StudentEnrollmentPeriodID)
	if err != nil {
		return nil, err
	}

	allCourses, err := p.enrollments.ListStudentCourses(ctx, req.StudentID, req.StudentEnrollmentPeriodID)
	if err != nil {
		return nil, err
	}

	excluded, err := p.lookup.ExcludedSectionIDs(ctx, req.ExcludedCourseCodes)
	if err != nil {
		return nil, err
	}
	eligible := EligibleCourses(allCourses, p.codes, excluded)

	reference, err := referenceParticipation(record.FirstParticipation(), req.Earliest)
	if err != nil {
		return nil, err
	}

	var (
		activationDate string
		missing        []int64
	)
	if len(eligible) > 0 {
		activationDate, missing, err = p.activation.Compute(ctx, eligible, reference, p.windowStart, req.AttendanceWindowEnd)
		if err != nil {
			return nil, err
		}
	}

	promotableIDs := make(map[int]struct{}, len(req.PromotableStatusIDs))
	for _, id := range req.PromotableStatusIDs {
		promotableIDs[id] = struct{}{}
	}

	decision, err := p.decide.Decide(PromotionInput{
		CurrentStatusID:           record.SchoolStatusID,
		PromotableStatusIDs:       promotableIDs,
		HasCourses:                len(eligible) > 0,
		FirstParticipation:        record.FirstParticipation(),
		EarliestObserved:          req.Earliest,
		ActivationDate:            activationDate,
		MissingAttendanceSections: missing,
	})
	if err != nil {
		return nil, err
	}

	response := &dto.EvaluateResponse{
		StudentEnrollmentPeriodID:    req.StudentEnrollmentPeriodID,
		FirstParticipation:           dto.FieldUnchanged,
		LastParticipation:            dto.FieldUnchanged,
		SchoolStatus:                 dto.FieldUnchanged,
		ActualStartDate:              dto.FieldUnchanged,
		StatusChangeDate:             dto.FieldUnchanged,
		ActivationDate:               decision.ActivationDate,
		EarliestParticipation:        reference,
		Promoted:                     decision.MustUpdateStatus,
		NoRegisteredCourses:          decision.Flags.NoRegisteredCourses,
		ActivationAfterParticipation: decision.Flags.ActivationAfterParticipation,
		MissingAttendanceSections:    decision.MissingAttendanceSections,
	}

	// The participation window widens for every student with new activity,
	// promotable or not. Capture the enrolled check before the reconciler
	// can overwrite the status.
	isEnrolled := record.SchoolStatusID == p.enrolledStatusID

	result, err := p.reconcile.Apply(record, decision, req.Earliest, req.Latest)
	if err != nil {
		return nil, err
	}
	response.FirstParticipation = dto.FieldState(result.FirstParticipation.Changed, result.FirstParticipation.Value)
	response.LastParticipation = dto.FieldState(result.LastParticipation.Changed, result.LastParticipation.Value)
	response.SchoolStatus = dto.FieldState(result.SchoolStatus.Changed, result.SchoolStatus.Value)
	response.ActualStartDate = dto.FieldState(result.ActualStartDate.Changed, result.ActualStartDate.Value)
	response.StatusChangeDate = dto.FieldState(result.StatusChangeDate.Changed, result.StatusChangeDate.Value)
	response.EarliestParticipation = result.EarliestParticipation

	if result.NoChanges {
		p.logger.Info("evaluate_no_changes",
			zap.Int64("student_enrollment_period_id", req.StudentEnrollmentPeriodID))
		p.logDecision(ctx, req, decision, result.EarliestParticipation)
		return response, nil
	}

	if err := p.enrollments.SaveEnrollmentPeriod(ctx, record); err != nil {
		return nil, err
	}

	if decision.MustUpdateStatus {
		if err := p.promoteStudent(ctx, req.StudentID); err != nil {
			return nil, err
		}
		if err := p.history.RecordPromotion(ctx, req.StudentID, req.StudentEnrollmentPeriodID, result.EarliestParticipation); err != nil {
			return nil, err
		}
	}

	// Scheduled courses complete for a fresh promotion and for students who
	// were already enrolled before this run.
	if decision.MustUpdateStatus || isEnrolled {
		changes, err := p.courses.CompleteScheduled(ctx, req.StudentID, req.StudentEnrollmentPeriodID, req.CampusID, allCourses)
		if err != nil {
			return nil, err
		}
		response.CourseStatusChanges = changes
	}

	p.logDecision(ctx, req, decision, result.EarliestParticipation)
	return response, nil
}

// promoteStudent mirrors the enrollment-level status onto the student record.
func (p *PromotionPipeline) promoteStudent(ctx context.Context, studentID int64) error {
	record, err := p.students.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if current, ok := record.Int("schoolStatusId"); ok && current == p.enrolledStatusID {
		return nil
	}
	if err := record.Set("schoolStatusId", p.enrolledStatusID); err != nil {
		return err
	}
	return p.students.SaveStudent(ctx, record)
}

// logDecision writes the denormalized reporting row. A reporting failure never
// rolls back platform writes that already happened; it is logged and dropped.
func (p *PromotionPipeline) logDecision(ctx context.Context, req dto.EvaluateRequest, decision models.PromotionDecision, earliestParticipation string) {
	if p.decisions == nil {
		return
	}
	err := p.decisions.Insert(ctx, repository.DecisionLog{
		StudentID:                    req.StudentID,
		StudentEnrollmentPeriodID:    req.StudentEnrollmentPeriodID,
		State:                        string(decision.State),
		ActivationDate:               decision.ActivationDate,
		EarliestParticipation:        earliestParticipation,
		Promoted:                     decision.MustUpdateStatus,
		NoRegisteredCourses:          decision.Flags.NoRegisteredCourses,
		ActivationAfterParticipation: decision.Flags.ActivationAfterParticipation,
		MissingAttendanceSections:    decision.MissingAttendanceSections,
	})
	if err != nil {
		p.logger.Error("decision_log_failed",
			zap.Int64("student_enrollment_period_id", req.StudentEnrollmentPeriodID),
			zap.Error(err))
	}
}

// referenceParticipation is the earlier of the persisted first-participation
// date and the observed earliest, rendered canonically.
func referenceParticipation(firstParticipation *string, observedEarliest string) (string, error) {
	observed, err := dates.Parse(observedEarliest)
	if err != nil {
		return "", err
	}
	reference := observed
	if firstParticipation != nil && *firstParticipation != "" {
		first, err := dates.Parse(*firstParticipation)
		if err != nil {
			return "", err
		}
		if first.Before(reference) {
			reference = first
		}
	}
	return reference.Format(dates.CanonicalLayout), nil
}
