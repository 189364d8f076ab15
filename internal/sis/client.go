// Package sis is the client for the student-information-system platform: an
// OData surface for list reads and a command surface with get/save envelopes.
package sis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/pkg/config"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/retry"
)

// Observer receives upstream call timings; satisfied by the metrics service.
type Observer interface {
	ObservePlatformCall(platform, operation string, status int, err error)
}

// Client talks to the SIS. All calls go through the bounded retry policy;
// exhausted retries surface as upstream errors for the orchestrator.
type Client struct {
	http     *resty.Client
	policy   retry.Policy
	logger   *zap.Logger
	observer Observer
}

// NewClient constructs a SIS client from configuration.
func NewClient(cfg config.SISConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("ApiKey", cfg.APIKey)

	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		policy.BaseDelay = cfg.RetryDelay
	}
	policy.Jitter = true

	return &Client{http: httpClient, policy: policy, logger: logger, observer: observer}
}

type listEnvelope struct {
	Value json.RawMessage `json:"value"`
}

type commandEnvelope struct {
	Payload struct {
		Data json.RawMessage `json:"data"`
	} `json:"payload"`
}

type statusError struct {
	status int
	op     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.op, e.status)
}

func retryableUpstream(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// transport-level failures are always worth another attempt
	return true
}

func (c *Client) observe(op string, status int, err error) {
	if c.observer != nil {
		c.observer.ObservePlatformCall("sis", op, status, err)
	}
}

func (c *Client) getList(ctx context.Context, op, path string, query map[string]string, out interface{}) error {
	var envelope listEnvelope
	err := c.policy.Do(ctx, retryableUpstream, func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx).SetResult(&envelope)
		if query != nil {
			req.SetQueryParams(query)
		}
		resp, err := req.Get(path)
		if err != nil {
			c.observe(op, 0, err)
			return err
		}
		c.observe(op, resp.StatusCode(), nil)
		c.logger.Debug("sis_list", zap.String("operation", op), zap.Int("status", resp.StatusCode()))
		if resp.IsError() {
			return &statusError{status: resp.StatusCode(), op: op}
		}
		return nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "sis "+op+" failed")
	}
	if envelope.Value == nil {
		return nil
	}
	return json.Unmarshal(envelope.Value, out)
}

func (c *Client) command(ctx context.Context, op, path string, body interface{}, out interface{}) error {
	err := c.policy.Do(ctx, retryableUpstream, func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body)
		if out != nil {
			req.SetResult(out)
		}
		resp, err := req.Post(path)
		if err != nil {
			c.observe(op, 0, err)
			return err
		}
		c.observe(op, resp.StatusCode(), nil)
		c.logger.Debug("sis_command", zap.String("operation", op), zap.Int("status", resp.StatusCode()))
		if resp.IsError() {
			return &statusError{status: resp.StatusCode(), op: op}
		}
		return nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "sis "+op+" failed")
	}
	return nil
}

type payloadBody struct {
	Payload interface{} `json:"payload"`
}

type entityBody struct {
	Payload struct {
		Entity interface{} `json:"entity"`
	} `json:"payload"`
}

func newEntityBody(entity interface{}) entityBody {
	var body entityBody
	body.Payload.Entity = entity
	return body
}

// ListSchoolStatuses returns every coarse status definition.
func (c *Client) ListSchoolStatuses(ctx context.Context) ([]models.SchoolStatus, error) {
	var statuses []models.SchoolStatus
	err := c.getList(ctx, "SchoolStatuses", "/ds/campusnexus/SchoolStatuses", nil, &statuses)
	return statuses, err
}

// ListEnrollmentPeriodsByStatus returns enrollment periods in the given status.
func (c *Client) ListEnrollmentPeriodsByStatus(ctx context.Context, statusID int) ([]models.EnrollmentPeriodSummary, error) {
	var periods []models.EnrollmentPeriodSummary
	query := map[string]string{"$filter": fmt.Sprintf("SchoolStatusId eq %d", statusID)}
	err := c.getList(ctx, "StudentEnrollmentPeriods", "/ds/campusnexus/StudentEnrollmentPeriods", query, &periods)
	return periods, err
}

// ListStudentCourses returns the student's course registrations in scope of
// one enrollment period.
func (c *Client) ListStudentCourses(ctx context.Context, studentID, enrollmentPeriodID int64) ([]models.StudentCourse, error) {
	var courses []models.StudentCourse
	query := map[string]string{
		"$filter": fmt.Sprintf("StudentEnrollmentPeriodId eq %d and StudentId eq %d", enrollmentPeriodID, studentID),
	}
	err := c.getList(ctx, "StudentCourses", "/ds/campusnexus/StudentCourses", query, &courses)
	return courses, err
}

// ListClassSections returns every class section.
func (c *Client) ListClassSections(ctx context.Context) ([]models.ClassSection, error) {
	var sections []models.ClassSection
	err := c.getList(ctx, "ClassSections", "/ds/campusnexus/ClassSections", nil, &sections)
	return sections, err
}

// ListTerms returns every academic term.
func (c *Client) ListTerms(ctx context.Context) ([]models.Term, error) {
	var terms []models.Term
	query := map[string]string{"$select": "Id,Code,StartDate,EndDate"}
	err := c.getList(ctx, "Terms", "/ds/campusnexus/Terms", query, &terms)
	return terms, err
}

// AttendanceDetail returns the per-meeting attendance rows for one course.
// endDate bounds the upstream query window, not the downstream filtering.
func (c *Client) AttendanceDetail(ctx context.Context, studentCourseID, classSectionID int64, startDate, endDate string) ([]models.CourseMeeting, error) {
	var meetings []models.CourseMeeting
	path := fmt.Sprintf(
		"/ds/campusnexus/Attendance/CampusNexus.GetStudentAttendanceClassDetailList(studentCourseId=%d,classSectionId=%d,startDate='%s',endDate='%s')",
		studentCourseID, classSectionID, startDate, endDate,
	)
	err := c.getList(ctx, "AttendanceDetail", path, nil, &meetings)
	return meetings, err
}

// GetEnrollmentPeriod fetches one enrollment record with every platform
// field preserved for a later save.
func (c *Client) GetEnrollmentPeriod(ctx context.Context, id int64) (*models.EnrollmentRecord, error) {
	var envelope commandEnvelope
	body := payloadBody{Payload: map[string]interface{}{"Id": id}}
	if err := c.command(ctx, "StudentEnrollmentPeriod/get", "/api/commands/Academics/StudentEnrollmentPeriod/get", body, &envelope); err != nil {
		return nil, err
	}
	record := &models.EnrollmentRecord{}
	if err := json.Unmarshal(envelope.Payload.Data, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed enrollment record")
	}
	return record, nil
}

// SaveEnrollmentPeriod writes the reconciled enrollment record back. The
// platform's save contract renames the get envelope's data to entity and
// carries none of the notification fields.
func (c *Client) SaveEnrollmentPeriod(ctx context.Context, record *models.EnrollmentRecord) error {
	return c.command(ctx, "UpdateStudentEnrollmentPeriod", "/api/commands/Academics/StudentEnrollmentPeriod/UpdateStudentEnrollmentPeriod", newEntityBody(record), nil)
}

// GetStudent fetches the student-level record.
func (c *Client) GetStudent(ctx context.Context, studentID int64) (Record, error) {
	var envelope commandEnvelope
	body := payloadBody{Payload: map[string]interface{}{"id": studentID}}
	if err := c.command(ctx, "Student/get", "/api/commands/Common/Student/get", body, &envelope); err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(envelope.Payload.Data, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed student record")
	}
	return record, nil
}

// SaveStudent writes a modified student-level record back.
func (c *Client) SaveStudent(ctx context.Context, record Record) error {
	return c.command(ctx, "Student/save", "/api/commands/Common/Student/save", payloadBody{Payload: record}, nil)
}

// LatestStatusHistoryID returns the newest status-history row ID for the
// enrollment, or ok=false when no history exists.
func (c *Client) LatestStatusHistoryID(ctx context.Context, studentID, enrollmentPeriodID int64) (int64, bool, error) {
	var rows []struct {
		ID int64 `json:"Id"`
	}
	path := fmt.Sprintf(
		"/ds/campusnexus/StudentSchoolStatusHistory/CampusNexus.GetStudentEnrollmentStatusChangesList(studentId=%d,studentEnrollmentPeriodId=%d)",
		studentID, enrollmentPeriodID,
	)
	query := map[string]string{"$orderby": "CreatedDateTime desc"}
	if err := c.getList(ctx, "StatusHistoryList", path, query, &rows); err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].ID, true, nil
}

// GetStatusHistory fetches one status-history record.
func (c *Client) GetStatusHistory(ctx context.Context, id int64) (Record, error) {
	var envelope commandEnvelope
	body := payloadBody{Payload: map[string]interface{}{"id": id}}
	if err := c.command(ctx, "StatusHistory/get", "/api/commands/Common/StudentSchoolStatusHistory/get", body, &envelope); err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(envelope.Payload.Data, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed status history record")
	}
	return record, nil
}

// SaveNewStatusHistory appends a status-history record.
func (c *Client) SaveNewStatusHistory(ctx context.Context, record Record) error {
	return c.command(ctx, "StatusHistory/saveNew", "/api/commands/Common/StudentSchoolStatusHistory/saveNew", payloadBody{Payload: record}, nil)
}

// GetStudentCourse fetches one course registration record.
func (c *Client) GetStudentCourse(ctx context.Context, id int64) (Record, error) {
	var envelope commandEnvelope
	body := payloadBody{Payload: map[string]interface{}{"Id": id}}
	if err := c.command(ctx, "StudentCourse/get", "/api/commands/Academics/StudentCourse/get", body, &envelope); err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(envelope.Payload.Data, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed student course record")
	}
	return record, nil
}

// UpdateStudentCourse writes a modified course registration back.
func (c *Client) UpdateStudentCourse(ctx context.Context, campusID int64, record Record) error {
	body := map[string]interface{}{
		"payload": map[string]interface{}{
			"campusId": campusID,
			"entity":   record,
		},
	}
	return c.command(ctx, "StudentCourse/update", "/api/commands/Academics/StudentCourse/updateStudentCourse", body, nil)
}
