// Package lms is the client for the learning-management-system platform. List
// endpoints paginate through the Link response header (rel="next").
package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

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

// Client talks to the LMS REST surface.
type Client struct {
	http      *resty.Client
	policy    retry.Policy
	logger    *zap.Logger
	observer  Observer
	pageSize  int
	accountID int
}

// NewClient constructs an LMS client from configuration.
func NewClient(cfg config.LMSConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.BearerToken)

	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		policy.BaseDelay = cfg.RetryDelay
	}
	policy.Jitter = true

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	accountID := cfg.AccountID
	if accountID <= 0 {
		accountID = 1
	}

	return &Client{http: httpClient, policy: policy, logger: logger, observer: observer, pageSize: pageSize, accountID: accountID}
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
	return true
}

func (c *Client) observe(op string, status int, err error) {
	if c.observer != nil {
		c.observer.ObservePlatformCall("lms", op, status, err)
	}
}

// getPaginated walks every page of a list endpoint, appending raw page bodies.
// Each page fetch carries its own retry budget, matching the original client
// behaviour of resetting retries after a successful page.
func (c *Client) getPaginated(ctx context.Context, op, path string, params map[string]string) ([]json.RawMessage, error) {
	var pages []json.RawMessage
	page := 1

	for {
		var (
			body []byte
			link string
		)
		err := c.policy.Do(ctx, retryableUpstream, func(ctx context.Context) error {
			req := c.http.R().SetContext(ctx).SetQueryParams(params).
				SetQueryParam("per_page", strconv.Itoa(c.pageSize)).
				SetQueryParam("page", strconv.Itoa(page))
			resp, err := req.Get(path)
			if err != nil {
				c.observe(op, 0, err)
				return err
			}
			c.observe(op, resp.StatusCode(), nil)
			c.logger.Debug("lms_page", zap.String("operation", op), zap.Int("page", page), zap.Int("status", resp.StatusCode()))
			if resp.IsError() {
				return &statusError{status: resp.StatusCode(), op: op}
			}
			body = resp.Body()
			link = resp.Header().Get("Link")
			return nil
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "lms "+op+" failed")
		}

		pages = append(pages, json.RawMessage(body))

		if !strings.Contains(link, `rel="next"`) {
			break
		}
		page++
	}

	return pages, nil
}

func decodePages[T any](pages []json.RawMessage) ([]T, error) {
	var all []T
	for _, page := range pages {
		var items []T
		if err := json.Unmarshal(page, &items); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed lms page")
		}
		all = append(all, items...)
	}
	return all, nil
}

// ListTerms returns the enrollment terms of the configured account.
func (c *Client) ListTerms(ctx context.Context) ([]models.LMSTerm, error) {
	var envelope struct {
		EnrollmentTerms []models.LMSTerm `json:"enrollment_terms"`
	}
	err := c.policy.Do(ctx, retryableUpstream, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).
			SetQueryParam("per_page", strconv.Itoa(c.pageSize)).
			SetResult(&envelope).
			Get(fmt.Sprintf("/api/v1/accounts/%d/terms", c.accountID))
		if err != nil {
			c.observe("Terms", 0, err)
			return err
		}
		c.observe("Terms", resp.StatusCode(), nil)
		if resp.IsError() {
			return &statusError{status: resp.StatusCode(), op: "Terms"}
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "lms Terms failed")
	}
	return envelope.EnrollmentTerms, nil
}

// ListCoursesByTerm returns every course of the enrollment term.
func (c *Client) ListCoursesByTerm(ctx context.Context, termID int64) ([]models.LMSCourse, error) {
	params := map[string]string{"enrollment_term_id": strconv.FormatInt(termID, 10)}
	pages, err := c.getPaginated(ctx, "Courses", fmt.Sprintf("/api/v1/accounts/%d/courses", c.accountID), params)
	if err != nil {
		return nil, err
	}
	return decodePages[models.LMSCourse](pages)
}

// StudentSubmissions groups one student's assignment submissions in a course.
type StudentSubmissions struct {
	SISUserID   string       `json:"sis_user_id"`
	UserID      int64        `json:"user_id"`
	Submissions []Submission `json:"submissions"`
}

// Submission is one assignment submission.
type Submission struct {
	SubmittedAt string `json:"submitted_at"`
	URL         string `json:"url"`
}

// ListSubmissions returns grouped submissions for a course, limited to
// activity after submittedSince.
func (c *Client) ListSubmissions(ctx context.Context, courseID int64, submittedSince string) ([]StudentSubmissions, error) {
	params := map[string]string{
		"student_ids[]":   "all",
		"grouped":         "true",
		"submitted_since": submittedSince,
	}
	pages, err := c.getPaginated(ctx, "Submissions", fmt.Sprintf("/api/v1/courses/%d/students/submissions", courseID), params)
	if err != nil {
		return nil, err
	}
	return decodePages[StudentSubmissions](pages)
}
