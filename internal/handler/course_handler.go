package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/response"
)

type courseLister interface {
	List(ctx context.Context, req dto.CoursesRequest) (*dto.CoursesResponse, error)
}

type submissionCollector interface {
	Collect(ctx context.Context, req dto.SubmissionsRequest) (*dto.SubmissionsResponse, error)
}

type participationAggregator interface {
	Aggregate(ctx context.Context, req dto.AggregateRequest) (*dto.AggregateResponse, error)
}

// CourseHandler exposes the course, submission and aggregation stages.
type CourseHandler struct {
	courses     courseLister
	submissions submissionCollector
	aggregator  participationAggregator
}

// NewCourseHandler builds the handler.
func NewCourseHandler(courses courseLister, submissions submissionCollector, aggregator participationAggregator) *CourseHandler {
	return &CourseHandler{courses: courses, submissions: submissions, aggregator: aggregator}
}

// List handles POST /sync/courses.
func (h *CourseHandler) List(c *gin.Context) {
	var req dto.CoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.courses.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Submissions handles POST /sync/submissions.
func (h *CourseHandler) Submissions(c *gin.Context) {
	var req dto.SubmissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.submissions.Collect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Aggregate handles POST /sync/submissions/aggregate.
func (h *CourseHandler) Aggregate(c *gin.Context) {
	var req dto.AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.aggregator.Aggregate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
