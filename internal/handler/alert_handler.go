package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/response"
)

type alertAssembler interface {
	NoRegisteredCourses(ctx context.Context, req dto.AlertRequest) (*dto.AlertResponse, error)
	MissingAttendance(ctx context.Context, req dto.AlertRequest) (*dto.AlertResponse, error)
}

// AlertHandler exposes the reviewer alert stages.
type AlertHandler struct {
	service alertAssembler
}

// NewAlertHandler builds the handler.
func NewAlertHandler(service alertAssembler) *AlertHandler {
	return &AlertHandler{service: service}
}

// NoRegisteredCourses handles POST /sync/alerts/no-registered-courses.
func (h *AlertHandler) NoRegisteredCourses(c *gin.Context) {
	var req dto.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.service.NoRegisteredCourses(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// MissingAttendance handles POST /sync/alerts/missing-attendance.
func (h *AlertHandler) MissingAttendance(c *gin.Context) {
	var req dto.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.service.MissingAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
