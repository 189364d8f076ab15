package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/response"
)

type rosterLister interface {
	List(ctx context.Context, req dto.StudentsRequest) (*dto.StudentsResponse, error)
}

type numberResolver interface {
	Resolve(ctx context.Context, req dto.StudentNumbersRequest) (*dto.StudentNumbersResponse, error)
}

// StudentHandler exposes the roster and student-number stages.
type StudentHandler struct {
	roster  rosterLister
	numbers numberResolver
}

// NewStudentHandler builds the handler.
func NewStudentHandler(roster rosterLister, numbers numberResolver) *StudentHandler {
	return &StudentHandler{roster: roster, numbers: numbers}
}

// List handles POST /sync/students.
func (h *StudentHandler) List(c *gin.Context) {
	var req dto.StudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.roster.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Numbers handles POST /sync/students/numbers.
func (h *StudentHandler) Numbers(c *gin.Context) {
	var req dto.StudentNumbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.numbers.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
