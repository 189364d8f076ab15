package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/response"
)

type termResolver interface {
	Resolve(ctx context.Context, req dto.TermResolveRequest) (*dto.TermResolveResponse, error)
}

// TermHandler exposes the term-resolution stage.
type TermHandler struct {
	service termResolver
}

// NewTermHandler builds the handler.
func NewTermHandler(service termResolver) *TermHandler {
	return &TermHandler{service: service}
}

// Resolve handles POST /sync/terms/resolve.
func (h *TermHandler) Resolve(c *gin.Context) {
	var req dto.TermResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.service.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
