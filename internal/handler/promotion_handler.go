package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
	"github.com/noah-isme/participation-sync-api/pkg/response"
)

type promotionEvaluator interface {
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EvaluateResponse, error)
}

type outcomeRecorder interface {
	RecordStageOutcome(stage, outcome string)
}

// PromotionHandler exposes the core evaluation stage.
type PromotionHandler struct {
	pipeline promotionEvaluator
	metrics  outcomeRecorder
}

// NewPromotionHandler builds the handler.
func NewPromotionHandler(pipeline promotionEvaluator, metrics outcomeRecorder) *PromotionHandler {
	return &PromotionHandler{pipeline: pipeline, metrics: metrics}
}

func (h *PromotionHandler) recordOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordStageOutcome("promotions_evaluate", outcome)
	}
}

// Evaluate handles POST /sync/promotions/evaluate.
func (h *PromotionHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordOutcome("bad_request")
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}
	result, err := h.pipeline.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.recordOutcome("error")
		response.Error(c, err)
		return
	}
	if result.Promoted {
		h.recordOutcome("promoted")
	} else {
		h.recordOutcome("not_promoted")
	}
	response.JSON(c, http.StatusOK, result)
}
