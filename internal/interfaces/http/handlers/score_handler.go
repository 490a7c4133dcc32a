package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// ScoreHandler handles HTTP requests for compliance scores.
type ScoreHandler struct {
	compliance service.ComplianceAppService
	logger     logger.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(compliance service.ComplianceAppService, log logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		compliance: compliance,
		logger:     log.WithComponent("score_handler"),
	}
}

// CalculateScore godoc
// @Summary      Calculate compliance score
// @Description  Recomputes the five sub-scores of a tenant and persists a new score.
// @Tags         scores
// @Accept       json
// @Produce      json
// @Param        tenant_id  path  string  true  "Tenant ID"
// @Success      201  {object}  models.ComplianceScore
// @Router       /api/v1/tenants/{tenant_id}/scores [post]
func (h *ScoreHandler) CalculateScore(c *gin.Context) {
	var req dto.CalculateScoreRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		sendError(c, h.logger, "calculate_score", err)
		return
	}

	score, err := h.compliance.CalculateScore(c.Request.Context(), c.Param("tenant_id"), req.CalculatedBy)
	if err != nil {
		sendError(c, h.logger, "calculate_score", err)
		return
	}
	sendSuccess(c, http.StatusCreated, score)
}

// GetScoreHistory returns the tenant's scores, newest first. ?limit= bounds the page.
func (h *ScoreHandler) GetScoreHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			sendError(c, h.logger, "score_history", errors.ErrInvalidRequest("limit must be an integer"))
			return
		}
		limit = n
	}

	tenantID := c.Param("tenant_id")
	scores, err := h.compliance.GetScoreHistory(c.Request.Context(), tenantID, limit)
	if err != nil {
		sendError(c, h.logger, "score_history", err)
		return
	}
	sendSuccess(c, http.StatusOK, dto.ScoreHistoryResponse{TenantID: tenantID, Scores: scores, Count: len(scores)})
}

// GetLatestScore returns the most recent score of one tenant.
func (h *ScoreHandler) GetLatestScore(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	score, err := h.compliance.GetLatestScore(c.Request.Context(), tenantID)
	if err != nil {
		sendError(c, h.logger, "latest_score", err)
		return
	}
	if score == nil {
		sendError(c, h.logger, "latest_score", errors.ErrNotFound("compliance score", tenantID))
		return
	}
	sendSuccess(c, http.StatusOK, score)
}

// GetLatestScores returns the latest score of every tenant, worst first.
func (h *ScoreHandler) GetLatestScores(c *gin.Context) {
	scores, err := h.compliance.GetLatestScoresAcrossTenants(c.Request.Context())
	if err != nil {
		sendError(c, h.logger, "latest_scores", err)
		return
	}
	sendSuccess(c, http.StatusOK, dto.LatestScoresResponse{Scores: scores, Count: len(scores)})
}

// GetComplianceMetrics returns the tenant dashboard summary.
func (h *ScoreHandler) GetComplianceMetrics(c *gin.Context) {
	summary, err := h.compliance.GetComplianceMetrics(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		sendError(c, h.logger, "compliance_metrics", err)
		return
	}
	sendSuccess(c, http.StatusOK, summary)
}
