package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/pkg/logger"
)

// ThresholdHandler exposes the regulator's rating thresholds.
type ThresholdHandler struct {
	thresholds service.ThresholdAppService
	logger     logger.Logger
}

// NewThresholdHandler creates a new ThresholdHandler.
func NewThresholdHandler(thresholds service.ThresholdAppService, log logger.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		thresholds: thresholds,
		logger:     log.WithComponent("threshold_handler"),
	}
}

func (h *ThresholdHandler) GetThresholds(c *gin.Context) {
	resp, err := h.thresholds.GetThresholds(c.Request.Context())
	if err != nil {
		sendError(c, h.logger, "get_thresholds", err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}

// UpdateThresholds applies a partial update. Omitted boundaries keep their current value.
func (h *ThresholdHandler) UpdateThresholds(c *gin.Context) {
	var req dto.UpdateThresholdsRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, h.logger, "update_thresholds", err)
		return
	}

	resp, err := h.thresholds.UpdateThresholds(c.Request.Context(), &req)
	if err != nil {
		sendError(c, h.logger, "update_thresholds", err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}
