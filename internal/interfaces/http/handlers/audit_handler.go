package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/pkg/logger"
	"github.com/turtacn/compliance/pkg/utils"
)

// AuditHandler handles compliance audit scheduling and completion.
type AuditHandler struct {
	audits service.AuditAppService
	logger logger.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audits service.AuditAppService, log logger.Logger) *AuditHandler {
	return &AuditHandler{
		audits: audits,
		logger: log.WithComponent("audit_handler"),
	}
}

// ScheduleAudit creates a PENDING audit.
func (h *AuditHandler) ScheduleAudit(c *gin.Context) {
	var req dto.ScheduleAuditRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, h.logger, "schedule_audit", err)
		return
	}
	if verr := utils.ValidateStruct(&req); verr != nil {
		sendError(c, h.logger, "schedule_audit", verr)
		return
	}

	audit, err := h.audits.ScheduleAudit(c.Request.Context(), req.TenantID, req.AuditorID, req.ScheduledDate)
	if err != nil {
		sendError(c, h.logger, "schedule_audit", err)
		return
	}
	sendSuccess(c, http.StatusCreated, audit)
}

// CompleteAudit records the findings and captures the tenant's latest score.
func (h *AuditHandler) CompleteAudit(c *gin.Context) {
	var req dto.CompleteAuditRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		sendError(c, h.logger, "complete_audit", err)
		return
	}

	audit, err := h.audits.CompleteAudit(c.Request.Context(), c.Param("audit_id"), req.Findings)
	if err != nil {
		sendError(c, h.logger, "complete_audit", err)
		return
	}
	sendSuccess(c, http.StatusOK, audit)
}

// ListAudits returns audits, optionally filtered by ?tenant_id=.
func (h *AuditHandler) ListAudits(c *gin.Context) {
	audits, err := h.audits.ListAudits(c.Request.Context(), c.Query("tenant_id"))
	if err != nil {
		sendError(c, h.logger, "list_audits", err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"audits": audits, "count": len(audits)})
}
