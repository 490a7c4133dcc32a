package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
	"github.com/turtacn/compliance/pkg/utils"
)

// RuleHandler handles rules, evaluations and the alerts they raise.
type RuleHandler struct {
	rules  service.RuleAppService
	logger logger.Logger
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(rules service.RuleAppService, log logger.Logger) *RuleHandler {
	return &RuleHandler{
		rules:  rules,
		logger: log.WithComponent("rule_handler"),
	}
}

// ListRules returns every configured rule.
func (h *RuleHandler) ListRules(c *gin.Context) {
	rules, err := h.rules.ListRules(c.Request.Context())
	if err != nil {
		sendError(c, h.logger, "list_rules", err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"rules": rules, "count": len(rules)})
}

// CreateRule godoc
// @Summary      Create rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body  dto.SaveRuleRequest  true  "Rule"
// @Success      201  {object}  models.ComplianceRule
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /api/v1/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

// UpdateRule overwrites the rule named in the path.
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	h.save(c, c.Param("rule_id"), http.StatusOK)
}

func (h *RuleHandler) save(c *gin.Context, id string, status int) {
	var req dto.SaveRuleRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, h.logger, "save_rule", err)
		return
	}
	// the path wins over any id in the body
	req.ID = id
	if verr := utils.ValidateStruct(&req); verr != nil {
		sendError(c, h.logger, "save_rule", verr)
		return
	}

	rule, err := h.rules.SaveRule(c.Request.Context(), req.ToModel())
	if err != nil {
		sendError(c, h.logger, "save_rule", err)
		return
	}
	sendSuccess(c, status, rule)
}

// ImportRules accepts a YAML rule document as the raw request body.
func (h *RuleHandler) ImportRules(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		sendError(c, h.logger, "import_rules", errors.ErrInvalidRequest("a YAML rule document is required"))
		return
	}

	result, err := h.rules.ImportRules(c.Request.Context(), data)
	if err != nil {
		sendError(c, h.logger, "import_rules", err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// EvaluateRules runs every active rule against the tenant's current metrics.
func (h *RuleHandler) EvaluateRules(c *gin.Context) {
	result, err := h.rules.EvaluateRules(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		sendError(c, h.logger, "evaluate_rules", err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// RunBuiltinChecks runs the fixed regulator checks for the tenant.
func (h *RuleHandler) RunBuiltinChecks(c *gin.Context) {
	result, err := h.rules.RunBuiltinChecks(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		sendError(c, h.logger, "builtin_checks", err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListAlerts returns the tenant's alerts. ?open=true limits the list to unresolved alerts.
func (h *RuleHandler) ListAlerts(c *gin.Context) {
	onlyOpen := false
	if raw := c.Query("open"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			sendError(c, h.logger, "list_alerts", errors.ErrInvalidRequest("open must be a boolean"))
			return
		}
		onlyOpen = v
	}

	tenantID := c.Param("tenant_id")
	alerts, err := h.rules.ListAlerts(c.Request.Context(), tenantID, onlyOpen)
	if err != nil {
		sendError(c, h.logger, "list_alerts", err)
		return
	}
	sendSuccess(c, http.StatusOK, dto.AlertListResponse{TenantID: tenantID, Alerts: alerts, Count: len(alerts)})
}

// ResolveAlert marks the alert resolved.
func (h *RuleHandler) ResolveAlert(c *gin.Context) {
	var req dto.ResolveAlertRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, h.logger, "resolve_alert", err)
		return
	}
	if verr := utils.ValidateStruct(&req); verr != nil {
		sendError(c, h.logger, "resolve_alert", verr)
		return
	}

	alert, err := h.rules.ResolveAlert(c.Request.Context(), c.Param("alert_id"), req.ResolvedBy)
	if err != nil {
		sendError(c, h.logger, "resolve_alert", err)
		return
	}
	sendSuccess(c, http.StatusOK, alert)
}
