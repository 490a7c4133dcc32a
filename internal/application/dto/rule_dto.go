package dto

import (
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
)

// SaveRuleRequest creates a rule, or updates it when ID is set.
type SaveRuleRequest struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string          `json:"name" yaml:"name" validate:"required,max=255"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Metric      models.Metric   `json:"metric" yaml:"metric" validate:"required,oneof=kyc_rate financial_timeliness bylaw_adherence issue_score alert_resolution compliance_score"`
	Operator    models.Operator `json:"operator" yaml:"operator" validate:"required,oneof=less_than greater_than equals less_than_or_equal greater_than_or_equal"`
	Threshold   float64         `json:"threshold" yaml:"threshold" validate:"percent"`
	Severity    models.Severity `json:"severity" yaml:"severity" validate:"required,oneof=low medium high critical"`
	IsActive    *bool           `json:"is_active,omitempty" yaml:"is_active,omitempty"`
}

// ToModel converts the request into a rule. A missing active flag means active.
func (r *SaveRuleRequest) ToModel() *models.ComplianceRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.ComplianceRule{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Metric:      r.Metric,
		Operator:    r.Operator,
		Threshold:   r.Threshold,
		Severity:    r.Severity,
		IsActive:    active,
	}
}

// RuleSeedFile is the YAML document accepted by the rule import command.
type RuleSeedFile struct {
	Rules []SaveRuleRequest `yaml:"rules"`
}

// ImportResult reports a bulk rule import.
type ImportResult struct {
	Saved  int      `json:"saved"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// TriggeredRule describes one rule that fired during an evaluation.
type TriggeredRule struct {
	RuleID   string          `json:"rule_id,omitempty"`
	Check    string          `json:"check,omitempty"`
	Title    string          `json:"title"`
	Severity models.Severity `json:"severity"`
	AlertID  string          `json:"alert_id,omitempty"`
	Created  bool            `json:"created"`
}

// EvaluationResult is the outcome of evaluating the active rules against one tenant.
type EvaluationResult struct {
	TenantID       string `json:"tenant_id"`
	RulesEvaluated int    `json:"rules_evaluated"`
	Triggered      int    `json:"triggered"`
	Created        int    `json:"created"`
	Skipped        int    `json:"skipped"`
	// Unevaluated counts rules whose metric could not be read this run.
	Unevaluated     int                `json:"unevaluated,omitempty"`
	DegradedMetrics []string           `json:"degraded_metrics,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	Alerts          []TriggeredRule    `json:"alerts,omitempty"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
}

// Record adds the outcome of one triggered rule or check.
func (r *EvaluationResult) Record(t TriggeredRule) {
	r.Triggered++
	if t.Created {
		r.Created++
	} else {
		r.Skipped++
	}
	r.Alerts = append(r.Alerts, t)
}

// ResolveAlertRequest resolves an open alert.
type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by" validate:"required"`
}

// AlertListResponse lists a tenant's alerts.
type AlertListResponse struct {
	TenantID string                    `json:"tenant_id"`
	Alerts   []*models.RegulatoryAlert `json:"alerts"`
	Count    int                       `json:"count"`
}
