// Package dto provides data transfer objects for the application layer.
package dto

import (
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
)

// CalculateScoreRequest triggers a score calculation for a tenant. An empty actor is recorded as the system.
type CalculateScoreRequest struct {
	CalculatedBy string `json:"calculated_by,omitempty"`
}

// ScoreHistoryResponse is a tenant's score history, newest first.
type ScoreHistoryResponse struct {
	TenantID string                    `json:"tenant_id"`
	Scores   []*models.ComplianceScore `json:"scores"`
	Count    int                       `json:"count"`
}

// LatestScoresResponse is the cross-tenant triage view, worst first.
type LatestScoresResponse struct {
	Scores []*models.ComplianceScore `json:"scores"`
	Count  int                       `json:"count"`
}

// ComplianceMetricsResponse summarises a tenant's current compliance posture.
type ComplianceMetricsResponse struct {
	TenantID          string                  `json:"tenant_id"`
	LatestScore       *models.ComplianceScore `json:"latest_score,omitempty"`
	OpenIssues        int                     `json:"open_issues"`
	CriticalIssues    int                     `json:"critical_issues"`
	PendingKYC        int64                   `json:"pending_kyc"`
	OpenAlerts        int                     `json:"open_alerts"`
	LatestBylawReview *models.BylawReview     `json:"latest_bylaw_review,omitempty"`
	GeneratedAt       time.Time               `json:"generated_at"`
}
