// Package service holds the pure domain logic of compliance scoring and rule evaluation.
package service

import (
	"context"
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/utils"
)

// Weights are the contributions of each sub-score to the overall score. They sum to 1.
type Weights struct {
	KYC       float64
	Reporting float64
	Bylaw     float64
	Issue     float64
	Alert     float64
}

// DefaultWeights returns the regulator's published weighting.
func DefaultWeights() Weights {
	return Weights{KYC: 0.25, Reporting: 0.25, Bylaw: 0.20, Issue: 0.20, Alert: 0.10}
}

// KYCScore is the percentage of members with complete KYC. A SACCO without members scores 100.
func KYCScore(total, verified int64) float64 {
	if total <= 0 {
		return 100
	}
	return utils.Clamp(float64(verified)/float64(total)*100, 0, 100)
}

// BylawScore grades the most recently submitted bye-law review as of now.
func BylawScore(review *models.BylawReview, now time.Time) float64 {
	if review == nil {
		return 50
	}
	switch review.Status {
	case models.BylawStatusApproved:
		cutoff := now.AddDate(-constants.BylawApprovalFreshnessYears, 0, 0)
		if review.ApprovalDate != nil && review.ApprovalDate.After(cutoff) {
			return 100
		}
		return 80
	case models.BylawStatusPending, models.BylawStatusUnderReview:
		return 70
	case models.BylawStatusRevisionRequired:
		return 60
	default:
		return 40
	}
}

var issueSeverityWeights = map[models.Severity]int{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

// IssueScore deducts five points per severity-weighted open issue, floored at 0.
func IssueScore(open []*models.ComplianceIssue) float64 {
	if len(open) == 0 {
		return 100
	}
	weighted := 0
	for _, issue := range open {
		weighted += issueSeverityWeights[issue.Severity]
	}
	return utils.Clamp(100-5*float64(weighted), 0, 100)
}

// AlertScore is the percentage of a tenant's alerts that have been resolved. No alerts scores 100.
func AlertScore(total, resolved int64) float64 {
	if total <= 0 {
		return 100
	}
	return utils.Clamp(float64(resolved)/float64(total)*100, 0, 100)
}

// ReportingScorer produces the financial reporting timeliness sub-score.
type ReportingScorer interface {
	Score(ctx context.Context, tenantID string) (float64, error)
}

// PlaceholderReportingScorer returns a fixed score until financial submissions are tracked.
type PlaceholderReportingScorer struct {
	Value float64
}

// NewPlaceholderReportingScorer falls back to the standard placeholder when value is not positive.
func NewPlaceholderReportingScorer(value float64) *PlaceholderReportingScorer {
	if value <= 0 {
		value = constants.DefaultReportingPlaceholder
	}
	return &PlaceholderReportingScorer{Value: value}
}

func (p *PlaceholderReportingScorer) Score(_ context.Context, _ string) (float64, error) {
	return p.Value, nil
}
