package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/compliance/internal/domain/models"
)

func TestKYCScore(t *testing.T) {
	assert.Equal(t, 100.0, KYCScore(0, 0))
	assert.Equal(t, 100.0, KYCScore(12, 12))
	assert.Equal(t, 0.0, KYCScore(12, 0))
	assert.Equal(t, 60.0, KYCScore(10, 6))
}

func TestBylawScore(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(years, days int) *time.Time {
		t := now.AddDate(-years, 0, -days)
		return &t
	}

	tests := []struct {
		name   string
		review *models.BylawReview
		want   float64
	}{
		{"no submission", nil, 50},
		{"approved one year ago", &models.BylawReview{Status: models.BylawStatusApproved, ApprovalDate: ago(1, 0)}, 100},
		{"approved exactly two years ago", &models.BylawReview{Status: models.BylawStatusApproved, ApprovalDate: ago(2, 0)}, 80},
		{"approved three years ago", &models.BylawReview{Status: models.BylawStatusApproved, ApprovalDate: ago(3, 0)}, 80},
		{"approved without date", &models.BylawReview{Status: models.BylawStatusApproved}, 80},
		{"pending", &models.BylawReview{Status: models.BylawStatusPending}, 70},
		{"under review", &models.BylawReview{Status: models.BylawStatusUnderReview}, 70},
		{"revision required", &models.BylawReview{Status: models.BylawStatusRevisionRequired}, 60},
		{"rejected", &models.BylawReview{Status: models.BylawStatusRejected}, 40},
		{"unknown status", &models.BylawReview{Status: "WITHDRAWN"}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BylawScore(tt.review, now))
		})
	}
}

func issues(sev ...models.Severity) []*models.ComplianceIssue {
	out := make([]*models.ComplianceIssue, 0, len(sev))
	for _, s := range sev {
		out = append(out, &models.ComplianceIssue{Severity: s, Status: models.IssueStatusOpen})
	}
	return out
}

func TestIssueScore(t *testing.T) {
	assert.Equal(t, 100.0, IssueScore(nil))
	assert.Equal(t, 80.0, IssueScore(issues(models.SeverityCritical)))
	assert.Equal(t, 50.0, IssueScore(issues(models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow)))
	assert.Equal(t, 0.0, IssueScore(issues(
		models.SeverityCritical, models.SeverityCritical, models.SeverityCritical,
		models.SeverityCritical, models.SeverityCritical)))
	assert.Equal(t, 0.0, IssueScore(issues(
		models.SeverityCritical, models.SeverityCritical, models.SeverityCritical,
		models.SeverityCritical, models.SeverityCritical, models.SeverityHigh)), "never negative")
	assert.Equal(t, 100.0, IssueScore(issues("informational")))
}

func TestAlertScore(t *testing.T) {
	assert.Equal(t, 100.0, AlertScore(0, 0))
	assert.Equal(t, 0.0, AlertScore(4, 0))
	assert.Equal(t, 100.0, AlertScore(4, 4))
	assert.Equal(t, 60.0, AlertScore(5, 3))
}

func TestPlaceholderReportingScorer(t *testing.T) {
	v, err := NewPlaceholderReportingScorer(0).Score(context.Background(), "t1")
	assert.NoError(t, err)
	assert.Equal(t, 85.0, v)

	v, _ = NewPlaceholderReportingScorer(72).Score(context.Background(), "t1")
	assert.Equal(t, 72.0, v)
}

func TestMetricSet_OverallWithinRange(t *testing.T) {
	values := []float64{0, 12.5, 40, 59.99, 75, 99.9, 100}
	for _, k := range values {
		for _, r := range values {
			for _, i := range values {
				set := NewMetricSet(DefaultWeights(), k, r, 50, i, 100-k)
				assert.GreaterOrEqual(t, set.Overall(), 0.0)
				assert.LessOrEqual(t, set.Overall(), 100.0)
			}
		}
	}
}

func TestMetricSet_ReferenceTenant(t *testing.T) {
	set := NewMetricSet(DefaultWeights(), 60, 85, 100, 80, 60)

	assert.InDelta(t, 78.25, set.Overall(), 1e-9)
	assert.Equal(t, models.RatingGood, Classify(set.Overall(), models.DefaultRatingThresholds()))

	for metric, want := range map[models.Metric]float64{
		models.MetricKYCRate:             60,
		models.MetricFinancialTimeliness: 85,
		models.MetricBylawAdherence:      100,
		models.MetricIssueScore:          80,
		models.MetricAlertResolution:     60,
	} {
		got, ok := set.Value(metric)
		assert.True(t, ok)
		assert.Equal(t, want, got, metric)
	}

	_, ok := set.Value("liquidity_ratio")
	assert.False(t, ok)

	score := set.ToScore(models.RatingGood)
	assert.Equal(t, 60.0, score.KYCScore)
	assert.InDelta(t, 78.25, score.OverallScore, 1e-9)
	assert.Equal(t, models.RatingGood, score.Rating)
}

func TestMetricSet_ClampsInputs(t *testing.T) {
	set := NewMetricSet(DefaultWeights(), 140, -3, 100, 100, 100)
	v, _ := set.Value(models.MetricKYCRate)
	assert.Equal(t, 100.0, v)
	v, _ = set.Value(models.MetricFinancialTimeliness)
	assert.Equal(t, 0.0, v)
}
