package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/compliance/internal/domain/models"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		value     float64
		op        models.Operator
		threshold float64
		want      bool
	}{
		{60, models.OperatorLessThan, 70, true},
		{70, models.OperatorLessThan, 70, false},
		{71, models.OperatorGreaterThan, 70, true},
		{70, models.OperatorGreaterThan, 70, false},
		{70, models.OperatorLessThanOrEqual, 70, true},
		{70, models.OperatorGreaterThanOrEqual, 70, true},
		{69.9, models.OperatorGreaterThanOrEqual, 70, false},
		{0.1 + 0.2, models.OperatorEquals, 0.3, true},
		{70.01, models.OperatorEquals, 70, false},
		{50, "between", 70, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.value, tt.op, tt.threshold), "%v %s %v", tt.value, tt.op, tt.threshold)
	}
}

func TestEvaluateRule(t *testing.T) {
	set := NewMetricSet(DefaultWeights(), 60, 85, 100, 80, 60)
	rule := &models.ComplianceRule{
		ID:        "rule-1",
		Name:      "KYC below 70",
		Metric:    models.MetricKYCRate,
		Operator:  models.OperatorLessThan,
		Threshold: 70,
		Severity:  models.SeverityHigh,
		IsActive:  true,
	}

	alert := EvaluateRule(rule, set, "tenant-1")
	require.NotNil(t, alert)
	assert.Equal(t, "tenant-1", alert.TenantID)
	assert.Equal(t, "Automated Alert: KYC below 70", alert.Title)
	assert.Equal(t, "rule:rule-1", alert.DedupKey)
	assert.Equal(t, models.AlertTypeComplianceIssue, alert.Type)
	assert.Equal(t, models.AlertSourceRule, alert.Source)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, "KYC completion rate is 60.00, which is less than the threshold of 70.00", alert.Description)
	assert.Equal(t, "rule-1", alert.Metadata["rule_id"])
	assert.Equal(t, "kyc_rate", alert.Metadata["metric"])
	assert.Equal(t, 60.0, alert.Metadata["value"])

	rule.Threshold = 50
	assert.Nil(t, EvaluateRule(rule, set, "tenant-1"))

	rule.Metric = "liquidity_ratio"
	rule.Operator = models.OperatorGreaterThan
	rule.Threshold = 0
	assert.Nil(t, EvaluateRule(rule, set, "tenant-1"), "unknown metrics never fire")
}

func TestEvaluateRule_OverallScore(t *testing.T) {
	set := NewMetricSet(DefaultWeights(), 60, 85, 100, 80, 60)
	rule := &models.ComplianceRule{
		ID: "r2", Name: "Overall under 80", Metric: models.MetricComplianceScore,
		Operator: models.OperatorLessThan, Threshold: 80, Severity: models.SeverityMedium,
	}
	alert := EvaluateRule(rule, set, "t")
	require.NotNil(t, alert)
	assert.Equal(t, "Overall compliance score is 78.25, which is less than the threshold of 80.00", alert.Description)
}

func TestBuiltinChecks(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	healthy := NewMetricSet(DefaultWeights(), 100, 85, 100, 100, 100)
	assert.Empty(t, BuiltinChecks(healthy, BuiltinInputs{Now: now}, "t1"))

	poor := NewMetricSet(DefaultWeights(), 40, 85, 40, 50, 50)
	alerts := BuiltinChecks(poor, BuiltinInputs{
		PendingKYC:         51,
		OldestPendingBylaw: &models.BylawReview{ID: "b1", SubmittedAt: now.AddDate(0, 0, -31)},
		CriticalOpenIssues: 2,
		Now:                now,
	}, "t1")
	require.Len(t, alerts, 4)

	byKey := map[string]*models.RegulatoryAlert{}
	for _, a := range alerts {
		assert.Equal(t, models.AlertSourceBuiltin, a.Source)
		byKey[a.DedupKey] = a
	}
	assert.Equal(t, models.SeverityHigh, byKey["builtin:low_compliance_score"].Severity)
	assert.Equal(t, models.SeverityHigh, byKey["builtin:pending_kyc_verification"].Severity)
	assert.Equal(t, models.SeverityHigh, byKey["builtin:overdue_byelaw_review"].Severity)
	assert.Equal(t, 31, byKey["builtin:overdue_byelaw_review"].Metadata["days_pending"])
	assert.Equal(t, models.SeverityCritical, byKey["builtin:critical_open_issues"].Severity)

	critical := NewMetricSet(DefaultWeights(), 0, 0, 40, 0, 0)
	alerts = BuiltinChecks(critical, BuiltinInputs{PendingKYC: 50, Now: now}, "t1")
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
}

func TestBuiltinChecks_LowScoreUsesComputedOverall(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name     string
		set      *MetricSet
		severity models.Severity
	}{
		{"high below 60", NewMetricSet(DefaultWeights(), 40, 85, 40, 50, 50), models.SeverityHigh},
		{"critical below 40", NewMetricSet(DefaultWeights(), 0, 0, 40, 0, 0), models.SeverityCritical},
	} {
		t.Run(tc.name, func(t *testing.T) {
			alerts := BuiltinChecks(tc.set, BuiltinInputs{Now: now}, "t1")
			require.Len(t, alerts, 1)
			assert.Equal(t, "builtin:low_compliance_score", alerts[0].DedupKey)
			assert.Equal(t, "Low Compliance Score", alerts[0].Title)
			assert.Equal(t, tc.severity, alerts[0].Severity)
		})
	}
}

func TestBuiltinChecks_RecentPendingBylawIsNotOverdue(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	set := NewMetricSet(DefaultWeights(), 100, 85, 70, 100, 100)
	alerts := BuiltinChecks(set, BuiltinInputs{
		OldestPendingBylaw: &models.BylawReview{ID: "b1", SubmittedAt: now.AddDate(0, 0, -10)},
		Now:                now,
	}, "t1")
	assert.Empty(t, alerts)
}

func TestBuiltinChecks_OverdueCountsWholeDays(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	set := NewMetricSet(DefaultWeights(), 100, 85, 70, 100, 100)

	almost := BuiltinChecks(set, BuiltinInputs{
		OldestPendingBylaw: &models.BylawReview{ID: "b1", SubmittedAt: now.Add(-(30*24 + 23) * time.Hour)},
		Now:                now,
	}, "t1")
	assert.Empty(t, almost, "30 whole days is still within the review window")

	overdue := BuiltinChecks(set, BuiltinInputs{
		OldestPendingBylaw: &models.BylawReview{ID: "b1", SubmittedAt: now.AddDate(0, 0, -31)},
		Now:                now,
	}, "t1")
	require.Len(t, overdue, 1)
	assert.Equal(t, "builtin:overdue_byelaw_review", overdue[0].DedupKey)
}

func TestDegradedMetricsDoNotFire(t *testing.T) {
	set := NewMetricSet(DefaultWeights(), 0, 85, 50, 0, 0)
	set.MarkDegraded(models.MetricKYCRate)

	kycRule := &models.ComplianceRule{ID: "r1", Name: "KYC", Metric: models.MetricKYCRate,
		Operator: models.OperatorLessThan, Threshold: 70, Severity: models.SeverityHigh}
	assert.Nil(t, EvaluateRule(kycRule, set, "t1"))

	overallRule := &models.ComplianceRule{ID: "r2", Name: "Overall", Metric: models.MetricComplianceScore,
		Operator: models.OperatorLessThan, Threshold: 80, Severity: models.SeverityHigh}
	assert.Nil(t, EvaluateRule(overallRule, set, "t1"))

	issueRule := &models.ComplianceRule{ID: "r3", Name: "Issues", Metric: models.MetricIssueScore,
		Operator: models.OperatorLessThan, Threshold: 50, Severity: models.SeverityHigh}
	assert.NotNil(t, EvaluateRule(issueRule, set, "t1"))

	assert.Empty(t, BuiltinChecks(set, BuiltinInputs{Now: time.Now()}, "t1"))
}

func TestCountCritical(t *testing.T) {
	assert.Equal(t, 2, CountCritical(issues(models.SeverityCritical, models.SeverityLow, models.SeverityCritical)))
	assert.Equal(t, 0, CountCritical(nil))
}
