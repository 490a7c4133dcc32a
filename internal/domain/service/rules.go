package service

import (
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/constants"
)

// equalsEpsilon is the tolerance of the equals operator.
const equalsEpsilon = 1e-9

// Compare applies op to value and threshold. Unknown operators never trigger.
func Compare(value float64, op models.Operator, threshold float64) bool {
	switch op {
	case models.OperatorLessThan:
		return value < threshold
	case models.OperatorGreaterThan:
		return value > threshold
	case models.OperatorEquals:
		return math.Abs(value-threshold) <= equalsEpsilon
	case models.OperatorLessThanOrEqual:
		return value <= threshold
	case models.OperatorGreaterThanOrEqual:
		return value >= threshold
	default:
		return false
	}
}

// RuleDedupKey identifies the open alert a rule may hold per tenant.
func RuleDedupKey(ruleID string) string {
	return "rule:" + ruleID
}

// BuiltinDedupKey identifies the open alert a built-in check may hold per tenant.
func BuiltinDedupKey(check string) string {
	return "builtin:" + check
}

// EvaluateRule checks rule against set. It returns the alert to raise, or nil when the rule does not fire.
// The returned alert has no id or creation time yet.
// Rules on a metric computed from fallback values do not fire.
func EvaluateRule(rule *models.ComplianceRule, set *MetricSet, tenantID string) *models.RegulatoryAlert {
	value, ok := set.Value(rule.Metric)
	if !ok || set.Degraded(rule.Metric) || !Compare(value, rule.Operator, rule.Threshold) {
		return nil
	}
	return &models.RegulatoryAlert{
		TenantID: tenantID,
		DedupKey: RuleDedupKey(rule.ID),
		Type:     models.AlertTypeComplianceIssue,
		Source:   models.AlertSourceRule,
		Severity: rule.Severity,
		Title:    constants.AutomatedAlertTitlePrefix + rule.Name,
		Description: fmt.Sprintf("%s is %.2f, which is %s the threshold of %.2f",
			rule.Metric.Label(), value, rule.Operator.Label(), rule.Threshold),
		Metadata: datatypes.JSONMap{
			"rule_id": rule.ID,
			"metric":  string(rule.Metric),
			"value":   value,
		},
	}
}

// Built-in check names.
const (
	CheckLowComplianceScore = "low_compliance_score"
	CheckPendingKYC         = "pending_kyc_verification"
	CheckOverdueBylawReview = "overdue_byelaw_review"
	CheckCriticalOpenIssues = "critical_open_issues"
)

// BuiltinInputs are the facts the built-in checks look at besides the MetricSet.
type BuiltinInputs struct {
	PendingKYC         int64
	OldestPendingBylaw *models.BylawReview
	CriticalOpenIssues int
	Now                time.Time
}

// BuiltinChecks returns the alerts raised by the fixed regulator checks.
func BuiltinChecks(set *MetricSet, in BuiltinInputs, tenantID string) []*models.RegulatoryAlert {
	var out []*models.RegulatoryAlert

	// an overall score built on fallback values says nothing about the tenant
	overall := set.Overall()
	if !set.Degraded(models.MetricComplianceScore) && overall < constants.LowScoreHighBelow {
		severity := models.SeverityHigh
		if overall < constants.LowScoreCriticalBelow {
			severity = models.SeverityCritical
		}
		out = append(out, builtinAlert(tenantID, CheckLowComplianceScore, models.AlertTypeLowComplianceScore, severity,
			"Low Compliance Score",
			fmt.Sprintf("Compliance score is %.2f, below the acceptable level of %.2f", overall, constants.LowScoreHighBelow),
			datatypes.JSONMap{"score": overall}))
	}

	if in.PendingKYC > constants.PendingKYCAlertAbove {
		out = append(out, builtinAlert(tenantID, CheckPendingKYC, models.AlertTypePendingKYCVerification, models.SeverityHigh,
			"High Pending KYC Verifications",
			fmt.Sprintf("%d members have incomplete KYC verification", in.PendingKYC),
			datatypes.JSONMap{"pending_count": in.PendingKYC}))
	}

	if r := in.OldestPendingBylaw; r != nil {
		if days := int(in.Now.Sub(r.SubmittedAt).Hours() / 24); days > constants.OverdueBylawReviewDays {
			out = append(out, builtinAlert(tenantID, CheckOverdueBylawReview, models.AlertTypeOverdueBylawReview, models.SeverityHigh,
				"Overdue Bye-law Review",
				fmt.Sprintf("Bye-law submission %s has been pending review for %d days", r.ID, days),
				datatypes.JSONMap{"review_id": r.ID, "days_pending": days}))
		}
	}

	if in.CriticalOpenIssues > 0 {
		out = append(out, builtinAlert(tenantID, CheckCriticalOpenIssues, models.AlertTypeComplianceIssue, models.SeverityCritical,
			"Critical Compliance Issues Open",
			fmt.Sprintf("%d critical compliance issues require immediate attention", in.CriticalOpenIssues),
			datatypes.JSONMap{"critical_count": in.CriticalOpenIssues}))
	}

	return out
}

func builtinAlert(tenantID, check string, typ models.AlertType, sev models.Severity, title, desc string, meta datatypes.JSONMap) *models.RegulatoryAlert {
	meta["check"] = check
	return &models.RegulatoryAlert{
		TenantID:    tenantID,
		DedupKey:    BuiltinDedupKey(check),
		Type:        typ,
		Source:      models.AlertSourceBuiltin,
		Severity:    sev,
		Title:       title,
		Description: desc,
		Metadata:    meta,
	}
}

// CountCritical returns the number of critical issues in open.
func CountCritical(open []*models.ComplianceIssue) int {
	n := 0
	for _, i := range open {
		if i.Severity == models.SeverityCritical {
			n++
		}
	}
	return n
}
