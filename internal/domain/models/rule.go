package models

import "time"

// Metric identifies a value a compliance rule can target.
type Metric string

const (
	MetricKYCRate             Metric = "kyc_rate"
	MetricFinancialTimeliness Metric = "financial_timeliness"
	MetricBylawAdherence      Metric = "bylaw_adherence"
	MetricIssueScore          Metric = "issue_score"
	MetricAlertResolution     Metric = "alert_resolution"
	MetricComplianceScore     Metric = "compliance_score"
)

var metricLabels = map[Metric]string{
	MetricKYCRate:             "KYC completion rate",
	MetricFinancialTimeliness: "Financial reporting timeliness",
	MetricBylawAdherence:      "Bye-law adherence",
	MetricIssueScore:          "Issue management score",
	MetricAlertResolution:     "Alert resolution rate",
	MetricComplianceScore:     "Overall compliance score",
}

// AllMetrics lists every rule-targetable metric in display order.
func AllMetrics() []Metric {
	return []Metric{
		MetricKYCRate,
		MetricFinancialTimeliness,
		MetricBylawAdherence,
		MetricIssueScore,
		MetricAlertResolution,
		MetricComplianceScore,
	}
}

func (m Metric) IsValid() bool {
	_, ok := metricLabels[m]
	return ok
}

// Label is the human-readable metric name used in alert descriptions.
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// Operator is the comparison a rule applies between the metric value and its threshold.
type Operator string

const (
	OperatorLessThan           Operator = "less_than"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorEquals             Operator = "equals"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
)

var operatorLabels = map[Operator]string{
	OperatorLessThan:           "less than",
	OperatorGreaterThan:        "greater than",
	OperatorEquals:             "equal to",
	OperatorLessThanOrEqual:    "less than or equal to",
	OperatorGreaterThanOrEqual: "greater than or equal to",
}

func (o Operator) IsValid() bool {
	_, ok := operatorLabels[o]
	return ok
}

func (o Operator) Label() string {
	if l, ok := operatorLabels[o]; ok {
		return l
	}
	return string(o)
}

// Severity grades alerts and compliance issues.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ComplianceRule is a tenant-agnostic condition evaluated against every tenant's metrics.
type ComplianceRule struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id" yaml:"id,omitempty"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" yaml:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty" yaml:"description,omitempty"`
	Metric      Metric    `gorm:"type:varchar(32);not null" json:"metric" yaml:"metric"`
	Operator    Operator  `gorm:"type:varchar(32);not null" json:"operator" yaml:"operator"`
	Threshold   float64   `gorm:"not null" json:"threshold" yaml:"threshold"`
	Severity    Severity  `gorm:"type:varchar(16);not null" json:"severity" yaml:"severity"`
	IsActive    bool      `gorm:"not null;index" json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

func (ComplianceRule) TableName() string { return "compliance_rules" }
