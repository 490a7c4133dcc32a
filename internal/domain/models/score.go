// Package models defines the domain models for the SACCO compliance service.
// This file contains the compliance score snapshot and its rating.
package models

import "time"

// Rating is the qualitative band an overall compliance score falls into.
// Rating 是综合合规分数所属的定性等级。
type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingFair      Rating = "FAIR"
	RatingPoor      Rating = "POOR"
	RatingCritical  Rating = "CRITICAL"
)

// IsValid reports whether r is one of the five known ratings.
func (r Rating) IsValid() bool {
	switch r {
	case RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingCritical:
		return true
	}
	return false
}

// ComplianceScore is an immutable snapshot of a tenant's compliance at a point in time.
// A new row is written for every calculation; rows are never updated.
// ComplianceScore 是租户在某一时间点的不可变合规快照。
type ComplianceScore struct {
	// ID is the unique identifier of the snapshot.
	// ID 是快照的唯一标识符。
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	// TenantID identifies the SACCO the score belongs to.
	// TenantID 标识该分数所属的 SACCO。
	TenantID string `gorm:"type:varchar(64);not null;index:idx_scores_tenant_calculated,priority:1" json:"tenant_id"`

	// OverallScore is the weighted sum of the five sub-scores, within [0, 100].
	// OverallScore 是五个子分数的加权和，范围 [0, 100]。
	OverallScore float64 `gorm:"not null" json:"overall_score"`

	KYCScore                float64 `gorm:"column:kyc_score;not null" json:"kyc_score"`
	FinancialReportingScore float64 `gorm:"not null" json:"financial_reporting_score"`
	BylawAdherenceScore     float64 `gorm:"not null" json:"bylaw_adherence_score"`
	IssueScore              float64 `gorm:"not null" json:"issue_score"`
	AlertResolutionScore    float64 `gorm:"not null" json:"alert_resolution_score"`

	// Rating is derived from OverallScore with the thresholds in force at calculation time.
	// Rating 由计算时生效的阈值根据 OverallScore 推导得出。
	Rating Rating `gorm:"type:varchar(16);not null" json:"rating"`

	CalculatedAt time.Time `gorm:"not null;index:idx_scores_tenant_calculated,priority:2,sort:desc" json:"calculated_at"`
	CalculatedBy string    `gorm:"type:varchar(128)" json:"calculated_by"`
}

// TableName overrides the gorm table name.
func (ComplianceScore) TableName() string { return "compliance_scores" }
