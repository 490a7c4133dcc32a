package models

import (
	"time"

	"gorm.io/datatypes"
)

// AlertType categorises regulatory alerts.
type AlertType string

const (
	AlertTypeComplianceIssue        AlertType = "compliance_issue"
	AlertTypeLowComplianceScore     AlertType = "low_compliance_score"
	AlertTypePendingKYCVerification AlertType = "pending_kyc_verification"
	AlertTypeOverdueBylawReview     AlertType = "overdue_byelaw_review"
)

// AlertSource records which part of the engine raised an alert.
type AlertSource string

const (
	AlertSourceRule    AlertSource = "rule"
	AlertSourceBuiltin AlertSource = "builtin"
)

// RegulatoryAlert is raised by the rule engine and resolved externally.
// At most one unresolved alert exists per (TenantID, DedupKey).
type RegulatoryAlert struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TenantID    string            `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_alerts_open_dedup,where:is_resolved = false" json:"tenant_id"`
	DedupKey    string            `gorm:"type:varchar(128);not null;uniqueIndex:idx_alerts_open_dedup,where:is_resolved = false" json:"dedup_key"`
	Type        AlertType         `gorm:"type:varchar(64);not null" json:"type"`
	Source      AlertSource       `gorm:"type:varchar(16);not null" json:"source"`
	Severity    Severity          `gorm:"type:varchar(16);not null" json:"severity"`
	Title       string            `gorm:"type:varchar(255);not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsResolved  bool              `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	ResolvedBy  string            `gorm:"type:varchar(128)" json:"resolved_by,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
}

func (RegulatoryAlert) TableName() string { return "regulatory_alerts" }
