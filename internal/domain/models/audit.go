package models

import "time"

// AuditStatus is the lifecycle state of a compliance audit.
type AuditStatus string

const (
	AuditStatusPending   AuditStatus = "PENDING"
	AuditStatusCompleted AuditStatus = "COMPLETED"
)

// ComplianceAudit moves one way from PENDING to COMPLETED.
// CompletedDate, Findings and ComplianceScoreAtTime are set exactly once, on completion.
type ComplianceAudit struct {
	ID                    string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TenantID              string      `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	AuditorID             string      `gorm:"type:varchar(128);not null" json:"auditor_id"`
	Status                AuditStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ScheduledDate         time.Time   `gorm:"not null" json:"scheduled_date"`
	CompletedDate         *time.Time  `json:"completed_date,omitempty"`
	Findings              string      `gorm:"type:text" json:"findings,omitempty"`
	ComplianceScoreAtTime *float64    `json:"compliance_score_at_time,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

func (ComplianceAudit) TableName() string { return "compliance_audits" }

// IsCompleted reports whether the audit has left the PENDING state.
func (a *ComplianceAudit) IsCompleted() bool {
	return a.Status == AuditStatusCompleted
}
