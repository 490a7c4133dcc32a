package dto

import "time"

// ScheduleAuditRequest schedules a new audit.
type ScheduleAuditRequest struct {
	TenantID      string    `json:"tenant_id" validate:"required"`
	AuditorID     string    `json:"auditor_id" validate:"required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// CompleteAuditRequest completes a pending audit.
type CompleteAuditRequest struct {
	Findings string `json:"findings"`
}
