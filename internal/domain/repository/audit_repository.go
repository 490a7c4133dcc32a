package repository

import (
	"context"

	"github.com/turtacn/compliance/internal/domain/models"
)

// AuditRepository stores compliance audits.
type AuditRepository interface {
	Create(ctx context.Context, audit *models.ComplianceAudit) error

	FindByID(ctx context.Context, id string) (*models.ComplianceAudit, error)

	// CompleteIfPending writes the completion fields of audit only while the stored row is still PENDING.
	// Returns false when another completion won.
	CompleteIfPending(ctx context.Context, audit *models.ComplianceAudit) (bool, error)

	// List returns audits ordered by scheduled date, newest first. An empty tenantID lists all tenants.
	List(ctx context.Context, tenantID string) ([]*models.ComplianceAudit, error)
}
