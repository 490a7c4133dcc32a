package repository

import (
	"context"

	"github.com/turtacn/compliance/internal/domain/models"
)

// TenantRepository defines the interface for interacting with tenant storage.
// Tenant records are owned elsewhere; only the compliance projection is written.
type TenantRepository interface {
	// FindByID retrieves a tenant by id.
	FindByID(ctx context.Context, tenantID string) (*models.Tenant, error)

	// ListActiveIDs returns the ids of all active tenants, used by the scheduled sweeps.
	ListActiveIDs(ctx context.Context) ([]string, error)

	// UpdateComplianceProjection writes the three projection columns of a tenant.
	UpdateComplianceProjection(ctx context.Context, tenantID string, p models.ComplianceProjection) error
}

// ThresholdRepository stores rating thresholds.
type ThresholdRepository interface {
	// Latest returns the settings with the newest UpdatedAt, or (nil, nil) when none exist.
	Latest(ctx context.Context) (*models.RegulatorSettings, error)

	// Save appends a new settings row.
	Save(ctx context.Context, settings *models.RegulatorSettings) error
}
