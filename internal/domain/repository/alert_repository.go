package repository

import (
	"context"
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
)

// AlertRepository stores regulatory alerts.
type AlertRepository interface {
	// CreateIfNoneOpen inserts alert unless an unresolved alert with the same tenant and
	// dedup key already exists. The check and insert are atomic. Returns whether a row was created.
	CreateIfNoneOpen(ctx context.Context, alert *models.RegulatoryAlert) (bool, error)

	FindByID(ctx context.Context, id string) (*models.RegulatoryAlert, error)

	// Resolve marks an open alert resolved. Returns false when it was already resolved.
	Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error)

	// ListByTenant returns a tenant's alerts, newest first.
	ListByTenant(ctx context.Context, tenantID string, onlyOpen bool) ([]*models.RegulatoryAlert, error)

	// CountByTenant returns the total and resolved alert counts of a tenant.
	CountByTenant(ctx context.Context, tenantID string) (total, resolved int64, err error)
}
