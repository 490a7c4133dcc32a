package repository

import (
	"context"

	"github.com/turtacn/compliance/internal/domain/models"
)

// ScoreRepository stores compliance score snapshots. Snapshots are append-only.
type ScoreRepository interface {
	// Save inserts a new snapshot.
	Save(ctx context.Context, score *models.ComplianceScore) error

	// ListByTenant returns up to limit snapshots for a tenant, newest first.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*models.ComplianceScore, error)

	// Latest returns the newest snapshot for a tenant, or (nil, nil) when none exists.
	Latest(ctx context.Context, tenantID string) (*models.ComplianceScore, error)

	// LatestPerTenant returns the newest snapshot of every tenant, ordered by ascending overall score.
	LatestPerTenant(ctx context.Context) ([]*models.ComplianceScore, error)
}
