// Package postgres implements the gorm repositories of the compliance service.
package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// TenantRepoImpl implements TenantRepository using gorm.
type TenantRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTenantRepository creates a gorm-backed tenant repository instance.
func NewTenantRepository(db *gorm.DB, log logger.Logger) repository.TenantRepository {
	return &TenantRepoImpl{
		db:     db,
		logger: log.WithComponent("tenant_repository"),
	}
}

// FindByID retrieves a tenant by id.
func (r *TenantRepoImpl) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&tenant).Error; err != nil {
		return nil, mapError("get tenant", "tenant", tenantID, err)
	}
	return &tenant, nil
}

// ListActiveIDs returns the ids of active tenants in a stable order.
func (r *TenantRepoImpl) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("status = ?", models.TenantStatusActive).
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation("list active tenants", err)
	}
	return ids, nil
}

// UpdateComplianceProjection writes only the three projection columns.
func (r *TenantRepoImpl) UpdateComplianceProjection(ctx context.Context, tenantID string, p models.ComplianceProjection) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("tenant_id = ?", tenantID).
		UpdateColumns(map[string]interface{}{
			"current_compliance_score":    p.Score,
			"compliance_rating":           p.Rating,
			"last_compliance_review_date": p.ReviewedAt,
		})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to update tenant compliance projection", result.Error,
			logger.String("tenant_id", tenantID),
		)
		return errors.ErrDatabaseOperation("update tenant compliance projection", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("tenant", tenantID)
	}
	return nil
}
