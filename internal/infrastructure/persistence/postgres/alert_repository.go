package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

type alertRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewAlertRepository creates a gorm-backed AlertRepository.
func NewAlertRepository(db *gorm.DB, log logger.Logger) repository.AlertRepository {
	return &alertRepository{db: db, log: log.WithComponent("alert_repository")}
}

// CreateIfNoneOpen relies on the partial unique index idx_alerts_open_dedup
// (tenant_id, dedup_key) WHERE is_resolved = false.
func (r *alertRepository) CreateIfNoneOpen(ctx context.Context, alert *models.RegulatoryAlert) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "tenant_id"}, {Name: "dedup_key"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "is_resolved = false"}}},
			DoNothing:   true,
		}).
		Create(alert)
	if result.Error != nil {
		r.log.Error(ctx, "Failed to create regulatory alert", result.Error,
			logger.String("tenant_id", alert.TenantID),
			logger.String("dedup_key", alert.DedupKey),
		)
		return false, errors.ErrDatabaseOperation("create regulatory alert", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *alertRepository) FindByID(ctx context.Context, id string) (*models.RegulatoryAlert, error) {
	var alert models.RegulatoryAlert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, mapError("get regulatory alert", "regulatory alert", id, err)
	}
	return &alert, nil
}

func (r *alertRepository) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RegulatoryAlert{}).
		Where("id = ? AND is_resolved = ?", id, false).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": at,
			"resolved_by": resolvedBy,
		})
	if result.Error != nil {
		return false, errors.ErrDatabaseOperation("resolve regulatory alert", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RegulatoryAlert{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.ErrDatabaseOperation("resolve regulatory alert", err)
	}
	if count == 0 {
		return false, errors.ErrNotFound("regulatory alert", id)
	}
	return false, nil
}

func (r *alertRepository) ListByTenant(ctx context.Context, tenantID string, onlyOpen bool) ([]*models.RegulatoryAlert, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if onlyOpen {
		q = q.Where("is_resolved = ?", false)
	}
	var alerts []*models.RegulatoryAlert
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, errors.ErrDatabaseOperation("list regulatory alerts", err)
	}
	return alerts, nil
}

func (r *alertRepository) CountByTenant(ctx context.Context, tenantID string) (int64, int64, error) {
	var counts struct {
		Total    int64
		Resolved int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.RegulatoryAlert{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_resolved THEN 1 ELSE 0 END), 0) AS resolved").
		Where("tenant_id = ?", tenantID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, errors.ErrDatabaseOperation("count regulatory alerts", err)
	}
	return counts.Total, counts.Resolved, nil
}
