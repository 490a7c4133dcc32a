package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

type auditRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewAuditRepository creates a gorm-backed AuditRepository.
func NewAuditRepository(db *gorm.DB, log logger.Logger) repository.AuditRepository {
	return &auditRepository{db: db, log: log.WithComponent("audit_repository")}
}

func (r *auditRepository) Create(ctx context.Context, audit *models.ComplianceAudit) error {
	if err := r.db.WithContext(ctx).Create(audit).Error; err != nil {
		return errors.ErrDatabaseOperation("create compliance audit", err)
	}
	return nil
}

func (r *auditRepository) FindByID(ctx context.Context, id string) (*models.ComplianceAudit, error) {
	var audit models.ComplianceAudit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&audit).Error; err != nil {
		return nil, mapError("get compliance audit", "compliance audit", id, err)
	}
	return &audit, nil
}

func (r *auditRepository) CompleteIfPending(ctx context.Context, audit *models.ComplianceAudit) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ComplianceAudit{}).
		Where("id = ? AND status = ?", audit.ID, models.AuditStatusPending).
		Updates(map[string]interface{}{
			"status":                   models.AuditStatusCompleted,
			"completed_date":           audit.CompletedDate,
			"findings":                 audit.Findings,
			"compliance_score_at_time": audit.ComplianceScoreAtTime,
			"updated_at":               audit.UpdatedAt,
		})
	if result.Error != nil {
		return false, errors.ErrDatabaseOperation("complete compliance audit", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *auditRepository) List(ctx context.Context, tenantID string) ([]*models.ComplianceAudit, error) {
	q := r.db.WithContext(ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	var audits []*models.ComplianceAudit
	if err := q.Order("scheduled_date DESC").Find(&audits).Error; err != nil {
		return nil, errors.ErrDatabaseOperation("list compliance audits", err)
	}
	return audits, nil
}
