package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

type scoreRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewScoreRepository creates a gorm-backed ScoreRepository.
func NewScoreRepository(db *gorm.DB, log logger.Logger) repository.ScoreRepository {
	return &scoreRepository{db: db, log: log.WithComponent("score_repository")}
}

func (r *scoreRepository) Save(ctx context.Context, score *models.ComplianceScore) error {
	if err := r.db.WithContext(ctx).Create(score).Error; err != nil {
		r.log.Error(ctx, "Failed to save compliance score", err, logger.String("tenant_id", score.TenantID))
		return errors.ErrDatabaseOperation("save compliance score", err)
	}
	return nil
}

func (r *scoreRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*models.ComplianceScore, error) {
	var scores []*models.ComplianceScore
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("calculated_at DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation("list compliance scores", err)
	}
	return scores, nil
}

func (r *scoreRepository) Latest(ctx context.Context, tenantID string) (*models.ComplianceScore, error) {
	var score models.ComplianceScore
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("calculated_at DESC").
		First(&score).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseOperation("get latest compliance score", err)
	}
	return &score, nil
}

func (r *scoreRepository) LatestPerTenant(ctx context.Context) ([]*models.ComplianceScore, error) {
	latest := r.db.Model(&models.ComplianceScore{}).
		Select("tenant_id, MAX(calculated_at) AS max_calculated_at").
		Group("tenant_id")

	var rows []*models.ComplianceScore
	err := r.db.WithContext(ctx).
		Table("compliance_scores AS s").
		Select("s.*").
		Joins("JOIN (?) AS m ON s.tenant_id = m.tenant_id AND s.calculated_at = m.max_calculated_at", latest).
		Order("s.overall_score ASC, s.tenant_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation("list latest compliance scores", err)
	}

	// Two snapshots sharing the same timestamp would both join; keep one per tenant.
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, s := range rows {
		if _, dup := seen[s.TenantID]; dup {
			continue
		}
		seen[s.TenantID] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
