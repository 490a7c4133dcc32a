package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

type ruleRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewRuleRepository creates a gorm-backed RuleRepository.
func NewRuleRepository(db *gorm.DB, log logger.Logger) repository.RuleRepository {
	return &ruleRepository{db: db, log: log.WithComponent("rule_repository")}
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.ComplianceRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return errors.ErrDatabaseOperation("create compliance rule", err)
	}
	return nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.ComplianceRule) error {
	result := r.db.WithContext(ctx).
		Model(&models.ComplianceRule{}).
		Where("id = ?", rule.ID).
		Select("name", "description", "metric", "operator", "threshold", "severity", "is_active", "updated_at").
		Updates(rule)
	if result.Error != nil {
		return errors.ErrDatabaseOperation("update compliance rule", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("compliance rule", rule.ID)
	}
	return nil
}

func (r *ruleRepository) FindByID(ctx context.Context, id string) (*models.ComplianceRule, error) {
	var rule models.ComplianceRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, mapError("get compliance rule", "compliance rule", id, err)
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]*models.ComplianceRule, error) {
	var rules []*models.ComplianceRule
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rules).Error; err != nil {
		return nil, errors.ErrDatabaseOperation("list compliance rules", err)
	}
	return rules, nil
}

func (r *ruleRepository) ListActive(ctx context.Context) ([]*models.ComplianceRule, error) {
	var rules []*models.ComplianceRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation("list active compliance rules", err)
	}
	return rules, nil
}
