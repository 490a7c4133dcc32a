package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
)

type thresholdRepository struct {
	db *gorm.DB
}

// NewThresholdRepository creates a gorm-backed ThresholdRepository.
func NewThresholdRepository(db *gorm.DB) repository.ThresholdRepository {
	return &thresholdRepository{db: db}
}

func (r *thresholdRepository) Latest(ctx context.Context) (*models.RegulatorSettings, error) {
	var s models.RegulatorSettings
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&s).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseOperation("get regulator settings", err)
	}
	return &s, nil
}

func (r *thresholdRepository) Save(ctx context.Context, settings *models.RegulatorSettings) error {
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return errors.ErrDatabaseOperation("save regulator settings", err)
	}
	return nil
}
