package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
	"github.com/turtacn/compliance/pkg/utils"
)

// ThresholdAppService manages the global rating thresholds.
// ThresholdAppService 管理全局评级阈值。
type ThresholdAppService interface {
	// Current returns the thresholds in force, falling back to the defaults when none are configured.
	// Current 返回当前生效的阈值，未配置时返回默认值。
	Current(ctx context.Context) (models.RatingThresholds, error)

	// GetThresholds returns the thresholds in force together with who configured them.
	// GetThresholds 返回当前阈值及其配置者。
	GetThresholds(ctx context.Context) (*dto.ThresholdsResponse, error)

	// UpdateThresholds merges a partial update onto the current thresholds and stores the result.
	// The merged thresholds must be within [0, 100] and strictly descending.
	// UpdateThresholds 将部分更新合并到当前阈值并保存，合并结果必须严格递减。
	UpdateThresholds(ctx context.Context, req *dto.UpdateThresholdsRequest) (*dto.ThresholdsResponse, error)
}

type thresholdAppServiceImpl struct {
	repo   repository.ThresholdRepository
	cache  service.ScoreCache
	logger logger.Logger
	audit  *logger.AuditTrail
}

// NewThresholdAppService creates a new ThresholdAppService. cache may be nil.
func NewThresholdAppService(repo repository.ThresholdRepository, cache service.ScoreCache, log logger.Logger) ThresholdAppService {
	return &thresholdAppServiceImpl{
		repo:   repo,
		cache:  cache,
		logger: log.WithComponent("threshold_app_service"),
		audit:  logger.NewAuditTrail(log),
	}
}

func (s *thresholdAppServiceImpl) Current(ctx context.Context) (models.RatingThresholds, error) {
	if s.cache != nil {
		cached, err := s.cache.GetThresholds(ctx)
		if err != nil {
			s.logger.Warn(ctx, "Threshold cache read failed", logger.Err(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	settings, err := s.repo.Latest(ctx)
	if err != nil {
		return models.RatingThresholds{}, err
	}
	t := models.DefaultRatingThresholds()
	var updatedAt time.Time
	if settings != nil {
		t = settings.Thresholds()
		updatedAt = settings.UpdatedAt
	}

	if s.cache != nil {
		if err := s.cache.SetThresholds(ctx, t, updatedAt); err != nil {
			s.logger.Warn(ctx, "Threshold cache write failed", logger.Err(err))
		}
	}
	return t, nil
}

func (s *thresholdAppServiceImpl) GetThresholds(ctx context.Context) (*dto.ThresholdsResponse, error) {
	settings, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return toThresholdsResponse(settings), nil
}

func (s *thresholdAppServiceImpl) UpdateThresholds(ctx context.Context, req *dto.UpdateThresholdsRequest) (*dto.ThresholdsResponse, error) {
	if req == nil {
		return nil, errors.ErrInvalidRequest("request body is required")
	}
	if verr := utils.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	current, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	base := models.DefaultRatingThresholds()
	if current != nil {
		base = current.Thresholds()
	}

	merged := req.Apply(base)
	if err := merged.Validate(); err != nil {
		return nil, errors.ErrInvalidRequest(err.Error())
	}

	settings := &models.RegulatorSettings{
		ID:                 uuid.NewString(),
		ExcellentThreshold: merged.Excellent,
		GoodThreshold:      merged.Good,
		FairThreshold:      merged.Fair,
		PoorThreshold:      merged.Poor,
		UpdatedBy:          req.UpdatedBy,
		UpdatedAt:          time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		s.logger.Error(ctx, "Failed to save rating thresholds", err)
		return nil, err
	}

	// write through so a concurrent fill carrying the previous row cannot win
	if s.cache != nil {
		if err := s.cache.SetThresholds(ctx, merged, settings.UpdatedAt); err != nil {
			s.logger.Warn(ctx, "Threshold cache write failed", logger.Err(err))
			if err := s.cache.InvalidateThresholds(ctx); err != nil {
				s.logger.Warn(ctx, "Threshold cache invalidation failed", logger.Err(err))
			}
		}
	}

	s.audit.Record(ctx, constants.EventThresholdsUpdated,
		logger.String("updated_by", req.UpdatedBy),
		logger.Float64("excellent", merged.Excellent),
		logger.Float64("good", merged.Good),
		logger.Float64("fair", merged.Fair),
		logger.Float64("poor", merged.Poor),
	)
	return toThresholdsResponse(settings), nil
}

func toThresholdsResponse(settings *models.RegulatorSettings) *dto.ThresholdsResponse {
	if settings == nil {
		return &dto.ThresholdsResponse{RatingThresholds: models.DefaultRatingThresholds(), IsDefault: true}
	}
	updatedAt := settings.UpdatedAt
	return &dto.ThresholdsResponse{
		RatingThresholds: settings.Thresholds(),
		UpdatedBy:        settings.UpdatedBy,
		UpdatedAt:        &updatedAt,
	}
}
