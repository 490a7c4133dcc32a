package service

import (
	"context"
	"strings"
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

// ComplianceAppService computes and serves compliance scores.
// ComplianceAppService 计算并提供合规分数。
type ComplianceAppService interface {
	// CalculateScore computes the weighted score of a tenant, stores a snapshot and refreshes the
	// tenant's compliance projection. A failing metric source degrades only its own sub-score.
	// CalculateScore 计算租户的加权分数，保存快照并刷新租户的合规投影。
	CalculateScore(ctx context.Context, tenantID, calculatedBy string) (*models.ComplianceScore, error)

	// GetScoreHistory returns up to limit snapshots, newest first.
	// GetScoreHistory 返回最多 limit 条快照，按时间倒序。
	GetScoreHistory(ctx context.Context, tenantID string, limit int) ([]*models.ComplianceScore, error)

	// GetLatestScoresAcrossTenants returns the newest snapshot of each tenant, worst first.
	// GetLatestScoresAcrossTenants 返回每个租户的最新快照，分数最低的在前。
	GetLatestScoresAcrossTenants(ctx context.Context) ([]*models.ComplianceScore, error)

	// GetLatestScore returns the newest snapshot of a tenant, or nil when none exists.
	// GetLatestScore 返回租户的最新快照，不存在时返回 nil。
	GetLatestScore(ctx context.Context, tenantID string) (*models.ComplianceScore, error)

	// GetComplianceMetrics summarises the tenant's current posture.
	// GetComplianceMetrics 汇总租户当前的合规状况。
	GetComplianceMetrics(ctx context.Context, tenantID string) (*dto.ComplianceMetricsResponse, error)
}

// MetricSources groups the read interfaces the compliance use cases consume.
type MetricSources struct {
	Members repository.MemberSource
	Bylaws  repository.BylawSource
	Issues  repository.IssueSource
	Alerts  repository.AlertRepository
}

type complianceAppServiceImpl struct {
	scores     repository.ScoreRepository
	tenants    repository.TenantRepository
	sources    MetricSources
	collector  *service.MetricCollector
	thresholds ThresholdAppService
	cache      service.ScoreCache
	events     eventEmitter
	metrics    service.Metrics
	logger     logger.Logger
	perf       *logger.PerformanceLogger
}

// NewComplianceAppService creates a new ComplianceAppService. cache, publisher and metrics may be nil.
func NewComplianceAppService(
	scores repository.ScoreRepository,
	tenants repository.TenantRepository,
	sources MetricSources,
	collector *service.MetricCollector,
	thresholds ThresholdAppService,
	cache service.ScoreCache,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) ComplianceAppService {
	if metrics == nil {
		metrics = service.NopMetrics{}
	}
	l := log.WithComponent("compliance_app_service")
	return &complianceAppServiceImpl{
		scores:     scores,
		tenants:    tenants,
		sources:    sources,
		collector:  collector,
		thresholds: thresholds,
		cache:      cache,
		events:     eventEmitter{publisher: publisher, logger: l},
		metrics:    metrics,
		logger:     l,
		perf:       logger.NewPerformanceLogger(log),
	}
}

func (s *complianceAppServiceImpl) CalculateScore(ctx context.Context, tenantID, calculatedBy string) (score *models.ComplianceScore, err error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}
	calculatedBy = utils.DefaultString(calculatedBy, constants.SystemActor)

	ctx, span := startSpan(ctx, "ComplianceAppService.CalculateScore", tenantID)
	defer func() { endSpan(span, err) }()
	done := s.perf.StartOperation(ctx, "calculate_score")
	start := time.Now()
	defer func() {
		overall := 0.0
		if score != nil {
			overall = score.OverallScore
		}
		s.metrics.RecordScoreCalculation(tenantID, overall, err == nil, time.Since(start))
		done(logger.String("tenant_id", tenantID))
	}()

	thresholds, err := s.thresholds.Current(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to load rating thresholds", err, logger.String("tenant_id", tenantID))
		return nil, err
	}

	set := s.collector.Collect(ctx, tenantID)
	score = set.ToScore(service.Classify(set.Overall(), thresholds))
	score.ID = uuid.NewString()
	score.TenantID = tenantID
	score.CalculatedAt = s.collector.Now().UTC()
	score.CalculatedBy = calculatedBy

	if err = s.scores.Save(ctx, score); err != nil {
		s.logger.Error(ctx, "Failed to save compliance score", err, logger.String("tenant_id", tenantID))
		return nil, err
	}

	projection := models.ComplianceProjection{
		Score:      score.OverallScore,
		Rating:     score.Rating,
		ReviewedAt: score.CalculatedAt,
	}
	if err = s.tenants.UpdateComplianceProjection(ctx, tenantID, projection); err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Error(ctx, "Failed to update tenant compliance projection", err, logger.String("tenant_id", tenantID))
			return nil, err
		}
		// tenant rows are owned elsewhere and may lag behind
		s.logger.Warn(ctx, "Tenant record missing, projection not updated", logger.String("tenant_id", tenantID))
		err = nil
	}

	if s.cache != nil {
		if cerr := s.cache.SetLatest(ctx, score); cerr != nil {
			s.logger.Warn(ctx, "Latest score cache write failed", logger.String("tenant_id", tenantID), logger.Err(cerr))
		}
	}
	s.events.emit(ctx, constants.EventScoreCalculated, tenantID, score)

	s.logger.Info(ctx, "Compliance score calculated",
		logger.String("tenant_id", tenantID),
		logger.Float64("overall_score", score.OverallScore),
		logger.String("rating", string(score.Rating)),
		logger.String("calculated_by", calculatedBy),
	)
	return score, nil
}

func (s *complianceAppServiceImpl) GetScoreHistory(ctx context.Context, tenantID string, limit int) ([]*models.ComplianceScore, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}
	return s.scores.ListByTenant(ctx, tenantID, limit)
}

func (s *complianceAppServiceImpl) GetLatestScoresAcrossTenants(ctx context.Context) ([]*models.ComplianceScore, error) {
	return s.scores.LatestPerTenant(ctx)
}

func (s *complianceAppServiceImpl) GetLatestScore(ctx context.Context, tenantID string) (*models.ComplianceScore, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, tenantID)
		if err != nil {
			s.logger.Warn(ctx, "Latest score cache read failed", logger.String("tenant_id", tenantID), logger.Err(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	latest, err := s.scores.Latest(ctx, tenantID)
	if err != nil || latest == nil {
		return latest, err
	}
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, latest); err != nil {
			s.logger.Warn(ctx, "Latest score cache write failed", logger.String("tenant_id", tenantID), logger.Err(err))
		}
	}
	return latest, nil
}

func (s *complianceAppServiceImpl) GetComplianceMetrics(ctx context.Context, tenantID string) (*dto.ComplianceMetricsResponse, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}

	latest, err := s.GetLatestScore(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	open, err := s.sources.Issues.ListOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pending, err := s.sources.Members.CountPendingKYC(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	openAlerts, err := s.sources.Alerts.ListByTenant(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	review, err := s.sources.Bylaws.LatestReview(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &dto.ComplianceMetricsResponse{
		TenantID:          tenantID,
		LatestScore:       latest,
		OpenIssues:        len(open),
		CriticalIssues:    service.CountCritical(open),
		PendingKYC:        pending,
		OpenAlerts:        len(openAlerts),
		LatestBylawReview: review,
		GeneratedAt:       s.collector.Now().UTC(),
	}, nil
}
