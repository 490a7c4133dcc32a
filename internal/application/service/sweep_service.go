package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

// Sweep job names.
const (
	JobScore    = "score"
	JobEvaluate = "evaluate"
)

// SweepOptions bounds a sweep.
type SweepOptions struct {
	MaxParallel   int
	TenantTimeout time.Duration
	// RunBuiltinChecks adds the built-in checks to the evaluation sweep.
	RunBuiltinChecks bool
}

// SweepService runs a use case over every active tenant. Tenants are independent: one tenant
// failing is recorded in the report and does not stop the others.
type SweepService struct {
	tenants    repository.TenantRepository
	compliance ComplianceAppService
	rules      RuleAppService
	opts       SweepOptions
	metrics    service.Metrics
	logger     logger.Logger
}

// NewSweepService creates a new SweepService.
func NewSweepService(
	tenants repository.TenantRepository,
	compliance ComplianceAppService,
	rules RuleAppService,
	opts SweepOptions,
	metrics service.Metrics,
	log logger.Logger,
) *SweepService {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}
	if metrics == nil {
		metrics = service.NopMetrics{}
	}
	return &SweepService{
		tenants:    tenants,
		compliance: compliance,
		rules:      rules,
		opts:       opts,
		metrics:    metrics,
		logger:     log.WithComponent("sweep_service"),
	}
}

// ScoreAll calculates the score of every active tenant.
func (s *SweepService) ScoreAll(ctx context.Context) (*dto.SweepReport, error) {
	return s.run(ctx, JobScore, func(ctx context.Context, tenantID string) error {
		_, err := s.compliance.CalculateScore(ctx, tenantID, constants.SystemActor)
		return err
	})
}

// EvaluateAll evaluates the active rules, and optionally the built-in checks, for every active tenant.
func (s *SweepService) EvaluateAll(ctx context.Context) (*dto.SweepReport, error) {
	return s.run(ctx, JobEvaluate, func(ctx context.Context, tenantID string) error {
		if _, err := s.rules.EvaluateRules(ctx, tenantID); err != nil {
			return err
		}
		if s.opts.RunBuiltinChecks {
			_, err := s.rules.RunBuiltinChecks(ctx, tenantID)
			return err
		}
		return nil
	})
}

func (s *SweepService) run(ctx context.Context, job string, fn func(context.Context, string) error) (*dto.SweepReport, error) {
	report := &dto.SweepReport{Job: job, StartedAt: time.Now().UTC(), Failures: map[string]string{}}

	ids, err := s.tenants.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to list active tenants", err, logger.String("job", job))
		return nil, err
	}
	report.Tenants = len(ids)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallel)
	for _, id := range ids {
		tenantID := id
		g.Go(func() error {
			tctx := gctx
			if s.opts.TenantTimeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(gctx, s.opts.TenantTimeout)
				defer cancel()
			}
			ferr := fn(context.WithValue(tctx, constants.ContextKeyTenantID, tenantID), tenantID)

			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				report.Failed++
				report.Failures[tenantID] = ferr.Error()
				s.logger.Warn(gctx, "Tenant failed during sweep",
					logger.String("job", job),
					logger.String("tenant_id", tenantID),
					logger.Err(ferr),
				)
				return nil
			}
			report.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	s.metrics.RecordSweep(job, report.Tenants, report.Failed, report.Duration)
	s.logger.Info(ctx, "Sweep finished",
		logger.String("job", job),
		logger.Int("tenants", report.Tenants),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration),
	)
	return report, ctx.Err()
}
