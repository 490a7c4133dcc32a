package service

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/logger"
)

// Values used when a metric source cannot be read. They never flatter the tenant.
const (
	fallbackKYCScore       = 0.0
	fallbackReportingScore = 0.0
	fallbackBylawScore     = 50.0
	fallbackIssueScore     = 0.0
	fallbackAlertScore     = 0.0
)

// MetricCollector reads the metric sources of a tenant and computes a MetricSet.
type MetricCollector struct {
	members   repository.MemberSource
	bylaws    repository.BylawSource
	issues    repository.IssueSource
	alerts    repository.AlertRepository
	mu        sync.RWMutex
	reporting ReportingScorer
	weights   Weights
	log       logger.Logger
	now       func() time.Time
}

// NewMetricCollector creates a collector using the default weights.
func NewMetricCollector(
	members repository.MemberSource,
	bylaws repository.BylawSource,
	issues repository.IssueSource,
	alerts repository.AlertRepository,
	reporting ReportingScorer,
	log logger.Logger,
) *MetricCollector {
	return &MetricCollector{
		members:   members,
		bylaws:    bylaws,
		issues:    issues,
		alerts:    alerts,
		reporting: reporting,
		weights:   DefaultWeights(),
		log:       log.WithComponent("metric_collector"),
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (c *MetricCollector) SetClock(now func() time.Time) {
	c.now = now
}

// SetReportingScorer swaps the reporting scorer, e.g. after a configuration reload.
func (c *MetricCollector) SetReportingScorer(r ReportingScorer) {
	c.mu.Lock()
	c.reporting = r
	c.mu.Unlock()
}

// Now returns the collector's current time.
func (c *MetricCollector) Now() time.Time {
	return c.now()
}

// Collect computes every sub-score for tenantID. A failing source degrades only its own
// sub-score to a conservative value, marks it on the set and is logged; Collect itself does not fail.
func (c *MetricCollector) Collect(ctx context.Context, tenantID string) *MetricSet {
	readers := []struct {
		metric   models.Metric
		fallback float64
		read     func(context.Context, string) (float64, error)
	}{
		{models.MetricKYCRate, fallbackKYCScore, c.kycScore},
		{models.MetricFinancialTimeliness, fallbackReportingScore, c.reportingScore},
		{models.MetricBylawAdherence, fallbackBylawScore, c.bylawScore},
		{models.MetricIssueScore, fallbackIssueScore, c.issueScore},
		{models.MetricAlertResolution, fallbackAlertScore, c.alertScore},
	}

	values := make(map[models.Metric]float64, len(readers))
	var failed []models.Metric
	for _, r := range readers {
		v, err := r.read(ctx, tenantID)
		if err != nil {
			c.degraded(ctx, tenantID, r.metric, r.fallback, err)
			v = r.fallback
			failed = append(failed, r.metric)
		}
		values[r.metric] = v
	}

	set := NewMetricSet(c.weights,
		values[models.MetricKYCRate],
		values[models.MetricFinancialTimeliness],
		values[models.MetricBylawAdherence],
		values[models.MetricIssueScore],
		values[models.MetricAlertResolution],
	)
	for _, m := range failed {
		set.MarkDegraded(m)
	}
	return set
}

func (c *MetricCollector) kycScore(ctx context.Context, tenantID string) (float64, error) {
	total, err := c.members.CountMembers(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return KYCScore(0, 0), nil
	}
	verified, err := c.members.CountFullyVerified(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return KYCScore(total, verified), nil
}

func (c *MetricCollector) reportingScore(ctx context.Context, tenantID string) (float64, error) {
	c.mu.RLock()
	scorer := c.reporting
	c.mu.RUnlock()
	return scorer.Score(ctx, tenantID)
}

func (c *MetricCollector) bylawScore(ctx context.Context, tenantID string) (float64, error) {
	review, err := c.bylaws.LatestReview(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return BylawScore(review, c.now()), nil
}

func (c *MetricCollector) issueScore(ctx context.Context, tenantID string) (float64, error) {
	open, err := c.issues.ListOpen(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return IssueScore(open), nil
}

func (c *MetricCollector) alertScore(ctx context.Context, tenantID string) (float64, error) {
	total, resolved, err := c.alerts.CountByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return AlertScore(total, resolved), nil
}

func (c *MetricCollector) degraded(ctx context.Context, tenantID string, metric models.Metric, fallback float64, err error) {
	c.log.Warn(ctx, "Metric source unavailable, using conservative fallback",
		logger.String("tenant_id", tenantID),
		logger.String("metric", string(metric)),
		logger.Float64("fallback", fallback),
		logger.Err(err),
	)
}
