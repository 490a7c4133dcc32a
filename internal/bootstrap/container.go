// Package bootstrap wires configuration, storage, messaging and application services together.
// Both the API server and the admin CLI build their dependency graph through it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	appservice "github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/internal/config"
	domainservice "github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/internal/infrastructure/events"
	"github.com/turtacn/compliance/internal/infrastructure/monitoring"
	"github.com/turtacn/compliance/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/compliance/internal/infrastructure/persistence/redis"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

// Options tweaks how the container is built.
type Options struct {
	// Metrics defaults to a private registry so short-lived processes never touch the global one.
	Metrics *monitoring.Metrics
	// SkipMigrations leaves the schema alone even when database.auto_migrate is set.
	SkipMigrations bool
}

// Container holds the long-lived dependencies of a process.
type Container struct {
	Config  *config.Config
	Logger  logger.Logger
	DB      *gorm.DB
	Redis   *redis.RedisConnection
	Kafka   *events.KafkaPublisher
	Metrics *monitoring.Metrics

	Collector  *domainservice.MetricCollector
	Thresholds appservice.ThresholdAppService
	Compliance appservice.ComplianceAppService
	Rules      appservice.RuleAppService
	Audits     appservice.AuditAppService
	Sweeps     *appservice.SweepService

	closers []func()
}

// New opens every configured backend and assembles the application services.
// Redis and Kafka are optional; when disabled the services run without a cache and without events.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: log, Metrics: opts.Metrics}
	if c.Metrics == nil {
		c.Metrics = monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	}

	db, err := postgres.OpenGorm(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.closers = append(c.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if cfg.Database.AutoMigrate && !opts.SkipMigrations {
		if err := postgres.AutoMigrate(ctx, db); err != nil {
			c.Close()
			return nil, err
		}
		log.Info(ctx, "Database schema migrated")
	}

	var cache domainservice.ScoreCache
	if cfg.Redis.Enabled {
		conn := redis.NewRedisConnection(&cfg.Redis, log)
		if err := conn.Connect(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Redis = conn
		c.closers = append(c.closers, func() { _ = conn.Close() })
		ttl := cfg.Scoring.LatestCacheTTL
		if ttl <= 0 {
			ttl = constants.LatestScoreCacheTTL
		}
		cache = redis.NewScoreCache(conn, ttl, log)
	} else {
		log.Info(ctx, "Redis disabled, score cache off")
	}

	var publisher domainservice.EventPublisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka, log)
		c.Kafka = kp
		publisher = kp
		c.closers = append(c.closers, func() { _ = kp.Close() })
	} else {
		log.Info(ctx, "Kafka disabled, domain events are dropped")
	}

	src := postgres.NewMetricSources(db)
	alerts := postgres.NewAlertRepository(db, log)
	tenants := postgres.NewTenantRepository(db, log)
	sources := appservice.MetricSources{Members: src, Bylaws: src, Issues: src, Alerts: alerts}

	c.Collector = domainservice.NewMetricCollector(src, src, src, alerts,
		domainservice.NewPlaceholderReportingScorer(cfg.Scoring.ReportingPlaceholder), log)
	c.Thresholds = appservice.NewThresholdAppService(postgres.NewThresholdRepository(db), cache, log)
	scores := postgres.NewScoreRepository(db, log)
	c.Compliance = appservice.NewComplianceAppService(scores, tenants, sources,
		c.Collector, c.Thresholds, cache, publisher, c.Metrics, log)
	c.Rules = appservice.NewRuleAppService(postgres.NewRuleRepository(db, log), sources, c.Collector,
		publisher, c.Metrics, log)
	c.Audits = appservice.NewAuditAppService(postgres.NewAuditRepository(db, log), scores,
		publisher, c.Metrics, log)
	c.Sweeps = appservice.NewSweepService(tenants, c.Compliance, c.Rules, appservice.SweepOptions{
		MaxParallel:      cfg.Scheduler.MaxParallel,
		TenantTimeout:    cfg.Scheduler.TenantTimeout,
		RunBuiltinChecks: cfg.Rules.BuiltinChecksEnabled,
	}, c.Metrics, log)

	return c, nil
}

// Reload applies the settings that may change while the process runs.
func (c *Container) Reload(cfg *config.Config) {
	c.Logger.SetLevel(constants.ParseLogLevel(cfg.Log.Level))
	c.Collector.SetReportingScorer(domainservice.NewPlaceholderReportingScorer(cfg.Scoring.ReportingPlaceholder))
	c.Logger.Info(context.Background(), "Runtime settings applied",
		logger.String("log_level", cfg.Log.Level),
		logger.Float64("reporting_placeholder", cfg.Scoring.ReportingPlaceholder),
	)
}

// Ping checks the database and, when enabled, redis.
func (c *Container) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := postgres.Ping(ctx, c.DB); err != nil {
		return err
	}
	if c.Redis != nil {
		return c.Redis.Ping(ctx)
	}
	return nil
}

// Close releases backends in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
