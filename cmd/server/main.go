package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/infrastructure/monitoring"
	"github.com/turtacn/compliance/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/compliance/internal/infrastructure/scheduler"
	httpapi "github.com/turtacn/compliance/internal/interfaces/http"
	"github.com/turtacn/compliance/internal/interfaces/http/handlers"
	"github.com/turtacn/compliance/pkg/logger"
)

func main() {
	// Logger for startup
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	// Load config
	loader := config.NewLoader(startupLogger, os.Getenv("COMPLIANCE_CONFIG_FILE"))
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(cfg.Tracing, cfg.Server.Environment, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}

	metrics := monitoring.NewMetrics()

	c, err := bootstrap.New(ctx, cfg, appLogger, bootstrap.Options{Metrics: metrics})
	if err != nil {
		appLogger.Fatal(ctx, "Failed to wire services", err)
	}

	checks := map[string]handlers.DependencyCheck{
		"database": func(ctx context.Context) error { return postgres.Ping(ctx, c.DB) },
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}

	router := httpapi.NewRouter(&cfg.Server, appLogger, httpapi.Handlers{
		Health:     handlers.NewHealthHandler(checks, appLogger),
		Scores:     handlers.NewScoreHandler(c.Compliance, appLogger),
		Rules:      handlers.NewRuleHandler(c.Rules, appLogger),
		Audits:     handlers.NewAuditHandler(c.Audits, appLogger),
		Thresholds: handlers.NewThresholdHandler(c.Thresholds, appLogger),
	}, tracing.Tracer(), metrics, nil)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(ctx, cfg.Scheduler, c.Sweeps, appLogger)
		if err := sched.RegisterAll(); err != nil {
			appLogger.Fatal(ctx, "Failed to register sweeps", err)
		}
		sched.Start()
	}

	loader.Watch(c.Reload)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Start()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info(context.Background(), "Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(context.Background(), "HTTP server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
	}
	if sched != nil {
		sched.Stop()
	}
	c.Close()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn(shutdownCtx, "Tracer shutdown failed", logger.Err(err))
	}
	appLogger.Info(shutdownCtx, "Server stopped")
}
