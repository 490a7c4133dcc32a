package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/interfaces/http/handlers"
	"github.com/turtacn/compliance/internal/interfaces/http/middleware"
	"github.com/turtacn/compliance/pkg/logger"
)

// Handlers bundles the HTTP handlers mounted by the router.
type Handlers struct {
	Health     *handlers.HealthHandler
	Scores     *handlers.ScoreHandler
	Rules      *handlers.RuleHandler
	Audits     *handlers.AuditHandler
	Thresholds *handlers.ThresholdHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.ServerConfig
	logger   logger.Logger
	handlers Handlers
	tracer   trace.Tracer
	recorder middleware.HTTPRecorder
	metrics  http.Handler
	server   *http.Server
}

// NewRouter 创建路由器
// metricsHandler serves /metrics; nil falls back to the default Prometheus registry.
func NewRouter(
	cfg *config.ServerConfig,
	log logger.Logger,
	h Handlers,
	tracer trace.Tracer,
	recorder middleware.HTTPRecorder,
	metricsHandler http.Handler,
) *Router {
	// 设置 Gin 模式
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("http_router"),
		handlers: h,
		tracer:   tracer,
		recorder: recorder,
		metrics:  metricsHandler,
	}
	r.setupRoutes()
	return r
}

// Engine exposes the gin engine, mainly for httptest.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID", "traceparent"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range r.config.AllowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = r.config.AllowedOrigins
	cfg.AllowCredentials = true
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.ObservabilityMiddleware(r.tracer, r.recorder))
	r.engine.Use(middleware.Logging(r.logger))
	r.engine.Use(cors.New(r.corsConfig()))

	// 健康检查路由
	r.engine.GET("/health", r.handlers.Health.HealthCheck)
	r.engine.GET("/ready", r.handlers.Health.ReadinessCheck)
	r.engine.GET("/live", r.handlers.Health.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(r.metrics))

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.IsProduction() {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		tenants := v1.Group("/tenants/:tenant_id")
		{
			tenants.POST("/scores", r.handlers.Scores.CalculateScore)
			tenants.GET("/scores", r.handlers.Scores.GetScoreHistory)
			tenants.GET("/scores/latest", r.handlers.Scores.GetLatestScore)
			tenants.GET("/metrics", r.handlers.Scores.GetComplianceMetrics)
			tenants.POST("/evaluations", r.handlers.Rules.EvaluateRules)
			tenants.POST("/builtin-checks", r.handlers.Rules.RunBuiltinChecks)
			tenants.GET("/alerts", r.handlers.Rules.ListAlerts)
		}

		v1.GET("/scores/latest", r.handlers.Scores.GetLatestScores)
		v1.POST("/alerts/:alert_id/resolve", r.handlers.Rules.ResolveAlert)

		rules := v1.Group("/rules")
		{
			rules.GET("", r.handlers.Rules.ListRules)
			rules.POST("", r.handlers.Rules.CreateRule)
			rules.POST("/import", r.handlers.Rules.ImportRules)
			rules.PUT("/:rule_id", r.handlers.Rules.UpdateRule)
		}

		v1.GET("/thresholds", r.handlers.Thresholds.GetThresholds)
		v1.PUT("/thresholds", r.handlers.Thresholds.UpdateThresholds)

		audits := v1.Group("/audits")
		{
			audits.GET("", r.handlers.Audits.ListAudits)
			audits.POST("", r.handlers.Audits.ScheduleAudit)
			audits.POST("/:audit_id/complete", r.handlers.Audits.CompleteAudit)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器，阻塞直到 Stop 被调用
func (r *Router) Start() error {
	addr := r.config.Addr()
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.ReadTimeout,
		WriteTimeout:   r.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}

	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}
