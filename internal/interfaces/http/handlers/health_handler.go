package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/pkg/logger"
)

// DependencyCheck reports whether one backing dependency is reachable.
type DependencyCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]DependencyCheck
	timeout time.Duration
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler. Optional dependencies are simply left out of checks.
func NewHealthHandler(checks map[string]DependencyCheck, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 3 * time.Second,
		log:     log.WithComponent("health_handler"),
	}
}

// HealthCheck runs every dependency check concurrently and answers 503 when any of them fails.
// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	results := h.runChecks(ctx)

	code, overall := http.StatusOK, "healthy"
	for dep, result := range results {
		if result == "ok" {
			continue
		}
		h.log.Warn(ctx, "Dependency unhealthy", logger.String("dependency", dep), logger.String("status", result))
		code, overall = http.StatusServiceUnavailable, "unhealthy"
	}

	c.JSON(code, gin.H{"status": overall, "timestamp": time.Now().UTC(), "checks": results})
}

// ReadinessCheck reports whether the service can take traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c)
}

// LivenessCheck only proves the process is serving.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
	)
	for dep, check := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := "ok"
			if err := check(ctx); err != nil {
				result = "error: " + err.Error()
			}
			mu.Lock()
			results[dep] = result
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}
