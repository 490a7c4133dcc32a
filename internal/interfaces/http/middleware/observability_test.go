package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

type observation struct {
	method string
	route  string
	status int
}

type fakeRecorder struct {
	mu       sync.Mutex
	seen     []observation
	inFlight int
	peak     int
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{method, route, status})
}

func (f *fakeRecorder) TrackInFlight() func() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &fakeRecorder{}

	router := gin.New()
	router.Use(ObservabilityMiddleware(otel.Tracer("test-tracer"), rec))
	router.GET("/tenants/:tenant_id/scores", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/t-1/scores", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/tenants/:tenant_id/scores", http.StatusOK}, rec.seen[0])
	assert.Equal(t, observation{http.MethodGet, "not_found", http.StatusNotFound}, rec.seen[1])
	assert.Equal(t, 0, rec.inFlight)
	assert.Equal(t, 1, rec.peak)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var fromCtx interface{}
	var tenant interface{}
	router.GET("/tenants/:tenant_id", func(c *gin.Context) {
		fromCtx = c.Request.Context().Value(constants.ContextKeyRequestID)
		tenant = c.Request.Context().Value(constants.ContextKeyTenantID)
		c.Status(http.StatusNoContent)
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tenants/t-9", nil)
		req.Header.Set(constants.HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))
		assert.Equal(t, "req-123", fromCtx)
		assert.Equal(t, "t-9", tenant)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/t-9", nil))
		assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(logger.NewNoopLogger()))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(constants.ErrCodeInternal))
}
