package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	TrackInFlight() func()
}

// ObservabilityMiddleware continues any incoming W3C trace context, wraps the request in a server span
// and reports method, route template, status and latency to recorder.
// ObservabilityMiddleware 延续上游追踪上下文，为每个请求创建服务端 span，并按路由模板记录请求指标。
func ObservabilityMiddleware(tracer trace.Tracer, recorder HTTPRecorder) gin.HandlerFunc {
	propagator := otel.GetTextMapPropagator()
	return func(c *gin.Context) {
		start := time.Now()
		done := recorder.TrackInFlight()
		defer done()

		// route template, e.g. /tenants/:tenant_id/scores
		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		recorder.RecordHTTPRequest(c.Request.Method, route, status, time.Since(start))

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
