package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// RequestID propagates X-Request-ID, generating one when the caller sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(constants.HeaderRequestID, id)
		c.Set(string(constants.ContextKeyRequestID), id)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, id)
		if tenantID := c.Param("tenant_id"); tenantID != "" {
			ctx = context.WithValue(ctx, constants.ContextKeyTenantID, tenantID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logging logs every request once it has been served.
func Logging(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
			logger.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "Request processed", fields...)
			return
		}
		log.Info(c.Request.Context(), "Request processed", fields...)
	}
}

// Recovery turns a panic into a 500 ErrorResponse.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				log.Error(c.Request.Context(), "Panic recovered", err, logger.String("path", c.Request.URL.Path))
				status, body := errors.ToErrorResponse(errors.ErrInternal("unexpected server error"))
				c.AbortWithStatusJSON(status, body)
			}
		}()
		c.Next()
	}
}
