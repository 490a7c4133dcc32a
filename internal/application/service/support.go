// Package service implements the compliance use cases on top of the domain layer.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

var tracer = otel.Tracer("github.com/turtacn/compliance/internal/application/service")

func startSpan(ctx context.Context, name, tenantID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("tenant_id", tenantID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// eventEmitter publishes domain events best effort; failures are logged and swallowed.
type eventEmitter struct {
	publisher service.EventPublisher
	logger    logger.Logger
}

func (e eventEmitter) emit(ctx context.Context, typ constants.EventType, tenantID string, payload interface{}) {
	if e.publisher == nil {
		return
	}
	ev := &models.DomainEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn(ctx, "Failed to publish domain event",
			logger.String("event_type", string(typ)),
			logger.String("tenant_id", tenantID),
			logger.Err(err),
		)
	}
}
