package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/logger"
)

// Handler processes one decoded event. Returning an error leaves the message uncommitted.
type Handler func(ctx context.Context, event *models.DomainEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads compliance events from the topic, e.g. for the admin CLI's tail command.
type Consumer struct {
	reader messageReader
	logger logger.Logger
}

// NewConsumer creates a consumer in the given group.
func NewConsumer(cfg config.KafkaConfig, groupID string, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return newConsumer(reader, log)
}

func newConsumer(r messageReader, log logger.Logger) *Consumer {
	return &Consumer{reader: r, logger: log.WithComponent("EventConsumer")}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			continue
		}

		var event models.DomainEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn(ctx, "skipping undecodable event", logger.Err(err), logger.Int64("offset", msg.Offset))
			// poison pill
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := handle(ctx, &event); err != nil {
			c.logger.Error(ctx, "failed to handle event", err, logger.String("event_id", event.ID))
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn(ctx, "failed to commit offset", logger.Err(err))
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
