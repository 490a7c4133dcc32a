package models

import (
	"time"

	"github.com/turtacn/compliance/pkg/constants"
)

// DomainEvent is published to the message bus after a state change.
type DomainEvent struct {
	ID         string              `json:"id"`
	Type       constants.EventType `json:"type"`
	TenantID   string              `json:"tenant_id,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
	Payload    interface{}         `json:"payload"`
}
