package events

import (
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// EntitlementChanged is published by the billing hook when a user's premium flag changes
type EntitlementChanged struct {
	Event
	UserID  int64  `json:"user_id"`
	Premium bool   `json:"premium"`
	Source  string `json:"source"`
}

// Event topics
const (
	TopicEntitlementChanged = "entitlement.changed"
)
