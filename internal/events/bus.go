// Package events carries in-process notifications between the HTTP layer and
// the bot. The only topic today is TopicEntitlementChanged: the admin billing
// hook publishes it and the chatbot service flips the premium flag and tells
// the user. Use the typed helpers below rather than raw topic strings.
package events

import (
	"errors"
	"fmt"
	"sync"

	eventbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// ErrBusClosed is returned by every operation after Close
var ErrBusClosed = errors.New("event bus is closed")

// EventBus is the topic-based bus shared by the admin handler and the chatbot
type EventBus interface {
	Publish(topic string, data interface{}) error
	Subscribe(topic string, handler interface{}) error
	Unsubscribe(topic string, handler interface{}) error
	Close() error
}

// eventBus runs handlers synchronously on the publishing goroutine, in
// subscription order, so an accepted entitlement change is applied before the
// admin request returns.
type eventBus struct {
	bus    eventbus.Bus
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewEventBus returns an open bus
func NewEventBus(logger *zap.Logger) EventBus {
	return &eventBus{
		bus:    eventbus.New(),
		logger: logger.Named("events"),
	}
}

func (eb *eventBus) Publish(topic string, data interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}
	if !eb.bus.HasCallback(topic) {
		eb.logger.Warn("Dropping event with no subscribers", zap.String("topic", topic))
		return nil
	}

	eb.logger.Debug("Publishing event", zap.String("topic", topic), zap.Any("data", data))
	eb.bus.Publish(topic, data)
	return nil
}

// Subscribe registers handler, a func taking the event value, on topic
func (eb *eventBus) Subscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}
	if err := eb.bus.Subscribe(topic, handler); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	eb.logger.Debug("Subscribed", zap.String("topic", topic))
	return nil
}

func (eb *eventBus) Unsubscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}
	if err := eb.bus.Unsubscribe(topic, handler); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", topic, err)
	}
	return nil
}

// Close rejects further use. Calling it twice is harmless.
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return nil
	}

	eb.logger.Info("Closing event bus")
	eb.closed = true
	eb.bus.WaitAsync()
	return nil
}

// PublishEntitlementChanged stamps a correlation ID and timestamp when the
// caller left them empty, then publishes on TopicEntitlementChanged.
func PublishEntitlementChanged(bus EventBus, event EntitlementChanged) (EntitlementChanged, error) {
	if event.UserID <= 0 {
		return event, fmt.Errorf("entitlement change for invalid user id %d", event.UserID)
	}
	base := NewEvent()
	if event.CorrelationID == "" {
		event.CorrelationID = base.CorrelationID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = base.Timestamp
	}
	return event, bus.Publish(TopicEntitlementChanged, event)
}

// SubscribeEntitlementChanged registers handler for entitlement changes.
// Pass the same handler to UnsubscribeEntitlementChanged to remove it.
func SubscribeEntitlementChanged(bus EventBus, handler func(EntitlementChanged)) error {
	return bus.Subscribe(TopicEntitlementChanged, handler)
}

func UnsubscribeEntitlementChanged(bus EventBus, handler func(EntitlementChanged)) error {
	return bus.Unsubscribe(TopicEntitlementChanged, handler)
}
