package events

import (
	"fmt"
	"reflect"
	"sync"
)

// MockEventBus is a synchronous in-memory EventBus that records every publish
type MockEventBus struct {
	mu              sync.RWMutex
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	publishErr      error
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		return fmt.Errorf("%s is not of type reflect.Func", reflect.TypeOf(handler).Kind())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// Unsubscribe implements the EventBus interface
func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := reflect.ValueOf(handler).Pointer()
	handlers := m.subscriptions[topic][:0]
	for _, h := range m.subscriptions[topic] {
		if reflect.ValueOf(h).Pointer() != target {
			handlers = append(handlers, h)
		}
	}
	m.subscriptions[topic] = handlers
	return nil
}

// Publish records the event and invokes subscribers synchronously
func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mu.Lock()
	if m.publishErr != nil {
		err := m.publishErr
		m.mu.Unlock()
		return err
	}
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := append([]interface{}(nil), m.subscriptions[topic]...)
	m.mu.Unlock()

	for _, handler := range handlers {
		reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
	}
	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	return nil
}

// SetPublishError makes every later Publish fail with err
func (m *MockEventBus) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// GetPublishedEvents returns the events published on topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]interface{}(nil), m.publishedEvents[topic]...)
}

// GetSubscriberCount returns the number of handlers on topic
func (m *MockEventBus) GetSubscriberCount(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions[topic])
}
