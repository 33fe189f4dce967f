// internal/handler/event_bus.go
package handler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"device-configurator/internal/service"
)

// Event types published on the bus
const (
	EventSessionStatus = "session.status"
)

// EventBus manages event distribution
type EventBus struct {
	subscribers map[string][]chan Event
	events      chan Event
	mutex       sync.RWMutex
	closed      bool
	logger      *zap.Logger
}

// Event represents a system event
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
		events:      make(chan Event, 1000),
		logger:      logger,
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}

	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	for _, subscribers := range eb.subscribers {
		for _, subscriber := range subscribers {
			close(subscriber)
		}
	}
	eb.subscribers = make(map[string][]chan Event)
}

// Stop stops the bus and closes every subscription
func (eb *EventBus) Stop() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.events)
}

// Publish publishes an event
func (eb *EventBus) Publish(event Event) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	if eb.closed {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType string) <-chan Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan Event, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event Event) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, subscriber := range eb.subscribers[event.Type] {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// StatusPublisher forwards session status reports to the bus
func StatusPublisher(bus *EventBus) service.StatusFunc {
	return func(st service.Status) {
		data := map[string]interface{}{
			"operation": st.Operation,
			"message":   st.Message,
			"ok":        st.OK,
		}
		if st.Error != "" {
			data["error"] = st.Error
		}
		if st.Field != nil {
			data["field"] = st.Field.Caption
			data["field_id"] = st.Field.ID
			data["section"] = st.Field.Section
		}

		bus.Publish(Event{
			Type:   EventSessionStatus,
			Source: "session",
			Data:   data,
		})
	}
}
