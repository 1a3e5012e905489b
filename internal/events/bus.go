// Package events provides a lightweight in-process event bus for broadcasting
// agent state changes to subscribers (WebSocket feed, MQTT mirror, logs).
package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event.
type EventType string

const (
	// Device registry events
	DeviceAdded      EventType = "device.added"
	DeviceUpdated    EventType = "device.updated"
	DeviceRemoved    EventType = "device.removed"
	DeviceSelected   EventType = "device.selected"
	DevicesReplaced  EventType = "device.replaced"
	TelemetryUpdated EventType = "telemetry.updated"

	// Light control events
	LightChanged EventType = "light.changed"

	// Connection and command events
	ConnectionStatus EventType = "connection.status"
	CommandAck       EventType = "command.ack"

	// User-facing events
	Notification   EventType = "notification"
	SessionChanged EventType = "session.changed"
)

// Event is a single event emitted by a producer.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event, marshaling data to JSON.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// SubscriberFunc is a callback invoked for each event.
// Implementations must not block; slow subscribers should buffer internally.
type SubscriberFunc func(Event)

// Bus is a simple synchronous fan-out event bus.
// Publishing blocks until all subscribers have been called, so subscribers
// should be fast (e.g., write to a channel).
type Bus struct {
	subs Fanout[Event]
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback and returns an unsubscribe function.
func (b *Bus) Subscribe(fn SubscriberFunc) func() {
	return b.subs.Subscribe(fn)
}

// Publish sends an event to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.subs.Publish(e)
}

// Emit is shorthand for Publish(NewEvent(t, data)). A nil bus drops the event.
func (b *Bus) Emit(t EventType, data any) {
	if b == nil {
		return
	}
	b.Publish(NewEvent(t, data))
}
