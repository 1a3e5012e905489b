// Package mirror republishes device telemetry and availability to an MQTT
// broker so home automation systems can follow SunMind devices.
package mirror

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/sunmind/sunmind/internal/devices"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// Publisher sends one MQTT message.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool)
}

// TelemetryTopic is where a device's telemetry snapshots go.
func TelemetryTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/telemetry"
}

// AvailabilityTopic carries "online" or "offline" for a device, retained.
func AvailabilityTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/availability"
}

// AgentStateTopic carries the agent's own availability, retained.
func AgentStateTopic(prefix string) string {
	return prefix + "/agent/state"
}

// Mirror follows the app bus and republishes device state.
type Mirror struct {
	pub    Publisher
	prefix string
	logger *slog.Logger

	mu     sync.Mutex
	online map[string]bool
	unsub  func()
}

// New creates a mirror publishing under prefix.
func New(logger *slog.Logger, pub Publisher, prefix string) *Mirror {
	return &Mirror{
		pub:    pub,
		prefix: prefix,
		logger: logger.With("component", "mirror"),
		online: map[string]bool{},
	}
}

// Start subscribes to bus. Calling Start again is a no-op until Stop.
func (m *Mirror) Start(bus *events.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsub != nil {
		return
	}
	m.unsub = bus.Subscribe(m.handle)
	m.logger.Info("mirror started", "prefix", m.prefix)
}

// Stop unsubscribes from the bus.
func (m *Mirror) Stop() {
	m.mu.Lock()
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (m *Mirror) handle(e events.Event) {
	switch e.Type {
	case events.TelemetryUpdated:
		var u devices.TelemetryUpdate
		if err := json.Unmarshal(e.Data, &u); err != nil || u.DeviceID == "" {
			m.logger.Debug("mirror: skipping telemetry event", "error", err)
			return
		}
		payload, err := json.Marshal(u.Telemetry)
		if err != nil {
			return
		}
		m.pub.Publish(TelemetryTopic(m.prefix, u.DeviceID), payload, true)
	case events.DeviceAdded, events.DeviceUpdated:
		var d sunmind.Device
		if err := json.Unmarshal(e.Data, &d); err != nil || d.ID == "" {
			return
		}
		m.availability(d.ID, d.IsOnline)
	case events.DeviceRemoved:
		var r struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(e.Data, &r); err != nil || r.ID == "" {
			return
		}
		m.mu.Lock()
		delete(m.online, r.ID)
		m.mu.Unlock()
		// An empty retained message clears the topic on the broker.
		m.pub.Publish(AvailabilityTopic(m.prefix, r.ID), nil, true)
		m.pub.Publish(TelemetryTopic(m.prefix, r.ID), nil, true)
	}
}

// availability publishes only when the online flag changes.
func (m *Mirror) availability(id string, online bool) {
	m.mu.Lock()
	prev, known := m.online[id]
	m.online[id] = online
	m.mu.Unlock()
	if known && prev == online {
		return
	}
	state := "offline"
	if online {
		state = "online"
	}
	m.pub.Publish(AvailabilityTopic(m.prefix, id), []byte(state), true)
}
