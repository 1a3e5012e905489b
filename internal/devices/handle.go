package devices

import (
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/notify"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// HandleEvent applies one inbound socket event to the registry.
func (s *Store) HandleEvent(ev sunmind.Event) {
	switch e := ev.(type) {
	case sunmind.TelemetryEvent:
		s.handleTelemetry(e)
	case sunmind.DeviceConnectionEvent:
		s.handleConnection(e)
	case sunmind.CommandAckEvent:
		s.logger.Info("devices: command acknowledged",
			"device_id", e.DeviceID, "command_id", e.CommandID, "success", e.Success, "message", e.Message)
		s.bus.Emit(events.CommandAck, e)
	case sunmind.ErrorEvent:
		s.logger.Warn("devices: server error", "error", e.Error, "code", e.Code)
		notify.Errorf(s.notifier, "%s", e.Error)
	default:
		s.logger.Debug("devices: ignoring event", "type", ev.Type())
	}
}

// Telemetry is proof of life: the device is marked online and last seen at
// the telemetry's timestamp. Telemetry for an unknown device is stored but
// creates no device record.
func (s *Store) handleTelemetry(e sunmind.TelemetryEvent) {
	ts := e.Data.Timestamp
	if ts.IsZero() {
		ts = s.now()
		e.Data.Timestamp = ts
	}
	s.UpdateTelemetry(e.DeviceID, e.Data)
	s.Patch(e.DeviceID, sunmind.DevicePatch{
		IsOnline: sunmind.Bool(true),
		LastSeen: sunmind.Time(ts),
	})
}

func (s *Store) handleConnection(e sunmind.DeviceConnectionEvent) {
	now := s.now()

	if _, known := s.Device(e.DeviceID); known {
		p := sunmind.DevicePatch{IsOnline: sunmind.Bool(e.Connected)}
		if e.Connected {
			p.LastSeen = sunmind.Time(now)
		}
		s.Patch(e.DeviceID, p)
		s.logger.Info("devices: connection changed", "device_id", e.DeviceID, "connected", e.Connected)
		return
	}

	if !e.Connected {
		return
	}
	// Key and owner are unknown until the next authoritative fetch.
	s.Add(sunmind.Device{
		ID:        e.DeviceID,
		Name:      e.DeviceName,
		IsOnline:  true,
		LastSeen:  sunmind.Time(now),
		CreatedAt: now,
	})
	s.logger.Info("devices: discovered device", "device_id", e.DeviceID, "name", e.DeviceName)
}

// Attach subscribes the registry to src and returns the cleanup function.
// While attached, a second Attach returns the same cleanup function.
func (s *Store) Attach(src MessageSource) func() {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()
	if s.detach != nil {
		return s.detach
	}

	unsub := src.OnMessage(s.HandleEvent)
	detach := func() {
		s.attachMu.Lock()
		defer s.attachMu.Unlock()
		if unsub == nil {
			return
		}
		unsub()
		unsub = nil
		s.detach = nil
	}
	s.detach = detach
	s.logger.Debug("devices: attached to message source")
	return detach
}
