package sunmind

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformedFrame is returned by DecodeEvent for any frame that is not one
// of the known inbound event shapes.
var ErrMalformedFrame = errors.New("malformed frame")

// EventType discriminates inbound socket events.
type EventType string

const (
	EventTelemetry        EventType = "telemetry"
	EventDeviceConnection EventType = "device_connection"
	EventCommandAck       EventType = "command_ack"
	EventError            EventType = "error"
)

// Event is an inbound socket event. The concrete types are
// TelemetryEvent, DeviceConnectionEvent, CommandAckEvent and ErrorEvent.
type Event interface {
	Type() EventType
}

// TelemetryEvent carries a fresh telemetry snapshot for one device.
type TelemetryEvent struct {
	DeviceID string    `json:"device_id"`
	Data     Telemetry `json:"data"`
}

// DeviceConnectionEvent reports a device going on or offline.
type DeviceConnectionEvent struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	Connected  bool   `json:"connected"`
}

// CommandAckEvent acknowledges a previously sent command.
type CommandAckEvent struct {
	DeviceID  string `json:"device_id"`
	CommandID string `json:"command_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// ErrorEvent is a server-side error pushed over the socket.
type ErrorEvent struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (TelemetryEvent) Type() EventType        { return EventTelemetry }
func (DeviceConnectionEvent) Type() EventType { return EventDeviceConnection }
func (CommandAckEvent) Type() EventType       { return EventCommandAck }
func (ErrorEvent) Type() EventType            { return EventError }

type inboundFrame struct {
	Type       EventType       `json:"type"`
	DeviceID   string          `json:"device_id"`
	DeviceName string          `json:"device_name"`
	Connected  *bool           `json:"connected"`
	CommandID  string          `json:"command_id"`
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Code       json.RawMessage `json:"code"`
	Data       *telemetryFrame `json:"data"`
}

type telemetryFrame struct {
	Lux            *float64    `json:"lux"`
	MotionDetected bool        `json:"motion_detected"`
	RelayState     RelayState  `json:"relay_state"`
	BatteryLevel   *float64    `json:"battery_level"`
	SolarVoltage   *float64    `json:"solar_voltage"`
	PowerSource    PowerSource `json:"power_source"`
	Timestamp      string      `json:"timestamp"`
}

// DecodeEvent parses one inbound frame. A telemetry frame without a
// timestamp is stamped with now. Anything that does not match a known
// shape yields an error wrapping ErrMalformedFrame.
func DecodeEvent(raw []byte, now time.Time) (Event, error) {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch f.Type {
	case EventTelemetry:
		return decodeTelemetry(f, now)
	case EventDeviceConnection:
		if f.DeviceID == "" || f.Connected == nil {
			return nil, fmt.Errorf("%w: device_connection requires device_id and connected", ErrMalformedFrame)
		}
		return DeviceConnectionEvent{
			DeviceID:   f.DeviceID,
			DeviceName: f.DeviceName,
			Connected:  *f.Connected,
		}, nil
	case EventCommandAck:
		if f.DeviceID == "" || f.CommandID == "" || f.Success == nil {
			return nil, fmt.Errorf("%w: command_ack requires device_id, command_id and success", ErrMalformedFrame)
		}
		return CommandAckEvent{
			DeviceID:  f.DeviceID,
			CommandID: f.CommandID,
			Success:   *f.Success,
			Message:   f.Message,
		}, nil
	case EventError:
		if f.Error == "" {
			return nil, fmt.Errorf("%w: error frame without message", ErrMalformedFrame)
		}
		return ErrorEvent{Error: f.Error, Code: decodeCode(f.Code)}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, f.Type)
	}
}

func decodeTelemetry(f inboundFrame, now time.Time) (Event, error) {
	if f.DeviceID == "" || f.Data == nil {
		return nil, fmt.Errorf("%w: telemetry requires device_id and data", ErrMalformedFrame)
	}
	d := f.Data
	if !d.RelayState.Valid() {
		return nil, fmt.Errorf("%w: relay_state %q", ErrMalformedFrame, d.RelayState)
	}
	if !d.PowerSource.Valid() {
		return nil, fmt.Errorf("%w: power_source %q", ErrMalformedFrame, d.PowerSource)
	}

	ts := now
	if d.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, d.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedFrame, err)
		}
		ts = parsed
	}

	return TelemetryEvent{
		DeviceID: f.DeviceID,
		Data: Telemetry{
			Lux:            d.Lux,
			MotionDetected: d.MotionDetected,
			RelayState:     d.RelayState,
			BatteryLevel:   d.BatteryLevel,
			SolarVoltage:   d.SolarVoltage,
			PowerSource:    d.PowerSource,
			Timestamp:      ts,
		},
	}, nil
}

// decodeCode accepts the error code as either a JSON string or number.
func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strconv.Quote(string(raw))
}
