package sunmind

import (
	"encoding/json"
	"fmt"
)

// CommandType names a device command.
type CommandType string

const (
	CommandSetRelay      CommandType = "set_relay"
	CommandSetBrightness CommandType = "set_brightness"
	CommandReboot        CommandType = "reboot"
)

// Command is an outbound device command.
type Command struct {
	DeviceID string
	Type     CommandType
	Payload  map[string]any
}

// SetBrightness builds a set_brightness command.
func SetBrightness(deviceID string, brightness int) Command {
	return Command{
		DeviceID: deviceID,
		Type:     CommandSetBrightness,
		Payload:  map[string]any{"brightness": brightness},
	}
}

// SetRelay builds a set_relay command.
func SetRelay(deviceID string, state RelayState) Command {
	return Command{
		DeviceID: deviceID,
		Type:     CommandSetRelay,
		Payload:  map[string]any{"state": state},
	}
}

// Reboot builds a reboot command.
func Reboot(deviceID string) Command {
	return Command{DeviceID: deviceID, Type: CommandReboot, Payload: map[string]any{}}
}

type sendCommandFrame struct {
	Type     string         `json:"type"`
	DeviceID string         `json:"device_id"`
	Command  CommandType    `json:"command"`
	Payload  map[string]any `json:"payload"`
}

// EncodeCommand renders a command as a send_command frame.
func EncodeCommand(c Command) ([]byte, error) {
	if c.DeviceID == "" {
		return nil, fmt.Errorf("command %q has no device id", c.Type)
	}
	switch c.Type {
	case CommandSetRelay, CommandSetBrightness, CommandReboot:
	default:
		return nil, fmt.Errorf("unknown command %q", c.Type)
	}
	payload := c.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return json.Marshal(sendCommandFrame{
		Type:     "send_command",
		DeviceID: c.DeviceID,
		Command:  c.Type,
		Payload:  payload,
	})
}

// PingFrame is the heartbeat frame.
var PingFrame = []byte(`{"type":"ping"}`)
