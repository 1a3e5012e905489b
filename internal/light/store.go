// Package light holds the user's intended light settings for the targeted
// device. Changes are applied locally first and then sent to the device or
// the backend; on failure each field follows its rollback policy.
package light

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/notify"
	"github.com/sunmind/sunmind/internal/storage"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// StorageKey is the key the settings are persisted under.
const StorageKey = "light-storage"

// Commander sends device commands over the telemetry socket.
type Commander interface {
	IsConnected() bool
	SendCommand(cmd sunmind.Command) error
}

// Remote is the backend's light API.
type Remote interface {
	Toggle(ctx context.Context) error
	SetControlMode(ctx context.Context, mode sunmind.ControlMode) error
}

// TelemetrySource exposes the latest telemetry per device.
type TelemetrySource interface {
	Telemetry(deviceID string) (sunmind.Telemetry, bool)
}

// State is what the store persists and publishes.
type State struct {
	Settings sunmind.LightSettings `json:"settings"`
	DeviceID string                `json:"deviceId,omitempty"`
}

// Field names a settings field for the rollback policy.
type Field string

const (
	FieldPower       Field = "isOn"
	FieldBrightness  Field = "brightness"
	FieldMode        Field = "mode"
	FieldControlMode Field = "controlMode"
)

// FailurePolicy decides what happens to an optimistic change when the
// remote side rejects it.
type FailurePolicy int

const (
	// Retain keeps the local value; it is authoritative until the next sync.
	Retain FailurePolicy = iota
	// Rollback restores the value from before the operation.
	Rollback
)

// Policy is the per-field failure policy.
var Policy = map[Field]FailurePolicy{
	FieldPower:       Rollback,
	FieldBrightness:  Retain,
	FieldMode:        Retain,
	FieldControlMode: Retain,
}

// Deps are the collaborators of a Store. Only Logger is required.
type Deps struct {
	Commander Commander
	Remote    Remote
	Telemetry TelemetrySource
	Notifier  notify.Notifier
	Storage   storage.KV
	Bus       *events.Bus
	Logger    *slog.Logger
}

// Store is the light control store.
type Store struct {
	deps   Deps
	logger *slog.Logger

	mu    sync.Mutex
	state State

	persistMu sync.Mutex
}

// NewStore creates a store, restoring persisted state when available.
func NewStore(deps Deps) *Store {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	s := &Store{
		deps:   deps,
		logger: deps.Logger.With("component", "light"),
		state:  State{Settings: sunmind.DefaultSettings()},
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	if s.deps.Storage == nil {
		return
	}
	var st State
	if err := s.deps.Storage.GetJSON(StorageKey, &st); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("light: failed to restore settings", "error", err)
		}
		return
	}
	s.state = st
	s.logger.Debug("light: settings restored", "device_id", st.DeviceID, "mode", st.Settings.Mode)
}

// Settings returns the current settings.
func (s *Store) Settings() sunmind.LightSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// DeviceID returns the targeted device, or "".
func (s *Store) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeviceID
}

// State returns settings and target together.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// update applies fn to the state in one step. fn returns false to leave the
// state untouched. The previous and resulting states are returned.
func (s *Store) update(fn func(st *State) bool) (prev, next State, changed bool) {
	s.mu.Lock()
	prev = s.state
	next = prev
	if !fn(&next) {
		s.mu.Unlock()
		return prev, prev, false
	}
	s.state = next
	s.mu.Unlock()

	s.persist()
	s.deps.Bus.Emit(events.LightChanged, next)
	return prev, next, true
}

// persist saves the latest state. Writers are serialized and each writes
// whatever is current, so the last write always reflects the newest state.
func (s *Store) persist() {
	if s.deps.Storage == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.deps.Storage.PutJSON(StorageKey, s.State()); err != nil {
		s.logger.Warn("light: failed to persist settings", "error", err)
	}
}

// settle finishes a two-phase operation. On failure the user is notified
// and field is restored from prev if its policy says so.
func (s *Store) settle(field Field, prev sunmind.LightSettings, err error, what string) {
	if err == nil {
		return
	}
	s.logger.Error("light: "+what+" failed", "field", field, "error", err)
	notify.Errorf(s.deps.Notifier, "Failed to %s: %v", what, err)

	if Policy[field] != Rollback {
		return
	}
	s.update(func(st *State) bool {
		restoreField(field, &st.Settings, prev)
		return true
	})
}

func restoreField(field Field, dst *sunmind.LightSettings, src sunmind.LightSettings) {
	switch field {
	case FieldPower:
		dst.IsOn = src.IsOn
	case FieldBrightness:
		dst.Brightness = src.Brightness
	case FieldMode:
		dst.Mode = src.Mode
	case FieldControlMode:
		dst.ControlMode = src.ControlMode
	}
}

// SetBrightness sets the brightness percentage and sends it to the
// targeted device when connected. Ignored in auto control mode.
func (s *Store) SetBrightness(v int) {
	prev, next, ok := s.update(func(st *State) bool {
		if st.Settings.ControlMode == sunmind.ControlAuto {
			return false
		}
		st.Settings.Brightness = sunmind.ClampBrightness(v)
		return true
	})
	if !ok {
		s.logger.Debug("light: brightness change ignored in auto mode")
		return
	}
	s.sendBrightness(next.DeviceID, next.Settings.Brightness, prev.Settings, FieldBrightness, "set brightness")
}

// SetMode switches the preset and applies its brightness in the same step,
// then sends the resulting brightness. Allowed in either control mode.
func (s *Store) SetMode(m sunmind.LightMode) {
	prev, next, _ := s.update(func(st *State) bool {
		st.Settings.Mode = m
		if b, ok := sunmind.CanonicalBrightness(m); ok {
			st.Settings.Brightness = b
		}
		return true
	})
	s.sendBrightness(next.DeviceID, next.Settings.Brightness, prev.Settings, FieldMode, "set mode")
}

func (s *Store) sendBrightness(deviceID string, brightness int, prev sunmind.LightSettings, field Field, what string) {
	if deviceID == "" || s.deps.Commander == nil || !s.deps.Commander.IsConnected() {
		return
	}
	err := s.deps.Commander.SendCommand(sunmind.SetBrightness(deviceID, brightness))
	s.settle(field, prev, err, what)
}

// TogglePower flips the light and confirms with the backend. A failed
// round trip reverts the flip. Ignored in auto control mode.
func (s *Store) TogglePower(ctx context.Context) {
	prev, next, ok := s.update(func(st *State) bool {
		if st.Settings.ControlMode == sunmind.ControlAuto {
			return false
		}
		st.Settings.IsOn = !st.Settings.IsOn
		return true
	})
	if !ok {
		s.logger.Debug("light: power toggle ignored in auto mode")
		return
	}
	s.logger.Info("light: toggling power", "on", next.Settings.IsOn)

	if s.deps.Remote == nil {
		return
	}
	err := s.deps.Remote.Toggle(ctx)
	s.settle(FieldPower, prev.Settings, err, "toggle power")
}

// SetControlMode switches between manual and auto and tells the backend.
// The local value is kept even if the backend call fails.
func (s *Store) SetControlMode(ctx context.Context, m sunmind.ControlMode) {
	prev, _, _ := s.update(func(st *State) bool {
		st.Settings.ControlMode = m
		return true
	})
	if s.deps.Remote == nil {
		return
	}
	err := s.deps.Remote.SetControlMode(ctx, m)
	s.settle(FieldControlMode, prev.Settings, err, "set control mode")
}

// ResetToDefault restores the factory settings. The target device is kept.
func (s *Store) ResetToDefault() {
	s.update(func(st *State) bool {
		st.Settings = sunmind.DefaultSettings()
		return true
	})
}

// SetDeviceID sets the targeted device. An empty id clears it.
func (s *Store) SetDeviceID(id string) {
	s.update(func(st *State) bool {
		if st.DeviceID == id {
			return false
		}
		st.DeviceID = id
		return true
	})
}

// SyncWithDevice copies power and brightness from the device's latest
// telemetry and targets it. It reports false, changing nothing, when no
// telemetry has arrived for the device yet.
func (s *Store) SyncWithDevice(deviceID string) bool {
	if s.deps.Telemetry == nil {
		return false
	}
	t, ok := s.deps.Telemetry.Telemetry(deviceID)
	if !ok {
		return false
	}
	s.update(func(st *State) bool {
		st.Settings.IsOn = t.RelayState == sunmind.RelayOn
		if b, ok := BrightnessFromLux(t.Lux); ok {
			st.Settings.Brightness = b
		}
		st.DeviceID = deviceID
		return true
	})
	return true
}

// BrightnessFromLux maps illuminance to a brightness percentage, lux/10
// rounded and clamped. A missing or zero reading gives no value.
func BrightnessFromLux(lux *float64) (int, bool) {
	if lux == nil || *lux == 0 || math.IsNaN(*lux) {
		return 0, false
	}
	v := math.Round(*lux / 10)
	switch {
	case v < sunmind.MinBrightness:
		return sunmind.MinBrightness, true
	case v > sunmind.MaxBrightness:
		return sunmind.MaxBrightness, true
	}
	return int(v), true
}
