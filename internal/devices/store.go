// Package devices is the registry of known SunMind devices and their latest
// telemetry. State is held in immutable snapshots; every mutation installs a
// new one so observers can detect change by pointer identity.
package devices

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/notify"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// Snapshot is one immutable registry state. Callers must not modify the
// maps.
type Snapshot struct {
	Devices    map[string]sunmind.Device
	Telemetry  map[string]sunmind.Telemetry
	SelectedID string
	Version    uint64
}

// MessageSource delivers inbound socket events. *conn.Client implements it.
type MessageSource interface {
	OnMessage(fn func(sunmind.Event)) func()
}

// Store is the device registry.
type Store struct {
	logger   *slog.Logger
	bus      *events.Bus
	notifier notify.Notifier
	now      func() time.Time

	mu   sync.Mutex
	snap *Snapshot

	observers events.Fanout[*Snapshot]

	attachMu sync.Mutex
	detach   func()
}

// NewStore creates an empty registry. bus and notifier may be nil.
func NewStore(logger *slog.Logger, bus *events.Bus, notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Store{
		logger:   logger.With("component", "devices"),
		bus:      bus,
		notifier: notifier,
		now:      time.Now,
		snap: &Snapshot{
			Devices:   map[string]sunmind.Device{},
			Telemetry: map[string]sunmind.Telemetry{},
		},
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Observe registers fn for every new snapshot and returns a function that
// removes it.
func (s *Store) Observe(fn func(*Snapshot)) func() {
	return s.observers.Subscribe(fn)
}

// Device returns the device with the given id.
func (s *Store) Device(id string) (sunmind.Device, bool) {
	d, ok := s.Snapshot().Devices[id]
	return d, ok
}

// Devices returns all devices ordered by name, then id.
func (s *Store) Devices() []sunmind.Device {
	snap := s.Snapshot()
	out := slices.Collect(maps.Values(snap.Devices))
	slices.SortFunc(out, func(a, b sunmind.Device) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Telemetry returns the latest telemetry for a device.
func (s *Store) Telemetry(id string) (sunmind.Telemetry, bool) {
	t, ok := s.Snapshot().Telemetry[id]
	return t, ok
}

// SelectedID returns the current device selection, or "".
func (s *Store) SelectedID() string {
	return s.Snapshot().SelectedID
}

// Selected returns the selected device, if it is known.
func (s *Store) Selected() (sunmind.Device, bool) {
	snap := s.Snapshot()
	if snap.SelectedID == "" {
		return sunmind.Device{}, false
	}
	d, ok := snap.Devices[snap.SelectedID]
	return d, ok
}

// mutate applies fn to a working copy of the current snapshot. fn returns
// false to abandon the change. The new snapshot is installed under the lock
// and observers are called after it is released.
func (s *Store) mutate(fn func(next *Snapshot) bool) (*Snapshot, bool) {
	s.mu.Lock()
	cur := s.snap
	next := &Snapshot{
		Devices:    cur.Devices,
		Telemetry:  cur.Telemetry,
		SelectedID: cur.SelectedID,
		Version:    cur.Version + 1,
	}
	if !fn(next) {
		s.mu.Unlock()
		return cur, false
	}
	s.snap = next
	s.mu.Unlock()

	s.observers.Publish(next)
	return next, true
}

// ReplaceAll swaps the whole device set, as after a fetch from the
// backend. Telemetry and the selection are left alone.
func (s *Store) ReplaceAll(devices []sunmind.Device) {
	s.mutate(func(next *Snapshot) bool {
		m := make(map[string]sunmind.Device, len(devices))
		for _, d := range devices {
			m[d.ID] = d
		}
		next.Devices = m
		return true
	})
	s.logger.Debug("devices: replaced", "count", len(devices))
	s.bus.Emit(events.DevicesReplaced, map[string]int{"count": len(devices)})
}

// Add inserts or overwrites one device.
func (s *Store) Add(d sunmind.Device) {
	s.mutate(func(next *Snapshot) bool {
		next.Devices = maps.Clone(next.Devices)
		next.Devices[d.ID] = d
		return true
	})
	s.bus.Emit(events.DeviceAdded, d)
}

// Patch merges p into an existing device. It reports false, and changes
// nothing, when the id is unknown.
func (s *Store) Patch(id string, p sunmind.DevicePatch) bool {
	var updated sunmind.Device
	_, ok := s.mutate(func(next *Snapshot) bool {
		d, ok := next.Devices[id]
		if !ok {
			return false
		}
		updated = p.Apply(d)
		next.Devices = maps.Clone(next.Devices)
		next.Devices[id] = updated
		return true
	})
	if ok {
		s.bus.Emit(events.DeviceUpdated, updated)
	}
	return ok
}

// Remove deletes a device and its telemetry, and clears the selection if
// it pointed at it. It reports whether anything was removed.
func (s *Store) Remove(id string) bool {
	_, ok := s.mutate(func(next *Snapshot) bool {
		_, known := next.Devices[id]
		_, hasTelemetry := next.Telemetry[id]
		if !known && !hasTelemetry && next.SelectedID != id {
			return false
		}
		next.Devices = maps.Clone(next.Devices)
		delete(next.Devices, id)
		next.Telemetry = maps.Clone(next.Telemetry)
		delete(next.Telemetry, id)
		if next.SelectedID == id {
			next.SelectedID = ""
		}
		return true
	})
	if ok {
		s.bus.Emit(events.DeviceRemoved, map[string]string{"id": id})
	}
	return ok
}

// Select sets the current device. An empty id clears the selection.
func (s *Store) Select(id string) {
	_, changed := s.mutate(func(next *Snapshot) bool {
		if next.SelectedID == id {
			return false
		}
		next.SelectedID = id
		return true
	})
	if changed {
		s.bus.Emit(events.DeviceSelected, map[string]string{"id": id})
	}
}

// UpdateTelemetry replaces the telemetry snapshot for a device.
func (s *Store) UpdateTelemetry(id string, t sunmind.Telemetry) {
	s.mutate(func(next *Snapshot) bool {
		next.Telemetry = maps.Clone(next.Telemetry)
		next.Telemetry[id] = t
		return true
	})
	s.bus.Emit(events.TelemetryUpdated, TelemetryUpdate{DeviceID: id, Telemetry: t})
}

// TelemetryUpdate is the payload of a telemetry.updated bus event.
type TelemetryUpdate struct {
	DeviceID  string            `json:"device_id"`
	Telemetry sunmind.Telemetry `json:"telemetry"`
}
