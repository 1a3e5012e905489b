package mirror

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunmind/sunmind/internal/devices"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

type message struct {
	Topic    string
	Payload  string
	Retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []message
}

func (f *fakePublisher) Publish(topic string, payload []byte, retained bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, message{topic, string(payload), retained})
}

func (f *fakePublisher) messages() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.msgs...)
}

func setup(t *testing.T) (*fakePublisher, *devices.Store, *Mirror) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewBus()
	pub := &fakePublisher{}
	m := New(logger, pub, "sunmind")
	m.Start(bus)
	m.Start(bus)
	t.Cleanup(m.Stop)
	return pub, devices.NewStore(logger, bus, nil), m
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "sunmind/D1/telemetry", TelemetryTopic("sunmind", "D1"))
	assert.Equal(t, "sunmind/D1/availability", AvailabilityTopic("sunmind", "D1"))
	assert.Equal(t, "home/agent/state", AgentStateTopic("home"))
}

func TestTelemetryIsMirrored(t *testing.T) {
	pub, store, _ := setup(t)
	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	store.UpdateTelemetry("D1", sunmind.Telemetry{
		Lux:         sunmind.Float64(450),
		RelayState:  sunmind.RelayOn,
		PowerSource: sunmind.PowerSolar,
		Timestamp:   ts,
	})

	msgs := pub.messages()
	require.Len(t, msgs, 1, "subscribing twice must not double publish")
	assert.Equal(t, "sunmind/D1/telemetry", msgs[0].Topic)
	assert.True(t, msgs[0].Retained)
	var got sunmind.Telemetry
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Payload), &got))
	assert.Equal(t, 450.0, *got.Lux)
	assert.Equal(t, sunmind.RelayOn, got.RelayState)
}

func TestAvailabilityPublishedOnChange(t *testing.T) {
	pub, store, _ := setup(t)

	store.Add(sunmind.Device{ID: "D1", Name: "Porch", IsOnline: true})
	store.Patch("D1", sunmind.DevicePatch{Name: sunmind.String("Front porch")})
	store.Patch("D1", sunmind.DevicePatch{IsOnline: sunmind.Bool(false)})

	var availability []message
	for _, msg := range pub.messages() {
		if msg.Topic == "sunmind/D1/availability" {
			availability = append(availability, msg)
		}
	}
	require.Len(t, availability, 2)
	assert.Equal(t, "online", availability[0].Payload)
	assert.Equal(t, "offline", availability[1].Payload)
	assert.True(t, availability[1].Retained)
}

func TestRemoveClearsRetainedTopics(t *testing.T) {
	pub, store, _ := setup(t)
	store.Add(sunmind.Device{ID: "D1", IsOnline: true})

	store.Remove("D1")

	msgs := pub.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, message{"sunmind/D1/availability", "", true}, msgs[1])
	assert.Equal(t, message{"sunmind/D1/telemetry", "", true}, msgs[2])
}

func TestStopUnsubscribes(t *testing.T) {
	pub, store, m := setup(t)
	m.Stop()

	store.Add(sunmind.Device{ID: "D1", IsOnline: true})

	assert.Empty(t, pub.messages())
}
