package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunmind/sunmind/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func startTestHub(t *testing.T) (*Hub, *events.Bus, context.CancelFunc) {
	t.Helper()
	return startTestHubWithState(t, nil)
}

func startTestHubWithState(t *testing.T, state StateFunc) (*Hub, *events.Bus, context.CancelFunc) {
	t.Helper()
	bus := events.NewBus()
	logger := testLogger()
	hub := NewHub(logger, bus, state)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	// Give the hub's Run loop time to start
	time.Sleep(10 * time.Millisecond)

	return hub, bus, cancel
}

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	logger := testLogger()
	server := httptest.NewServer(Handler(hub, logger))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	return dialWSPath(t, server, "")
}

func dialWSPath(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{}
	conn, _, err := dialer.Dial(wsURL(server)+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// --- Hub lifecycle tests ---

func TestNewHub_CreatesHub(t *testing.T) {
	bus := events.NewBus()
	logger := testLogger()
	hub := NewHub(logger, bus, nil)

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.unsub)
}

func TestHub_RunAndStop(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	defer cancel()

	assert.Equal(t, 0, hub.ClientCount())

	// Cancel should stop gracefully
	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestHub_ClientCount(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)

	assert.Equal(t, 0, hub.ClientCount())

	conn1 := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	conn2 := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, hub.ClientCount())

	// Close one connection
	conn1.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	conn2.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}

// --- Event broadcasting tests ---

func TestHub_BroadcastsEventToClients(t *testing.T) {
	hub, bus, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)
	conn := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)

	// Publish an event via the bus
	bus.Publish(events.NewEvent(events.TelemetryUpdated, map[string]string{"device_id": "D1"}))

	// Read the message from the WebSocket
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	// Parse the event
	var evt events.Event
	require.NoError(t, json.Unmarshal(msg, &evt))
	assert.Equal(t, events.TelemetryUpdated, evt.Type)

	var data map[string]string
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, "D1", data["device_id"])
}

func TestHub_BroadcastsToMultipleClients(t *testing.T) {
	hub, bus, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)
	conn1 := dialWS(t, server)
	conn2 := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)

	bus.Publish(events.NewEvent(events.DeviceAdded, map[string]string{"id": "D2"}))

	var wg sync.WaitGroup
	wg.Add(2)

	readEvent := func(conn *websocket.Conn) events.Event {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var evt events.Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt
	}

	var evt1, evt2 events.Event
	go func() { defer wg.Done(); evt1 = readEvent(conn1) }()
	go func() { defer wg.Done(); evt2 = readEvent(conn2) }()
	wg.Wait()

	assert.Equal(t, events.DeviceAdded, evt1.Type)
	assert.Equal(t, events.DeviceAdded, evt2.Type)
}

func TestHub_MultipleEventsInSequence(t *testing.T) {
	hub, bus, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)
	conn := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)

	// Send multiple events
	eventTypes := []events.EventType{
		events.DeviceAdded,
		events.LightChanged,
		events.ConnectionStatus,
	}
	for _, et := range eventTypes {
		bus.Publish(events.NewEvent(et, nil))
	}

	// Read all events
	var received []events.EventType
	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var evt events.Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		received = append(received, evt.Type)
	}

	assert.Equal(t, eventTypes, received)
}

// --- Handler tests ---

func TestHandler_UpgradesConnection(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)

	// Dial should succeed
	dialer := websocket.Dialer{}
	conn, resp, err := dialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestHandler_NonWebSocketRequest(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	defer cancel()

	logger := testLogger()
	server := httptest.NewServer(Handler(hub, logger))
	defer server.Close()

	// A regular HTTP GET (not a WebSocket upgrade) should fail
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// gorilla/websocket returns 400 Bad Request for non-upgrade requests
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- Hub shutdown tests ---

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, _, cancel := startTestHub(t)

	server := startTestServer(t, hub)
	conn := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, hub.ClientCount())

	// Cancel the hub context: should close all client connections
	cancel()
	time.Sleep(100 * time.Millisecond)

	// Try to read: should get an error (connection closed)
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

// --- NewClient tests ---

func TestNewClient(t *testing.T) {
	bus := events.NewBus()
	logger := testLogger()
	hub := NewHub(logger, bus, nil)

	// We can't create a real websocket.Conn easily, but we can test the factory
	client := hub.NewClient(nil, Filter{"light.changed"}) // nil conn is okay for testing the struct fields
	assert.Equal(t, hub, client.hub)
	assert.Nil(t, client.conn)
	assert.NotNil(t, client.send)
	assert.Equal(t, sendBufferSize, cap(client.send))
	assert.Equal(t, Filter{"light.changed"}, client.filter)
}

// --- Filter and initial state tests ---

func TestParseFilter(t *testing.T) {
	assert.Nil(t, ParseFilter(""))
	assert.Equal(t, Filter{"device.", "light.changed"}, ParseFilter(" device., ,light.changed "))
}

func TestFilterMatch(t *testing.T) {
	f := Filter{"device.", "light.changed"}
	assert.True(t, f.Match(events.DeviceAdded))
	assert.True(t, f.Match(events.DeviceRemoved))
	assert.True(t, f.Match(events.LightChanged))
	assert.False(t, f.Match(events.TelemetryUpdated))
	assert.True(t, Filter(nil).Match(events.TelemetryUpdated))
}

func TestHub_FilteredClientSkipsOtherEvents(t *testing.T) {
	hub, bus, cancel := startTestHub(t)
	defer cancel()

	server := startTestServer(t, hub)
	conn := dialWSPath(t, server, "?types=light.")
	time.Sleep(20 * time.Millisecond)

	bus.Publish(events.NewEvent(events.TelemetryUpdated, nil))
	bus.Publish(events.NewEvent(events.LightChanged, map[string]int{"brightness": 30}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt events.Event
	require.NoError(t, json.Unmarshal(msg, &evt))
	assert.Equal(t, events.LightChanged, evt.Type)
}

func TestHub_SendsInitialStateFirst(t *testing.T) {
	state := func() []events.Event {
		return []events.Event{
			events.NewEvent(events.ConnectionStatus, map[string]string{"status": "connected"}),
			events.NewEvent(events.LightChanged, map[string]int{"brightness": 50}),
		}
	}
	hub, bus, cancel := startTestHubWithState(t, state)
	defer cancel()

	server := startTestServer(t, hub)
	conn := dialWS(t, server)
	time.Sleep(20 * time.Millisecond)
	bus.Publish(events.NewEvent(events.DeviceAdded, nil))

	var received []events.EventType
	for range 3 {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var evt events.Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		received = append(received, evt.Type)
	}
	assert.Equal(t, []events.EventType{events.ConnectionStatus, events.LightChanged, events.DeviceAdded}, received)
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	cancel()
	time.Sleep(20 * time.Millisecond)

	done := make(chan bool, 1)
	go func() { done <- hub.Register(hub.NewClient(nil, nil)) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Register blocked on a stopped hub")
	}
	hub.Unregister(hub.NewClient(nil, nil))
}
