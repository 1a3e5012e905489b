// Package ws provides the WebSocket feed that streams agent events to local
// dashboards.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sunmind/sunmind/internal/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer (clients only send pings/pongs).
	maxMessageSize = 512

	// Size of the per-client send buffer.
	sendBufferSize = 64
)

// StateFunc returns events describing the current agent state. They are sent
// to each client right after it connects, before any live event.
type StateFunc func() []events.Event

// Filter selects which event types a client receives. A nil filter passes
// everything. Entries ending in "." match a prefix, e.g. "device.".
type Filter []string

// ParseFilter reads a comma separated list such as "device.,light.changed".
func ParseFilter(s string) Filter {
	var f Filter
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			f = append(f, part)
		}
	}
	return f
}

// Match reports whether t passes the filter.
func (f Filter) Match(t events.EventType) bool {
	if len(f) == 0 {
		return true
	}
	for _, p := range f {
		if strings.HasSuffix(p, ".") && strings.HasPrefix(string(t), p) {
			return true
		}
		if string(t) == p {
			return true
		}
	}
	return false
}

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	filter Filter
}

type message struct {
	typ  events.EventType
	data []byte
}

// Hub manages a set of active WebSocket clients and broadcasts events.
type Hub struct {
	logger     *slog.Logger
	state      StateFunc
	clients    map[*Client]struct{}
	mu         sync.RWMutex
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	unsub      func() // unsubscribe from event bus
}

// NewHub creates a Hub and subscribes to the event bus. state may be nil.
func NewHub(logger *slog.Logger, bus *events.Bus, state StateFunc) *Hub {
	h := &Hub{
		logger:     logger.With("component", "ws"),
		state:      state,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	// Subscribe to the event bus; forward events to the broadcast channel.
	h.unsub = bus.Subscribe(func(e events.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			h.logger.Error("ws: failed to marshal event", "error", err)
			return
		}
		// Non-blocking send; if the broadcast channel is full, log and drop.
		select {
		case h.broadcast <- message{typ: e.Type, data: data}:
		default:
			h.logger.Warn("ws: broadcast channel full, dropping event", "type", e.Type)
		}
	})

	return h
}

// Run starts the hub's main loop. It blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.unsub()
	h.logger.Info("ws: hub started")

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("ws: hub stopped")
			return

		case c := <-h.register:
			h.greet(c)
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws: client connected", "clients", count, "filter", strings.Join(c.filter, ","))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws: client disconnected", "clients", count)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if !c.filter.Match(msg.typ) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// Client buffer full, schedule disconnect.
					go h.Unregister(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// greet queues the current state for a new client. Events that do not fit
// the send buffer are dropped; the client will see the next live update.
func (h *Hub) greet(c *Client) {
	if h.state == nil {
		return
	}
	for _, e := range h.state() {
		if !c.filter.Match(e.Type) {
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("ws: initial state truncated", "type", e.Type)
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// NewClient creates a new Client attached to this hub.
func (h *Hub) NewClient(conn *websocket.Conn, filter Filter) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		filter: filter,
	}
}

// WritePump pumps messages from the hub to the WebSocket connection.
// A goroutine per client runs this method.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads messages from the WebSocket connection.
// Clients are not expected to send data, but reading is required to
// process control frames (ping/pong/close).
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws: read error", "error", err)
			}
			return
		}
		// Discard any client messages; this is a server-push-only endpoint.
	}
}
