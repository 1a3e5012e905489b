// Package conn maintains the persistent telemetry socket to the SunMind
// backend: connect, heartbeat, reconnect with backoff, and dispatch of
// decoded events to listeners.
package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sunmind/sunmind/internal/config"
	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configures a Client. Zero values fall back to the defaults in
// the config package.
type Options struct {
	// URL is the backend socket base, e.g. wss://host. The path and token
	// are appended per dial.
	URL                  string
	Credentials          CredentialSource
	Dialer               Dialer
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	HeartbeatInterval    time.Duration
	Logger               *slog.Logger

	// Now and AfterFunc replace the wall clock in tests.
	Now       func() time.Time
	AfterFunc AfterFunc
}

// Client owns at most one telemetry socket at a time.
//
// State is guarded by mu. Listeners are never called with mu held; status
// changes are queued under mu and delivered in order by flush.
type Client struct {
	url         string
	creds       CredentialSource
	dialer      Dialer
	baseDelay   time.Duration
	maxAttempts int
	heartbeat   time.Duration
	logger      *slog.Logger
	now         func() time.Time
	afterFunc   AfterFunc

	messages events.Fanout[sunmind.Event]
	statuses events.Fanout[statusChange]

	mu         sync.Mutex
	status     Status
	statusSeq  uint64
	pending    []statusChange
	draining   bool
	conn       Conn
	gen        uint64 // bumped on every dial and on Disconnect
	dialing    bool
	dialCancel context.CancelFunc
	attempts   int

	reconnectTimer Timer
	reconnectSeq   uint64
	heartbeatTimer Timer
	heartbeatSeq   uint64
}

// New creates a disconnected Client.
func New(opts Options) *Client {
	c := &Client{
		url:         opts.URL,
		creds:       opts.Credentials,
		dialer:      opts.Dialer,
		baseDelay:   opts.ReconnectDelay,
		maxAttempts: config.ValidateReconnectAttempts(opts.MaxReconnectAttempts),
		heartbeat:   opts.HeartbeatInterval,
		logger:      opts.Logger,
		now:         opts.Now,
		afterFunc:   opts.AfterFunc,
		status:      StatusDisconnected,
		statusSeq:   1,
	}
	if c.creds == nil {
		c.creds = TokenFunc(func() string { return "" })
	}
	if c.dialer == nil {
		c.dialer = NewWebSocketDialer()
	}
	if c.baseDelay <= 0 {
		c.baseDelay = config.DefaultReconnectDelay
	}
	if c.heartbeat <= 0 {
		c.heartbeat = config.DefaultHeartbeatInterval
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "conn")
	if c.now == nil {
		c.now = time.Now
	}
	if c.afterFunc == nil {
		c.afterFunc = realAfterFunc
	}
	return c
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected reports whether the socket is open.
func (c *Client) IsConnected() bool {
	return c.Status() == StatusConnected
}

// OnMessage registers fn for every decoded inbound event and returns a
// function that removes it. Events are delivered in wire order on the
// read goroutine.
func (c *Client) OnMessage(fn func(sunmind.Event)) func() {
	return c.messages.Subscribe(func(ev sunmind.Event) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("conn: message listener panicked", "type", ev.Type(), "panic", r)
			}
		}()
		fn(ev)
	})
}

// OnStatusChange registers fn for status transitions and returns a
// function that removes it. Before OnStatusChange returns, fn has seen
// the current status or a newer one; it never sees an older one.
func (c *Client) OnStatusChange(fn func(Status)) func() {
	l := &statusListener{fn: fn, logger: c.logger}

	c.mu.Lock()
	current := statusChange{seq: c.statusSeq, status: c.status}
	l.since = current.seq
	unsub := c.statuses.Subscribe(l.deliver)
	c.mu.Unlock()

	l.deliver(current)
	return unsub
}

// Connect opens the socket unless one is open or being opened. Without a
// valid credential the status is forced to disconnected and nothing is
// dialed. An explicit Connect resets the reconnect budget.
func (c *Client) Connect() {
	c.connect(true)
}

func (c *Client) connect(explicit bool) {
	token := c.creds.Token()
	valid := CredentialValid(token, c.now())

	c.mu.Lock()
	if c.status == StatusConnected || c.dialing {
		c.mu.Unlock()
		return
	}
	if explicit {
		c.attempts = 0
		c.stopReconnectLocked()
	}
	if !valid {
		c.setStatusLocked(StatusDisconnected)
		c.mu.Unlock()
		c.flush()
		c.logger.Warn("conn: no valid credential, not connecting")
		return
	}

	c.gen++
	gen := c.gen
	c.dialing = true
	ctx, cancel := context.WithCancel(context.Background())
	c.dialCancel = cancel
	c.setStatusLocked(StatusConnecting)
	c.mu.Unlock()
	c.flush()

	go c.dial(ctx, gen, BuildURL(c.url, token))
}

func (c *Client) dial(ctx context.Context, gen uint64, rawURL string) {
	conn, err := c.dialer.Dial(ctx, rawURL)

	c.mu.Lock()
	if gen != c.gen {
		// Disconnected while dialing.
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	if err != nil {
		// dialing stays set until closed() so a concurrent Connect is
		// still a no-op.
		c.mu.Unlock()
		c.logger.Error("conn: dial failed", "url", c.url, "error", err)
		c.closed(gen, err)
		return
	}

	connID := uuid.NewString()
	c.dialing = false
	c.conn = conn
	c.attempts = 0
	c.setStatusLocked(StatusConnected)
	c.startHeartbeatLocked()
	c.mu.Unlock()
	c.flush()

	logger := c.logger.With("conn_id", connID)
	logger.Info("conn: connected", "url", c.url)
	go c.readLoop(gen, conn, logger)
}

func (c *Client) readLoop(gen uint64, conn Conn, logger *slog.Logger) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("conn: closed by peer")
				c.closed(gen, nil)
			} else {
				logger.Warn("conn: read failed", "error", err)
				c.closed(gen, err)
			}
			return
		}

		ev, err := sunmind.DecodeEvent(data, c.now())
		if err != nil {
			logger.Warn("conn: dropping malformed frame", "error", err, "bytes", len(data))
			continue
		}
		c.messages.Publish(ev)
	}
}

// closed tears down generation gen after a dial failure or a read error.
// A non-nil err is reported as StatusError before StatusDisconnected.
func (c *Client) closed(gen uint64, err error) {
	token := c.creds.Token()
	valid := CredentialValid(token, c.now())

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.stopHeartbeatLocked()
	conn := c.conn
	c.conn = nil
	c.dialing = false
	if err != nil {
		c.setStatusLocked(StatusError)
	}
	c.setStatusLocked(StatusDisconnected)
	if valid {
		c.scheduleReconnectLocked()
	} else {
		c.logger.Info("conn: credential gone, not reconnecting")
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.flush()
}

// Disconnect cancels any pending reconnect and heartbeat, closes the
// socket and sets the status to disconnected. It is idempotent and never
// schedules a reconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.stopReconnectLocked()
	c.stopHeartbeatLocked()
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	c.dialing = false
	conn := c.conn
	c.conn = nil
	c.setStatusLocked(StatusDisconnected)
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug("conn: close failed", "error", err)
		}
		c.logger.Info("conn: disconnected")
	}
	c.flush()
}

// SendCommand transmits cmd. It fails with ErrNotConnected unless the
// socket is open; nothing is queued.
func (c *Client) SendCommand(cmd sunmind.Command) error {
	data, err := sunmind.EncodeCommand(cmd)
	if err != nil {
		return apperrors.InvalidInputf("encode command: %v", err)
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected && conn != nil
	c.mu.Unlock()
	if !connected {
		return apperrors.NotConnectedf("send %s to %s", cmd.Type, cmd.DeviceID)
	}

	if err := conn.WriteMessage(data); err != nil {
		return fmt.Errorf("send %s to %s: %w", cmd.Type, cmd.DeviceID, err)
	}
	c.logger.Debug("conn: command sent", "command", cmd.Type, "device_id", cmd.DeviceID)
	return nil
}

// ReconnectDelay returns the backoff delay for the given 1-based attempt.
func ReconnectDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

func (c *Client) scheduleReconnectLocked() {
	if c.reconnectTimer != nil {
		return
	}
	if c.attempts >= c.maxAttempts {
		c.logger.Warn("conn: giving up reconnecting", "attempts", c.attempts)
		return
	}
	c.attempts++
	delay := ReconnectDelay(c.baseDelay, c.attempts)
	c.reconnectSeq++
	seq := c.reconnectSeq
	c.reconnectTimer = c.afterFunc(delay, func() { c.reconnectFired(seq) })
	c.logger.Info("conn: reconnect scheduled", "attempt", c.attempts, "max_attempts", c.maxAttempts, "delay", delay)
}

func (c *Client) reconnectFired(seq uint64) {
	c.mu.Lock()
	if seq != c.reconnectSeq || c.reconnectTimer == nil {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	c.mu.Unlock()

	if !CredentialValid(c.creds.Token(), c.now()) {
		c.logger.Info("conn: reconnect abandoned, credential cleared")
		c.mu.Lock()
		c.setStatusLocked(StatusDisconnected)
		c.mu.Unlock()
		c.flush()
		return
	}
	c.connect(false)
}

func (c *Client) stopReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.reconnectSeq++
}

func (c *Client) startHeartbeatLocked() {
	c.stopHeartbeatLocked()
	seq := c.heartbeatSeq
	c.heartbeatTimer = c.afterFunc(c.heartbeat, func() { c.heartbeatFired(seq) })
}

func (c *Client) heartbeatFired(seq uint64) {
	c.mu.Lock()
	if seq != c.heartbeatSeq || c.status != StatusConnected || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.heartbeatTimer = c.afterFunc(c.heartbeat, func() { c.heartbeatFired(seq) })
	c.mu.Unlock()

	if err := conn.WriteMessage(sunmind.PingFrame); err != nil {
		c.logger.Warn("conn: heartbeat failed", "error", err)
	}
}

func (c *Client) stopHeartbeatLocked() {
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
		c.heartbeatTimer = nil
	}
	c.heartbeatSeq++
}

// setStatusLocked records a transition and queues it for listeners.
// Setting the current status again is a no-op.
func (c *Client) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.status = s
	c.statusSeq++
	c.pending = append(c.pending, statusChange{seq: c.statusSeq, status: s})
}

// flush delivers queued status changes in order. Only one goroutine drains
// at a time; a change queued by a listener is delivered by the same drain
// after that listener returns.
func (c *Client) flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		ch := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		c.statuses.Publish(ch)
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}
