package session

import (
	"log/slog"
	"sync"

	"github.com/sunmind/sunmind/internal/devices"
)

// Connection is the telemetry client as the binding drives it.
type Connection interface {
	devices.MessageSource
	Connect()
	Disconnect()
}

// Registry is the device registry as the binding drives it.
type Registry interface {
	Attach(src devices.MessageSource) func()
}

// Binding keeps the connection and the registry subscription in step with
// the session: connected and attached while signed in with a token,
// disconnected and detached otherwise.
type Binding struct {
	conn     Connection
	registry Registry
	logger   *slog.Logger

	mu     sync.Mutex
	detach func()
	unsub  func()
	closed bool
}

// Bind applies the current session state and follows later changes until
// Close is called.
func Bind(logger *slog.Logger, m *Manager, conn Connection, registry Registry) *Binding {
	b := &Binding{
		conn:     conn,
		registry: registry,
		logger:   logger.With("component", "session-binding"),
	}
	unsub := m.OnChange(b.apply)
	b.mu.Lock()
	b.unsub = unsub
	b.mu.Unlock()
	b.apply(m.Info())
	return b
}

func (b *Binding) apply(info Info) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if info.Authenticated {
		if b.detach == nil {
			b.detach = b.registry.Attach(b.conn)
		}
		b.logger.Debug("binding: session active, connecting")
		b.conn.Connect()
		return
	}
	b.teardownLocked()
}

func (b *Binding) teardownLocked() {
	if b.detach != nil {
		b.detach()
		b.detach = nil
	}
	b.logger.Debug("binding: session inactive, disconnecting")
	b.conn.Disconnect()
}

// Close stops following the session and tears the connection down.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.unsub != nil {
		b.unsub()
	}
	b.teardownLocked()
}
