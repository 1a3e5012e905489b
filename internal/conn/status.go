package conn

import (
	"log/slog"
	"sync"
)

// Status is the connection state of a Client.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// statusChange is one entry in the client's notification queue. seq grows
// by one for every real transition.
type statusChange struct {
	seq    uint64
	status Status
}

// statusListener delivers changes to one subscriber, at most once per seq
// and never older than what it already saw. since is the seq that was
// current when it subscribed; anything queued before that is stale.
type statusListener struct {
	fn     func(Status)
	logger *slog.Logger

	mu    sync.Mutex
	since uint64
	last  uint64
}

func (l *statusListener) deliver(ch statusChange) {
	l.mu.Lock()
	if ch.seq < l.since || ch.seq <= l.last {
		l.mu.Unlock()
		return
	}
	l.last = ch.seq
	l.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("conn: status listener panicked", "status", ch.status, "panic", r)
		}
	}()
	l.fn(ch.status)
}
