// Package notify turns store failures and server errors into user-visible
// notifications: a log line, an app bus event and a short history.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sunmind/sunmind/internal/events"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DefaultHistory is how many notifications Center keeps.
const DefaultHistory = 50

// Notification is one user-visible message.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier accepts user-visible messages.
type Notifier interface {
	Notify(level Level, message string)
}

// Center is the agent's Notifier. It logs, publishes a notification event
// on the bus and keeps the most recent entries for late readers.
type Center struct {
	logger *slog.Logger
	bus    *events.Bus
	now    func() time.Time
	limit  int

	mu     sync.Mutex
	recent []Notification
}

// NewCenter creates a Center. bus may be nil.
func NewCenter(logger *slog.Logger, bus *events.Bus) *Center {
	return &Center{
		logger: logger.With("component", "notify"),
		bus:    bus,
		now:    time.Now,
		limit:  DefaultHistory,
	}
}

// Notify implements Notifier.
func (c *Center) Notify(level Level, message string) {
	n := Notification{Level: level, Message: message, Timestamp: c.now()}

	switch level {
	case LevelError:
		c.logger.Error("notify: "+message, "level", level)
	case LevelWarning:
		c.logger.Warn("notify: "+message, "level", level)
	default:
		c.logger.Info("notify: "+message, "level", level)
	}

	c.mu.Lock()
	c.recent = append(c.recent, n)
	if len(c.recent) > c.limit {
		c.recent = append([]Notification(nil), c.recent[len(c.recent)-c.limit:]...)
	}
	c.mu.Unlock()

	c.bus.Emit(events.Notification, n)
}

// Recent returns the retained notifications, oldest first.
func (c *Center) Recent() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.recent...)
}

// Errorf sends a formatted error notification.
func Errorf(n Notifier, format string, args ...any) {
	if n == nil {
		return
	}
	n.Notify(LevelError, fmt.Sprintf(format, args...))
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}
