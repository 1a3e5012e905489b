package handlers

import (
	"context"

	"github.com/sunmind/sunmind/internal/notify"
)

// ListNotificationsInput is the input for reading recent notifications.
type ListNotificationsInput struct{}

// ListNotificationsOutput is the output for reading recent notifications.
type ListNotificationsOutput struct {
	Body []notify.Notification
}

// NotificationHandler implements notification HTTP handlers.
type NotificationHandler struct {
	Center interface {
		Recent() []notify.Notification
	}
}

// ListNotifications returns the most recent notifications, oldest first.
func (h *NotificationHandler) ListNotifications(_ context.Context, _ *ListNotificationsInput) (*ListNotificationsOutput, error) {
	list := h.Center.Recent()
	if list == nil {
		list = []notify.Notification{}
	}
	return &ListNotificationsOutput{Body: list}, nil
}

// Ensure NotificationHandler implements the interface at compile time.
var _ NotificationHandlers = (*NotificationHandler)(nil)

// NotificationHandlers defines the interface for notification operations.
type NotificationHandlers interface {
	ListNotifications(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error)
}
