package routes

import (
	"context"

	"github.com/sunmind/sunmind/internal/http/handlers"
)

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck   func(context.Context, *handlers.HealthInput) (*handlers.HealthOutput, error)
	VersionCheck  func(context.Context, *handlers.VersionInput) (*handlers.VersionOutput, error)
	BackendHealth func(context.Context, *handlers.BackendHealthInput) (*handlers.BackendHealthOutput, error)

	Session      handlers.SessionHandlers
	Connection   handlers.ConnectionHandlers
	Device       handlers.DeviceHandlers
	Light        handlers.LightHandlers
	Review       handlers.ReviewHandlers
	Notification handlers.NotificationHandlers
	Logging      handlers.LoggingHandlers
}
