// Package routes provides shared route registration for the sunmindd HTTP API.
// Both the agent and the OpenAPI generator use the same route definitions,
// so the published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/sunmind/sunmind/internal/http/mw"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("sunmindd API", version)
	cfg.Info.Description = "Local API of the SunMind agent: session, telemetry socket, devices, light control and reviews."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "Agent"},
		}
	}

	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Optional static token from server.api_token. Send it as `Authorization: Bearer <token>` or `X-API-Key: <token>`.",
		},
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Health", Description: "Liveness of the agent and the backend"},
		{Name: "Session", Description: "Sign in, registration and sign out"},
		{Name: "Connection", Description: "Telemetry socket status and control"},
		{Name: "Devices", Description: "Known devices and their latest telemetry"},
		{Name: "Light", Description: "Light settings and commands"},
		{Name: "Reviews", Description: "Product reviews"},
		{Name: "Notifications", Description: "Recent user-visible messages"},
		{Name: "Logging", Description: "Runtime log level"},
	}

	return cfg
}
