package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/sunmind/sunmind/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the agent, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns agent health status. This endpoint does not require authentication."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	mw.PublicGet(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Agent version"),
		mw.WithDescription("Returns the running agent's version, commit, and build date. This endpoint does not require authentication."),
		mw.WithOperationID("getVersion"))

	mw.ProtectedGet(api, "/api/v1/backend/health", h.BackendHealth,
		mw.WithTags("Health"),
		mw.WithSummary("Backend health"),
		mw.WithDescription("Probes the SunMind backend and reports its status and round trip time."),
		mw.WithOperationID("backendHealth"))

	// --- Session ---
	mw.ProtectedGet(api, "/api/v1/session", h.Session.GetSession,
		mw.WithTags("Session"),
		mw.WithSummary("Get the session"),
		mw.WithDescription("Returns whether a user is signed in. The access token is never returned."),
		mw.WithOperationID("getSession"))

	mw.ProtectedPost(api, "/api/v1/session/login", h.Session.Login,
		mw.WithTags("Session"),
		mw.WithSummary("Sign in"),
		mw.WithDescription("Signs in against the backend, stores the session and opens the telemetry socket."),
		mw.WithOperationID("login"))

	mw.ProtectedPost(api, "/api/v1/session/register", h.Session.Register,
		mw.WithTags("Session"),
		mw.WithSummary("Create an account"),
		mw.WithOperationID("register"),
		mw.WithDefaultStatus(201))

	mw.ProtectedPost(api, "/api/v1/session/logout", h.Session.Logout,
		mw.WithTags("Session"),
		mw.WithSummary("Sign out"),
		mw.WithDescription("Clears the stored session and closes the telemetry socket."),
		mw.WithOperationID("logout"))

	// --- Connection ---
	mw.ProtectedGet(api, "/api/v1/connection", h.Connection.GetConnection,
		mw.WithTags("Connection"),
		mw.WithSummary("Socket status"),
		mw.WithOperationID("getConnection"))

	mw.ProtectedPost(api, "/api/v1/connection/connect", h.Connection.Connect,
		mw.WithTags("Connection"),
		mw.WithSummary("Open the socket"),
		mw.WithDescription("Starts a dial and resets the reconnect budget. Returns immediately."),
		mw.WithOperationID("connect"),
		mw.WithDefaultStatus(202))

	mw.ProtectedPost(api, "/api/v1/connection/disconnect", h.Connection.Disconnect,
		mw.WithTags("Connection"),
		mw.WithSummary("Close the socket"),
		mw.WithOperationID("disconnect"))

	// --- Devices ---
	mw.ProtectedGet(api, "/api/v1/devices", h.Device.ListDevices,
		mw.WithTags("Devices"),
		mw.WithSummary("List devices"),
		mw.WithDescription("Returns all known devices ordered by name, each with its latest telemetry."),
		mw.WithOperationID("listDevices"))

	mw.ProtectedPut(api, "/api/v1/devices", h.Device.ReplaceDevices,
		mw.WithTags("Devices"),
		mw.WithSummary("Replace the device list"),
		mw.WithDescription("Swaps the whole device list. Telemetry and the selection are kept."),
		mw.WithOperationID("replaceDevices"))

	mw.ProtectedPut(api, "/api/v1/devices/selected", h.Device.SelectDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Select a device"),
		mw.WithOperationID("selectDevice"))

	mw.ProtectedGet(api, "/api/v1/devices/{id}", h.Device.GetDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Get a device"),
		mw.WithOperationID("getDevice"))

	mw.ProtectedDelete(api, "/api/v1/devices/{id}", h.Device.RemoveDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Forget a device"),
		mw.WithOperationID("removeDevice"),
		mw.WithDefaultStatus(204))

	// --- Light ---
	mw.ProtectedGet(api, "/api/v1/light", h.Light.GetLight,
		mw.WithTags("Light"),
		mw.WithSummary("Get light state"),
		mw.WithOperationID("getLight"))

	mw.ProtectedPut(api, "/api/v1/light/brightness", h.Light.SetBrightness,
		mw.WithTags("Light"),
		mw.WithSummary("Set brightness"),
		mw.WithDescription("Sets the brightness percentage and sends it to the targeted device. Ignored in auto control mode."),
		mw.WithOperationID("setBrightness"))

	mw.ProtectedPut(api, "/api/v1/light/mode", h.Light.SetMode,
		mw.WithTags("Light"),
		mw.WithSummary("Set light mode"),
		mw.WithDescription("Applies a preset and its brightness in one step."),
		mw.WithOperationID("setLightMode"))

	mw.ProtectedPost(api, "/api/v1/light/toggle", h.Light.TogglePower,
		mw.WithTags("Light"),
		mw.WithSummary("Toggle power"),
		mw.WithDescription("Flips the light and confirms with the backend; a failed round trip reverts the flip. Ignored in auto control mode."),
		mw.WithOperationID("togglePower"))

	mw.ProtectedPut(api, "/api/v1/light/control-mode", h.Light.SetControlMode,
		mw.WithTags("Light"),
		mw.WithSummary("Set control mode"),
		mw.WithOperationID("setControlMode"))

	mw.ProtectedPut(api, "/api/v1/light/target", h.Light.SetTarget,
		mw.WithTags("Light"),
		mw.WithSummary("Set the controlled device"),
		mw.WithOperationID("setLightTarget"))

	mw.ProtectedPost(api, "/api/v1/light/reset", h.Light.ResetLight,
		mw.WithTags("Light"),
		mw.WithSummary("Reset to defaults"),
		mw.WithOperationID("resetLight"))

	mw.ProtectedPost(api, "/api/v1/light/sync/{id}", h.Light.SyncLight,
		mw.WithTags("Light"),
		mw.WithSummary("Sync with a device"),
		mw.WithDescription("Copies power and brightness from the device's latest telemetry and targets it."),
		mw.WithOperationID("syncLight"))

	// --- Reviews ---
	mw.ProtectedGet(api, "/api/v1/reviews", h.Review.ListReviews,
		mw.WithTags("Reviews"),
		mw.WithSummary("List reviews"),
		mw.WithOperationID("listReviews"))

	mw.ProtectedPost(api, "/api/v1/reviews", h.Review.AddReview,
		mw.WithTags("Reviews"),
		mw.WithSummary("Add a review"),
		mw.WithOperationID("addReview"),
		mw.WithDefaultStatus(201))

	mw.ProtectedDelete(api, "/api/v1/reviews/{id}", h.Review.DeleteReview,
		mw.WithTags("Reviews"),
		mw.WithSummary("Delete a review"),
		mw.WithOperationID("deleteReview"),
		mw.WithDefaultStatus(204))

	// --- Notifications ---
	mw.ProtectedGet(api, "/api/v1/notifications", h.Notification.ListNotifications,
		mw.WithTags("Notifications"),
		mw.WithSummary("Recent notifications"),
		mw.WithOperationID("listNotifications"))

	// --- Logging ---
	mw.ProtectedGet(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.ProtectedPut(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}
