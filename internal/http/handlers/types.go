// Package handlers provides typed Huma request/response structs and handler
// implementations for the sunmindd local API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sunmind/sunmind/internal/backend"
	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/light"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// --- Device types ---

// DeviceResponse is the API representation of a known device.
type DeviceResponse struct {
	sunmind.Device
	Selected  bool               `json:"selected" doc:"Whether this is the selected device"`
	Telemetry *sunmind.Telemetry `json:"telemetry,omitempty" doc:"Latest telemetry snapshot, if any has arrived"`
}

// --- Light types ---

// LightResponse is the API representation of the light control state.
type LightResponse struct {
	Settings  sunmind.LightSettings `json:"settings" doc:"Current light settings"`
	DeviceID  string                `json:"deviceId,omitempty" doc:"Targeted device"`
	Connected bool                  `json:"connected" doc:"Whether commands can currently reach the device"`
}

// LightFromState converts the light store state to a LightResponse.
func LightFromState(st light.State, connected bool) LightResponse {
	return LightResponse{
		Settings:  st.Settings,
		DeviceID:  st.DeviceID,
		Connected: connected,
	}
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// ToHTTPError maps an error from the stores or the backend onto an HTTP
// error with a matching status code.
func ToHTTPError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case apperrors.IsInvalidInput(err):
		return huma.Error400BadRequest(msg)
	case apperrors.IsUnauthorized(err), errors.Is(err, apperrors.ErrNoCredential):
		return huma.Error401Unauthorized(msg)
	case apperrors.IsNotFound(err):
		return huma.Error404NotFound(msg)
	case apperrors.IsNotConnected(err):
		return huma.Error503ServiceUnavailable(msg)
	}
	if apiErr, ok := backend.IsAPIError(err); ok {
		return huma.NewError(http.StatusBadGateway, apiErr.Message)
	}
	return huma.Error500InternalServerError(msg)
}
