package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/light"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// --- Get Light ---

// GetLightInput is the input for reading the light state.
type GetLightInput struct{}

// LightOutput is the output of every light operation: the state after it.
type LightOutput struct {
	Body LightResponse
}

// --- Set Brightness ---

// SetBrightnessInput is the input for setting the brightness.
type SetBrightnessInput struct {
	Body struct {
		Brightness int `json:"brightness" doc:"Brightness percentage (0-100); values outside are clamped"`
	}
}

// --- Set Mode ---

// SetModeInput is the input for choosing a preset.
type SetModeInput struct {
	Body struct {
		Mode string `json:"mode" enum:"economy,maximum,default,custom" doc:"Light preset"`
	}
}

// --- Toggle ---

// ToggleInput is the input for flipping the power.
type ToggleInput struct{}

// --- Control Mode ---

// SetControlModeInput is the input for switching between manual and auto.
type SetControlModeInput struct {
	Body struct {
		ControlMode string `json:"controlMode" enum:"manual,auto" doc:"Control mode"`
	}
}

// --- Reset ---

// ResetLightInput is the input for restoring factory settings.
type ResetLightInput struct{}

// --- Target / Sync ---

// SetTargetInput is the input for choosing the controlled device.
type SetTargetInput struct {
	Body struct {
		DeviceID string `json:"deviceId" doc:"Device to control; empty clears the target"`
	}
}

// SyncLightInput is the input for pulling settings from device telemetry.
type SyncLightInput struct {
	DeviceID string `path:"id" doc:"Device identifier"`
}

// LightHandler implements light control HTTP handlers.
type LightHandler struct {
	Light     *light.Store
	Connected func() bool
}

func (h *LightHandler) output() *LightOutput {
	connected := h.Connected != nil && h.Connected()
	return &LightOutput{Body: LightFromState(h.Light.State(), connected)}
}

// GetLight returns the current light state.
func (h *LightHandler) GetLight(_ context.Context, _ *GetLightInput) (*LightOutput, error) {
	return h.output(), nil
}

// SetBrightness sets the brightness. It is ignored in auto control mode.
func (h *LightHandler) SetBrightness(_ context.Context, input *SetBrightnessInput) (*LightOutput, error) {
	h.Light.SetBrightness(input.Body.Brightness)
	return h.output(), nil
}

// SetMode applies a preset.
func (h *LightHandler) SetMode(_ context.Context, input *SetModeInput) (*LightOutput, error) {
	mode, err := sunmind.ParseLightMode(input.Body.Mode)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	h.Light.SetMode(mode)
	return h.output(), nil
}

// TogglePower flips the light. It is ignored in auto control mode.
func (h *LightHandler) TogglePower(ctx context.Context, _ *ToggleInput) (*LightOutput, error) {
	h.Light.TogglePower(ctx)
	return h.output(), nil
}

// SetControlMode switches between manual and auto control.
func (h *LightHandler) SetControlMode(ctx context.Context, input *SetControlModeInput) (*LightOutput, error) {
	mode, err := sunmind.ParseControlMode(input.Body.ControlMode)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	h.Light.SetControlMode(ctx, mode)
	return h.output(), nil
}

// ResetLight restores the factory settings.
func (h *LightHandler) ResetLight(_ context.Context, _ *ResetLightInput) (*LightOutput, error) {
	h.Light.ResetToDefault()
	return h.output(), nil
}

// SetTarget chooses the device that receives commands.
func (h *LightHandler) SetTarget(_ context.Context, input *SetTargetInput) (*LightOutput, error) {
	h.Light.SetDeviceID(input.Body.DeviceID)
	return h.output(), nil
}

// SyncLight copies power and brightness from a device's latest telemetry.
func (h *LightHandler) SyncLight(_ context.Context, input *SyncLightInput) (*LightOutput, error) {
	if !h.Light.SyncWithDevice(input.DeviceID) {
		return nil, ToHTTPError(apperrors.NotFoundf("telemetry for device %s", input.DeviceID))
	}
	return h.output(), nil
}

// Ensure LightHandler implements the interface at compile time.
var _ LightHandlers = (*LightHandler)(nil)

// LightHandlers defines the interface for light control operations.
type LightHandlers interface {
	GetLight(ctx context.Context, input *GetLightInput) (*LightOutput, error)
	SetBrightness(ctx context.Context, input *SetBrightnessInput) (*LightOutput, error)
	SetMode(ctx context.Context, input *SetModeInput) (*LightOutput, error)
	TogglePower(ctx context.Context, input *ToggleInput) (*LightOutput, error)
	SetControlMode(ctx context.Context, input *SetControlModeInput) (*LightOutput, error)
	ResetLight(ctx context.Context, input *ResetLightInput) (*LightOutput, error)
	SetTarget(ctx context.Context, input *SetTargetInput) (*LightOutput, error)
	SyncLight(ctx context.Context, input *SyncLightInput) (*LightOutput, error)
}
