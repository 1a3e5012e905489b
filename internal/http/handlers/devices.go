package handlers

import (
	"context"

	"github.com/sunmind/sunmind/internal/devices"
	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// --- List Devices ---

// ListDevicesInput is the input for listing devices.
type ListDevicesInput struct{}

// ListDevicesOutput is the output for listing devices.
type ListDevicesOutput struct {
	Body []DeviceResponse
}

// --- Get Device ---

// GetDeviceInput is the input for getting a single device.
type GetDeviceInput struct {
	ID string `path:"id" doc:"Device identifier"`
}

// GetDeviceOutput is the output for getting a single device.
type GetDeviceOutput struct {
	Body DeviceResponse
}

// --- Replace Devices ---

// ReplaceDevicesInput is the input for replacing the device list, as after
// an external fetch.
type ReplaceDevicesInput struct {
	Body struct {
		Devices []sunmind.Device `json:"devices" doc:"Complete device list" required:"true"`
	}
}

// --- Select Device ---

// SelectDeviceInput is the input for selecting a device.
type SelectDeviceInput struct {
	Body struct {
		ID string `json:"id" doc:"Device to select; empty clears the selection"`
	}
}

// SelectDeviceOutput is the output after selecting a device.
type SelectDeviceOutput struct {
	Body struct {
		Selected string `json:"selected" doc:"Selected device id, empty when none"`
		Name     string `json:"name,omitempty" doc:"Name of the selected device"`
	}
}

// --- Remove Device ---

// RemoveDeviceInput is the input for removing a device.
type RemoveDeviceInput struct {
	ID string `path:"id" doc:"Device identifier"`
}

// RemoveDeviceOutput is the output for removing a device.
type RemoveDeviceOutput struct{}

// DeviceHandler implements device registry HTTP handlers.
type DeviceHandler struct {
	Devices *devices.Store
}

func deviceResponse(snap *devices.Snapshot, d sunmind.Device) DeviceResponse {
	resp := DeviceResponse{Device: d, Selected: snap.SelectedID == d.ID}
	if t, ok := snap.Telemetry[d.ID]; ok {
		resp.Telemetry = &t
	}
	return resp
}

// ListDevices returns all known devices ordered by name.
func (h *DeviceHandler) ListDevices(_ context.Context, _ *ListDevicesInput) (*ListDevicesOutput, error) {
	snap := h.Devices.Snapshot()
	list := h.Devices.Devices()
	out := &ListDevicesOutput{Body: make([]DeviceResponse, 0, len(list))}
	for _, d := range list {
		out.Body = append(out.Body, deviceResponse(snap, d))
	}
	return out, nil
}

// GetDevice returns one device with its latest telemetry.
func (h *DeviceHandler) GetDevice(_ context.Context, input *GetDeviceInput) (*GetDeviceOutput, error) {
	snap := h.Devices.Snapshot()
	d, ok := snap.Devices[input.ID]
	if !ok {
		return nil, ToHTTPError(apperrors.NotFoundf("device %s", input.ID))
	}
	return &GetDeviceOutput{Body: deviceResponse(snap, d)}, nil
}

// ReplaceDevices swaps the whole device list. Telemetry and the selection
// are kept.
func (h *DeviceHandler) ReplaceDevices(ctx context.Context, input *ReplaceDevicesInput) (*ListDevicesOutput, error) {
	for _, d := range input.Body.Devices {
		if d.ID == "" {
			return nil, ToHTTPError(apperrors.InvalidInputf("every device needs an id"))
		}
	}
	h.Devices.ReplaceAll(input.Body.Devices)
	return h.ListDevices(ctx, &ListDevicesInput{})
}

// SelectDevice sets the selected device.
func (h *DeviceHandler) SelectDevice(_ context.Context, input *SelectDeviceInput) (*SelectDeviceOutput, error) {
	if input.Body.ID != "" {
		if _, ok := h.Devices.Device(input.Body.ID); !ok {
			return nil, ToHTTPError(apperrors.NotFoundf("device %s", input.Body.ID))
		}
	}
	h.Devices.Select(input.Body.ID)
	out := &SelectDeviceOutput{}
	if d, ok := h.Devices.Selected(); ok {
		out.Body.Selected = d.ID
		out.Body.Name = d.Name
	}
	return out, nil
}

// RemoveDevice forgets a device and its telemetry.
func (h *DeviceHandler) RemoveDevice(_ context.Context, input *RemoveDeviceInput) (*RemoveDeviceOutput, error) {
	if !h.Devices.Remove(input.ID) {
		return nil, ToHTTPError(apperrors.NotFoundf("device %s", input.ID))
	}
	return &RemoveDeviceOutput{}, nil
}

// Ensure DeviceHandler implements the interface at compile time.
var _ DeviceHandlers = (*DeviceHandler)(nil)

// DeviceHandlers defines the interface for device registry operations.
type DeviceHandlers interface {
	ListDevices(ctx context.Context, input *ListDevicesInput) (*ListDevicesOutput, error)
	GetDevice(ctx context.Context, input *GetDeviceInput) (*GetDeviceOutput, error)
	ReplaceDevices(ctx context.Context, input *ReplaceDevicesInput) (*ListDevicesOutput, error)
	SelectDevice(ctx context.Context, input *SelectDeviceInput) (*SelectDeviceOutput, error)
	RemoveDevice(ctx context.Context, input *RemoveDeviceInput) (*RemoveDeviceOutput, error)
}
