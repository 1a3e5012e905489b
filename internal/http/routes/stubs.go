package routes

import (
	"context"

	"github.com/sunmind/sunmind/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses; they are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		BackendHealth: func(_ context.Context, _ *handlers.BackendHealthInput) (*handlers.BackendHealthOutput, error) {
			return nil, nil
		},
		Session:      &stubSessionHandlers{},
		Connection:   &stubConnectionHandlers{},
		Device:       &stubDeviceHandlers{},
		Light:        &stubLightHandlers{},
		Review:       &stubReviewHandlers{},
		Notification: &stubNotificationHandlers{},
		Logging:      &stubLoggingHandlers{},
	}
}

// --- Session stubs ---

type stubSessionHandlers struct{}

func (s *stubSessionHandlers) GetSession(_ context.Context, _ *handlers.GetSessionInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) Login(_ context.Context, _ *handlers.LoginInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) Register(_ context.Context, _ *handlers.RegisterInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) Logout(_ context.Context, _ *handlers.LogoutInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

// --- Connection stubs ---

type stubConnectionHandlers struct{}

func (s *stubConnectionHandlers) GetConnection(_ context.Context, _ *handlers.GetConnectionInput) (*handlers.ConnectionOutput, error) {
	return nil, nil
}

func (s *stubConnectionHandlers) Connect(_ context.Context, _ *handlers.ConnectInput) (*handlers.ConnectionOutput, error) {
	return nil, nil
}

func (s *stubConnectionHandlers) Disconnect(_ context.Context, _ *handlers.DisconnectInput) (*handlers.ConnectionOutput, error) {
	return nil, nil
}

// --- Device stubs ---

type stubDeviceHandlers struct{}

func (s *stubDeviceHandlers) ListDevices(_ context.Context, _ *handlers.ListDevicesInput) (*handlers.ListDevicesOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) GetDevice(_ context.Context, _ *handlers.GetDeviceInput) (*handlers.GetDeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) ReplaceDevices(_ context.Context, _ *handlers.ReplaceDevicesInput) (*handlers.ListDevicesOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SelectDevice(_ context.Context, _ *handlers.SelectDeviceInput) (*handlers.SelectDeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) RemoveDevice(_ context.Context, _ *handlers.RemoveDeviceInput) (*handlers.RemoveDeviceOutput, error) {
	return nil, nil
}

// --- Light stubs ---

type stubLightHandlers struct{}

func (s *stubLightHandlers) GetLight(_ context.Context, _ *handlers.GetLightInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SetBrightness(_ context.Context, _ *handlers.SetBrightnessInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SetMode(_ context.Context, _ *handlers.SetModeInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) TogglePower(_ context.Context, _ *handlers.ToggleInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SetControlMode(_ context.Context, _ *handlers.SetControlModeInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) ResetLight(_ context.Context, _ *handlers.ResetLightInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SetTarget(_ context.Context, _ *handlers.SetTargetInput) (*handlers.LightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SyncLight(_ context.Context, _ *handlers.SyncLightInput) (*handlers.LightOutput, error) {
	return nil, nil
}

// --- Review stubs ---

type stubReviewHandlers struct{}

func (s *stubReviewHandlers) ListReviews(_ context.Context, _ *handlers.ListReviewsInput) (*handlers.ListReviewsOutput, error) {
	return nil, nil
}

func (s *stubReviewHandlers) AddReview(_ context.Context, _ *handlers.AddReviewInput) (*handlers.AddReviewOutput, error) {
	return nil, nil
}

func (s *stubReviewHandlers) DeleteReview(_ context.Context, _ *handlers.DeleteReviewInput) (*handlers.DeleteReviewOutput, error) {
	return nil, nil
}

// --- Notification stubs ---

type stubNotificationHandlers struct{}

func (s *stubNotificationHandlers) ListNotifications(_ context.Context, _ *handlers.ListNotificationsInput) (*handlers.ListNotificationsOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}
