package commands

import (
	"errors"
	"time"

	"github.com/sunmind/sunmind/pkg/client"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// mockClient implements client.ClientInterface for CLI tests.
// It records the last call and returns static data.
type mockClient struct {
	light    client.Light
	devices  []client.Device
	reviews  []sunmind.Review
	session  client.Session
	level    string
	calls    []string
	lastArg  any
	failWith error
}

var _ client.ClientInterface = (*mockClient)(nil)

var errUnreachable = errors.New("connection refused")

func newMockClient() *mockClient {
	lastSeen := time.Date(2023, time.October, 26, 10, 0, 0, 0, time.UTC)
	return &mockClient{
		light: client.Light{
			Settings: sunmind.LightSettings{
				IsOn:        true,
				Brightness:  50,
				Mode:        sunmind.ModeDefault,
				ControlMode: sunmind.ControlManual,
			},
			DeviceID:  "dev-1",
			Connected: true,
		},
		devices: []client.Device{
			{
				Device:   sunmind.Device{ID: "dev-1", Name: "Porch", IsOnline: true, LastSeen: &lastSeen},
				Selected: true,
				Telemetry: &sunmind.Telemetry{
					Lux:          sunmind.Float64(420),
					RelayState:   sunmind.RelayOn,
					BatteryLevel: sunmind.Float64(87),
					PowerSource:  sunmind.PowerSolar,
				},
			},
			{
				Device: sunmind.Device{ID: "dev-2", Name: "Shed"},
			},
		},
		reviews: []sunmind.Review{
			{ID: "r1", Author: "Ada", Text: "Bright and easy", Rating: 5, Date: "2026-01-02"},
		},
		session: client.Session{
			Authenticated: true,
			User:          &sunmind.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		},
		level: "info",
	}
}

func (m *mockClient) record(name string, arg any) error {
	m.calls = append(m.calls, name)
	m.lastArg = arg
	return m.failWith
}

func (m *mockClient) lightResult(name string, arg any) (*client.Light, error) {
	if err := m.record(name, arg); err != nil {
		return nil, err
	}
	l := m.light
	return &l, nil
}

func (m *mockClient) GetVersion() (map[string]any, error) {
	if err := m.record("GetVersion", nil); err != nil {
		return nil, err
	}
	return map[string]any{"version": "9.9.9", "commit": "abc123", "date": "2026-01-01"}, nil
}

func (m *mockClient) GetBackendHealth() (*client.BackendHealth, error) {
	return &client.BackendHealth{Status: "ok", Latency: "5ms"}, m.record("GetBackendHealth", nil)
}

func (m *mockClient) GetSession() (*client.Session, error) {
	s := m.session
	return &s, m.record("GetSession", nil)
}

func (m *mockClient) Login(email, password string) (*client.Session, error) {
	if err := m.record("Login", []string{email, password}); err != nil {
		return nil, err
	}
	s := m.session
	return &s, nil
}

func (m *mockClient) Register(name, email, password string) (*client.Session, error) {
	if err := m.record("Register", []string{name, email, password}); err != nil {
		return nil, err
	}
	s := m.session
	return &s, nil
}

func (m *mockClient) Logout() error { return m.record("Logout", nil) }

func (m *mockClient) GetConnection() (string, error) {
	return "connected", m.record("GetConnection", nil)
}

func (m *mockClient) Connect() (string, error) {
	return "connecting", m.record("Connect", nil)
}

func (m *mockClient) Disconnect() (string, error) {
	return "disconnected", m.record("Disconnect", nil)
}

func (m *mockClient) GetDevices() ([]client.Device, error) {
	return m.devices, m.record("GetDevices", nil)
}

func (m *mockClient) GetDevice(id string) (*client.Device, error) {
	if err := m.record("GetDevice", id); err != nil {
		return nil, err
	}
	for _, d := range m.devices {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, &client.HTTPError{StatusCode: 404, Message: "device not found: " + id}
}

func (m *mockClient) SelectDevice(id string) error { return m.record("SelectDevice", id) }

func (m *mockClient) RemoveDevice(id string) error { return m.record("RemoveDevice", id) }

func (m *mockClient) GetLight() (*client.Light, error) { return m.lightResult("GetLight", nil) }

func (m *mockClient) SetBrightness(brightness int) (*client.Light, error) {
	m.light.Settings.Brightness = brightness
	return m.lightResult("SetBrightness", brightness)
}

func (m *mockClient) SetMode(mode string) (*client.Light, error) {
	m.light.Settings.Mode = sunmind.LightMode(mode)
	return m.lightResult("SetMode", mode)
}

func (m *mockClient) TogglePower() (*client.Light, error) {
	m.light.Settings.IsOn = !m.light.Settings.IsOn
	return m.lightResult("TogglePower", nil)
}

func (m *mockClient) SetControlMode(mode string) (*client.Light, error) {
	m.light.Settings.ControlMode = sunmind.ControlMode(mode)
	return m.lightResult("SetControlMode", mode)
}

func (m *mockClient) SetTarget(deviceID string) (*client.Light, error) {
	m.light.DeviceID = deviceID
	return m.lightResult("SetTarget", deviceID)
}

func (m *mockClient) SyncLight(deviceID string) (*client.Light, error) {
	m.light.Settings.Brightness = 42
	return m.lightResult("SyncLight", deviceID)
}

func (m *mockClient) ResetLight() (*client.Light, error) {
	m.light.Settings = sunmind.DefaultSettings()
	return m.lightResult("ResetLight", nil)
}

func (m *mockClient) GetReviews() ([]sunmind.Review, error) {
	return m.reviews, m.record("GetReviews", nil)
}

func (m *mockClient) AddReview(r sunmind.NewReview) (*sunmind.Review, error) {
	if err := m.record("AddReview", r); err != nil {
		return nil, err
	}
	return &sunmind.Review{ID: "r2", Author: r.Author, Text: r.Text, Rating: r.Rating, Date: r.Date}, nil
}

func (m *mockClient) DeleteReview(id string) error { return m.record("DeleteReview", id) }

func (m *mockClient) GetNotifications() ([]client.Notification, error) {
	return []client.Notification{
		{Level: "warning", Message: "connection lost", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}, m.record("GetNotifications", nil)
}

func (m *mockClient) GetLogLevel() (string, error) {
	return m.level, m.record("GetLogLevel", nil)
}

func (m *mockClient) SetLogLevel(level string) (string, error) {
	m.level = level
	return level, m.record("SetLogLevel", level)
}
