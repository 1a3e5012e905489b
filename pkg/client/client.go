// Package client talks to the sunmindd local HTTP API.
package client

import (
	"time"

	"github.com/sunmind/sunmind/pkg/sunmind"
)

// ClientInterface defines the methods for interacting with sunmindd.
// Used for testability and mocking in the CLI.
type ClientInterface interface {
	GetVersion() (map[string]any, error)
	GetBackendHealth() (*BackendHealth, error)
	GetSession() (*Session, error)
	Login(email, password string) (*Session, error)
	Register(name, email, password string) (*Session, error)
	Logout() error
	GetConnection() (string, error)
	Connect() (string, error)
	Disconnect() (string, error)
	GetDevices() ([]Device, error)
	GetDevice(id string) (*Device, error)
	SelectDevice(id string) error
	RemoveDevice(id string) error
	GetLight() (*Light, error)
	SetBrightness(brightness int) (*Light, error)
	SetMode(mode string) (*Light, error)
	TogglePower() (*Light, error)
	SetControlMode(mode string) (*Light, error)
	SetTarget(deviceID string) (*Light, error)
	SyncLight(deviceID string) (*Light, error)
	ResetLight() (*Light, error)
	GetReviews() ([]sunmind.Review, error)
	AddReview(r sunmind.NewReview) (*sunmind.Review, error)
	DeleteReview(id string) error
	GetNotifications() ([]Notification, error)
	GetLogLevel() (string, error)
	SetLogLevel(level string) (string, error)
}

// BackendHealth is the backend probe result.
type BackendHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
}

// Session is the agent's view of the signed-in user.
type Session struct {
	Authenticated bool          `json:"authenticated"`
	User          *sunmind.User `json:"user,omitempty"`
}

// Device is a known device with its latest telemetry.
type Device struct {
	sunmind.Device
	Selected  bool               `json:"selected"`
	Telemetry *sunmind.Telemetry `json:"telemetry,omitempty"`
}

// Light is the light control state.
type Light struct {
	Settings  sunmind.LightSettings `json:"settings"`
	DeviceID  string                `json:"deviceId,omitempty"`
	Connected bool                  `json:"connected"`
}

// Notification is a recent user-visible message.
type Notification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var _ ClientInterface = (*HTTPClient)(nil)
