package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunmind/sunmind/pkg/sunmind"
)

// HTTPError is a non-2xx answer from sunmindd.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == status
}

// HTTPClient represents an HTTP connection to sunmindd
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP creates a new HTTP client. apiKey may be empty when the agent
// runs without server.api_token.
func NewHTTP(logger *slog.Logger, baseURL string, apiKey string) *HTTPClient {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &HTTPClient{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// errorMessage pulls the human readable part out of a problem+json body.
func errorMessage(body []byte) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(body))
}

// request performs an HTTP request and decodes the JSON response
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	url := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", url)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	// Execute request
	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("HTTP request failed", "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for error status codes
	if httpResp.StatusCode >= 400 {
		c.logger.Debug("HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return &HTTPError{StatusCode: httpResp.StatusCode, Message: errorMessage(respBody)}
	}

	// Decode response if needed
	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			c.logger.Debug("Failed to decode response", "error", err, "body", string(respBody))
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetVersion returns the running agent's version information.
func (c *HTTPClient) GetVersion() (map[string]any, error) {
	var resp map[string]any
	if err := c.request(http.MethodGet, "/api/v1/version", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBackendHealth asks the agent to probe the SunMind backend.
func (c *HTTPClient) GetBackendHealth() (*BackendHealth, error) {
	var resp BackendHealth
	if err := c.request(http.MethodGet, "/api/v1/backend/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Session ---

// GetSession returns the session.
func (c *HTTPClient) GetSession() (*Session, error) {
	var resp Session
	if err := c.request(http.MethodGet, "/api/v1/session", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login signs the agent in.
func (c *HTTPClient) Login(email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp Session
	if err := c.request(http.MethodPost, "/api/v1/session/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs the agent in with it.
func (c *HTTPClient) Register(name, email, password string) (*Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp Session
	if err := c.request(http.MethodPost, "/api/v1/session/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout signs the agent out.
func (c *HTTPClient) Logout() error {
	return c.request(http.MethodPost, "/api/v1/session/logout", nil, nil)
}

// --- Connection ---

type connectionResponse struct {
	Status string `json:"status"`
}

func (c *HTTPClient) connection(method, path string) (string, error) {
	var resp connectionResponse
	if err := c.request(method, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// GetConnection returns the telemetry socket status.
func (c *HTTPClient) GetConnection() (string, error) {
	return c.connection(http.MethodGet, "/api/v1/connection")
}

// Connect asks the agent to open the telemetry socket.
func (c *HTTPClient) Connect() (string, error) {
	return c.connection(http.MethodPost, "/api/v1/connection/connect")
}

// Disconnect asks the agent to close the telemetry socket.
func (c *HTTPClient) Disconnect() (string, error) {
	return c.connection(http.MethodPost, "/api/v1/connection/disconnect")
}

// --- Devices ---

// GetDevices returns all known devices.
func (c *HTTPClient) GetDevices() ([]Device, error) {
	var resp []Device
	if err := c.request(http.MethodGet, "/api/v1/devices", nil, &resp); err != nil {
		return nil, err
	}
	// Ensure we return an empty slice instead of nil
	if resp == nil {
		return []Device{}, nil
	}
	return resp, nil
}

// GetDevice returns a specific device.
func (c *HTTPClient) GetDevice(id string) (*Device, error) {
	var resp Device
	if err := c.request(http.MethodGet, "/api/v1/devices/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SelectDevice sets the selected device. An empty id clears it.
func (c *HTTPClient) SelectDevice(id string) error {
	return c.request(http.MethodPut, "/api/v1/devices/selected", map[string]string{"id": id}, nil)
}

// RemoveDevice forgets a device.
func (c *HTTPClient) RemoveDevice(id string) error {
	return c.request(http.MethodDelete, "/api/v1/devices/"+url.PathEscape(id), nil, nil)
}

// --- Light ---

func (c *HTTPClient) light(method, path string, body any) (*Light, error) {
	var resp Light
	if err := c.request(method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLight returns the light state.
func (c *HTTPClient) GetLight() (*Light, error) {
	return c.light(http.MethodGet, "/api/v1/light", nil)
}

// SetBrightness sets the brightness percentage.
func (c *HTTPClient) SetBrightness(brightness int) (*Light, error) {
	return c.light(http.MethodPut, "/api/v1/light/brightness", map[string]int{"brightness": brightness})
}

// SetMode applies a light preset.
func (c *HTTPClient) SetMode(mode string) (*Light, error) {
	return c.light(http.MethodPut, "/api/v1/light/mode", map[string]string{"mode": mode})
}

// TogglePower flips the light.
func (c *HTTPClient) TogglePower() (*Light, error) {
	return c.light(http.MethodPost, "/api/v1/light/toggle", nil)
}

// SetControlMode switches between manual and auto.
func (c *HTTPClient) SetControlMode(mode string) (*Light, error) {
	return c.light(http.MethodPut, "/api/v1/light/control-mode", map[string]string{"controlMode": mode})
}

// SetTarget chooses the controlled device.
func (c *HTTPClient) SetTarget(deviceID string) (*Light, error) {
	return c.light(http.MethodPut, "/api/v1/light/target", map[string]string{"deviceId": deviceID})
}

// SyncLight copies power and brightness from a device's telemetry.
func (c *HTTPClient) SyncLight(deviceID string) (*Light, error) {
	return c.light(http.MethodPost, "/api/v1/light/sync/"+url.PathEscape(deviceID), nil)
}

// ResetLight restores the factory settings.
func (c *HTTPClient) ResetLight() (*Light, error) {
	return c.light(http.MethodPost, "/api/v1/light/reset", nil)
}

// --- Reviews ---

// GetReviews returns the product reviews, newest first.
func (c *HTTPClient) GetReviews() ([]sunmind.Review, error) {
	var resp []sunmind.Review
	if err := c.request(http.MethodGet, "/api/v1/reviews", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []sunmind.Review{}, nil
	}
	return resp, nil
}

// AddReview submits a review.
func (c *HTTPClient) AddReview(r sunmind.NewReview) (*sunmind.Review, error) {
	var resp sunmind.Review
	if err := c.request(http.MethodPost, "/api/v1/reviews", r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteReview deletes a review.
func (c *HTTPClient) DeleteReview(id string) error {
	return c.request(http.MethodDelete, "/api/v1/reviews/"+url.PathEscape(id), nil, nil)
}

// --- Notifications and logging ---

// GetNotifications returns recent notifications, oldest first.
func (c *HTTPClient) GetNotifications() ([]Notification, error) {
	var resp []Notification
	if err := c.request(http.MethodGet, "/api/v1/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type levelResponse struct {
	Level string `json:"level"`
}

// GetLogLevel returns the agent's log level.
func (c *HTTPClient) GetLogLevel() (string, error) {
	var resp levelResponse
	if err := c.request(http.MethodGet, "/api/v1/logging/level", nil, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}

// SetLogLevel changes the agent's log level.
func (c *HTTPClient) SetLogLevel(level string) (string, error) {
	var resp levelResponse
	if err := c.request(http.MethodPut, "/api/v1/logging/level", map[string]string{"level": level}, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}
