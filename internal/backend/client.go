// Package backend is the REST client for the SunMind cloud backend.
package backend

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

	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps well-known status codes onto the shared sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	}
	return nil
}

// Client talks to the backend REST API.
type Client struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// New creates a client for baseURL. A zero timeout means 30 seconds.
func New(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		logger:  logger.With("component", "backend"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetTokenSource sets where bearer tokens come from. It must be called
// before the client is shared.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokens = src
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request performs an HTTP request and decodes the JSON response. token
// overrides the token source when non-empty.
func (c *Client) request(ctx context.Context, method, path, token string, body any, resp any) error {
	u := c.baseURL + path
	c.logger.Debug("backend request", "method", method, "url", u)

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode, Message: errorMessage(httpResp, respBody)}
		c.logger.Warn("backend error response", "method", method, "path", path, "status", httpResp.StatusCode, "error", apiErr.Message)
		return apiErr
	}

	if httpResp.StatusCode == http.StatusNoContent || resp == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage picks detail, message or error from a JSON error body, in
// that order, and falls back to the status line.
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	fallback := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if d := detailText(payload.Detail); d != "" {
		return d
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return "request failed"
}

// detailText accepts the plain string form of detail and the list of
// validation errors some endpoints return.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.request(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return LoginResponse{}, err
	}
	if resp.AccessToken == "" {
		return LoginResponse{}, apperrors.Unauthorizedf("login returned no access token")
	}
	return resp, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (sunmind.User, error) {
	var user sunmind.User
	if err := c.request(ctx, http.MethodPost, "/auth/register", "", req, &user); err != nil {
		return sunmind.User{}, err
	}
	return user, nil
}

// Me returns the user the token belongs to. An empty token uses the token
// source.
func (c *Client) Me(ctx context.Context, token string) (sunmind.User, error) {
	var user sunmind.User
	if err := c.request(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return sunmind.User{}, err
	}
	return user, nil
}

// Reviews lists all reviews.
func (c *Client) Reviews(ctx context.Context) ([]sunmind.Review, error) {
	var reviews []sunmind.Review
	if err := c.request(ctx, http.MethodGet, "/review", "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AddReview submits a review and returns it as stored.
func (c *Client) AddReview(ctx context.Context, r sunmind.NewReview) (sunmind.Review, error) {
	var out sunmind.Review
	if err := c.request(ctx, http.MethodPost, "/review", "", r, &out); err != nil {
		return sunmind.Review{}, err
	}
	return out, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInputf("review id is required")
	}
	return c.request(ctx, http.MethodDelete, "/review/"+url.PathEscape(id), "", nil, nil)
}

// Toggle flips the light relay.
func (c *Client) Toggle(ctx context.Context) error {
	return c.request(ctx, http.MethodPost, "/light/toggle", "", nil, nil)
}

// SetControlMode switches the light between manual and automatic control.
func (c *Client) SetControlMode(ctx context.Context, mode sunmind.ControlMode) error {
	if _, err := sunmind.ParseControlMode(string(mode)); err != nil {
		return apperrors.InvalidInputf("%v", err)
	}
	return c.request(ctx, http.MethodPost, "/light/mode", "", map[string]string{"mode": string(mode)}, nil)
}

// Health returns the backend's reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.request(ctx, http.MethodGet, "/health", "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// IsAPIError reports whether err carries a backend response and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
