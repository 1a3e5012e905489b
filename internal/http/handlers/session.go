package handlers

import (
	"context"

	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/session"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// --- Get Session ---

// GetSessionInput is the input for reading the session.
type GetSessionInput struct {
	Refresh bool `query:"refresh" doc:"Verify the stored token with the backend first"`
}

// SessionOutput is the output of every session operation.
type SessionOutput struct {
	Body session.Info
}

// --- Login ---

// LoginInput is the input for signing in.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" doc:"Account email" minLength:"1"`
		Password string `json:"password" doc:"Account password" minLength:"1"`
	}
}

// --- Register ---

// RegisterInput is the input for creating an account.
type RegisterInput struct {
	Body struct {
		Name     string `json:"name" doc:"Display name" minLength:"1"`
		Email    string `json:"email" doc:"Account email" minLength:"1"`
		Password string `json:"password" doc:"Account password" minLength:"1"`
	}
}

// --- Logout ---

// LogoutInput is the input for signing out.
type LogoutInput struct{}

// SessionManager is the session as the HTTP layer drives it.
type SessionManager interface {
	Info() session.Info
	Login(ctx context.Context, email, password string) (sunmind.User, error)
	Register(ctx context.Context, name, email, password string) (sunmind.User, error)
	Logout()
	Refresh(ctx context.Context) error
}

// SessionHandler implements session HTTP handlers.
type SessionHandler struct {
	Session SessionManager
}

func (h *SessionHandler) output() *SessionOutput {
	return &SessionOutput{Body: h.Session.Info()}
}

// GetSession returns the session. With ?refresh=true the token is verified
// against the backend first.
func (h *SessionHandler) GetSession(ctx context.Context, input *GetSessionInput) (*SessionOutput, error) {
	if input.Refresh && h.Session.Info().Authenticated {
		if err := h.Session.Refresh(ctx); err != nil && !apperrors.IsUnauthorized(err) {
			return nil, ToHTTPError(err)
		}
	}
	return h.output(), nil
}

// Login signs in and connects the telemetry socket.
func (h *SessionHandler) Login(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	if _, err := h.Session.Login(ctx, input.Body.Email, input.Body.Password); err != nil {
		return nil, ToHTTPError(err)
	}
	return h.output(), nil
}

// Register creates an account and signs in with it.
func (h *SessionHandler) Register(ctx context.Context, input *RegisterInput) (*SessionOutput, error) {
	if _, err := h.Session.Register(ctx, input.Body.Name, input.Body.Email, input.Body.Password); err != nil {
		return nil, ToHTTPError(err)
	}
	return h.output(), nil
}

// Logout signs out and disconnects the telemetry socket.
func (h *SessionHandler) Logout(_ context.Context, _ *LogoutInput) (*SessionOutput, error) {
	h.Session.Logout()
	return h.output(), nil
}

// Ensure SessionHandler implements the interface at compile time.
var _ SessionHandlers = (*SessionHandler)(nil)

// SessionHandlers defines the interface for session operations.
type SessionHandlers interface {
	GetSession(ctx context.Context, input *GetSessionInput) (*SessionOutput, error)
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)
	Register(ctx context.Context, input *RegisterInput) (*SessionOutput, error)
	Logout(ctx context.Context, input *LogoutInput) (*SessionOutput, error)
}
