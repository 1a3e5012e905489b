// Package session owns the signed-in user and their access token, and binds
// the telemetry connection to the authentication state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sunmind/sunmind/internal/backend"
	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/storage"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// StorageKey is the key the session is persisted under.
const StorageKey = "auth-storage"

// Backend is the part of the REST API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (backend.LoginResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (sunmind.User, error)
	Me(ctx context.Context, token string) (sunmind.User, error)
}

// Info is the public view of the session. It never carries the token.
type Info struct {
	Authenticated bool          `json:"authenticated"`
	User          *sunmind.User `json:"user,omitempty"`
}

type persisted struct {
	User  *sunmind.User `json:"user,omitempty"`
	Token string        `json:"token,omitempty"`
}

// Manager holds the session.
type Manager struct {
	backend Backend
	kv      storage.KV
	bus     *events.Bus
	logger  *slog.Logger

	mu    sync.Mutex
	user  *sunmind.User
	token string

	listeners events.Fanout[Info]
}

// NewManager creates a signed-out manager. Call Restore to load a persisted
// session. kv and bus may be nil.
func NewManager(logger *slog.Logger, b Backend, kv storage.KV, bus *events.Bus) *Manager {
	return &Manager{
		backend: b,
		kv:      kv,
		bus:     bus,
		logger:  logger.With("component", "session"),
	}
}

// Token returns the access token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// User returns the signed-in user.
func (m *Manager) User() (sunmind.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return sunmind.User{}, false
	}
	return *m.user, true
}

// Info returns the current session view.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infoLocked()
}

// IsAuthenticated reports whether a user is signed in with a token.
func (m *Manager) IsAuthenticated() bool {
	return m.Info().Authenticated
}

func (m *Manager) infoLocked() Info {
	info := Info{Authenticated: m.token != "" && m.user != nil}
	if m.user != nil {
		u := *m.user
		info.User = &u
	}
	return info
}

// OnChange registers fn for every session change and returns a function
// that removes it.
func (m *Manager) OnChange(fn func(Info)) func() {
	return m.listeners.Subscribe(fn)
}

// Login signs in and loads the user profile.
func (m *Manager) Login(ctx context.Context, email, password string) (sunmind.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return sunmind.User{}, apperrors.InvalidInputf("email and password are required")
	}
	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("session: login failed", "email", email, "error", err)
		return sunmind.User{}, fmt.Errorf("login: %w", err)
	}
	user, err := m.backend.Me(ctx, resp.AccessToken)
	if err != nil {
		m.logger.Warn("session: fetching user after login failed", "error", err)
		return sunmind.User{}, fmt.Errorf("login: fetch user: %w", err)
	}
	m.set(&user, resp.AccessToken)
	m.logger.Info("session: signed in", "user_id", user.ID)
	return user, nil
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, name, email, password string) (sunmind.User, error) {
	req := backend.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return sunmind.User{}, apperrors.InvalidInputf("name, email and password are required")
	}
	user, err := m.backend.Register(ctx, req)
	if err != nil {
		m.logger.Warn("session: registration failed", "email", req.Email, "error", err)
		return sunmind.User{}, fmt.Errorf("register: %w", err)
	}
	resp, err := m.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		return sunmind.User{}, fmt.Errorf("register: login: %w", err)
	}
	m.set(&user, resp.AccessToken)
	m.logger.Info("session: registered", "user_id", user.ID)
	return user, nil
}

// Logout clears the user and token. It does nothing when already signed
// out.
func (m *Manager) Logout() {
	m.mu.Lock()
	signedIn := m.token != "" || m.user != nil
	m.mu.Unlock()
	if !signedIn {
		return
	}
	m.set(nil, "")
	m.logger.Info("session: signed out")
}

// Refresh re-fetches the user for the current token. A token the backend
// rejects signs the session out; other failures leave it in place.
func (m *Manager) Refresh(ctx context.Context) error {
	token := m.Token()
	if token == "" {
		return apperrors.ErrNoCredential
	}
	user, err := m.backend.Me(ctx, token)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			m.logger.Warn("session: token rejected, signing out", "error", err)
			m.Logout()
		} else {
			m.logger.Warn("session: could not verify token", "error", err)
		}
		return fmt.Errorf("refresh: %w", err)
	}
	m.mu.Lock()
	stale := m.token != token
	m.mu.Unlock()
	if stale {
		return nil
	}
	m.set(&user, token)
	return nil
}

// Restore loads the persisted session and, if it carries a token, verifies
// it with Refresh. A missing session is not an error.
func (m *Manager) Restore(ctx context.Context) error {
	if m.kv == nil {
		return nil
	}
	var p persisted
	if err := m.kv.GetJSON(StorageKey, &p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}
	if p.Token == "" {
		return nil
	}
	m.set(p.User, p.Token)
	m.logger.Debug("session: restored, verifying token")
	return m.Refresh(ctx)
}

func (m *Manager) set(user *sunmind.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	info := m.infoLocked()
	p := persisted{User: user, Token: token}
	m.mu.Unlock()

	m.persist(p)
	m.bus.Emit(events.SessionChanged, info)
	m.listeners.Publish(info)
}

func (m *Manager) persist(p persisted) {
	if m.kv == nil {
		return
	}
	var err error
	if p.Token == "" {
		err = m.kv.Delete(StorageKey)
	} else {
		err = m.kv.PutJSON(StorageKey, p)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("session: failed to persist", "error", err)
	}
}
