package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunmind/sunmind/internal/backend"
	"github.com/sunmind/sunmind/internal/devices"
	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/storage"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var ada = sunmind.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Roles: "user"}

type fakeBackend struct {
	loginErr    error
	registerErr error
	meErr       error
	token       string
	logins      int
	registered  []backend.RegisterRequest
	meTokens    []string
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (backend.LoginResponse, error) {
	f.logins++
	if f.loginErr != nil {
		return backend.LoginResponse{}, f.loginErr
	}
	return backend.LoginResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req backend.RegisterRequest) (sunmind.User, error) {
	f.registered = append(f.registered, req)
	if f.registerErr != nil {
		return sunmind.User{}, f.registerErr
	}
	return sunmind.User{ID: "u2", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeBackend) Me(ctx context.Context, token string) (sunmind.User, error) {
	f.meTokens = append(f.meTokens, token)
	if f.meErr != nil {
		return sunmind.User{}, f.meErr
	}
	return ada, nil
}

func newManager(t *testing.T, b *fakeBackend, kv storage.KV) (*Manager, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	return NewManager(testLogger(), b, kv, bus), bus
}

func TestLoginFetchesUserWithNewToken(t *testing.T) {
	b := &fakeBackend{token: "tok-1"}
	kv := storage.NewMemory()
	m, bus := newManager(t, b, kv)
	var changes []events.Event
	bus.Subscribe(func(e events.Event) { changes = append(changes, e) })

	user, err := m.Login(context.Background(), " ada@example.com ", "pw")
	require.NoError(t, err)

	assert.Equal(t, ada, user)
	assert.Equal(t, []string{"tok-1"}, b.meTokens)
	assert.Equal(t, "tok-1", m.Token())
	assert.True(t, m.IsAuthenticated())
	require.Len(t, changes, 1)
	assert.Equal(t, events.SessionChanged, changes[0].Type)
	assert.NotContains(t, string(changes[0].Data), "tok-1", "the token must not leak onto the bus")

	var p persisted
	require.NoError(t, kv.GetJSON(StorageKey, &p))
	assert.Equal(t, "tok-1", p.Token)
}

func TestLoginValidation(t *testing.T) {
	m, _ := newManager(t, &fakeBackend{}, nil)
	_, err := m.Login(context.Background(), "", "pw")
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestLoginFailureKeepsSignedOut(t *testing.T) {
	b := &fakeBackend{token: "tok", meErr: apperrors.Unauthorizedf("bad token")}
	m, _ := newManager(t, b, nil)

	_, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.Error(t, err)
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Token())
}

func TestRegisterThenLogin(t *testing.T) {
	b := &fakeBackend{token: "tok-2"}
	m, _ := newManager(t, b, nil)

	user, err := m.Register(context.Background(), "Bob", "bob@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, 1, b.logins)
	require.Len(t, b.registered, 1)
	assert.Equal(t, "bob@example.com", b.registered[0].Email)
	assert.Equal(t, "tok-2", m.Token())
}

func TestRegisterFailureDoesNotLogin(t *testing.T) {
	b := &fakeBackend{registerErr: errors.New("Email already registered")}
	m, _ := newManager(t, b, nil)

	_, err := m.Register(context.Background(), "Bob", "bob@example.com", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already registered")
	assert.Equal(t, 0, b.logins)
}

func TestLogoutClearsPersistedSession(t *testing.T) {
	b := &fakeBackend{token: "tok"}
	kv := storage.NewMemory()
	m, _ := newManager(t, b, kv)
	_, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	var infos []Info
	m.OnChange(func(i Info) { infos = append(infos, i) })

	m.Logout()
	m.Logout()

	assert.False(t, m.IsAuthenticated())
	_, ok := m.User()
	assert.False(t, ok)
	assert.ErrorIs(t, kv.GetJSON(StorageKey, &persisted{}), storage.ErrNotFound)
	assert.Len(t, infos, 1, "second logout is a no-op")
}

func TestRestoreVerifiesToken(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.PutJSON(StorageKey, persisted{User: &sunmind.User{ID: "u1", Name: "Old name"}, Token: "saved"}))
	b := &fakeBackend{}
	m, _ := newManager(t, b, kv)

	require.NoError(t, m.Restore(context.Background()))

	assert.Equal(t, []string{"saved"}, b.meTokens)
	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "saved", m.Token())
}

func TestRestoreWithRejectedTokenSignsOut(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.PutJSON(StorageKey, persisted{User: &ada, Token: "expired"}))
	m, _ := newManager(t, &fakeBackend{meErr: apperrors.Unauthorizedf("token expired")}, kv)

	err := m.Restore(context.Background())

	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, m.IsAuthenticated())
	assert.ErrorIs(t, kv.GetJSON(StorageKey, &persisted{}), storage.ErrNotFound)
}

func TestRestoreKeepsSessionOnNetworkError(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.PutJSON(StorageKey, persisted{User: &ada, Token: "saved"}))
	m, _ := newManager(t, &fakeBackend{meErr: errors.New("dial tcp: connection refused")}, kv)

	err := m.Restore(context.Background())

	require.Error(t, err)
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "saved", m.Token())
}

func TestRestoreWithoutSession(t *testing.T) {
	b := &fakeBackend{}
	m, _ := newManager(t, b, storage.NewMemory())

	require.NoError(t, m.Restore(context.Background()))
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, b.meTokens)
	assert.ErrorIs(t, m.Refresh(context.Background()), apperrors.ErrNoCredential)
}

type fakeConn struct {
	mu          sync.Mutex
	connects    int
	disconnects int
	listeners   int
}

func (f *fakeConn) Connect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
}

func (f *fakeConn) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
}

func (f *fakeConn) OnMessage(fn func(sunmind.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners++
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.listeners--
		})
	}
}

func (f *fakeConn) counts() (connects, disconnects, listeners int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.disconnects, f.listeners
}

func TestBindingFollowsSession(t *testing.T) {
	m, _ := newManager(t, &fakeBackend{token: "tok"}, nil)
	conn := &fakeConn{}
	registry := devices.NewStore(testLogger(), nil, nil)

	b := Bind(testLogger(), m, conn, registry)
	c, d, l := conn.counts()
	assert.Equal(t, 0, c)
	assert.Equal(t, 1, d, "signed out at bind time")
	assert.Equal(t, 0, l)

	_, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	c, _, l = conn.counts()
	assert.Equal(t, 1, c)
	assert.Equal(t, 1, l)

	require.NoError(t, m.Refresh(context.Background()))
	_, _, l = conn.counts()
	assert.Equal(t, 1, l, "staying signed in must not attach twice")

	m.Logout()
	_, d, l = conn.counts()
	assert.Equal(t, 2, d)
	assert.Equal(t, 0, l)

	b.Close()
	b.Close()
	before, _, _ := conn.counts()
	_, err = m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	c, _, _ = conn.counts()
	assert.Equal(t, before, c, "closed binding ignores later sign-ins")
}

func TestBindingRoutesEventsToRegistry(t *testing.T) {
	m, _ := newManager(t, &fakeBackend{token: "tok"}, nil)
	src := &eventConn{}
	registry := devices.NewStore(testLogger(), nil, nil)
	Bind(testLogger(), m, src, registry)

	_, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	src.emit(sunmind.DeviceConnectionEvent{DeviceID: "D1", DeviceName: "Porch", Connected: true})

	_, ok := registry.Device("D1")
	assert.True(t, ok)
}

type eventConn struct {
	fakeConn
	fn func(sunmind.Event)
}

func (e *eventConn) OnMessage(fn func(sunmind.Event)) func() {
	e.fn = fn
	return func() { e.fn = nil }
}

func (e *eventConn) emit(ev sunmind.Event) {
	if e.fn != nil {
		e.fn(ev)
	}
}

type fakeReviewBackend struct {
	list    []sunmind.Review
	added   []sunmind.NewReview
	deleted []string
	err     error
}

func (f *fakeReviewBackend) Reviews(ctx context.Context) ([]sunmind.Review, error) {
	return f.list, f.err
}

func (f *fakeReviewBackend) AddReview(ctx context.Context, r sunmind.NewReview) (sunmind.Review, error) {
	if f.err != nil {
		return sunmind.Review{}, f.err
	}
	f.added = append(f.added, r)
	return sunmind.Review{ID: "new", Author: r.Author, Text: r.Text, Rating: r.Rating, Date: r.Date}, nil
}

func (f *fakeReviewBackend) DeleteReview(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestReviews(t *testing.T) {
	b := &fakeReviewBackend{list: []sunmind.Review{
		{ID: "r1", Author: "Ada", Text: "Great", Rating: 5, Date: "2026-05-01"},
		{ID: "r2", Author: "Bob", Text: "Fine", Rating: 3, Date: "2026-05-20"},
	}}
	r := NewReviews(testLogger(), b)
	r.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	list, err := r.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID, "newest first")

	saved, err := r.Add(ctx, sunmind.NewReview{Author: "Cy", Text: "Bright", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", saved.Date)
	assert.Len(t, r.List(), 3)

	require.NoError(t, r.Delete(ctx, "r1"))
	assert.Len(t, r.List(), 2)
	assert.Equal(t, []string{"r1"}, b.deleted)
}

func TestReviewsValidationAndFailure(t *testing.T) {
	b := &fakeReviewBackend{}
	r := NewReviews(testLogger(), b)
	ctx := context.Background()

	_, err := r.Add(ctx, sunmind.NewReview{Author: "Cy", Text: "x", Rating: 9})
	assert.True(t, apperrors.IsInvalidInput(err))
	_, err = r.Add(ctx, sunmind.NewReview{Author: " ", Text: "x", Rating: 3})
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Empty(t, b.added)

	r.Set([]sunmind.Review{{ID: "r1"}})
	b.err = errors.New("HTTP 500: Internal Server Error")
	require.Error(t, r.Delete(ctx, "r1"))
	assert.Len(t, r.List(), 1, "failed delete keeps the cached review")
	_, err = r.Fetch(ctx)
	require.Error(t, err)
	assert.Len(t, r.List(), 1)
}
