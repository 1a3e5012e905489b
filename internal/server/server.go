// Package server wires the SunMind agent together: persisted state, the
// backend client, the session, the telemetry socket, the device and light
// stores, the optional MQTT mirror and the local HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/sunmind/sunmind/internal/backend"
	"github.com/sunmind/sunmind/internal/config"
	"github.com/sunmind/sunmind/internal/conn"
	"github.com/sunmind/sunmind/internal/devices"
	"github.com/sunmind/sunmind/internal/events"
	"github.com/sunmind/sunmind/internal/http/handlers"
	"github.com/sunmind/sunmind/internal/http/mw"
	"github.com/sunmind/sunmind/internal/http/routes"
	"github.com/sunmind/sunmind/internal/light"
	"github.com/sunmind/sunmind/internal/mirror"
	"github.com/sunmind/sunmind/internal/notify"
	"github.com/sunmind/sunmind/internal/session"
	"github.com/sunmind/sunmind/internal/storage"
	"github.com/sunmind/sunmind/internal/ws"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Options holds collaborators that tests replace.
type Options struct {
	Build BuildInfo
	// Dialer opens the telemetry socket. Nil uses a gorilla WebSocket dialer.
	Dialer conn.Dialer
	// KV replaces the bbolt state file.
	KV storage.KV
}

// Server manages the agent and its local HTTP API.
type Server struct {
	logger *slog.Logger
	cfg    *config.Config
	build  BuildInfo

	db       *storage.BoltStore
	kv       storage.KV
	eventBus *events.Bus
	notifier *notify.Center
	backend  *backend.Client
	conn     *conn.Client
	session  *session.Manager
	devices  *devices.Store
	light    *light.Store
	reviews  *session.Reviews
	binding  *session.Binding
	hub      *ws.Hub
	mirror   *mirror.Mirror
	mqtt     *mirror.Paho

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup
	httpServer *http.Server
	listener   net.Listener
	unsubs     []func()
	stopOnce   sync.Once
}

// New builds the agent. The state database is opened here; Start brings
// the network side up.
func New(logger *slog.Logger, cfg *config.Config, opts Options) (*Server, error) {
	s := &Server{
		logger:   logger,
		cfg:      cfg,
		build:    opts.Build,
		kv:       opts.KV,
		eventBus: events.NewBus(),
	}
	if s.build.Version == "" {
		s.build.Version = "dev"
	}

	if s.kv == nil {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		s.db = db
		s.kv = db
	}

	s.notifier = notify.NewCenter(logger, s.eventBus)
	s.backend = backend.New(logger, cfg.API.BaseURL, cfg.API.Timeout)
	s.session = session.NewManager(logger, s.backend, s.kv, s.eventBus)
	s.backend.SetTokenSource(s.session)

	s.conn = conn.New(conn.Options{
		URL:                  cfg.API.WSURL,
		Credentials:          s.session,
		Dialer:               opts.Dialer,
		ReconnectDelay:       cfg.Connection.ReconnectDelay,
		MaxReconnectAttempts: cfg.Connection.MaxReconnectAttempts,
		HeartbeatInterval:    cfg.Connection.HeartbeatInterval,
		Logger:               logger,
	})

	s.devices = devices.NewStore(logger, s.eventBus, s.notifier)
	s.light = light.NewStore(light.Deps{
		Commander: s.conn,
		Remote:    s.backend,
		Telemetry: s.devices,
		Notifier:  s.notifier,
		Storage:   s.kv,
		Bus:       s.eventBus,
		Logger:    logger,
	})
	s.reviews = session.NewReviews(logger, s.backend)

	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())
	return s, nil
}

// Start restores the session, binds the telemetry socket to it, starts the
// optional MQTT mirror and serves the HTTP API.
func (s *Server) Start() error {
	s.logger.Info("Starting sunmindd", "version", s.build.Version)

	s.unsubs = append(s.unsubs, s.conn.OnStatusChange(func(st conn.Status) {
		s.eventBus.Emit(events.ConnectionStatus, map[string]string{"status": string(st)})
		if st == conn.StatusError {
			s.notifier.Notify(notify.LevelWarning, "Telemetry connection failed; retrying")
		}
	}))

	timeout := s.cfg.API.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}
	restoreCtx, cancel := context.WithTimeout(s.rootCtx, timeout)
	if err := s.session.Restore(restoreCtx); err != nil {
		s.logger.Warn("Could not restore session", "error", err)
	}
	cancel()
	s.binding = session.Bind(s.logger, s.session, s.conn, s.devices)

	if s.cfg.MQTT.Broker != "" {
		s.startMirror()
	}

	if s.cfg.Server.ListenAddress == "" {
		return nil
	}
	return s.startHTTP()
}

func (s *Server) startMirror() {
	p, err := mirror.Dial(mirror.Config{
		Broker:      s.cfg.MQTT.Broker,
		Username:    s.cfg.MQTT.Username,
		Password:    s.cfg.MQTT.Password,
		TopicPrefix: s.cfg.MQTT.TopicPrefix,
	}, s.logger)
	if err != nil {
		s.logger.Error("MQTT mirror disabled", "broker", s.cfg.MQTT.Broker, "error", err)
		s.notifier.Notify(notify.LevelWarning, "MQTT broker unreachable; telemetry will not be mirrored")
		return
	}
	s.mqtt = p
	s.mirror = mirror.New(s.logger, p, s.cfg.MQTT.TopicPrefix)
	s.mirror.Start(s.eventBus)
}

// Router builds the HTTP handler. It is exported for tests.
func (s *Server) Router() http.Handler {
	token := s.cfg.Server.APIToken
	if s.hub == nil {
		s.hub = ws.NewHub(s.logger, s.eventBus, s.state)
	}

	// Rate limiting runs at Chi level (before auth) to slow brute-force.
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(s.cfg.Server.RateLimit))

	api := humachi.New(router, routes.NewHumaConfig(s.build.Version, ""))

	// Public routes (health, OpenAPI document, docs) carry no Security and
	// pass through unauthenticated.
	api.UseMiddleware(mw.HumaAuth(api, s.logger, token))

	routes.Register(api, &routes.Handlers{
		HealthCheck:   handlers.HealthCheck,
		VersionCheck:  handlers.Version(s.build.Version, s.build.Commit, s.build.Date),
		BackendHealth: handlers.BackendHealth(s.backend),
		Session:       &handlers.SessionHandler{Session: s.session},
		Connection:    &handlers.ConnectionHandler{Conn: s.conn, Authenticated: s.session.IsAuthenticated},
		Device:        &handlers.DeviceHandler{Devices: s.devices},
		Light:         &handlers.LightHandler{Light: s.light, Connected: s.conn.IsConnected},
		Review:        &handlers.ReviewHandler{Reviews: s.reviews},
		Notification:  &handlers.NotificationHandler{Center: s.notifier},
		Logging:       &handlers.LoggingHandler{Logger: s.logger},
	})

	router.With(mw.RawTokenAuth(s.logger, token)).Get("/api/v1/ws", ws.Handler(s.hub, s.logger))
	return router
}

func (s *Server) startHTTP() error {
	addr := s.cfg.Server.ListenAddress
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Info("Starting HTTP API server", "address", ln.Addr().String())

	handler := s.Router()
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in WebSocket hub", "recover", r)
			}
		}()
		s.hub.Run(s.rootCtx)
	})

	s.httpServer = &http.Server{
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays 0; hijacked WebSocket connections manage
		// their own deadlines.
		IdleTimeout: 60 * time.Second,
	}

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
	return nil
}

// Addr returns the address the HTTP API listens on, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the agent down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(s.stop)
}

func (s *Server) stop() {
	s.logger.Info("Shutting down sunmindd")
	s.rootCancel()

	if s.httpServer != nil {
		s.logger.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	if s.binding != nil {
		s.binding.Close()
	}
	s.conn.Disconnect()
	for _, unsub := range s.unsubs {
		unsub()
	}

	if s.mirror != nil {
		s.mirror.Stop()
	}
	if s.mqtt != nil {
		s.mqtt.Close()
	}

	s.logger.Info("Waiting for services to stop...")
	s.wg.Wait()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Closing state database failed", "error", err)
		}
	}
	s.logger.Info("sunmindd shut down gracefully")
}

// state describes the agent for a WebSocket client that just connected.
func (s *Server) state() []events.Event {
	out := []events.Event{
		events.NewEvent(events.SessionChanged, s.session.Info()),
		events.NewEvent(events.ConnectionStatus, map[string]string{"status": string(s.conn.Status())}),
		events.NewEvent(events.LightChanged, s.light.State()),
	}
	snap := s.devices.Snapshot()
	for _, d := range s.devices.Devices() {
		out = append(out, events.NewEvent(events.DeviceAdded, d))
		if t, ok := snap.Telemetry[d.ID]; ok {
			out = append(out, events.NewEvent(events.TelemetryUpdated, devices.TelemetryUpdate{DeviceID: d.ID, Telemetry: t}))
		}
	}
	if snap.SelectedID != "" {
		out = append(out, events.NewEvent(events.DeviceSelected, map[string]string{"id": snap.SelectedID}))
	}
	return out
}
