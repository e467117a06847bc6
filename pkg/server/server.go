package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/internal/errors"
	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/scope"
	"github.com/vango-dev/dnd/pkg/telemetry"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Mount is what a MountFunc builds into.
type Mount struct {
	Document *dom.Document
	Scope    *scope.Scope
	Surface  *dnd.Surface
}

// MountFunc builds the element tree of a new session and attaches drag
// sources and drop zones. An error rejects the connection.
type MountFunc func(m *Mount) error

// Server is the HTTP/WebSocket server.
type Server struct {
	config *config.Config
	// live is the configuration new sessions are built from.
	live atomic.Pointer[config.Config]

	router   chi.Router
	upgrader websocket.Upgrader
	mount    MountFunc

	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	tracer   *telemetry.Tracer
	extra    []dnd.Observer

	mu       sync.Mutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMount sets the function that builds each session's elements.
func WithMount(fn MountFunc) Option {
	return func(s *Server) {
		s.mount = fn
	}
}

// WithMetrics uses m for metrics and serves g on the metrics path.
func WithMetrics(m *telemetry.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithObserver adds an observer that sees every session's drags.
func WithObserver(o dnd.Observer) Option {
	return func(s *Server) {
		s.extra = append(s.extra, o)
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server. A nil config uses config.New().
func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   cfg,
		mount:    func(*Mount) error { return nil },
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.live.Store(cfg)

	if s.metrics == nil && cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		s.metrics = telemetry.NewMetrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		s.gatherer = reg
	}
	s.tracer = telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName))

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get(s.config.Server.Path, s.HandleWebSocket)
	if s.config.Metrics.Enabled && s.gatherer != nil {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's router for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *config.Config {
	return s.config
}

// Reload replaces the drag and rate limit settings used by sessions opened
// from now on. Open sessions keep the settings they started with. Listener,
// metrics and tracing settings are fixed at New.
func (s *Server) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.live.Store(cfg)
	s.logger.Info("configuration reloaded",
		"effectAllowed", cfg.Drag.EffectAllowed,
		"eventRate", cfg.Server.EventRate)
	return nil
}

// Metrics returns the metrics collectors, or nil when disabled.
func (s *Server) Metrics() *telemetry.Metrics {
	return s.metrics
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// checkOrigin allows requests without an Origin header, same-origin
// requests when no origins are configured, and otherwise only the listed
// origins ("*" allows all).
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := s.config.Server.AllowedOrigins
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// observer returns the observers shared by all sessions.
func (s *Server) observer() dnd.Observer {
	obs := dnd.Observers{s.tracer}
	if s.metrics != nil {
		obs = append(obs, s.metrics)
	}
	return append(obs, s.extra...)
}

// HandleWebSocket upgrades the request and starts a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", errors.New("E060").Wrap(err))
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}

	id := uuid.NewString()
	sess, err := newSession(s, id, conn, s.live.Load())
	if err != nil {
		s.logger.Error("mount failed", "session", id, "error", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("session opened", "session", id, "remote", r.RemoteAddr)

	go sess.serve(s.ctx)
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.logger.Info("session closed", "session", id)
}

// Run listens on the configured address and blocks until ctx is canceled
// or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return errors.New("E060").WithDetail("listen " + s.config.Address()).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "path", s.config.Server.Path)
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
