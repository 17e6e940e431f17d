package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/covweb/internal/config"
	"github.com/me/covweb/internal/store"
)

// Server is the covweb backend: the JSON endpoints the listing view and the
// inspection forms consume, plus video and thumbnail delivery.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	frontend  Frontend // optional; browser UI mounted on the same router
}

// Frontend is a set of routes mounted next to the API, such as the web UI.
type Frontend interface {
	RegisterRoutes(r chi.Router)
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithFrontend mounts f on the server's router.
func WithFrontend(f Frontend) Option {
	return func(s *Server) {
		s.frontend = f
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// Browser UI (HTML)
	if s.frontend != nil {
		s.frontend.RegisterRoutes(r)
	}

	// Listing and form endpoints (JSON)
	r.Get("/inspected_vans", s.handleInspectedVans)
	r.Get("/missing_videos", s.handleMissingVideos)
	r.Get("/events", s.handleListEvents)
	r.Post("/events", s.handleCreateEvent)
	r.Get("/covs", s.handleListCOVs)

	// Media
	r.Get("/thumbnail/{name}", s.handleThumbnail)
	r.Get("/video/{name}", s.handleVideo)

	// Session
	r.Get("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
	})
}
