// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package api wires together the HTTP routers, middleware chains, and all
domain handlers into runnable [http.Server] instances.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It is the composition root for both programs: the portal gateway and
    the stub university API.
  - Only this package and the cmd/ entrypoints are allowed to import
    net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/univera/portal/internal/authflow"
	"github.com/univera/portal/internal/gate"
	"github.com/univera/portal/internal/platform/config"
	"github.com/univera/portal/internal/platform/constants"
	"github.com/univera/portal/internal/platform/middleware"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/stub/bulletin"
	"github.com/univera/portal/internal/stub/directory"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Portal Composition

// PortalHandlers groups the portal's HTTP handler sets.
type PortalHandlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Login drives the login/first-time-setup flow under /login.
	Login *authflow.Handler

	// Gate serves the session snapshot, navigation, and gated dashboards.
	Gate *gate.Handler
}

// NewPortalServer constructs the portal router with the full middleware
// chain and registers all route groups.
//
// The portal carries no Authenticate middleware: its session lives in the
// injected session state, not in per-request bearer headers.
func NewPortalServer(ctx context.Context, cfg *config.Portal, log *slog.Logger, h PortalHandlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application Routes
	r.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		respond.Redirect(writer, constants.DashboardPath)
	})
	r.Mount(constants.LoginPath, h.Login.Routes())
	r.Mount("/", h.Gate.Routes())

	return newServer(r, cfg.ServerPort, log)
}

// # Stub API Composition

// StubHandlers groups the stub university API's handler sets.
type StubHandlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	// Directory handles accounts: check-user, login, register, setup,
	// verify-token.
	Directory *directory.Handler

	// Bulletin handles campus announcements.
	Bulletin *bulletin.Handler
}

// NewStubServer constructs the stub API router.
//
// Unlike the portal, the stub authenticates per request from the bearer
// header, which is exactly how the real university backend behaves.
func NewStubServer(ctx context.Context, cfg *config.Stub, log *slog.Logger, verifier middleware.TokenVerifier, h StubHandlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// The verify endpoint lives outside /api; see directory.VerifyRoutes.
	r.Mount("/auth", h.Directory.VerifyRoutes())
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Directory.AuthRoutes())
		api.Mount("/bulletin", h.Bulletin.Routes())
	})

	return newServer(r, cfg.ServerPort, log)
}

// newServer applies the shared http.Server timeouts.
func newServer(router *chi.Mux, port string, log *slog.Logger) *Server {
	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
