// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/univera/portal/internal/authflow"
	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/constants"
	requestutil "github.com/univera/portal/internal/platform/request"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/session"
)

// # Definitions & Constructors

// Handler exposes the gated surface of the portal: the session snapshot,
// the navigation menu, logout, and the dashboard routes themselves.
type Handler struct {
	state    *session.State
	verifier *session.Verifier
	flow     *authflow.Flow
	view     *ViewState
	log      *slog.Logger
}

// NewHandler constructs a new [Handler].
func NewHandler(state *session.State, verifier *session.Verifier, flow *authflow.Flow, log *slog.Logger) *Handler {
	return &Handler{
		state:    state,
		verifier: verifier,
		flow:     flow,
		view:     &ViewState{},
		log:      log,
	}
}

// Routes returns a [chi.Router] with the gated endpoints.
//
// # Endpoints
//   - GET  /session          : Current user and loading flag.
//   - GET  /nav              : Gate decision for the current user.
//   - POST /logout           : Clear the session and bounce to /login.
//   - POST /overlay/{panel}  : Toggle one of the dashboard overlays.
//   - GET  /dashboard/*      : Gated content; 303 to /login when signed out.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/session", handler.sessionSnapshot)
	router.Get("/nav", handler.navigation)
	router.Post("/logout", handler.logout)
	router.Post("/overlay/{panel}", handler.toggleOverlay)
	router.Get(constants.DashboardPath, handler.dashboard)
	router.Get(constants.DashboardPath+"/*", handler.dashboard)

	return router
}

// # Response Payloads

type sessionResponse struct {
	User    *session.User `json:"user"`
	Loading bool          `json:"loading"`
}

type dashboardResponse struct {
	User     *session.User `json:"user"`
	Menu     []MenuItem    `json:"menu"`
	Path     string        `json:"path"`
	Overlays Overlays      `json:"overlays"`
}

// # Handlers

// sessionSnapshot returns who is logged in, if anyone.
//
// GET /session
func (handler *Handler) sessionSnapshot(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, sessionResponse{
		User:    handler.state.User(),
		Loading: handler.state.Loading(),
	})
}

// navigation returns the gate decision for the current user.
//
// GET /nav
func (handler *Handler) navigation(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, Decide(handler.state.User(), request.URL.Path))
}

// logout clears the session.
//
// POST /logout
//
// Idempotent: logging out while logged out is still a redirect to /login.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.state.Logout(request.Context()); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	handler.flow.Reset()
	respond.Redirect(writer, constants.LoginPath)
}

// toggleOverlay flips one of the dashboard overlays.
//
// POST /overlay/{panel} where panel is mobile-menu, notifications, or
// profile-menu.
func (handler *Handler) toggleOverlay(writer http.ResponseWriter, request *http.Request) {
	if handler.state.User() == nil {
		respond.Redirect(writer, constants.LoginPath)
		return
	}

	switch requestutil.Param(request, "panel") {
	case "mobile-menu":
		handler.view.ToggleMobileMenu()
	case "notifications":
		handler.view.ToggleNotifications()
	case "profile-menu":
		handler.view.ToggleProfileMenu()
	default:
		respond.Error(writer, request, apperr.ValidationError("Unknown overlay panel"))
		return
	}

	respond.OK(writer, handler.view.Overlays())
}

// dashboard serves the gated content routes.
//
// GET /dashboard, GET /dashboard/*
//
// Each navigation opportunistically re-verifies the stored token; the
// verifier's own throttle keeps rapid navigation from spamming the
// backend. Verification failures are not surfaced here — a hard failure
// already cleared the session, so the gate decision below handles it.
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	if err := handler.verifier.Verify(request.Context()); err != nil {
		handler.log.Debug("navigation_verify_failed", slog.Any("error", err))
	}

	pathname := request.URL.Path
	decision := Decide(handler.state.User(), pathname)
	if !decision.Allowed {
		respond.Redirect(writer, decision.RedirectTo)
		return
	}

	// Route change closes any open overlays.
	handler.view.Navigate(pathname)

	respond.OK(writer, dashboardResponse{
		User:     handler.state.User(),
		Menu:     decision.Menu,
		Path:     strings.TrimSuffix(pathname, "/"),
		Overlays: handler.view.Overlays(),
	})
}
