// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package authflow

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/univera/portal/internal/platform/constants"
	requestutil "github.com/univera/portal/internal/platform/request"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/session"
)

// # Definitions & Constructors

// Handler exposes the login flow over HTTP.
//
// # Scope
//
// Everything under /login: the flow snapshot, the role selection, the
// credential submissions, and the back transition. This layer is strictly
// transport; every decision lives in [Flow].
type Handler struct {
	flow *Flow
}

// NewHandler constructs a new [Handler] around the flow.
func NewHandler(flow *Flow) *Handler {
	return &Handler{flow: flow}
}

// Routes returns a [chi.Router] with the login flow endpoints.
//
// # Endpoints
//   - GET  /          : Current flow snapshot (step, mode, notices).
//   - POST /role      : Pick one of the four primary roles.
//   - POST /mode      : Switch between login and register.
//   - POST /check     : Check an email for first-time setup.
//   - POST /          : Submit login credentials.
//   - POST /setup     : Complete first-time password setup.
//   - POST /register  : Submit a registration.
//   - POST /back      : Return to role selection.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.view)
	router.Post("/", handler.login)
	router.Post("/role", handler.selectRole)
	router.Post("/mode", handler.switchMode)
	router.Post("/check", handler.checkUser)
	router.Post("/setup", handler.setupPassword)
	router.Post("/register", handler.register)
	router.Post("/back", handler.goBack)

	return router
}

// # Request Payloads

type roleRequest struct {
	Role string `json:"role"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type checkRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type setupRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// flowResponse is the snapshot every flow endpoint returns, so a client
// can re-render the login screen from any response.
type flowResponse struct {
	View
	Redirect string `json:"redirect,omitempty"`
}

// # Handlers

// view returns the current flow snapshot.
//
// GET /login
func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.snapshot())
}

// selectRole picks a role and enters credentials entry.
//
// POST /login/role
func (handler *Handler) selectRole(writer http.ResponseWriter, request *http.Request) {
	var payload roleRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.flow.SelectRole(session.Role(payload.Role))
	respond.OK(writer, handler.snapshot())
}

// switchMode toggles login/register within credentials entry.
//
// POST /login/mode
func (handler *Handler) switchMode(writer http.ResponseWriter, request *http.Request) {
	var payload modeRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.flow.SwitchMode(Mode(payload.Mode))
	respond.OK(writer, handler.snapshot())
}

// checkUser probes an email for the first-time-setup entry.
//
// POST /login/check
func (handler *Handler) checkUser(writer http.ResponseWriter, request *http.Request) {
	var payload checkRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.flow.CheckUser(request.Context(), payload.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.snapshot())
}

// login submits credentials.
//
// POST /login
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.flow.Login(request.Context(), payload.Email, payload.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.snapshot())
}

// setupPassword completes first-time setup.
//
// POST /login/setup
func (handler *Handler) setupPassword(writer http.ResponseWriter, request *http.Request) {
	var payload setupRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.flow.SetupPassword(request.Context(), payload.Password, payload.ConfirmPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.snapshot())
}

// register submits a registration.
//
// POST /login/register
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload RegisterInput
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.flow.Register(request.Context(), payload); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.snapshot())
}

// goBack returns to role selection.
//
// POST /login/back
func (handler *Handler) goBack(writer http.ResponseWriter, request *http.Request) {
	handler.flow.GoBack()
	respond.OK(writer, handler.snapshot())
}

// snapshot attaches the dashboard redirect once the flow authenticates.
func (handler *Handler) snapshot() flowResponse {
	view := handler.flow.View()
	response := flowResponse{View: view}
	if view.Step == StepAuthenticated {
		response.Redirect = constants.DashboardPath
	}
	return response
}
