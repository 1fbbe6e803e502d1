// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/univera/portal/internal/platform/apperr"
	requestutil "github.com/univera/portal/internal/platform/request"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the directory's auth endpoints.
//
// # Wire Contract
//
// Unlike the rest of the platform, these endpoints answer with the flat
// {success, ...} envelope the university frontend historically consumed,
// not the standard {data} envelope. The portal's auth client depends on
// those exact field names.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AuthRoutes returns the /api/auth router.
//
// # Endpoints
//   - POST /check-user     : Account standing for an email.
//   - POST /login          : Credentials to token exchange.
//   - POST /register       : Self-service account creation.
//   - POST /setup-password : First-time password setup.
func (handler *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/check-user", handler.checkUser)
	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/setup-password", handler.setupPassword)

	return router
}

// VerifyRoutes returns the /auth router holding token verification.
//
// The original backend exposed verification outside the /api prefix; the
// stub keeps that quirk so the portal needs no special casing.
func (handler *Handler) VerifyRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/verify-token", handler.verifyToken)
	return router
}

// # Request Payloads

type checkUserRequest struct {
	Email string `json:"email"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// # Response Payloads

type userDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type checkUserResponse struct {
	Success     bool         `json:"success"`
	Exists      bool         `json:"exists"`
	NeedsSetup  bool         `json:"needs_setup"`
	UserDetails *userDetails `json:"user_details,omitempty"`
}

type sessionResponse struct {
	Success     bool     `json:"success"`
	AccessToken string   `json:"access_token,omitempty"`
	User        *Profile `json:"user,omitempty"`
	Message     string   `json:"message,omitempty"`
}

type verifyResponse struct {
	Success bool     `json:"success"`
	User    *Profile `json:"user"`
}

type rejectionResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// # Handlers

/*
checkUser reports an email's directory standing.

POST /api/auth/check-user
*/
func (handler *Handler) checkUser(writer http.ResponseWriter, request *http.Request) {
	var payload checkUserRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		handler.reject(writer, err)
		return
	}

	var validator validate.Validator
	if err := validator.Required("email", payload.Email).Email("email", payload.Email).Err(); err != nil {
		handler.reject(writer, err)
		return
	}

	result, err := handler.service.CheckUser(request.Context(), payload.Email)
	if err != nil {
		handler.reject(writer, err)
		return
	}

	response := checkUserResponse{
		Success:    true,
		Exists:     result.Exists,
		NeedsSetup: result.NeedsSetup,
	}
	if result.Exists {
		response.UserDetails = &userDetails{Name: result.Name, Email: payload.Email}
	}
	respond.JSON(writer, http.StatusOK, response)
}

/*
login exchanges credentials for an access token.

POST /api/auth/login
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload credentialsRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		handler.reject(writer, err)
		return
	}

	var validator validate.Validator
	if err := validator.
		Required("email", payload.Email).
		Required("password", payload.Password).
		Err(); err != nil {
		handler.reject(writer, err)
		return
	}

	session, err := handler.service.Login(request.Context(), payload.Email, payload.Password)
	if err != nil {
		handler.reject(writer, err)
		return
	}

	respond.JSON(writer, http.StatusOK, sessionResponse{
		Success:     true,
		AccessToken: session.AccessToken,
		User:        session.Account.Profile(),
	})
}

/*
register creates a self-service account.

POST /api/auth/register
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		handler.reject(writer, err)
		return
	}

	var validator validate.Validator
	if err := validator.
		Required("first_name", payload.FirstName).
		Required("last_name", payload.LastName).
		Required("email", payload.Email).
		Email("email", payload.Email).
		Password("password", payload.Password).
		OneOf("role", payload.Role, RoleStudent, RoleFaculty, RoleAdmin, RoleDepartmentHead).
		Err(); err != nil {
		handler.reject(writer, err)
		return
	}

	_, err := handler.service.Register(request.Context(), RegisterInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      payload.Role,
	})
	if err != nil {
		handler.reject(writer, err)
		return
	}

	respond.JSON(writer, http.StatusCreated, sessionResponse{
		Success: true,
		Message: "Registration successful. Please log in.",
	})
}

/*
setupPassword completes first-time setup and authenticates.

POST /api/auth/setup-password
*/
func (handler *Handler) setupPassword(writer http.ResponseWriter, request *http.Request) {
	var payload credentialsRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		handler.reject(writer, err)
		return
	}

	var validator validate.Validator
	if err := validator.
		Required("email", payload.Email).
		Password("password", payload.Password).
		Err(); err != nil {
		handler.reject(writer, err)
		return
	}

	session, err := handler.service.SetupPassword(request.Context(), payload.Email, payload.Password)
	if err != nil {
		handler.reject(writer, err)
		return
	}

	respond.JSON(writer, http.StatusOK, sessionResponse{
		Success:     true,
		AccessToken: session.AccessToken,
		User:        session.Account.Profile(),
	})
}

/*
verifyToken resolves the bearer token to its account.

GET /auth/verify-token
*/
func (handler *Handler) verifyToken(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.BearerToken(request)
	if token == "" {
		handler.reject(writer, apperr.Unauthorized("Missing bearer token"))
		return
	}

	account, err := handler.service.VerifyToken(request.Context(), token)
	if err != nil {
		handler.reject(writer, err)
		return
	}

	respond.JSON(writer, http.StatusOK, verifyResponse{
		Success: true,
		User:    account.Profile(),
	})
}

// reject writes the flat failure envelope the frontend expects.
func (handler *Handler) reject(writer http.ResponseWriter, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	message := appError.Message
	if len(appError.Details) > 0 {
		message = appError.Details[0].Message
	}

	respond.JSON(writer, appError.HTTPStatus, rejectionResponse{
		Success: false,
		Code:    appError.Code,
		Message: message,
	})
}
