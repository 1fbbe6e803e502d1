// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package bulletin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/middleware"
	requestutil "github.com/univera/portal/internal/platform/request"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/platform/validate"
	"github.com/univera/portal/internal/stub/directory"
	"github.com/univera/portal/pkg/pagination"
	"github.com/univera/portal/pkg/uuidv7"
)

// # Definitions & Constructors

// Handler implements the announcement endpoints.
type Handler struct {
	posts PostRepository
}

// NewHandler constructs a new [Handler].
func NewHandler(posts PostRepository) *Handler {
	return &Handler{posts: posts}
}

// Routes returns the /api/bulletin router.
//
// # Endpoints
//   - GET  /  : Paginated announcements for the caller's role.
//   - POST /  : Publish an announcement (admin and department heads only).
//
// Both require authentication; the caller's role comes from the verified
// claims, never from a query parameter.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.list)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBackendRole(directory.RoleAdmin, directory.RoleDepartmentHead))
		r.Post("/", handler.create)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience"`
}

// # Handlers

/*
list returns the caller's page of announcements.

GET /api/bulletin?page=&limit=
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	posts, total, err := handler.posts.List(request.Context(), claims.Role, params)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
create publishes a new announcement.

POST /api/bulletin
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload createRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var validator validate.Validator
	if err := validator.
		Required("title", payload.Title).
		MaxLen("title", payload.Title, 200).
		Required("body", payload.Body).
		OneOf("audience", payload.Audience,
			AudienceAll,
			directory.RoleStudent,
			directory.RoleFaculty,
			directory.RoleAdmin,
			directory.RoleDepartmentHead,
		).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post := &Post{
		ID:       uuidv7.New(),
		Title:    payload.Title,
		Body:     payload.Body,
		Author:   claims.Email,
		Audience: payload.Audience,
	}
	if err := handler.posts.Create(request.Context(), post); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.Created(writer, post)
}
