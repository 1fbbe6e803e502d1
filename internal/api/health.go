// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

// Package api contains the health check handlers for liveness and readiness probes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/univera/portal/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
//
// Each program wires only the checks it actually has: the stub checks its
// database, the portal checks the university backend and (when configured)
// the Redis session store. Nil checks are skipped.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error

	// CheckBackend probes the university API the portal depends on.
	CheckBackend func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	type namedCheck struct {
		name  string
		check func() error
	}

	checks := []namedCheck{
		{name: "postgres", check: handler.dependencies.CheckDatabase},
		{name: "redis", check: handler.dependencies.CheckCache},
		{name: "backend", check: handler.dependencies.CheckBackend},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, candidate := range checks {
		if candidate.check == nil {
			continue
		}

		result := checkResult{Name: candidate.name, IsOK: true}
		if err := candidate.check(); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", candidate.name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	responseStatus := "ready"
	httpStatus := http.StatusOK

	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		"status": responseStatus,
		"checks": results,
	}})
}
