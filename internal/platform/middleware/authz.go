// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/ctxkey"
	"github.com/univera/portal/internal/platform/respond"
	"github.com/univera/portal/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireBackendRole blocks requests whose claims do not carry one of the
// given backend role literals.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both. The comparison uses
// the backend role vocabulary ("department_head", not "head") because claims
// are minted by the stub API, which never speaks the portal vocabulary.
func RequireBackendRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(writer, request)
					return
				}
			}

			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
		})
	}
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
