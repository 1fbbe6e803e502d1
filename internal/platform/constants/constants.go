// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP servers.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: durable storage keys and verification cadence.
  - Security: JWT issuer and header names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "univera-portal"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session Storage

const (
	// StorageKeyToken is the durable key holding the raw bearer token.
	StorageKeyToken = "token"

	// StorageKeyUser is the legacy durable key holding the raw user record.
	// It is read during rehydration for compatibility with sessions written
	// before the persistence envelope existed; it is no longer written.
	StorageKeyUser = "user"

	// StorageKeyAuthState is the durable key holding the persistence envelope
	// (serialized user only, never transient flags).
	StorageKeyAuthState = "auth-storage"
)

// # Session Verification

const (
	// VerifyMinInterval is the minimum gap between two token verification
	// attempts. Attempts inside this window are skipped entirely.
	VerifyMinInterval = 2000 * time.Millisecond

	// BackgroundVerifyInterval is the cadence of the portal's background
	// session refresh loop.
	BackgroundVerifyInterval = 2 * time.Minute
)

// # Navigation

const (
	// LoginPath is where unauthenticated requests are redirected.
	LoginPath = "/login"

	// DashboardPath is the landing route after a successful login.
	DashboardPath = "/dashboard"
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs minted by the stub API.
	AuthIssuer = "univera.app"

	// AccessTokenTTL is the duration a stub-issued access token remains valid.
	AccessTokenTTL = 12 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// ContentTypeJSON is the media type for all API request and response bodies.
const ContentTypeJSON = "application/json"

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
)
