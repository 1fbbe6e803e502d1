// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/constants"
)

// VerifyClient resolves a bearer token to the user it belongs to.
//
// # Failure taxonomy
//
// An explicit backend rejection (invalid or expired token) must come back
// as an *apperr.AppError. A transport failure (timeout, refused connection,
// DNS) must come back as a plain error. The verifier branches on exactly
// this distinction.
type VerifyClient interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
}

// Verifier keeps the session state consistent with the backend's view of
// the stored token.
//
// # Throttling
//
// Two layers guard against redundant verification traffic. A timestamp
// throttle rejects attempts within [constants.VerifyMinInterval] of the
// previous one, including failed ones. An in-flight guard rejects attempts
// while a request is already on the wire, which the timestamp alone cannot
// do once a call outlives the interval.
type Verifier struct {
	state  *State
	client VerifyClient
	log    *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastAttempt time.Time
	inFlight    bool
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierLogger overrides the default logger.
func WithVerifierLogger(log *slog.Logger) VerifierOption {
	return func(verifier *Verifier) { verifier.log = log }
}

// WithClock overrides the time source. Tests use this to cross the throttle
// window without sleeping.
func WithClock(now func() time.Time) VerifierOption {
	return func(verifier *Verifier) { verifier.now = now }
}

// NewVerifier builds a Verifier over the given state and client.
func NewVerifier(state *State, client VerifyClient, opts ...VerifierOption) *Verifier {
	verifier := &Verifier{
		state:  state,
		client: client,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(verifier)
	}
	return verifier
}

/*
Verify reconciles the session state against the stored token.

Description: The single entry point for both the startup check and the
background poll. The outcome matrix:

  - Throttled or already in flight: no-op, nil.
  - No stored token: clears any lingering user, no network call, nil.
  - Backend rejects the token: token and user are wiped (hard failure).
  - Backend unreachable: session preserved untouched (soft failure); the
    rejection signal is an explicit answer, and a dead network is not an
    answer.
  - Backend confirms: the fresh record replaces the user only when it
    actually differs, so steady-state polls cause no writes.

The loading flag is raised only when no user is present (a cold check the
UI must block on) and is lowered on every path out.

Parameters:
  - ctx: context.Context

Returns:
  - error: The underlying failure, for the caller to log. Skips return nil.
*/
func (verifier *Verifier) Verify(ctx context.Context) error {

	// ── 1. Throttle and in-flight guard ──
	verifier.mu.Lock()
	if verifier.inFlight {
		verifier.mu.Unlock()
		return nil
	}
	if !verifier.lastAttempt.IsZero() && verifier.now().Sub(verifier.lastAttempt) < constants.VerifyMinInterval {
		verifier.mu.Unlock()
		return nil
	}
	verifier.mu.Unlock()

	// ── 2. Read the stored token ──
	token, ok, err := verifier.state.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		// No token means no session. Clear any lingering user without
		// touching the network and without stamping the throttle.
		if verifier.state.User() != nil {
			if err := verifier.state.SetUser(ctx, nil); err != nil {
				return err
			}
		}
		verifier.state.SetLoading(false)
		return nil
	}

	// ── 3. Stamp the attempt and mark the request in flight ──
	// The stamp lands before the outcome is known, so failed attempts
	// hold the throttle window too.
	verifier.mu.Lock()
	verifier.lastAttempt = verifier.now()
	verifier.inFlight = true
	verifier.mu.Unlock()

	if verifier.state.User() == nil {
		verifier.state.SetLoading(true)
	}

	defer func() {
		verifier.mu.Lock()
		verifier.inFlight = false
		verifier.mu.Unlock()
		verifier.state.SetLoading(false)
	}()

	// ── 4. Ask the backend ──
	fresh, err := verifier.client.VerifyToken(ctx, token)
	if err != nil {
		if apperr.IsAppError(err) {
			// Hard failure: the backend looked at the token and said no.
			verifier.log.Info("session_token_rejected", slog.Any("error", err))
			if logoutErr := verifier.state.Logout(ctx); logoutErr != nil {
				return logoutErr
			}
			return err
		}

		// Soft failure: the backend never answered. Keep the session.
		verifier.log.Warn("session_verify_unreachable", slog.Any("error", err))
		return fmt.Errorf("session: verification unreachable: %w", err)
	}

	// ── 5. Apply the confirmed user ──
	mapped := fresh.Normalized()
	if mapped.Equal(verifier.state.User()) {
		return nil
	}

	return verifier.state.SetUser(ctx, mapped)
}
