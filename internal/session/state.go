// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/univera/portal/internal/platform/constants"
)

// envelope is the persisted shape of the session state.
//
// # Format
//
// A single versioned document under the "auth-storage" key:
//
//	{"version": 0, "state": {"user": {...}}}
//
// Only the user survives a restart. The loading flag is transient and the
// token lives under its own key so logout can revoke it independently.
type envelope struct {
	Version int           `json:"version"`
	State   envelopeState `json:"state"`
}

type envelopeState struct {
	User *User `json:"user"`
}

// State is the portal's session state.
//
// # Invariants
//
//   - A non-nil user always carries a portal-vocabulary role.
//   - The persisted envelope mirrors the in-memory user: SetUser and Logout
//     update both or report an error.
//   - All accessors return copies; callers never share the internal user.
type State struct {
	mu    sync.Mutex
	store Store
	log   *slog.Logger

	user    *User
	loading bool
}

// StateOption customizes a State.
type StateOption func(*State)

// WithStateLogger overrides the default logger.
func WithStateLogger(log *slog.Logger) StateOption {
	return func(state *State) { state.log = log }
}

// NewState builds a State over the given store and rehydrates it.
//
// # Rehydration
//
// The persisted envelope is read first. If it is absent, the legacy raw
// "user" key (written by earlier portal versions) is tried so an upgrade
// does not log the operator out. An envelope that exists but will not parse
// is logged and discarded; the verifier will rebuild the session from the
// token on the first poll.
func NewState(store Store, opts ...StateOption) (*State, error) {
	state := &State{
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(state)
	}

	if err := state.rehydrate(context.Background()); err != nil {
		return nil, err
	}

	return state, nil
}

// rehydrate restores the persisted user into memory.
func (state *State) rehydrate(ctx context.Context) error {

	// ── 1. Preferred: the versioned envelope ──
	raw, ok, err := state.store.Get(ctx, constants.StorageKeyAuthState)
	if err != nil {
		return fmt.Errorf("session: failed to read persisted state: %w", err)
	}
	if ok {
		var persisted envelope
		if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
			state.log.Warn("session_rehydrate_envelope_corrupt", slog.Any("error", err))
			return nil
		}
		state.user = persisted.State.User.Normalized()
		return nil
	}

	// ── 2. Fallback: the legacy raw user key ──
	raw, ok, err = state.store.Get(ctx, constants.StorageKeyUser)
	if err != nil {
		return fmt.Errorf("session: failed to read legacy user record: %w", err)
	}
	if !ok {
		return nil
	}

	var legacy User
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		state.log.Warn("session_rehydrate_legacy_corrupt", slog.Any("error", err))
		return nil
	}
	state.user = legacy.Normalized()

	return nil
}

// User returns a copy of the current user, or nil when unauthenticated.
func (state *State) User() *User {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.user == nil {
		return nil
	}
	user := *state.user
	return &user
}

// Loading reports whether a blocking session check is in progress.
func (state *State) Loading() bool {
	state.mu.Lock()
	defer state.mu.Unlock()

	return state.loading
}

// SetLoading raises or lowers the loading flag. The flag is never persisted.
func (state *State) SetLoading(loading bool) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.loading = loading
}

// Token returns the stored bearer token, if any.
func (state *State) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := state.store.Get(ctx, constants.StorageKeyToken)
	if err != nil {
		return "", false, fmt.Errorf("session: failed to read token: %w", err)
	}
	return token, ok && token != "", nil
}

// SetToken durably stores the bearer token received at login.
func (state *State) SetToken(ctx context.Context, token string) error {
	if err := state.store.Set(ctx, constants.StorageKeyToken, token); err != nil {
		return fmt.Errorf("session: failed to store token: %w", err)
	}
	return nil
}

// SetUser replaces the current user and synchronizes the persisted envelope.
//
// The role mapper is applied defensively, so a caller handing over a raw
// backend record cannot plant the backend vocabulary in the session.
// Passing nil clears both the in-memory user and the envelope.
func (state *State) SetUser(ctx context.Context, user *User) error {
	normalized := user.Normalized()

	state.mu.Lock()
	state.user = normalized
	state.mu.Unlock()

	if normalized == nil {
		return state.clearPersistedUser(ctx)
	}
	return state.persistUser(ctx, normalized)
}

// Logout clears the whole session: token, user, envelope, loading flag.
//
// # Idempotency
//
// Safe to call with nothing stored; every step tolerates absence.
func (state *State) Logout(ctx context.Context) error {
	state.mu.Lock()
	state.user = nil
	state.loading = false
	state.mu.Unlock()

	if err := state.store.Delete(ctx, constants.StorageKeyToken); err != nil {
		return fmt.Errorf("session: failed to delete token: %w", err)
	}
	return state.clearPersistedUser(ctx)
}

// persistUser writes the envelope under the auth-storage key.
func (state *State) persistUser(ctx context.Context, user *User) error {
	raw, err := json.Marshal(envelope{State: envelopeState{User: user}})
	if err != nil {
		return fmt.Errorf("session: failed to serialize state: %w", err)
	}
	if err := state.store.Set(ctx, constants.StorageKeyAuthState, string(raw)); err != nil {
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

// clearPersistedUser removes the envelope and the legacy user key.
func (state *State) clearPersistedUser(ctx context.Context) error {
	if err := state.store.Delete(ctx, constants.StorageKeyAuthState); err != nil {
		return fmt.Errorf("session: failed to clear persisted state: %w", err)
	}
	// The legacy key is read-only everywhere else, but logout still removes
	// it so a cleared session cannot resurrect through the fallback path.
	if err := state.store.Delete(ctx, constants.StorageKeyUser); err != nil {
		return fmt.Errorf("session: failed to clear legacy user record: %w", err)
	}
	return nil
}
