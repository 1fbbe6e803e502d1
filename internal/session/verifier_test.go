// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/session"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// fakeVerifyClient counts calls and returns a canned result.
type fakeVerifyClient struct {
	mu     sync.Mutex
	calls  int
	user   *session.User
	err    error
	during func()
}

func (client *fakeVerifyClient) VerifyToken(_ context.Context, _ string) (*session.User, error) {
	client.mu.Lock()
	client.calls++
	client.mu.Unlock()

	if client.during != nil {
		client.during()
	}
	if client.err != nil {
		return nil, client.err
	}
	user := *client.user
	return &user, nil
}

func (client *fakeVerifyClient) callCount() int {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.calls
}

// countingStore wraps a Store and counts writes per key.
type countingStore struct {
	session.Store
	mu   sync.Mutex
	sets map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: session.NewMemoryStore(), sets: make(map[string]int)}
}

func (store *countingStore) Set(ctx context.Context, key string, value string) error {
	store.mu.Lock()
	store.sets[key]++
	store.mu.Unlock()
	return store.Store.Set(ctx, key, value)
}

func (store *countingStore) setCount(key string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.sets[key]
}

// newVerifierFixture wires a state with a stored token, a fake client and a
// fake clock.
func newVerifierFixture(t *testing.T, client *fakeVerifyClient) (*session.State, *session.Verifier, *fakeClock) {
	t.Helper()

	state, err := session.NewState(session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, state.SetToken(context.Background(), "tok-abc"))

	clock := newFakeClock()
	verifier := session.NewVerifier(state, client, session.WithClock(clock.Now))

	return state, verifier, clock
}

/*
TestVerifier_ThrottleWithinWindow verifies that a second attempt 500ms after
the first produces no second backend request.
*/
func TestVerifier_ThrottleWithinWindow(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.RoleStudent}}
	_, verifier, clock := newVerifierFixture(t, client)

	require.NoError(t, verifier.Verify(ctx))
	clock.Advance(500 * time.Millisecond)
	require.NoError(t, verifier.Verify(ctx))

	assert.Equal(t, 1, client.callCount())
}

/*
TestVerifier_ThrottleExpires verifies that an attempt past the 2000ms window
goes through.
*/
func TestVerifier_ThrottleExpires(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.RoleStudent}}
	_, verifier, clock := newVerifierFixture(t, client)

	require.NoError(t, verifier.Verify(ctx))
	clock.Advance(3000 * time.Millisecond)
	require.NoError(t, verifier.Verify(ctx))

	assert.Equal(t, 2, client.callCount())
}

/*
TestVerifier_FailedAttemptHoldsThrottle verifies that the attempt timestamp
is stamped before the outcome is known: a failed call still suppresses an
immediate retry.
*/
func TestVerifier_FailedAttemptHoldsThrottle(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{err: errors.New("connection refused")}
	_, verifier, clock := newVerifierFixture(t, client)

	assert.Error(t, verifier.Verify(ctx))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, verifier.Verify(ctx), "throttled retry must be a silent no-op")

	assert.Equal(t, 1, client.callCount())
}

/*
TestVerifier_NoTokenNoNetwork verifies that a missing token never reaches
the backend and clears a lingering user.
*/
func TestVerifier_NoTokenNoNetwork(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.RoleStudent}}

	state, err := session.NewState(session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "stale", Role: session.RoleStudent}))

	verifier := session.NewVerifier(state, client)
	require.NoError(t, verifier.Verify(ctx))

	assert.Equal(t, 0, client.callCount())
	assert.Nil(t, state.User())
	assert.False(t, state.Loading())
}

/*
TestVerifier_HardFailureClearsSession verifies that an explicit backend
rejection wipes both the token and the user.
*/
func TestVerifier_HardFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{err: apperr.Unauthorized("Token has expired")}
	state, verifier, _ := newVerifierFixture(t, client)
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-1", Role: session.RoleFaculty}))

	err := verifier.Verify(ctx)
	assert.True(t, apperr.IsAppError(err))

	assert.Nil(t, state.User())
	_, ok, tokenErr := state.Token(ctx)
	require.NoError(t, tokenErr)
	assert.False(t, ok, "rejected token must be removed from storage")
}

/*
TestVerifier_SoftFailurePreservesSession verifies that a transport failure
leaves the token and user untouched.
*/
func TestVerifier_SoftFailurePreservesSession(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{err: errors.New("dial tcp: i/o timeout")}
	state, verifier, _ := newVerifierFixture(t, client)
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-1", Role: session.RoleFaculty}))

	err := verifier.Verify(ctx)
	assert.Error(t, err)
	assert.False(t, apperr.IsAppError(err))

	require.NotNil(t, state.User())
	assert.Equal(t, "u-1", state.User().ID)
	_, ok, tokenErr := state.Token(ctx)
	require.NoError(t, tokenErr)
	assert.True(t, ok, "token must survive a transport failure")
}

/*
TestVerifier_MapsBackendRole verifies that a confirmed department_head lands
in the session as head.
*/
func TestVerifier_MapsBackendRole(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.Role("department_head")}}
	state, verifier, _ := newVerifierFixture(t, client)

	require.NoError(t, verifier.Verify(ctx))

	require.NotNil(t, state.User())
	assert.Equal(t, session.RoleHead, state.User().Role)
}

/*
TestVerifier_UnchangedUserSkipsWrite verifies that a poll returning the same
record causes no second persistence write.
*/
func TestVerifier_UnchangedUserSkipsWrite(t *testing.T) {
	ctx := context.Background()
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.RoleStudent}}

	store := newCountingStore()
	state, err := session.NewState(store)
	require.NoError(t, err)
	require.NoError(t, state.SetToken(ctx, "tok-abc"))

	clock := newFakeClock()
	verifier := session.NewVerifier(state, client, session.WithClock(clock.Now))

	require.NoError(t, verifier.Verify(ctx))
	writesAfterFirst := store.setCount("auth-storage")
	assert.Equal(t, 1, writesAfterFirst)

	clock.Advance(3 * time.Second)
	require.NoError(t, verifier.Verify(ctx))

	assert.Equal(t, 2, client.callCount())
	assert.Equal(t, writesAfterFirst, store.setCount("auth-storage"), "identical user must not be rewritten")
}

/*
TestVerifier_LoadingOnlyOnColdCheck verifies the loading flag is raised
during the call only when no user is present, and is lowered afterwards in
both cases.
*/
func TestVerifier_LoadingOnlyOnColdCheck(t *testing.T) {
	ctx := context.Background()

	// 1. Cold check: no user yet, loading raised during the call
	client := &fakeVerifyClient{user: &session.User{ID: "u-1", Role: session.RoleStudent}}
	state, verifier, clock := newVerifierFixture(t, client)

	var loadingDuringCall bool
	client.during = func() { loadingDuringCall = state.Loading() }

	require.NoError(t, verifier.Verify(ctx))
	assert.True(t, loadingDuringCall, "cold check must raise the loading flag")
	assert.False(t, state.Loading())

	// 2. Warm poll: user present, UI must not flash a blocking state
	clock.Advance(3 * time.Second)
	client.during = func() { loadingDuringCall = state.Loading() }

	require.NoError(t, verifier.Verify(ctx))
	assert.False(t, loadingDuringCall, "background poll must not raise the loading flag")
	assert.False(t, state.Loading())
}
