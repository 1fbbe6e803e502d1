// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/session"
)

/*
TestState_RehydrateEnvelope verifies that a persisted envelope restores the
user across a restart.
*/
func TestState_RehydrateEnvelope(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	persisted := `{"version":0,"state":{"user":{"id":"u-1","email":"dean@univera.app","name":"Dana Dean","role":"head"}}}`
	require.NoError(t, store.Set(ctx, "auth-storage", persisted))

	state, err := session.NewState(store)
	require.NoError(t, err)

	user := state.User()
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, session.RoleHead, user.Role)
}

/*
TestState_RehydrateLegacyUserKey verifies the upgrade path: when no envelope
exists, the raw legacy "user" key is read, and the role mapper is applied
to its backend-vocabulary role.
*/
func TestState_RehydrateLegacyUserKey(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	legacy := `{"id":"u-2","email":"chair@univera.app","name":"Casey Chair","role":"department_head"}`
	require.NoError(t, store.Set(ctx, "user", legacy))

	state, err := session.NewState(store)
	require.NoError(t, err)

	user := state.User()
	require.NotNil(t, user)
	assert.Equal(t, session.RoleHead, user.Role, "legacy backend role must be mapped on rehydrate")
}

/*
TestState_RehydrateCorruptEnvelope verifies that an unparseable envelope is
discarded instead of failing startup.
*/
func TestState_RehydrateCorruptEnvelope(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "auth-storage", "{not json"))

	state, err := session.NewState(store)
	require.NoError(t, err)
	assert.Nil(t, state.User())
}

/*
TestState_SetUserPersistsEnvelope verifies that SetUser writes the versioned
envelope and applies the role mapper defensively.
*/
func TestState_SetUserPersistsEnvelope(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	state, err := session.NewState(store)
	require.NoError(t, err)

	require.NoError(t, state.SetUser(ctx, &session.User{
		ID:    "u-3",
		Email: "prof@univera.app",
		Name:  "Pat Prof",
		Role:  session.Role("department_head"),
	}))

	// 1. In-memory role is mapped
	assert.Equal(t, session.RoleHead, state.User().Role)

	// 2. Persisted envelope carries the mapped role too
	raw, ok, err := store.Get(ctx, "auth-storage")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"role":"head"`)

	// 3. A fresh State over the same store sees the same user
	restored, err := session.NewState(store)
	require.NoError(t, err)
	assert.True(t, state.User().Equal(restored.User()))
}

/*
TestState_SetUserNilClears verifies that clearing the user removes the
persisted envelope.
*/
func TestState_SetUserNilClears(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	state, err := session.NewState(store)
	require.NoError(t, err)
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-4", Role: session.RoleStudent}))

	require.NoError(t, state.SetUser(ctx, nil))

	assert.Nil(t, state.User())
	_, ok, err := store.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.False(t, ok)
}

/*
TestState_LogoutIdempotent verifies that logout clears every stored key and
tolerates repeated calls with nothing stored.
*/
func TestState_LogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	state, err := session.NewState(store)
	require.NoError(t, err)

	require.NoError(t, state.SetToken(ctx, "tok-123"))
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-5", Role: session.RoleFaculty}))
	state.SetLoading(true)

	// 1. First logout clears everything
	require.NoError(t, state.Logout(ctx))
	assert.Nil(t, state.User())
	assert.False(t, state.Loading())

	_, ok, err := state.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// 2. Second logout is a clean no-op
	require.NoError(t, state.Logout(ctx))
}

/*
TestState_UserReturnsCopy verifies that mutating a returned user does not
leak into the session.
*/
func TestState_UserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	state, err := session.NewState(store)
	require.NoError(t, err)
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-6", Name: "Original", Role: session.RoleAdmin}))

	leaked := state.User()
	leaked.Name = "Mutated"

	assert.Equal(t, "Original", state.User().Name)
}

/*
TestFileStore_RoundTrip verifies the disk-backed store across a reopen.
*/
func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/session.json"

	store, err := session.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "token", "tok-789"))

	// Reopen from disk
	reopened, err := session.NewFileStore(path)
	require.NoError(t, err)

	value, ok, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-789", value)

	// Delete persists too
	require.NoError(t, reopened.Delete(ctx, "token"))
	final, err := session.NewFileStore(path)
	require.NoError(t, err)
	_, ok, err = final.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}
