// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package gate_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/authflow"
	"github.com/univera/portal/internal/gate"
	"github.com/univera/portal/internal/session"
)

// noopVerifyClient always confirms the stored token.
type noopVerifyClient struct {
	user *session.User
}

func (client *noopVerifyClient) VerifyToken(context.Context, string) (*session.User, error) {
	user := *client.user
	return &user, nil
}

func newGateServer(t *testing.T, state *session.State, client session.VerifyClient) *httptest.Server {
	t.Helper()

	verifier := session.NewVerifier(state, client)
	flow := authflow.New(state, nil)
	handler := gate.NewHandler(state, verifier, flow, slog.Default())

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

// noRedirectClient keeps 303 responses observable.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

/*
TestDashboard_SignedOutRedirects verifies the 303 to /login for gated
paths when nobody is logged in.
*/
func TestDashboard_SignedOutRedirects(t *testing.T) {
	state, err := session.NewState(session.NewMemoryStore())
	require.NoError(t, err)
	server := newGateServer(t, state, &noopVerifyClient{user: &session.User{}})

	for _, path := range []string{"/dashboard", "/dashboard/grades", "/dashboard/reports/q3"} {
		response, err := noRedirectClient().Get(server.URL + path)
		require.NoError(t, err)
		response.Body.Close()

		assert.Equal(t, http.StatusSeeOther, response.StatusCode, "path %q", path)
		assert.Equal(t, "/login", response.Header.Get("Location"))
	}
}

/*
TestDashboard_SignedInRenders verifies that an authenticated session gets
its role menu instead of a redirect.
*/
func TestDashboard_SignedInRenders(t *testing.T) {
	ctx := context.Background()
	state, err := session.NewState(session.NewMemoryStore())
	require.NoError(t, err)

	user := &session.User{ID: "u-1", Email: "dean@univera.app", Role: session.Role("department_head")}
	require.NoError(t, state.SetToken(ctx, "tok-1"))
	require.NoError(t, state.SetUser(ctx, user))

	server := newGateServer(t, state, &noopVerifyClient{user: user})

	response, err := http.Get(server.URL + "/dashboard")
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
}

/*
TestLogout_ClearsSessionAndRedirects verifies the logout round trip and
its idempotence.
*/
func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	ctx := context.Background()
	state, err := session.NewState(session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, state.SetToken(ctx, "tok-1"))
	require.NoError(t, state.SetUser(ctx, &session.User{ID: "u-1", Role: session.RoleStudent}))

	server := newGateServer(t, state, &noopVerifyClient{user: &session.User{}})

	for i := 0; i < 2; i++ { // second pass checks idempotence
		response, err := noRedirectClient().Post(server.URL+"/logout", "application/json", nil)
		require.NoError(t, err)
		response.Body.Close()

		assert.Equal(t, http.StatusSeeOther, response.StatusCode)
		assert.Equal(t, "/login", response.Header.Get("Location"))
	}

	assert.Nil(t, state.User())
	_, ok, err := state.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
