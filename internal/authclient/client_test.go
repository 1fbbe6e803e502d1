// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package authclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/authclient"
	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/session"
)

/*
TestClient_LoginSuccess verifies that a successful login yields the token
and the raw user record.
*/
func TestClient_LoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var credentials authclient.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))
		assert.Equal(t, "dean@univera.app", credentials.Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"access_token":"tok-1","user":{"id":"u-1","email":"dean@univera.app","name":"Dana Dean","role":"department_head"}}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	result, err := client.Login(context.Background(), authclient.Credentials{Email: "dean@univera.app", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, "tok-1", result.Token)
	require.NotNil(t, result.User)
	// The client hands over the backend vocabulary untouched; mapping is
	// the session layer's job.
	assert.Equal(t, session.Role("department_head"), result.User.Role)
}

/*
TestClient_LoginRejection verifies that a 401 becomes an AppError carrying
the server's own message.
*/
func TestClient_LoginRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"code":"UNAUTHORIZED","message":"Invalid email or password"}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	_, err := client.Login(context.Background(), authclient.Credentials{Email: "x@univera.app", Password: "wrong"})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError, "a server rejection must surface as an AppError")
	assert.Equal(t, "Invalid email or password", appError.Message)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
}

/*
TestClient_TransportFailure verifies that an unreachable backend yields a
plain error, never an AppError.
*/
func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := authclient.NewClient(server.URL)
	_, err := client.VerifyToken(context.Background(), "tok-1")

	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err), "a dead network must stay a plain error")
}

/*
TestClient_CheckUser verifies decoding of the exists/needs_setup pair.
*/
func TestClient_CheckUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/check-user", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"exists":true,"needs_setup":true}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	result, err := client.CheckUser(context.Background(), "new.hire@univera.app")
	require.NoError(t, err)

	assert.True(t, result.Exists)
	assert.True(t, result.NeedsSetup)
}

/*
TestClient_VerifyTokenSendsBearer verifies the Authorization header format.
*/
func TestClient_VerifyTokenSendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/verify-token", r.URL.Path)
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u-9","email":"s@univera.app","name":"Sam","role":"student"}}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	user, err := client.VerifyToken(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, "u-9", user.ID)
}

/*
TestClient_RegisterTranslatesRole verifies that the portal's "head" role is
submitted as "department_head".
*/
func TestClient_RegisterTranslatesRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "department_head", payload["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Registration successful"}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	err := client.Register(context.Background(), authclient.RegisterInput{
		FirstName: "Casey",
		LastName:  "Chair",
		Email:     "chair@univera.app",
		Password:  "secret123",
		Role:      session.RoleHead,
	})
	require.NoError(t, err)
}

/*
TestClient_SuccessFalseIsRejection verifies that a 200 body reporting
success=false is still treated as a server rejection.
*/
func TestClient_SuccessFalseIsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"Account already has a password"}`))
	}))
	defer server.Close()

	client := authclient.NewClient(server.URL)
	_, err := client.SetupPassword(context.Background(), "x@univera.app", "secret123")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Account already has a password", appError.Message)
}
