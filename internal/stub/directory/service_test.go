// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/sec"
	"github.com/univera/portal/internal/stub/directory"
)

const testSecret = "test-secret-key-0123456789-abcdefgh"

func newServiceFixture(t *testing.T) (*directory.Service, *directory.MemoryAccountRepository) {
	t.Helper()

	tokens, err := sec.NewTokenService(testSecret, "univera.test")
	require.NoError(t, err)

	accounts := directory.NewMemoryAccountRepository()
	return directory.NewService(accounts, tokens), accounts
}

// registerAccount creates a ready-to-login account.
func registerAccount(t *testing.T, service *directory.Service, email, role string) *directory.Account {
	t.Helper()
	account, err := service.Register(context.Background(), directory.RegisterInput{
		FirstName: "Test",
		LastName:  "Account",
		Email:     email,
		Password:  "secret123",
		Role:      role,
	})
	require.NoError(t, err)
	return account
}

/*
TestService_CheckUser verifies the three possible standings: unknown,
ready, and awaiting setup.
*/
func TestService_CheckUser(t *testing.T) {
	ctx := context.Background()
	service, accounts := newServiceFixture(t)

	// 1. Unknown email is a normal answer, not an error
	result, err := service.CheckUser(ctx, "nobody@univera.app")
	require.NoError(t, err)
	assert.False(t, result.Exists)

	// 2. Registered account is ready to log in
	registerAccount(t, service, "ready@univera.app", directory.RoleStudent)
	result, err = service.CheckUser(ctx, "ready@univera.app")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.False(t, result.NeedsSetup)

	// 3. Provisioned account without a password needs setup
	require.NoError(t, accounts.Create(ctx, &directory.Account{
		ID:        "prov-1",
		Email:     "provisioned@univera.app",
		FirstName: "Pro",
		LastName:  "Visioned",
		Role:      directory.RoleFaculty,
	}))
	result, err = service.CheckUser(ctx, "provisioned@univera.app")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.True(t, result.NeedsSetup)
}

/*
TestService_LoginAndVerify verifies the token round trip: login, then
resolve the issued token back to the same account.
*/
func TestService_LoginAndVerify(t *testing.T) {
	ctx := context.Background()
	service, _ := newServiceFixture(t)
	created := registerAccount(t, service, "dean@univera.app", directory.RoleDepartmentHead)

	session, err := service.Login(ctx, "dean@univera.app", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)

	resolved, err := service.VerifyToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, directory.RoleDepartmentHead, resolved.Role, "the directory always speaks the backend vocabulary")
}

/*
TestService_LoginRejections verifies the unauthorized branches.
*/
func TestService_LoginRejections(t *testing.T) {
	ctx := context.Background()
	service, accounts := newServiceFixture(t)
	registerAccount(t, service, "ready@univera.app", directory.RoleStudent)

	// 1. Wrong password
	_, err := service.Login(ctx, "ready@univera.app", "wrong-password")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Invalid email or password", appError.Message)

	// 2. Unknown email gets the same generic message (no enumeration)
	_, err = service.Login(ctx, "nobody@univera.app", "secret123")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Invalid email or password", appError.Message)

	// 3. Provisioned account is pointed at first-time setup
	require.NoError(t, accounts.Create(ctx, &directory.Account{
		ID: "prov-1", Email: "provisioned@univera.app", Role: directory.RoleFaculty,
	}))
	_, err = service.Login(ctx, "provisioned@univera.app", "anything1")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Contains(t, appError.Message, "first-time setup")
}

/*
TestService_SetupPassword verifies first-time setup authenticates once and
only once.
*/
func TestService_SetupPassword(t *testing.T) {
	ctx := context.Background()
	service, accounts := newServiceFixture(t)
	require.NoError(t, accounts.Create(ctx, &directory.Account{
		ID: "prov-1", Email: "new.hire@univera.app", FirstName: "Noor", LastName: "Newhire",
		Role: directory.RoleFaculty,
	}))

	// 1. Setup succeeds and behaves like a login
	session, err := service.SetupPassword(ctx, "new.hire@univera.app", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)

	// 2. The new password now works for a regular login
	_, err = service.Login(ctx, "new.hire@univera.app", "secret123")
	require.NoError(t, err)

	// 3. A second setup attempt is rejected
	_, err = service.SetupPassword(ctx, "new.hire@univera.app", "other-password1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

/*
TestService_RegisterDuplicate verifies email uniqueness and role
validation.
*/
func TestService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	service, _ := newServiceFixture(t)
	registerAccount(t, service, "taken@univera.app", directory.RoleStudent)

	_, err := service.Register(ctx, directory.RegisterInput{
		FirstName: "Second", LastName: "Try",
		Email: "taken@univera.app", Password: "secret123", Role: directory.RoleStudent,
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)

	_, err = service.Register(ctx, directory.RegisterInput{
		FirstName: "Odd", LastName: "Role",
		Email: "odd@univera.app", Password: "secret123", Role: "registrar",
	})
	assert.True(t, apperr.IsAppError(err))
}

/*
TestService_VerifyGarbageToken verifies tampered tokens are rejected as
unauthorized, the portal's hard-failure trigger.
*/
func TestService_VerifyGarbageToken(t *testing.T) {
	ctx := context.Background()
	service, _ := newServiceFixture(t)

	_, err := service.VerifyToken(ctx, "not-a-jwt")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}
