// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package directory

import (
	"context"
	"fmt"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/constants"
	"github.com/univera/portal/internal/platform/sec"
	"github.com/univera/portal/pkg/uuidv7"
)

// Service implements the directory auth use cases.
type Service struct {
	accounts AccountRepository
	tokens   *sec.TokenService
}

// NewService constructs a new [Service].
func NewService(accounts AccountRepository, tokens *sec.TokenService) *Service {
	return &Service{accounts: accounts, tokens: tokens}
}

// # Account Probing

// CheckUserResult describes an email's standing in the directory.
type CheckUserResult struct {
	Exists     bool
	NeedsSetup bool
	Name       string
}

/*
CheckUser reports whether an account exists for email and whether it must
complete first-time setup.

Description: An unknown email is a normal answer here, not an error; the
portal uses it to suggest registration.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *CheckUserResult: Directory standing
  - error: Storage errors only
*/
func (service *Service) CheckUser(ctx context.Context, email string) (*CheckUserResult, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsAppError(err) {
			return &CheckUserResult{}, nil
		}
		return nil, fmt.Errorf("directory_check_user_failed: %w", err)
	}

	return &CheckUserResult{
		Exists:     true,
		NeedsSetup: account.NeedsSetup(),
		Name:       account.Name(),
	}, nil
}

// # Authentication

// Session is a successfully authenticated directory session.
type Session struct {
	AccessToken string
	Account     *Account
}

/*
Login validates credentials and issues an access token.

Description: An account still awaiting first-time setup cannot log in; the
message points the operator at the setup flow instead of a generic
credential failure.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Token plus the account it belongs to
  - error: apperr.Unauthorized or storage errors
*/
func (service *Service) Login(ctx context.Context, email string, password string) (*Session, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		// Generic message to prevent account enumeration.
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("directory_login_lookup_failed: %w", err)
	}

	if account.NeedsSetup() {
		return nil, apperr.Unauthorized("This account has not set a password yet. Use first-time setup.")
	}

	// Constant-time comparison inside bcrypt.
	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return service.issueSession(account)
}

// # Registration

// RegisterInput holds a self-service registration submission.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

/*
Register creates a new self-service account.

Description: The password hash is set immediately, so a registered account
never passes through first-time setup. Registration does not issue a
token; the caller must log in afterwards.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity
  - error: apperr.Conflict on a duplicate email, validation or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	if !validRole(input.Role) {
		return nil, apperr.ValidationError("Unknown role")
	}

	if _, err := service.accounts.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("directory_register_hash_failed: %w", err)
	}

	account := &Account{
		ID:           uuidv7.New(),
		Email:        normalizeEmail(input.Email),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		Role:         input.Role,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("directory_register_failed: %w", err)
	}

	return account, nil
}

// # First-Time Setup

/*
SetupPassword sets the first password on a provisioned account and logs it
in.

Description: Only accounts without a password may pass through here; an
account that already set one must use the regular login, so a stolen email
cannot be used to silently replace a password.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Token plus the account, exactly like a login success
  - error: apperr variants or storage errors
*/
func (service *Service) SetupPassword(ctx context.Context, email string, password string) (*Session, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("directory_setup_lookup_failed: %w", err)
	}

	if !account.NeedsSetup() {
		return nil, apperr.Conflict("This account already has a password")
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("directory_setup_hash_failed: %w", err)
	}

	if err := service.accounts.SetPassword(ctx, account.ID, hash); err != nil {
		return nil, fmt.Errorf("directory_setup_store_failed: %w", err)
	}
	account.PasswordHash = hash

	return service.issueSession(account)
}

// # Token Verification

/*
VerifyToken resolves an access token to its account.

Description: The signature check catches tampering and expiry; the
directory lookup afterwards catches accounts deleted since the token was
minted.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *Account: The account the token belongs to
  - error: apperr.Unauthorized or storage errors
*/
func (service *Service) VerifyToken(ctx context.Context, token string) (*Account, error) {
	claims, err := service.tokens.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Token is invalid or expired")
	}

	account, err := service.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("directory_verify_lookup_failed: %w", err)
	}

	return account, nil
}

// issueSession mints an access token for the account.
func (service *Service) issueSession(account *Account) (*Session, error) {
	token, err := service.tokens.GenerateAccessToken(account.ID, account.Email, account.Role, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("directory_token_issue_failed: %w", err)
	}
	return &Session{AccessToken: token, Account: account}, nil
}

// validRole reports whether role is part of the backend vocabulary.
func validRole(role string) bool {
	switch role {
	case RoleStudent, RoleFaculty, RoleAdmin, RoleDepartmentHead:
		return true
	}
	return false
}
