// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package authclient is the portal's HTTP client for the university backend's
authentication API.

# Failure Taxonomy

The client is the single place where the portal's hard/soft failure split is
established:

  - The backend answered with a rejection (4xx/5xx or success=false): the
    call returns an *apperr.AppError carrying the server's own message.
  - The backend never answered (timeout, refused connection, DNS): the call
    returns a plain wrapped error.

Callers branch with apperr.IsAppError and must not inspect anything else.
*/
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/constants"
	"github.com/univera/portal/internal/session"
)

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 1 << 20

// Client talks to the backend authentication endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Tests use this to
// point at an httptest server with a short timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(client *Client) { client.log = log }
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CheckUserResult describes what the backend knows about an email address.
type CheckUserResult struct {
	// Exists reports whether a directory account carries this email.
	Exists bool `json:"exists"`
	// NeedsSetup reports whether the account has no password yet and must
	// go through first-time setup before it can log in.
	NeedsSetup bool `json:"needs_setup"`
	// Name is the provisioned display name, when the backend shares it.
	Name string `json:"name,omitempty"`
}

// Credentials is an email/password pair for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is a self-service registration submission.
//
// Role is the portal vocabulary; the client translates to the backend's
// vocabulary on the wire.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      session.Role
}

// LoginResult is a successful authentication: a bearer token plus the user
// record the backend attached to it.
//
// The user's role is the raw backend vocabulary; session.State applies the
// role mapper when the record is stored.
type LoginResult struct {
	Token string
	User  *session.User
}

// # Wire Shapes

type checkUserResponse struct {
	Success     bool         `json:"success"`
	Exists      bool         `json:"exists"`
	NeedsSetup  bool         `json:"needs_setup"`
	UserDetails *userDetails `json:"user_details,omitempty"`
	Message     string       `json:"message,omitempty"`
}

type userDetails struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type authResponse struct {
	Success     bool          `json:"success"`
	AccessToken string        `json:"access_token,omitempty"`
	User        *session.User `json:"user,omitempty"`
	Message     string        `json:"message,omitempty"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type rejectionBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// # Operations

// CheckUser asks the backend whether an account exists for email and
// whether it still needs first-time password setup.
func (client *Client) CheckUser(ctx context.Context, email string) (*CheckUserResult, error) {
	var response checkUserResponse
	if err := client.postJSON(ctx, "/api/auth/check-user", map[string]string{"email": email}, &response); err != nil {
		return nil, err
	}

	result := &CheckUserResult{Exists: response.Exists, NeedsSetup: response.NeedsSetup}
	if response.UserDetails != nil {
		result.Name = response.UserDetails.Name
	}
	return result, nil
}

// SetupPassword sets the first password on a provisioned account. A
// successful setup authenticates immediately, exactly like a login.
func (client *Client) SetupPassword(ctx context.Context, email string, password string) (*LoginResult, error) {
	var response authResponse
	if err := client.postJSON(ctx, "/api/auth/setup-password", Credentials{Email: email, Password: password}, &response); err != nil {
		return nil, err
	}
	if response.AccessToken == "" || response.User == nil {
		return nil, fmt.Errorf("authclient: setup response missing token or user")
	}
	return &LoginResult{Token: response.AccessToken, User: response.User}, nil
}

// Login exchanges credentials for a bearer token and the user record.
func (client *Client) Login(ctx context.Context, credentials Credentials) (*LoginResult, error) {
	var response authResponse
	if err := client.postJSON(ctx, "/api/auth/login", credentials, &response); err != nil {
		return nil, err
	}
	if response.AccessToken == "" || response.User == nil {
		return nil, fmt.Errorf("authclient: login response missing token or user")
	}
	return &LoginResult{Token: response.AccessToken, User: response.User}, nil
}

// Register submits a self-service registration. It does not log the user
// in; the portal returns to the login form afterwards.
func (client *Client) Register(ctx context.Context, input RegisterInput) error {
	request := registerRequest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
		Role:      session.BackendRole(input.Role),
	}
	var response authResponse
	return client.postJSON(ctx, "/api/auth/register", request, &response)
}

/*
VerifyToken resolves a bearer token to its user record.

Description: Implements session.VerifyClient. The returned user carries the
raw backend role vocabulary.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *session.User: The confirmed user record
  - error: *apperr.AppError on rejection, a plain error on transport failure
*/
func (client *Client) VerifyToken(ctx context.Context, token string) (*session.User, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/auth/verify-token", nil)
	if err != nil {
		return nil, fmt.Errorf("authclient: failed to build request: %w", err)
	}
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)

	var response authResponse
	if err := client.do(request, &response); err != nil {
		return nil, err
	}
	if response.User == nil {
		return nil, fmt.Errorf("authclient: verify response missing user")
	}
	return response.User, nil
}

// # Transport

// postJSON sends a JSON POST and decodes the response into out.
func (client *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("authclient: failed to serialize request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("authclient: failed to build request: %w", err)
	}
	request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	return client.do(request, out)
}

// do executes the request and applies the failure taxonomy.
func (client *Client) do(request *http.Request, out any) error {

	// ── 1. Hit the wire ──
	// Errors here are the soft-failure branch: no server ever answered.
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", request.Method, request.URL.Path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("authclient: failed to read response: %w", err)
	}

	// ── 2. Non-2xx means the server answered with a rejection ──
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return client.rejection(response.StatusCode, raw)
	}

	// ── 3. Decode the success body ──
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("authclient: failed to parse response: %w", err)
	}

	// A well-formed 200 with success=false is still a rejection; some
	// backend endpoints report failures this way.
	if envelope, ok := out.(interface{ succeeded() bool }); ok && !envelope.succeeded() {
		return client.rejection(response.StatusCode, raw)
	}

	return nil
}

func (r *checkUserResponse) succeeded() bool { return r.Success }
func (r *authResponse) succeeded() bool      { return r.Success }

// rejection converts a server rejection body into an *apperr.AppError,
// preserving the server's own message when it sent one.
func (client *Client) rejection(status int, raw []byte) error {
	var body rejectionBody
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	code := body.Code
	if code == "" {
		code = "REJECTED"
	}

	if status < 400 {
		// success=false on a 2xx; report it as a generic bad request.
		status = http.StatusBadRequest
	}

	client.log.Debug("backend_rejection",
		slog.Int("status", status),
		slog.String("code", code),
	)

	return &apperr.AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}
