// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package authflow drives the portal's login and first-time-setup flow.

# State Machine

	role-unselected → credentials (login | register)
	                → first-time-setup
	                → authenticated

Picking a role is a pure transition; every other forward edge is driven by
a backend call. GoBack returns to role-unselected from any sub-state and
wipes everything entered so far.

# Failure Semantics

Nothing in this package propagates a failure to the caller as a fatal
condition. Client-side validation failures and backend rejections become
transient notices on the flow; transport failures become a generic "try
again" notice. The flow stays where it was unless a transition explicitly
says otherwise.
*/
package authflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/univera/portal/internal/authclient"
	"github.com/univera/portal/internal/platform/apperr"
	"github.com/univera/portal/internal/platform/validate"
	"github.com/univera/portal/internal/session"
)

// Step identifies where the operator is in the flow.
type Step string

const (
	StepRoleUnselected Step = "role-unselected"
	StepCredentials    Step = "credentials"
	StepFirstTimeSetup Step = "first-time-setup"
	StepAuthenticated  Step = "authenticated"
)

// Mode is the credentials-entry sub-state.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// genericTransportMessage is shown when the backend never answered and
// there is no server message to relay.
const genericTransportMessage = "Could not reach the university server. Please try again later."

// Backend is the slice of authclient the flow depends on.
type Backend interface {
	CheckUser(ctx context.Context, email string) (*authclient.CheckUserResult, error)
	Login(ctx context.Context, credentials authclient.Credentials) (*authclient.LoginResult, error)
	Register(ctx context.Context, input authclient.RegisterInput) error
	SetupPassword(ctx context.Context, email string, password string) (*authclient.LoginResult, error)
}

// Flow is the login/first-time-setup state machine.
//
// # Concurrency
//
// All transitions take the internal mutex; the flow is safe to drive from
// concurrent HTTP handlers, though in practice one operator clicks through
// it sequentially.
type Flow struct {
	mu      sync.Mutex
	state   *session.State
	backend Backend
	log     *slog.Logger
	now     func() time.Time

	step    Step
	mode    Mode
	role    session.Role
	email   string
	notices []session.Notice
}

// Option customizes a Flow.
type Option func(*Flow)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(flow *Flow) { flow.log = log }
}

// WithNow overrides the notice timestamp source.
func WithNow(now func() time.Time) Option {
	return func(flow *Flow) { flow.now = now }
}

// New creates a Flow at role-unselected.
func New(state *session.State, backend Backend, opts ...Option) *Flow {
	flow := &Flow{
		state:   state,
		backend: backend,
		log:     slog.Default(),
		now:     time.Now,
		step:    StepRoleUnselected,
		mode:    ModeLogin,
	}
	for _, opt := range opts {
		opt(flow)
	}
	return flow
}

// View is a read-only snapshot for rendering the login screen.
type View struct {
	Step    Step             `json:"step"`
	Mode    Mode             `json:"mode"`
	Role    session.Role     `json:"role,omitempty"`
	Email   string           `json:"email,omitempty"`
	Notices []session.Notice `json:"notices,omitempty"`
}

// View returns the current snapshot and drains pending notices.
func (flow *Flow) View() View {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	view := View{
		Step:    flow.step,
		Mode:    flow.mode,
		Role:    flow.role,
		Email:   flow.email,
		Notices: flow.notices,
	}
	flow.notices = nil
	return view
}

// # Transitions

// SelectRole moves from role-unselected to credentials entry. Pure; no
// network call. Selecting while already past role selection is a no-op so
// a double-click cannot wipe entered credentials.
func (flow *Flow) SelectRole(role session.Role) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.step != StepRoleUnselected {
		return
	}
	flow.role = role
	flow.step = StepCredentials
	flow.mode = ModeLogin
}

// SwitchMode toggles between the login and register sub-states. The email
// is kept; a typo in the mode choice should not cost the operator their
// typing.
func (flow *Flow) SwitchMode(mode Mode) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.step != StepCredentials {
		return
	}
	if mode == ModeLogin || mode == ModeRegister {
		flow.mode = mode
	}
}

// GoBack returns to role-unselected from any sub-state, clearing the role,
// the email, and the first-time-setup entry.
func (flow *Flow) GoBack() {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.step = StepRoleUnselected
	flow.mode = ModeLogin
	flow.role = ""
	flow.email = ""
}

/*
CheckUser asks the backend about an email before the password is typed.

Description: The alternate entry into first-time setup. When the account
exists but has never set a password, the flow moves to first-time-setup
with the email pre-filled. An account that already has a password stays in
credentials entry; an unknown account gets a notice suggesting
registration.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: Only validation errors; backend failures become notices.
*/
func (flow *Flow) CheckUser(ctx context.Context, email string) error {
	var validator validate.Validator
	if err := validator.Required("email", email).Email("email", email).Err(); err != nil {
		flow.notify(session.NoticeError, apperr.As(err).Message)
		return err
	}

	result, err := flow.backend.CheckUser(ctx, email)
	if err != nil {
		flow.noticeFromError(err)
		return nil
	}

	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.email = email
	switch {
	case result.Exists && result.NeedsSetup:
		flow.step = StepFirstTimeSetup
	case result.Exists:
		// Regular account; stay on the login form.
	default:
		flow.appendNoticeLocked(session.NoticeInfo, "No account found for this email. You can register below.")
	}
	return nil
}

/*
Login submits credentials.

Description: On success the token and user land in the session state and
the flow reaches authenticated. On a backend rejection the server's message
becomes a notice and the flow stays in credentials entry.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - error: Validation errors or session-storage failures; rejections and
    transport failures are absorbed into notices.
*/
func (flow *Flow) Login(ctx context.Context, email string, password string) error {
	var validator validate.Validator
	if err := validator.
		Required("email", email).
		Email("email", email).
		Required("password", password).
		Err(); err != nil {
		flow.notify(session.NoticeError, apperr.As(err).Message)
		return err
	}

	result, err := flow.backend.Login(ctx, authclient.Credentials{Email: email, Password: password})
	if err != nil {
		flow.rememberEmail(email)
		flow.noticeFromError(err)
		return nil
	}

	return flow.authenticate(ctx, result)
}

/*
Register submits a self-service registration.

Description: Password length and confirmation equality are checked before
any network call. Success does not authenticate: the flow switches back to
the login sub-state with the email retained, and the operator must log in
explicitly.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - error: Validation errors; backend outcomes become notices.
*/
func (flow *Flow) Register(ctx context.Context, input RegisterInput) error {
	var validator validate.Validator
	if err := validator.
		Required("first_name", input.FirstName).
		Required("last_name", input.LastName).
		Required("email", input.Email).
		Email("email", input.Email).
		Password("password", input.Password).
		Matches("confirm_password", input.Password, input.ConfirmPassword).
		Err(); err != nil {
		flow.notify(session.NoticeError, firstDetail(err))
		return err
	}

	flow.mu.Lock()
	role := flow.role
	flow.mu.Unlock()

	err := flow.backend.Register(ctx, authclient.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
		Role:      role,
	})
	if err != nil {
		flow.rememberEmail(input.Email)
		flow.noticeFromError(err)
		return nil
	}

	flow.mu.Lock()
	defer flow.mu.Unlock()

	// Back to the login form with the email kept and the password gone.
	flow.mode = ModeLogin
	flow.email = input.Email
	flow.appendNoticeLocked(session.NoticeSuccess, "Registration successful. Please log in.")
	return nil
}

// RegisterInput is the registration form submission.
type RegisterInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

/*
SetupPassword completes first-time setup for a provisioned account.

Description: The email was fixed by CheckUser and cannot be changed here.
Mismatched or short passwords fail before any network call. Success has the
same effect as a login success.

Parameters:
  - ctx: context.Context
  - password: string
  - confirm: string

Returns:
  - error: Validation errors or session-storage failures.
*/
func (flow *Flow) SetupPassword(ctx context.Context, password string, confirm string) error {
	flow.mu.Lock()
	if flow.step != StepFirstTimeSetup {
		flow.mu.Unlock()
		return apperr.Unprocessable("No first-time setup in progress")
	}
	email := flow.email
	flow.mu.Unlock()

	var validator validate.Validator
	if err := validator.
		Password("password", password).
		Matches("confirm_password", password, confirm).
		Err(); err != nil {
		flow.notify(session.NoticeError, firstDetail(err))
		return err
	}

	result, err := flow.backend.SetupPassword(ctx, email, password)
	if err != nil {
		flow.noticeFromError(err)
		return nil
	}

	return flow.authenticate(ctx, result)
}

// authenticate stores the token and user and completes the flow.
func (flow *Flow) authenticate(ctx context.Context, result *authclient.LoginResult) error {
	if err := flow.state.SetToken(ctx, result.Token); err != nil {
		return err
	}
	if err := flow.state.SetUser(ctx, result.User); err != nil {
		return err
	}

	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.step = StepAuthenticated
	flow.email = ""
	return nil
}

// Reset returns the flow to role-unselected after a logout.
func (flow *Flow) Reset() {
	flow.GoBack()
}

// # Notices

// notify appends a notice under the lock.
func (flow *Flow) notify(level session.NoticeLevel, message string) {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	flow.appendNoticeLocked(level, message)
}

// appendNoticeLocked appends a notice. Caller must hold the mutex.
func (flow *Flow) appendNoticeLocked(level session.NoticeLevel, message string) {
	flow.notices = append(flow.notices, session.Notice{
		Level:   level,
		Message: message,
		At:      flow.now(),
	})
}

// noticeFromError converts a backend failure into a user-facing notice:
// the server's own message for rejections, a generic line for transport
// failures.
func (flow *Flow) noticeFromError(err error) {
	if appError := apperr.As(err); appError != nil {
		flow.notify(session.NoticeError, appError.Message)
		return
	}
	flow.log.Warn("auth_flow_transport_failure", slog.Any("error", err))
	flow.notify(session.NoticeError, genericTransportMessage)
}

// rememberEmail keeps the typed email across a failed submission.
func (flow *Flow) rememberEmail(email string) {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	flow.email = email
}

// firstDetail extracts the most specific message from a validation error.
func firstDetail(err error) string {
	appError := apperr.As(err)
	if appError == nil {
		return "Validation failed"
	}
	if len(appError.Details) > 0 {
		return appError.Details[0].Message
	}
	return appError.Message
}
