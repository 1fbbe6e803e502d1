// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package directory implements the stub university API's account directory.

It stands in for the real university backend while that system is being
built: provisioned accounts, first-time password setup, login, and token
verification, all speaking the exact wire contract the portal consumes.

# Architecture

  - Service: Orchestrates the auth use cases (CheckUser, Login, Register,
    SetupPassword, VerifyToken).
  - Repository: Abstracted storage, with Postgres and in-memory
    implementations; the memory one is pre-seeded with demo accounts.
  - Security: bcrypt password hashes and HS256-signed access tokens.

# Vocabulary

The directory speaks the backend role vocabulary: department heads are
stored and emitted as "department_head". Translating to the portal's
"head" is the portal's job, not ours.
*/
package directory

import "time"

// Backend role vocabulary.
const (
	RoleStudent        = "student"
	RoleFaculty        = "faculty"
	RoleAdmin          = "admin"
	RoleDepartmentHead = "department_head"
)

// Account is a directory entry.
//
// # Provisioning
//
// Accounts created by administrators arrive without a password hash; such
// an account exists but cannot log in until first-time setup. Self-service
// registration creates the hash immediately.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Profile attributes, role-dependent.
	Department       string  `json:"department,omitempty"`
	StudentID        string  `json:"student_id,omitempty"`
	EnrollmentYear   int     `json:"enrollment_year,omitempty"`
	Major            string  `json:"major,omitempty"`
	GPA              float64 `json:"gpa,omitempty"`
	CreditsCompleted int     `json:"credits_completed,omitempty"`
	AvatarURL        string  `json:"avatar_url,omitempty"`
}

// Name returns the display name.
func (account *Account) Name() string {
	if account.FirstName == "" {
		return account.LastName
	}
	if account.LastName == "" {
		return account.FirstName
	}
	return account.FirstName + " " + account.LastName
}

// NeedsSetup reports whether the account was provisioned without a
// password and must complete first-time setup.
func (account *Account) NeedsSetup() bool {
	return account.PasswordHash == ""
}

// Profile is the user payload the directory puts on the wire. The field
// names are exactly what the portal's session layer decodes.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`

	Department       string  `json:"department,omitempty"`
	StudentID        string  `json:"student_id,omitempty"`
	EnrollmentYear   int     `json:"enrollment_year,omitempty"`
	Major            string  `json:"major,omitempty"`
	GPA              float64 `json:"gpa,omitempty"`
	CreditsCompleted int     `json:"credits_completed,omitempty"`
	AvatarURL        string  `json:"avatar_url,omitempty"`
}

// Profile converts the account to its wire representation.
func (account *Account) Profile() *Profile {
	return &Profile{
		ID:               account.ID,
		Email:            account.Email,
		Name:             account.Name(),
		Role:             account.Role,
		Department:       account.Department,
		StudentID:        account.StudentID,
		EnrollmentYear:   account.EnrollmentYear,
		Major:            account.Major,
		GPA:              account.GPA,
		CreditsCompleted: account.CreditsCompleted,
		AvatarURL:        account.AvatarURL,
	}
}
