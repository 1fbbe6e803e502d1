// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

// Package session owns the portal's authenticated-session core: the durable
// token store, the session state, the role mapper, and the token verifier.
//
// # Architecture
//
// One portal process serves one operator, so the session is a process-wide
// value — but never an ambient global. [State] is an explicit, injectable
// object constructed in main and passed to every consumer, which keeps the
// whole core testable without any environment shims.
package session

import "time"

// User represents the authenticated principal as the portal sees it.
//
// # Rules
//   - Role always carries the portal vocabulary (see [MapRole]).
//   - The profile attributes are optional and role-dependent; a faculty
//     record has no GPA, a student record no department chair duties.
//   - Replaced wholesale on every successful verification — never merged.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`

	// Optional profile attributes.
	Department       string  `json:"department,omitempty"`
	StudentID        string  `json:"student_id,omitempty"`
	EnrollmentYear   int     `json:"enrollment_year,omitempty"`
	Major            string  `json:"major,omitempty"`
	GPA              float64 `json:"gpa,omitempty"`
	CreditsCompleted int     `json:"credits_completed,omitempty"`
	AvatarURL        string  `json:"avatar_url,omitempty"`
}

// Normalized returns a copy of the user with the role mapper applied.
//
// Callers receiving users from the backend must normalize before storing;
// [State.SetUser] does this defensively as well.
func (u *User) Normalized() *User {
	if u == nil {
		return nil
	}
	normalized := *u
	normalized.Role = MapRole(string(u.Role))
	return &normalized
}

// Equal reports whether two users are deep-equal.
//
// # Why
//
// The verifier compares the freshly fetched user against the current state
// and only overwrites on a real difference, so a poll that returns the same
// record causes no persistence write and no downstream refresh.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return *u == *other
}

// Notice is a transient user-facing notification.
//
// Every failure in the login flow surfaces as one of these rather than as a
// propagated error; the portal renders and forgets them.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// NoticeLevel classifies a [Notice] for presentation.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)
