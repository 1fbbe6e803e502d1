// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

// Role is the portal-facing role vocabulary.
//
// # Invariant
//
// Every user stored in [State] carries one of these values. The backend's
// synonym for department heads never leaks past [MapRole].
type Role string

const (
	RoleStudent Role = "student" // Enrolled student dashboards.
	RoleFaculty Role = "faculty" // Teaching staff dashboards.
	RoleAdmin   Role = "admin"   // University administration dashboards.
	RoleHead    Role = "head"    // Department head dashboards.
	RoleGuest   Role = "guest"   // Minimal fallback navigation.
)

// backendRoleHead is the one known case where the backend and portal role
// vocabularies differ. The backend says "department_head"; the portal says
// "head". There is deliberately no table here: this is a single alias pair,
// not a general translation layer.
const backendRoleHead = "department_head"

// MapRole translates a backend role string into the portal vocabulary.
//
// # Contract
//
// Total and pure: it never rejects. The department-head synonym maps to
// [RoleHead]; every other input passes through unchanged as a [Role].
// Unrecognized strings are passed through rather than rejected — the route
// gate degrades them to the minimal navigation set, which is the safer
// failure mode for a display-only concern.
func MapRole(backendRole string) Role {
	if backendRole == backendRoleHead {
		return RoleHead
	}
	return Role(backendRole)
}

// BackendRole is the symmetric inverse of [MapRole], used when submitting
// registration data to the backend.
func BackendRole(role Role) string {
	if role == RoleHead {
		return backendRoleHead
	}
	return string(role)
}

// PrimaryRoles are the four roles offered on the login role-selection screen.
// Guest is not selectable; it only exists as a navigation fallback.
func PrimaryRoles() []Role {
	return []Role{RoleStudent, RoleFaculty, RoleAdmin, RoleHead}
}
