// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/univera/portal/internal/session"
)

/*
TestMapRole verifies backend-to-portal role translation.
*/
func TestMapRole(t *testing.T) {
	testCases := []struct {
		name     string
		backend  string
		expected session.Role
	}{
		{name: "student passes through", backend: "student", expected: session.RoleStudent},
		{name: "faculty passes through", backend: "faculty", expected: session.RoleFaculty},
		{name: "admin passes through", backend: "admin", expected: session.RoleAdmin},
		{name: "department_head maps to head", backend: "department_head", expected: session.RoleHead},
		{name: "head passes through", backend: "head", expected: session.RoleHead},
		{name: "unknown passes through unchanged", backend: "registrar", expected: session.Role("registrar")},
		{name: "empty passes through", backend: "", expected: session.Role("")},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, session.MapRole(testCase.backend))
		})
	}
}

/*
TestBackendRole verifies the inverse translation used during registration.
*/
func TestBackendRole(t *testing.T) {
	assert.Equal(t, "department_head", session.BackendRole(session.RoleHead))
	assert.Equal(t, "student", session.BackendRole(session.RoleStudent))
	assert.Equal(t, "admin", session.BackendRole(session.RoleAdmin))
}

/*
TestMapRole_RoundTrip verifies the two mappings invert each other for every
selectable role.
*/
func TestMapRole_RoundTrip(t *testing.T) {
	for _, role := range session.PrimaryRoles() {
		assert.Equal(t, role, session.MapRole(session.BackendRole(role)))
	}
}
