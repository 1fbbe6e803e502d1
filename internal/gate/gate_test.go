// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/univera/portal/internal/gate"
	"github.com/univera/portal/internal/session"
)

/*
TestDecide_NilUserRedirectsEverywhere verifies the unconditional login
redirect for every pathname.
*/
func TestDecide_NilUserRedirectsEverywhere(t *testing.T) {
	pathnames := []string{
		"/dashboard",
		"/dashboard/grades",
		"/dashboard/students",
		"/",
		"/anything/at/all",
		"",
	}

	for _, pathname := range pathnames {
		decision := gate.Decide(nil, pathname)
		assert.False(t, decision.Allowed, "pathname %q must not render", pathname)
		assert.Equal(t, "/login", decision.RedirectTo)
		assert.Empty(t, decision.Menu)
	}
}

/*
TestDecide_MenuVariants verifies each role gets its own navigation set and
that unknown roles degrade to the guest set.
*/
func TestDecide_MenuVariants(t *testing.T) {
	testCases := []struct {
		role       session.Role
		firstExtra string
		size       int
	}{
		{role: session.RoleStudent, firstExtra: "My Courses", size: 6},
		{role: session.RoleFaculty, firstExtra: "My Classes", size: 5},
		{role: session.RoleAdmin, firstExtra: "Students", size: 7},
		{role: session.RoleHead, firstExtra: "Department Faculty", size: 6},
		{role: session.RoleGuest, firstExtra: "", size: 1},
		{role: session.Role("registrar"), firstExtra: "", size: 1},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.role), func(t *testing.T) {
			user := &session.User{ID: "u-1", Role: testCase.role}
			decision := gate.Decide(user, "/dashboard")

			assert.True(t, decision.Allowed)
			assert.Len(t, decision.Menu, testCase.size)
			assert.Equal(t, "Dashboard", decision.Menu[0].Label, "every variant starts at the dashboard")
			if testCase.firstExtra != "" {
				assert.Equal(t, testCase.firstExtra, decision.Menu[1].Label)
			}
		})
	}
}

/*
TestDecide_DepartmentHeadScenario verifies the end-to-end role mapping
scenario: a backend department_head lands on the head menu.
*/
func TestDecide_DepartmentHeadScenario(t *testing.T) {
	backendRecord := &session.User{ID: "u-1", Role: session.Role("department_head")}
	mapped := backendRecord.Normalized()

	assert.Equal(t, session.RoleHead, mapped.Role)

	decision := gate.Decide(mapped, "/dashboard")
	assert.True(t, decision.Allowed)
	assert.Equal(t, "Department Faculty", decision.Menu[1].Label)
}

/*
TestViewState_OverlaysResetOnNavigation verifies stale overlays never
survive a route change.
*/
func TestViewState_OverlaysResetOnNavigation(t *testing.T) {
	var view gate.ViewState
	view.Navigate("/dashboard")

	view.ToggleMobileMenu()
	view.ToggleNotifications()
	view.ToggleProfileMenu()
	overlays := view.Overlays()
	assert.True(t, overlays.MobileMenuOpen)
	assert.True(t, overlays.NotificationsOpen)
	assert.True(t, overlays.ProfileMenuOpen)

	// 1. Same path: overlays untouched
	view.Navigate("/dashboard")
	assert.True(t, view.Overlays().MobileMenuOpen)

	// 2. New path: everything closes
	view.Navigate("/dashboard/grades")
	overlays = view.Overlays()
	assert.False(t, overlays.MobileMenuOpen)
	assert.False(t, overlays.NotificationsOpen)
	assert.False(t, overlays.ProfileMenuOpen)
}
