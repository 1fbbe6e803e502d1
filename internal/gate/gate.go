// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package gate decides, per navigation, whether protected content may render
and which navigation menu the current user sees.

# Contract

The decision is a pure derivation from (user, pathname). The gate holds no
state of its own; it is re-evaluated on every request. Overlay state (mobile
menu, notification panel, profile menu) lives in [ViewState] and resets on
every route change so stale overlays never survive a navigation.
*/
package gate

import (
	"sync"

	"github.com/univera/portal/internal/platform/constants"
	"github.com/univera/portal/internal/session"
)

// MenuItem is one entry in a role's navigation menu.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

// Decision is the outcome of gating one navigation.
type Decision struct {
	// Allowed reports whether the requested content may render.
	Allowed bool `json:"allowed"`
	// RedirectTo is the target when Allowed is false.
	RedirectTo string `json:"redirect_to,omitempty"`
	// Menu is the role-keyed navigation set when Allowed is true.
	Menu []MenuItem `json:"menu,omitempty"`
	// Role is the role the menu was selected for.
	Role session.Role `json:"role,omitempty"`
}

// Decide gates one navigation.
//
// A nil user redirects to the login path unconditionally, whatever the
// pathname. A non-nil user always renders, with the menu variant keyed by
// role; unknown roles get the minimal guest set rather than an error.
func Decide(user *session.User, pathname string) Decision {
	_ = pathname // every protected path is gated identically

	if user == nil {
		return Decision{Allowed: false, RedirectTo: constants.LoginPath}
	}

	return Decision{
		Allowed: true,
		Role:    user.Role,
		Menu:    MenuFor(user.Role),
	}
}

// MenuFor returns the navigation variant for a role.
//
// Five variants exist: one per primary role plus the guest fallback that
// also covers any role string the portal does not recognize.
func MenuFor(role session.Role) []MenuItem {
	switch role {
	case session.RoleStudent:
		return []MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
			{Label: "My Courses", Path: "/dashboard/courses", Icon: "book"},
			{Label: "Grades", Path: "/dashboard/grades", Icon: "chart"},
			{Label: "Attendance", Path: "/dashboard/attendance", Icon: "calendar-check"},
			{Label: "Schedule", Path: "/dashboard/schedule", Icon: "calendar"},
			{Label: "Announcements", Path: "/dashboard/announcements", Icon: "bell"},
		}
	case session.RoleFaculty:
		return []MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
			{Label: "My Classes", Path: "/dashboard/classes", Icon: "book"},
			{Label: "Gradebook", Path: "/dashboard/gradebook", Icon: "clipboard"},
			{Label: "Attendance", Path: "/dashboard/attendance", Icon: "calendar-check"},
			{Label: "Announcements", Path: "/dashboard/announcements", Icon: "bell"},
		}
	case session.RoleAdmin:
		return []MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
			{Label: "Students", Path: "/dashboard/students", Icon: "users"},
			{Label: "Faculty", Path: "/dashboard/faculty", Icon: "briefcase"},
			{Label: "Departments", Path: "/dashboard/departments", Icon: "building"},
			{Label: "Courses", Path: "/dashboard/courses", Icon: "book"},
			{Label: "Reports", Path: "/dashboard/reports", Icon: "chart"},
			{Label: "Announcements", Path: "/dashboard/announcements", Icon: "bell"},
		}
	case session.RoleHead:
		return []MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
			{Label: "Department Faculty", Path: "/dashboard/faculty", Icon: "users"},
			{Label: "Courses", Path: "/dashboard/courses", Icon: "book"},
			{Label: "Approvals", Path: "/dashboard/approvals", Icon: "check-square"},
			{Label: "Reports", Path: "/dashboard/reports", Icon: "chart"},
			{Label: "Announcements", Path: "/dashboard/announcements", Icon: "bell"},
		}
	default:
		// Guest and anything unrecognized.
		return []MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
		}
	}
}

// ViewState tracks the transient overlay toggles around the gated content.
type ViewState struct {
	mu sync.Mutex

	path              string
	mobileMenuOpen    bool
	notificationsOpen bool
	profileMenuOpen   bool
}

// Overlays is a read-only snapshot of the overlay toggles.
type Overlays struct {
	MobileMenuOpen    bool `json:"mobile_menu_open"`
	NotificationsOpen bool `json:"notifications_open"`
	ProfileMenuOpen   bool `json:"profile_menu_open"`
}

// Navigate records a route change. Whenever the path actually changes, all
// overlays close.
func (view *ViewState) Navigate(path string) {
	view.mu.Lock()
	defer view.mu.Unlock()

	if path == view.path {
		return
	}
	view.path = path
	view.mobileMenuOpen = false
	view.notificationsOpen = false
	view.profileMenuOpen = false
}

// ToggleMobileMenu flips the mobile menu overlay.
func (view *ViewState) ToggleMobileMenu() {
	view.mu.Lock()
	defer view.mu.Unlock()
	view.mobileMenuOpen = !view.mobileMenuOpen
}

// ToggleNotifications flips the notification panel overlay.
func (view *ViewState) ToggleNotifications() {
	view.mu.Lock()
	defer view.mu.Unlock()
	view.notificationsOpen = !view.notificationsOpen
}

// ToggleProfileMenu flips the profile menu overlay.
func (view *ViewState) ToggleProfileMenu() {
	view.mu.Lock()
	defer view.mu.Unlock()
	view.profileMenuOpen = !view.profileMenuOpen
}

// Overlays returns the current overlay snapshot.
func (view *ViewState) Overlays() Overlays {
	view.mu.Lock()
	defer view.mu.Unlock()
	return Overlays{
		MobileMenuOpen:    view.mobileMenuOpen,
		NotificationsOpen: view.notificationsOpen,
		ProfileMenuOpen:   view.profileMenuOpen,
	}
}

// Path returns the last navigated path.
func (view *ViewState) Path() string {
	view.mu.Lock()
	defer view.mu.Unlock()
	return view.path
}
