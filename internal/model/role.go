package model

import "strings"

// Role is the closed set of access levels known to the system. Authorization
// decisions compare Role values, never raw strings, so a typo in a route
// definition fails to parse instead of silently denying everyone.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes s and returns the matching Role. Unknown or empty
// values fall back to RoleGuest, which carries no privileges.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStaff:
		return RoleStaff
	case RoleKitchen:
		return RoleKitchen
	case RoleManager:
		return RoleManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleGuest
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleStaff, RoleKitchen, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is contained in the allow-list.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// HomeRoute maps a role to its default landing path after login.
func (r Role) HomeRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleManager:
		return "/manager"
	case RoleKitchen:
		return "/kitchen"
	case RoleStaff:
		return "/staff"
	default:
		return "/menu"
	}
}
