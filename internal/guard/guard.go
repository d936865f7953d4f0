// Package guard decides whether a terminal may navigate to a page route.
// The decision itself is a pure function over the route's metadata and the
// current session; Guard wraps it with the session store so the session is
// verified once before the first decision.
package guard

import (
	"context"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/store"
)

// Route describes one navigable page. Roles is the allow-list applied after
// authentication; an empty list means any authenticated user (or anyone, if
// RequiresAuth is false). GuestOnly pages bounce signed-in users to their
// home route.
type Route struct {
	Path         string
	RequiresAuth bool
	Roles        []model.Role
	GuestOnly    bool
}

// Routes is the application's navigable surface.
var Routes = []Route{
	{Path: "/menu"},
	{Path: "/login", GuestOnly: true},
	{Path: "/staff", RequiresAuth: true, Roles: []model.Role{model.RoleStaff, model.RoleManager, model.RoleAdmin}},
	{Path: "/kitchen", RequiresAuth: true, Roles: []model.Role{model.RoleKitchen, model.RoleAdmin}},
	{Path: "/manager", RequiresAuth: true, Roles: []model.Role{model.RoleManager, model.RoleAdmin}},
	{Path: "/admin", RequiresAuth: true, Roles: []model.Role{model.RoleAdmin}},
	{Path: "/admin/menu", RequiresAuth: true, Roles: []model.Role{model.RoleAdmin}},
	{Path: "/admin/users", RequiresAuth: true, Roles: []model.Role{model.RoleAdmin}},
	{Path: "/admin/tables", RequiresAuth: true, Roles: []model.Role{model.RoleAdmin}},
	{Path: "/admin/analytics", RequiresAuth: true, Roles: []model.Role{model.RoleAdmin}},
}

// Find looks a route up by path.
func Find(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Decision is the outcome of evaluating a navigation. When Allow is false,
// RedirectTo carries the path to navigate to instead.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Evaluate applies the guard rules in order: a guest-only route bounces an
// authenticated user to their home route; a route requiring auth bounces an
// unauthenticated user to /login; a role allow-list miss bounces to the
// user's home route; otherwise the navigation proceeds. A nil user compares
// as guest.
func Evaluate(rt Route, user *model.User) Decision {
	role := model.RoleGuest
	if user != nil {
		role = user.Role
	}

	if rt.GuestOnly && user != nil {
		return Decision{RedirectTo: role.HomeRoute()}
	}
	if rt.RequiresAuth && user == nil {
		return Decision{RedirectTo: "/login"}
	}
	if len(rt.Roles) > 0 && !role.In(rt.Roles...) {
		return Decision{RedirectTo: role.HomeRoute()}
	}
	return Decision{Allow: true}
}

// Guard evaluates navigations against the live session.
type Guard struct {
	sessions *store.SessionStore
}

// New builds a guard over the given session store.
func New(sessions *store.SessionStore) *Guard {
	return &Guard{sessions: sessions}
}

// Check evaluates a navigation to path. The session is verified once if it
// has never been checked this process. Unknown paths are allowed through;
// the router's 404 handling owns them.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	g.sessions.EnsureChecked(ctx)
	rt, ok := Find(path)
	if !ok {
		return Decision{Allow: true}
	}
	return Evaluate(rt, g.sessions.Current())
}
