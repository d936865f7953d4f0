package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/store"
)

func user(role model.Role) *model.User {
	return &model.User{ID: 1, Email: "u@pos.local", Role: role}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		user     *model.User
		allow    bool
		redirect string
	}{
		{name: "guest can browse menu", path: "/menu", user: nil, allow: true},
		{name: "guest may open login", path: "/login", user: nil, allow: true},
		{name: "signed-in staff bounced off login", path: "/login", user: user(model.RoleStaff), redirect: "/staff"},
		{name: "signed-in admin bounced off login", path: "/login", user: user(model.RoleAdmin), redirect: "/admin"},
		{name: "guest needs login for staff page", path: "/staff", user: nil, redirect: "/login"},
		{name: "guest needs login for admin page", path: "/admin", user: nil, redirect: "/login"},
		{name: "staff allowed on staff page", path: "/staff", user: user(model.RoleStaff), allow: true},
		{name: "manager allowed on staff page", path: "/staff", user: user(model.RoleManager), allow: true},
		{name: "kitchen denied staff page", path: "/staff", user: user(model.RoleKitchen), redirect: "/kitchen"},
		{name: "kitchen allowed on kitchen page", path: "/kitchen", user: user(model.RoleKitchen), allow: true},
		{name: "staff denied kitchen page", path: "/kitchen", user: user(model.RoleStaff), redirect: "/staff"},
		{name: "admin allowed everywhere", path: "/kitchen", user: user(model.RoleAdmin), allow: true},
		{name: "manager allowed on manager page", path: "/manager", user: user(model.RoleManager), allow: true},
		{name: "staff denied manager page", path: "/manager", user: user(model.RoleStaff), redirect: "/staff"},
		{name: "manager denied admin page", path: "/admin", user: user(model.RoleManager), redirect: "/manager"},
		{name: "admin allowed on admin subpages", path: "/admin/analytics", user: user(model.RoleAdmin), allow: true},
		{name: "signed-in user can browse menu", path: "/menu", user: user(model.RoleKitchen), allow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, ok := Find(tt.path)
			require.True(t, ok, "route %s must be declared", tt.path)

			d := Evaluate(rt, tt.user)
			assert.Equal(t, tt.allow, d.Allow)
			assert.Equal(t, tt.redirect, d.RedirectTo)
		})
	}
}

func TestEvaluateUnknownRoleTreatedAsGuest(t *testing.T) {
	rt, ok := Find("/staff")
	require.True(t, ok)

	d := Evaluate(rt, &model.User{ID: 2, Role: model.RoleGuest})
	assert.False(t, d.Allow)
	assert.Equal(t, "/menu", d.RedirectTo, "a role outside the allow-list lands on its home route")
}

type nopClient struct{}

func (nopClient) SignIn(context.Context, string, string) (store.Session, error) {
	return store.Session{}, nil
}
func (nopClient) SignOut(context.Context, string) error { return nil }
func (nopClient) Resume(context.Context, string) (store.Session, error) {
	return store.Session{}, nil
}

func TestGuardCheckUnknownPathAllowed(t *testing.T) {
	g := New(store.NewSessionStore(nopClient{}, nil))

	d := g.Check(context.Background(), "/does-not-exist")
	assert.True(t, d.Allow)
}

func TestGuardCheckSignedOut(t *testing.T) {
	g := New(store.NewSessionStore(nopClient{}, nil))

	d := g.Check(context.Background(), "/staff")
	assert.False(t, d.Allow)
	assert.Equal(t, "/login", d.RedirectTo)
}
