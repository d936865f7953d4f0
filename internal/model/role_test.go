package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"staff", RoleStaff},
		{"kitchen", RoleKitchen},
		{"manager", RoleManager},
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"  Manager ", RoleManager},
		{"", RoleGuest},
		{"owner", RoleGuest},
		{"superuser", RoleGuest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRole(tt.in), "ParseRole(%q)", tt.in)
	}
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleManager.In(RoleManager, RoleAdmin))
	assert.False(t, RoleStaff.In(RoleManager, RoleAdmin))
	assert.False(t, RoleGuest.In())
}

func TestRoleHomeRoute(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.HomeRoute())
	assert.Equal(t, "/manager", RoleManager.HomeRoute())
	assert.Equal(t, "/kitchen", RoleKitchen.HomeRoute())
	assert.Equal(t, "/staff", RoleStaff.HomeRoute())
	assert.Equal(t, "/menu", RoleGuest.HomeRoute())
	assert.Equal(t, "/menu", Role("bogus").HomeRoute())
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, ItemCooking.Valid())
	assert.False(t, OrderItemStatus("fried").Valid())
	assert.True(t, TableReserved.Valid())
	assert.False(t, TableStatus("broken").Valid())
	assert.True(t, ReservationConfirmed.Valid())
	assert.False(t, ReservationStatus("maybe").Valid())
}
