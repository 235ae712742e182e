package roles

import (
	"testing"

	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizer_Authorize(t *testing.T) {
	a := NewAuthorizer(false)

	adopter := auth.Claims{UserID: "u1", Role: auth.RoleAdopter}
	shelter := auth.Claims{UserID: "s1", Role: auth.RoleShelter}
	admin := auth.Claims{UserID: "a1", Role: auth.RoleAdmin}

	cases := []struct {
		name   string
		caller auth.Claims
		roles  []auth.Role
		want   bool
	}{
		{"anonymous", auth.Claims{}, nil, false},
		{"any authenticated", adopter, nil, true},
		{"adopter on shelter route", adopter, []auth.Role{auth.RoleShelter}, false},
		{"shelter on shelter route", shelter, []auth.Role{auth.RoleShelter}, true},
		{"admin always", admin, []auth.Role{auth.RoleShelter}, true},
		{"one of many", shelter, []auth.Role{auth.RoleAdopter, auth.RoleShelter}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Authorize(tc.caller, tc.roles...))
		})
	}
}

func TestAuthorizer_AllowAll(t *testing.T) {
	a := NewAuthorizer(true)

	assert.True(t, a.Authorize(auth.Claims{UserID: "u1", Role: auth.RoleAdopter}, auth.RoleAdmin))
	assert.False(t, a.Authorize(auth.Claims{}, auth.RoleAdmin))
}
