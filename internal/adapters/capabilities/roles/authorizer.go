package roles

import (
	"strings"

	"pet-adoption/internal/ports/auth"
)

// Authorizer implementa capabilities.Authorizer por rol.
// admin pasa siempre; allowAll (ALLOW_ALL_CAPABILITIES=true) deja pasar a
// cualquier usuario autenticado, solo para dev.
type Authorizer struct {
	allowAll bool
}

func NewAuthorizer(allowAll bool) *Authorizer {
	return &Authorizer{allowAll: allowAll}
}

func (a *Authorizer) Authorize(caller auth.Claims, roles ...auth.Role) bool {
	if strings.TrimSpace(caller.UserID) == "" {
		return false
	}
	if a != nil && a.allowAll {
		return true
	}
	if len(roles) == 0 || caller.Role == auth.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if caller.Role == r {
			return true
		}
	}
	return false
}
