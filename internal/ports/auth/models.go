package auth

import "strings"

// Role define el rol de un usuario en la plataforma.
// @Enum adopter, shelter, admin
type Role string

const (
	RoleAdopter Role = "adopter"
	RoleShelter Role = "shelter"
	RoleAdmin   Role = "admin"
)

// ParseRole normaliza un rol; ok=false si no es uno conocido.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdopter:
		return RoleAdopter, true
	case RoleShelter:
		return RoleShelter, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }
