package users

import (
	"time"

	"pet-adoption/internal/ports/auth"
)

// User es una cuenta: adoptante, refugio o admin.
// PasswordHash es bcrypt y nunca sale en una respuesta.
type User struct {
	ID           string
	Name         string
	Email        string // único, en minúsculas
	PasswordHash string
	Role         auth.Role
	Contact      string
	Address      string

	Favorites []string // ids de mascotas, sin duplicados

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Claims() auth.Claims {
	return auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (u User) HasFavorite(petID string) bool {
	for _, id := range u.Favorites {
		if id == petID {
			return true
		}
	}
	return false
}

// Session es lo que devuelven register/login.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
