package users

import (
	"context"

	"pet-adoption/internal/domain/pets"
)

type Repository interface {
	// Create devuelve ErrEmailTaken si el email ya existe.
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// Add/RemoveFavorite son idempotentes.
	AddFavorite(ctx context.Context, userID, petID string) error
	RemoveFavorite(ctx context.Context, userID, petID string) error
}

// PetLookup es lo único que users necesita de pets.
type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}
