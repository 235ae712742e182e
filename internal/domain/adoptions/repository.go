package adoptions

import (
	"context"
	"time"

	"pet-adoption/internal/domain/pets"
)

// Tx es la vista del store dentro de una unidad atómica sobre una mascota.
type Tx interface {
	// GetPet devuelve pets.ErrNotFound si no existe.
	GetPet(ctx context.Context, petID string) (pets.Pet, error)
	SetPetStatus(ctx context.Context, petID string, status pets.AdoptionStatus, at time.Time) error

	ListByPet(ctx context.Context, petID string) ([]Application, error)
	Create(ctx context.Context, a Application) error
	Update(ctx context.Context, a Application) error

	// RejectOtherPending rechaza en bloque toda solicitud Pending de petID
	// salvo exceptID, con el review dado. Devuelve cuántas tocó.
	RejectOtherPending(ctx context.Context, petID, exceptID string, review Review, at time.Time) (int, error)
}

type Store interface {
	// Atomically corre fn como una unidad atómica serializada por mascota.
	// Si fn devuelve error no queda nada aplicado.
	Atomically(ctx context.Context, petID string, fn func(ctx context.Context, tx Tx) error) error

	// GetByID devuelve ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (Application, error)
	List(ctx context.Context, f ListFilter) ([]Application, int, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)

	// ListPublishedStories: Completed con historia publicada, adoptionDate desc.
	ListPublishedStories(ctx context.Context, page, limit int) ([]Application, int, error)
}

// PetLookup resuelve mascotas para embeber el resumen.
type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

// Observer recibe cada transición de estado (métricas).
type Observer interface {
	ApplicationTransition(from, to string)
}
