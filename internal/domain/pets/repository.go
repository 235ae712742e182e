package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)

	// List devuelve la página pedida y el total de coincidencias.
	List(ctx context.Context, f ListFilter) ([]Pet, int, error)
}

// ShelterLookup resuelve refugios por id (lo implementa el store de usuarios).
// Ids inexistentes simplemente no aparecen en el mapa.
type ShelterLookup interface {
	SheltersByID(ctx context.Context, ids []string) (map[string]Shelter, error)
}
