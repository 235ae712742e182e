package reports

import (
	"context"

	"pet-adoption/internal/domain/pets"
)

// Store es de solo lectura.
type Store interface {
	// PetsWithApplications: mascotas con al menos una solicitud (cualquier estado).
	PetsWithApplications(ctx context.Context) ([]pets.Pet, error)

	// AdoptionsByMonth cuenta solicitudes aprobadas (Approved o Completed)
	// agrupadas por año/mes de AdoptionDate, en cualquier orden.
	AdoptionsByMonth(ctx context.Context) ([]MonthCount, error)

	// ShelterStats: todo usuario shelter, con conteo de mascotas por estado.
	ShelterStats(ctx context.Context) ([]ShelterStat, error)
}

// PetSearcher es la búsqueda pública de mascotas (la implementa pets.Service).
type PetSearcher interface {
	Search(ctx context.Context, f pets.ListFilter) ([]pets.Listing, int, error)
}
