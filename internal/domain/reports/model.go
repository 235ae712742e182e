package reports

import "pet-adoption/internal/domain/pets"

// PetSample es cada una de las (hasta 5) mascotas de muestra por categoría.
type PetSample struct {
	Name   string
	Breed  string
	Status pets.AdoptionStatus
}

// CategoryStat agrupa las mascotas con al menos una solicitud.
// AverageAge es nil si ninguna edad del grupo se pudo interpretar.
type CategoryStat struct {
	Category   pets.Category
	Count      int
	AverageAge *float64
	Pets       []PetSample
}

// MonthCount es un bucket (año, mes) de adopciones aprobadas.
type MonthCount struct {
	Year  int
	Month int // 1..12
	Count int
}

type TimelinePoint struct {
	Year      int
	Month     int
	Count     int
	MonthName string
	DateLabel string // "M/YYYY"
}

type ShelterStat struct {
	ID      string
	Name    string
	Email   string
	Contact string
	Address string

	TotalPets     int
	AvailablePets int
	PendingPets   int
	AdoptedPets   int
}
