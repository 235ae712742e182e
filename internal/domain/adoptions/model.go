package adoptions

import (
	"time"

	"pet-adoption/internal/domain/pets"
)

// Status es el estado de una solicitud de adopción.
// @Enum Pending, Approved, Rejected, Completed
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
)

// @Enum House, Apartment, Condo, Other
type ResidenceType string

const (
	ResidenceHouse     ResidenceType = "House"
	ResidenceApartment ResidenceType = "Apartment"
	ResidenceCondo     ResidenceType = "Condo"
	ResidenceOther     ResidenceType = "Other"
)

// Details es el cuestionario que completa el adoptante.
type Details struct {
	ResidenceType     ResidenceType
	HasChildren       bool
	HasOtherPets      bool
	OtherPetDetails   string
	WorkSchedule      string
	ReasonForAdopting string
	AdditionalInfo    string
}

// Review se setea solo cuando cambia el estado (aprobación/rechazo).
type Review struct {
	ReviewedBy  string
	ReviewDate  *time.Time
	ReviewNotes string
}

type SuccessStory struct {
	Title       string
	Description string
	Images      []string
	IsPublished bool
}

// Application es una solicitud de adopción. Nunca se borra.
type Application struct {
	ID          string
	PetID       string
	ApplicantID string
	ShelterID   string // copiado de la mascota al enviar

	Status  Status
	Details Details
	Review  Review

	AdoptionDate *time.Time // se estampa al aprobar
	SuccessStory *SuccessStory

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetSummary es el resumen de mascota que se embebe en las respuestas.
type PetSummary struct {
	ID     string
	Name   string
	Breed  string
	Age    string
	Gender pets.Gender
	Image  string
}

// View es una solicitud con su mascota resuelta (nil si ya no existe).
type View struct {
	Application
	Pet *PetSummary
}

// @Enum createdAt, updatedAt, status
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortStatus    SortField = "status"
)

// ListFilter para el listado de refugio. ShelterID vacío = todos (solo admin).
type ListFilter struct {
	ShelterID string
	Status    Status

	SortBy SortField
	Asc    bool

	Page  int
	Limit int
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
