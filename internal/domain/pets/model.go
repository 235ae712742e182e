package pets

import "time"

// AdoptionStatus es el estado agregado de la mascota; lo deriva el ciclo de
// vida de las solicitudes, nunca una edición del dueño.
// @Enum Available, Pending, Adopted
type AdoptionStatus string

const (
	StatusAvailable AdoptionStatus = "Available"
	StatusPending   AdoptionStatus = "Pending"
	StatusAdopted   AdoptionStatus = "Adopted"
)

// Category define las categorías soportadas.
// @Enum dog, cat, other
type Category string

const (
	CategoryDog   Category = "dog"
	CategoryCat   Category = "cat"
	CategoryOther Category = "other"
)

// @Enum Male, Female
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// @Enum Small, Medium, Large, Extra Large
type Size string

const (
	SizeSmall      Size = "Small"
	SizeMedium     Size = "Medium"
	SizeLarge      Size = "Large"
	SizeExtraLarge Size = "Extra Large"
)

// Pet es una mascota publicada por un refugio.
type Pet struct {
	ID string

	Name        string
	Breed       string
	Age         string // texto libre: "3 years", "8 months"
	Gender      Gender
	Category    Category
	Size        Size // opcional
	Description string
	Image       string

	AdoptionStatus AdoptionStatus
	ShelterID      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shelter es el resumen público del refugio que se embebe en los listados.
type Shelter struct {
	ID      string
	Name    string
	Email   string
	Contact string
}

// Listing es una mascota con su refugio resuelto (nil si el usuario ya no existe).
type Listing struct {
	Pet
	Shelter *Shelter
}

// SortField son los campos por los que se puede ordenar un listado.
type SortField string

const (
	SortCreatedAt      SortField = "createdAt"
	SortName           SortField = "name"
	SortBreed          SortField = "breed"
	SortAge            SortField = "age"
	SortCategory       SortField = "category"
	SortAdoptionStatus SortField = "adoptionStatus"
)

// ParseSortField valida contra la whitelist; ok=false si no es conocido.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortCreatedAt, SortName, SortBreed, SortAge, SortCategory, SortAdoptionStatus:
		return f, true
	default:
		return "", false
	}
}

// ListFilter filtra y pagina mascotas. Campos vacíos = sin filtro.
// Search hace match sobre name/breed/description/category.
type ListFilter struct {
	Search    string
	Category  Category
	Gender    Gender
	Size      Size
	Status    AdoptionStatus
	ShelterID string

	SortBy SortField // default createdAt
	Asc    bool      // default desc

	Page  int
	Limit int
}

// Offset asume Page/Limit ya normalizados (>= 1).
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
