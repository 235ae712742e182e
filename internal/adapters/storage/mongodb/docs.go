package mongodb

import (
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/ports/auth"
)

type petDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Breed          string    `bson:"breed"`
	Age            string    `bson:"age"`
	Gender         string    `bson:"gender"`
	Category       string    `bson:"category"`
	Size           string    `bson:"size,omitempty"`
	Description    string    `bson:"description"`
	Image          string    `bson:"image"`
	AdoptionStatus string    `bson:"adoption_status"`
	ShelterID      string    `bson:"shelter_id"`
	LockVersion    int64     `bson:"lock_version"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toPetDoc(p pets.Pet) petDoc {
	return petDoc{
		ID:             p.ID,
		Name:           p.Name,
		Breed:          p.Breed,
		Age:            p.Age,
		Gender:         string(p.Gender),
		Category:       string(p.Category),
		Size:           string(p.Size),
		Description:    p.Description,
		Image:          p.Image,
		AdoptionStatus: string(p.AdoptionStatus),
		ShelterID:      p.ShelterID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (d petDoc) toDomain() pets.Pet {
	return pets.Pet{
		ID:             d.ID,
		Name:           d.Name,
		Breed:          d.Breed,
		Age:            d.Age,
		Gender:         pets.Gender(d.Gender),
		Category:       pets.Category(d.Category),
		Size:           pets.Size(d.Size),
		Description:    d.Description,
		Image:          d.Image,
		AdoptionStatus: pets.AdoptionStatus(d.AdoptionStatus),
		ShelterID:      d.ShelterID,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Contact      string    `bson:"contact,omitempty"`
	Address      string    `bson:"address,omitempty"`
	Favorites    []string  `bson:"favorites"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u users.User) userDoc {
	favs := u.Favorites
	if favs == nil {
		favs = []string{}
	}
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Contact:      u.Contact,
		Address:      u.Address,
		Favorites:    favs,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() users.User {
	favs := d.Favorites
	if favs == nil {
		favs = []string{}
	}
	return users.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         auth.Role(d.Role),
		Contact:      d.Contact,
		Address:      d.Address,
		Favorites:    favs,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type detailsDoc struct {
	ResidenceType     string `bson:"residence_type"`
	HasChildren       bool   `bson:"has_children"`
	HasOtherPets      bool   `bson:"has_other_pets"`
	OtherPetDetails   string `bson:"other_pet_details,omitempty"`
	WorkSchedule      string `bson:"work_schedule,omitempty"`
	ReasonForAdopting string `bson:"reason_for_adopting"`
	AdditionalInfo    string `bson:"additional_info,omitempty"`
}

type storyDoc struct {
	Title       string   `bson:"title"`
	Description string   `bson:"description"`
	Images      []string `bson:"images"`
	IsPublished bool     `bson:"is_published"`
}

type appDoc struct {
	ID           string     `bson:"_id"`
	PetID        string     `bson:"pet_id"`
	ApplicantID  string     `bson:"applicant_id"`
	ShelterID    string     `bson:"shelter_id"`
	Status       string     `bson:"status"`
	Details      detailsDoc `bson:"details"`
	ReviewedBy   string     `bson:"reviewed_by,omitempty"`
	ReviewDate   *time.Time `bson:"review_date,omitempty"`
	ReviewNotes  string     `bson:"review_notes,omitempty"`
	AdoptionDate *time.Time `bson:"adoption_date,omitempty"`
	SuccessStory *storyDoc  `bson:"success_story,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func toAppDoc(a adoptions.Application) appDoc {
	d := appDoc{
		ID:          a.ID,
		PetID:       a.PetID,
		ApplicantID: a.ApplicantID,
		ShelterID:   a.ShelterID,
		Status:      string(a.Status),
		Details: detailsDoc{
			ResidenceType:     string(a.Details.ResidenceType),
			HasChildren:       a.Details.HasChildren,
			HasOtherPets:      a.Details.HasOtherPets,
			OtherPetDetails:   a.Details.OtherPetDetails,
			WorkSchedule:      a.Details.WorkSchedule,
			ReasonForAdopting: a.Details.ReasonForAdopting,
			AdditionalInfo:    a.Details.AdditionalInfo,
		},
		ReviewedBy:   a.Review.ReviewedBy,
		ReviewDate:   a.Review.ReviewDate,
		ReviewNotes:  a.Review.ReviewNotes,
		AdoptionDate: a.AdoptionDate,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if s := a.SuccessStory; s != nil {
		images := s.Images
		if images == nil {
			images = []string{}
		}
		d.SuccessStory = &storyDoc{Title: s.Title, Description: s.Description, Images: images, IsPublished: s.IsPublished}
	}
	return d
}

func (d appDoc) toDomain() adoptions.Application {
	a := adoptions.Application{
		ID:          d.ID,
		PetID:       d.PetID,
		ApplicantID: d.ApplicantID,
		ShelterID:   d.ShelterID,
		Status:      adoptions.Status(d.Status),
		Details: adoptions.Details{
			ResidenceType:     adoptions.ResidenceType(d.Details.ResidenceType),
			HasChildren:       d.Details.HasChildren,
			HasOtherPets:      d.Details.HasOtherPets,
			OtherPetDetails:   d.Details.OtherPetDetails,
			WorkSchedule:      d.Details.WorkSchedule,
			ReasonForAdopting: d.Details.ReasonForAdopting,
			AdditionalInfo:    d.Details.AdditionalInfo,
		},
		Review: adoptions.Review{
			ReviewedBy:  d.ReviewedBy,
			ReviewDate:  utcPtr(d.ReviewDate),
			ReviewNotes: d.ReviewNotes,
		},
		AdoptionDate: utcPtr(d.AdoptionDate),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if s := d.SuccessStory; s != nil {
		a.SuccessStory = &adoptions.SuccessStory{Title: s.Title, Description: s.Description, Images: s.Images, IsPublished: s.IsPublished}
	}
	return a
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
