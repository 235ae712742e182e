package pets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/paging"
	"pet-adoption/internal/platform/validation"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/capabilities"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = apperr.NotFound("Pet not found")
	ErrUnauthorized     = apperr.Unauthorized("Not authorized")
	ErrOnlyShelters     = apperr.Forbidden("Only shelters can add pets")
	ErrNotOwner         = apperr.Forbidden("Not authorized to modify this pet")
	ErrPendingApps      = apperr.InvalidState("Pet has pending applications")
	ErrInvalidSortBy    = apperr.Validation("invalid sortBy", "sortBy must be one of [createdAt name breed age category adoptionStatus]")
	ErrInvalidSortOrder = apperr.Validation("invalid sortOrder", "sortOrder must be one of [asc desc]")
)

type Service struct {
	repo     Repository
	shelters ShelterLookup
	authz    capabilities.Authorizer
	now      func() time.Time
}

func NewService(repo Repository, shelters ShelterLookup, authz capabilities.Authorizer) *Service {
	return &Service{
		repo:     repo,
		shelters: shelters,
		authz:    authz,
		now:      time.Now,
	}
}

// CreateInput usa los tags de validator; los mensajes salen con el nombre json.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Breed       string   `json:"breed" validate:"required"`
	Age         string   `json:"age" validate:"required"`
	Gender      Gender   `json:"gender" validate:"required,oneof=Male Female"`
	Category    Category `json:"category" validate:"required,oneof=dog cat other"`
	Size        Size     `json:"size" validate:"omitempty,oneof=Small Medium Large 'Extra Large'"`
	Description string   `json:"description" validate:"required"`
	Image       string   `json:"image" validate:"required"`
}

func (in *CreateInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Breed = strings.TrimSpace(in.Breed)
	in.Age = strings.TrimSpace(in.Age)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
}

func (s *Service) Create(ctx context.Context, caller auth.Claims, in CreateInput) (Pet, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Pet{}, ErrUnauthorized
	}
	if !s.authz.Authorize(caller, auth.RoleShelter) {
		return Pet{}, ErrOnlyShelters
	}

	in.trim()
	if err := validation.Struct("invalid pet", in); err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Breed:          in.Breed,
		Age:            in.Age,
		Gender:         in.Gender,
		Category:       in.Category,
		Size:           in.Size,
		Description:    in.Description,
		Image:          in.Image,
		AdoptionStatus: StatusAvailable,
		ShelterID:      caller.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("create pet: %w", err)
	}
	return p, nil
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
// No hay forma de tocar adoptionStatus ni shelter desde acá.
type UpdateInput struct {
	Name        *string
	Breed       *string
	Age         *string
	Gender      *Gender
	Category    *Category
	Size        *Size
	Description *string
	Image       *string
}

func (s *Service) Update(ctx context.Context, caller auth.Claims, id string, in UpdateInput) (Pet, error) {
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return Pet{}, err
	}

	// Validamos el resultado completo, no solo los campos enviados.
	merged := CreateInput{
		Name:        pick(in.Name, p.Name),
		Breed:       pick(in.Breed, p.Breed),
		Age:         pick(in.Age, p.Age),
		Gender:      pick(in.Gender, p.Gender),
		Category:    pick(in.Category, p.Category),
		Size:        pick(in.Size, p.Size),
		Description: pick(in.Description, p.Description),
		Image:       pick(in.Image, p.Image),
	}
	merged.trim()
	if err := validation.Struct("invalid pet", merged); err != nil {
		return Pet{}, err
	}

	p.Name = merged.Name
	p.Breed = merged.Breed
	p.Age = merged.Age
	p.Gender = merged.Gender
	p.Category = merged.Category
	p.Size = merged.Size
	p.Description = merged.Description
	p.Image = merged.Image
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("update pet: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Claims, id string) error {
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if p.AdoptionStatus == StatusPending {
		return ErrPendingApps
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	return nil
}

// owned trae la mascota y verifica que caller sea el refugio dueño o admin.
func (s *Service) owned(ctx context.Context, caller auth.Claims, id string) (Pet, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Pet{}, ErrUnauthorized
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.ShelterID != caller.UserID && !caller.IsAdmin() {
		return Pet{}, ErrNotOwner
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Get devuelve la mascota con su refugio embebido.
func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	out, err := s.withShelters(ctx, []Pet{p})
	if err != nil {
		return Listing{}, err
	}
	return out[0], nil
}

// List aplica defaults (limit 12, más nuevas primero) y embebe refugios.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Listing, int, error) {
	return s.list(ctx, f, paging.DefaultPetsLimit)
}

// Search es la búsqueda pública de reportes: mismo filtro, limit default 20.
func (s *Service) Search(ctx context.Context, f ListFilter) ([]Listing, int, error) {
	return s.list(ctx, f, paging.DefaultSearchLimit)
}

func (s *Service) list(ctx context.Context, f ListFilter, defLimit int) ([]Listing, int, error) {
	f.Page, f.Limit = paging.Normalize(f.Page, f.Limit, defLimit)
	f.Search = strings.TrimSpace(f.Search)
	if f.SortBy == "" {
		f.SortBy = SortCreatedAt
	}
	if _, ok := ParseSortField(string(f.SortBy)); !ok {
		return nil, 0, ErrInvalidSortBy
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list pets: %w", err)
	}
	out, err := s.withShelters(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) withShelters(ctx context.Context, items []Pet) ([]Listing, error) {
	out := make([]Listing, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	var byID map[string]Shelter
	if s.shelters != nil {
		ids := make([]string, 0, len(items))
		seen := map[string]struct{}{}
		for _, p := range items {
			if _, ok := seen[p.ShelterID]; ok {
				continue
			}
			seen[p.ShelterID] = struct{}{}
			ids = append(ids, p.ShelterID)
		}

		var err error
		byID, err = s.shelters.SheltersByID(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve shelters: %w", err)
		}
	}

	for _, p := range items {
		l := Listing{Pet: p}
		if sh, ok := byID[p.ShelterID]; ok {
			sh := sh
			l.Shelter = &sh
		}
		out = append(out, l)
	}
	return out, nil
}

// ParseSortOrder: "" => desc; "asc"/"desc" case-insensitive.
func ParseSortOrder(s string) (asc bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return false, nil
	case "asc":
		return true, nil
	default:
		return false, ErrInvalidSortOrder
	}
}

func pick[T any](p *T, cur T) T {
	if p == nil {
		return cur
	}
	return *p
}
