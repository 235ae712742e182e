package reports

import (
	"context"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/capabilities"
)

var (
	ErrUnauthorized = apperr.Unauthorized("Not authorized")
	ErrNotShelter   = apperr.Forbidden("Not authorized to access analytics")
	ErrNotAdmin     = apperr.Forbidden("Only admins can access shelter statistics")
)

type Service struct {
	store  Store
	search PetSearcher
	authz  capabilities.Authorizer
}

func NewService(store Store, search PetSearcher, authz capabilities.Authorizer) *Service {
	return &Service{store: store, search: search, authz: authz}
}

func (s *Service) allow(caller auth.Claims, denied error, roles ...auth.Role) error {
	if strings.TrimSpace(caller.UserID) == "" {
		return ErrUnauthorized
	}
	if !s.authz.Authorize(caller, roles...) {
		return denied
	}
	return nil
}

// ByCategory: mascotas con al menos una solicitud, agrupadas por categoría.
func (s *Service) ByCategory(ctx context.Context, caller auth.Claims) ([]CategoryStat, error) {
	if err := s.allow(caller, ErrNotShelter, auth.RoleShelter); err != nil {
		return nil, err
	}
	items, err := s.store.PetsWithApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("category report: %w", err)
	}
	return GroupByCategory(items), nil
}

// Timeline: adopciones aprobadas por mes, últimos `months` meses con datos.
func (s *Service) Timeline(ctx context.Context, caller auth.Claims, months int) ([]TimelinePoint, error) {
	if err := s.allow(caller, ErrNotShelter, auth.RoleShelter); err != nil {
		return nil, err
	}
	counts, err := s.store.AdoptionsByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("timeline report: %w", err)
	}
	return Timeline(counts, months), nil
}

func (s *Service) Shelters(ctx context.Context, caller auth.Claims) ([]ShelterStat, error) {
	if err := s.allow(caller, ErrNotAdmin, auth.RoleAdmin); err != nil {
		return nil, err
	}
	items, err := s.store.ShelterStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("shelter report: %w", err)
	}
	SortShelters(items)
	return items, nil
}

// SearchPets es público.
func (s *Service) SearchPets(ctx context.Context, f pets.ListFilter) ([]pets.Listing, int, error) {
	return s.search.Search(ctx, f)
}
