package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption/internal/domain/pets"
)

type PetRepo struct {
	db *DB
}

func NewPetRepo(db *DB) *PetRepo {
	return &PetRepo{db: db}
}

var _ pets.Repository = (*PetRepo)(nil)

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.db.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.db.pets[p.ID] = p
	return nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, exists := r.db.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	// el estado y el refugio solo los escribe el flujo de adopciones
	p.AdoptionStatus = stored.AdoptionStatus
	p.ShelterID = stored.ShelterID
	r.db.pets[p.ID] = p
	return nil
}

// Delete rechaza bajo el mismo lock si la mascota quedó Pending.
func (r *PetRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, exists := r.db.pets[id]
	if !exists {
		return pets.ErrNotFound
	}
	if stored.AdoptionStatus == pets.StatusPending {
		return pets.ErrPendingApps
	}
	delete(r.db.pets, id)
	return nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *PetRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.db.pets {
		if matchPet(p, f) {
			out = append(out, p)
		}
	}
	sortPets(out, f.SortBy, f.Asc)

	total := len(out)
	return window(out, f.Offset(), f.Limit), total, nil
}

func matchPet(p pets.Pet, f pets.ListFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.Status != "" && p.AdoptionStatus != f.Status {
		return false
	}
	if f.ShelterID != "" && p.ShelterID != f.ShelterID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(strings.Join([]string{p.Name, p.Breed, p.Description, string(p.Category)}, "\n"))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// sortPets: age se compara como texto, igual que en los otros backends.
func sortPets(items []pets.Pet, by pets.SortField, asc bool) {
	key := func(p pets.Pet) string {
		switch by {
		case pets.SortName:
			return p.Name
		case pets.SortBreed:
			return p.Breed
		case pets.SortAge:
			return p.Age
		case pets.SortCategory:
			return string(p.Category)
		case pets.SortAdoptionStatus:
			return string(p.AdoptionStatus)
		}
		return ""
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less, equal bool
		if by == "" || by == pets.SortCreatedAt {
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		} else {
			ka, kb := key(a), key(b)
			less, equal = ka < kb, ka == kb
		}
		if equal {
			return a.ID < b.ID
		}
		if asc {
			return less
		}
		return !less
	})
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
