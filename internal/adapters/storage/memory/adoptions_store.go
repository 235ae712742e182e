package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
)

type AdoptionStore struct {
	db *DB
}

func NewAdoptionStore(db *DB) *AdoptionStore {
	return &AdoptionStore{db: db}
}

var _ adoptions.Store = (*AdoptionStore)(nil)

// Atomically toma el mutex del DB durante toda la unidad. Cada escritura deja
// su inversa en el undo log; si fn falla se aplican en orden inverso.
func (s *AdoptionStore) Atomically(ctx context.Context, petID string, fn func(ctx context.Context, tx adoptions.Tx) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tx := &memTx{db: s.db}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *AdoptionStore) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	a, ok := s.db.apps[id]
	if !ok {
		return adoptions.Application{}, adoptions.ErrNotFound
	}
	return cloneApp(a), nil
}

func (s *AdoptionStore) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Application, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range s.db.apps {
		if f.ShelterID != "" && a.ShelterID != f.ShelterID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, cloneApp(a))
	}
	sortApps(out, f.SortBy, f.Asc)

	total := len(out)
	return window(out, f.Offset(), f.Limit), total, nil
}

func (s *AdoptionStore) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.Application, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range s.db.apps {
		if a.ApplicantID == applicantID {
			out = append(out, cloneApp(a))
		}
	}
	sortApps(out, adoptions.SortCreatedAt, false)
	return out, nil
}

func (s *AdoptionStore) ListPublishedStories(ctx context.Context, page, limit int) ([]adoptions.Application, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range s.db.apps {
		if a.Status == adoptions.StatusCompleted && a.SuccessStory != nil && a.SuccessStory.IsPublished {
			out = append(out, cloneApp(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := adoptionTime(out[i]), adoptionTime(out[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].ID < out[j].ID
	})

	total := len(out)
	return window(out, (page-1)*limit, limit), total, nil
}

func adoptionTime(a adoptions.Application) time.Time {
	if a.AdoptionDate != nil {
		return *a.AdoptionDate
	}
	return time.Time{}
}

func sortApps(items []adoptions.Application, by adoptions.SortField, asc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less, equal bool
		switch by {
		case adoptions.SortUpdatedAt:
			less, equal = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		case adoptions.SortStatus:
			less, equal = a.Status < b.Status, a.Status == b.Status
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
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

// memTx opera con el mutex del DB ya tomado.
type memTx struct {
	db   *DB
	undo []func()
}

func (tx *memTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) GetPet(ctx context.Context, petID string) (pets.Pet, error) {
	p, ok := tx.db.pets[petID]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (tx *memTx) SetPetStatus(ctx context.Context, petID string, status pets.AdoptionStatus, at time.Time) error {
	prev, ok := tx.db.pets[petID]
	if !ok {
		return pets.ErrNotFound
	}
	next := prev
	next.AdoptionStatus = status
	next.UpdatedAt = at
	tx.db.pets[petID] = next
	tx.undo = append(tx.undo, func() { tx.db.pets[petID] = prev })
	return nil
}

func (tx *memTx) ListByPet(ctx context.Context, petID string) ([]adoptions.Application, error) {
	out := make([]adoptions.Application, 0)
	for _, a := range tx.db.apps {
		if a.PetID == petID {
			out = append(out, cloneApp(a))
		}
	}
	sortApps(out, adoptions.SortCreatedAt, true)
	return out, nil
}

func (tx *memTx) Create(ctx context.Context, a adoptions.Application) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := tx.db.apps[a.ID]; exists {
		return errors.New("application already exists")
	}
	tx.db.apps[a.ID] = cloneApp(a)
	tx.undo = append(tx.undo, func() { delete(tx.db.apps, a.ID) })
	return nil
}

func (tx *memTx) Update(ctx context.Context, a adoptions.Application) error {
	prev, ok := tx.db.apps[a.ID]
	if !ok {
		return adoptions.ErrNotFound
	}
	tx.db.apps[a.ID] = cloneApp(a)
	tx.undo = append(tx.undo, func() { tx.db.apps[a.ID] = prev })
	return nil
}

func (tx *memTx) RejectOtherPending(ctx context.Context, petID, exceptID string, review adoptions.Review, at time.Time) (int, error) {
	n := 0
	for id, a := range tx.db.apps {
		if a.PetID != petID || a.ID == exceptID || a.Status != adoptions.StatusPending {
			continue
		}
		prev := a
		a.Status = adoptions.StatusRejected
		a.Review = review
		a.UpdatedAt = at
		tx.db.apps[id] = a
		tx.undo = append(tx.undo, func() { tx.db.apps[prev.ID] = prev })
		n++
	}
	return n, nil
}

func cloneApp(a adoptions.Application) adoptions.Application {
	if a.SuccessStory != nil {
		st := *a.SuccessStory
		st.Images = append([]string{}, st.Images...)
		a.SuccessStory = &st
	}
	return a
}
