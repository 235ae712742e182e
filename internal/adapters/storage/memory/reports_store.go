package memory

import (
	"context"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/reports"
	"pet-adoption/internal/ports/auth"
)

type ReportStore struct {
	db *DB
}

func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

var _ reports.Store = (*ReportStore)(nil)

func (s *ReportStore) PetsWithApplications(ctx context.Context) ([]pets.Pet, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]pets.Pet, 0)
	for _, a := range s.db.apps {
		if _, ok := seen[a.PetID]; ok {
			continue
		}
		seen[a.PetID] = struct{}{}
		if p, ok := s.db.pets[a.PetID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ReportStore) AdoptionsByMonth(ctx context.Context) ([]reports.MonthCount, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	type ym struct{ y, m int }
	counts := map[ym]int{}
	for _, a := range s.db.apps {
		if a.AdoptionDate == nil {
			continue
		}
		if a.Status != adoptions.StatusApproved && a.Status != adoptions.StatusCompleted {
			continue
		}
		d := a.AdoptionDate.UTC()
		counts[ym{d.Year(), int(d.Month())}]++
	}

	out := make([]reports.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, reports.MonthCount{Year: k.y, Month: k.m, Count: n})
	}
	return out, nil
}

func (s *ReportStore) ShelterStats(ctx context.Context) ([]reports.ShelterStat, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	byID := map[string]*reports.ShelterStat{}
	out := make([]reports.ShelterStat, 0)
	for _, u := range s.db.users {
		if u.Role != auth.RoleShelter {
			continue
		}
		byID[u.ID] = &reports.ShelterStat{ID: u.ID, Name: u.Name, Email: u.Email, Contact: u.Contact, Address: u.Address}
	}
	for _, p := range s.db.pets {
		st, ok := byID[p.ShelterID]
		if !ok {
			continue
		}
		st.TotalPets++
		switch p.AdoptionStatus {
		case pets.StatusAvailable:
			st.AvailablePets++
		case pets.StatusPending:
			st.PendingPets++
		case pets.StatusAdopted:
			st.AdoptedPets++
		}
	}
	for _, st := range byID {
		out = append(out, *st)
	}
	return out, nil
}
