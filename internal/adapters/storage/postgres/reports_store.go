package postgres

import (
	"context"
	"fmt"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/reports"
	"pet-adoption/internal/ports/auth"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

type ReportStore struct {
	db *sqlx.DB
}

func NewReportStore(db *sqlx.DB) *ReportStore {
	return &ReportStore{db: db}
}

var _ reports.Store = (*ReportStore)(nil)

func (s *ReportStore) PetsWithApplications(ctx context.Context) ([]pets.Pet, error) {
	sb := newSelect()
	sb.Select(petColumns...)
	sb.From("pets")
	sb.Where("EXISTS (SELECT 1 FROM applications a WHERE a.pet_id = pets.id)")
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()
	var rows []petRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return petsFromRows(rows), nil
}

func (s *ReportStore) AdoptionsByMonth(ctx context.Context) ([]reports.MonthCount, error) {
	sb := newSelect()
	sb.Select(
		"EXTRACT(YEAR FROM adoption_date AT TIME ZONE 'UTC')::int AS year",
		"EXTRACT(MONTH FROM adoption_date AT TIME ZONE 'UTC')::int AS month",
		"COUNT(*) AS count",
	)
	sb.From("applications")
	sb.Where(
		sb.In("status", string(adoptions.StatusApproved), string(adoptions.StatusCompleted)),
		sb.IsNotNull("adoption_date"),
	)
	sb.GroupBy("year", "month")

	query, args := sb.Build()
	var rows []struct {
		Year  int `db:"year"`
		Month int `db:"month"`
		Count int `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]reports.MonthCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, reports.MonthCount{Year: r.Year, Month: r.Month, Count: r.Count})
	}
	return out, nil
}

func (s *ReportStore) ShelterStats(ctx context.Context) ([]reports.ShelterStat, error) {
	sb := newSelect()
	countBy := func(status pets.AdoptionStatus, alias string) string {
		return fmt.Sprintf("COUNT(p.id) FILTER (WHERE p.adoption_status = %s) AS %s", sb.Var(string(status)), alias)
	}
	sb.Select(
		"u.id", "u.name", "u.email", "u.contact", "u.address",
		"COUNT(p.id) AS total_pets",
		countBy(pets.StatusAvailable, "available_pets"),
		countBy(pets.StatusPending, "pending_pets"),
		countBy(pets.StatusAdopted, "adopted_pets"),
	)
	sb.From("users u")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "pets p", "p.shelter_id = u.id")
	sb.Where(sb.Equal("u.role", string(auth.RoleShelter)))
	sb.GroupBy("u.id", "u.name", "u.email", "u.contact", "u.address")
	sb.OrderBy("total_pets DESC", "u.name ASC")

	query, args := sb.Build()
	var rows []struct {
		ID        string `db:"id"`
		Name      string `db:"name"`
		Email     string `db:"email"`
		Contact   string `db:"contact"`
		Address   string `db:"address"`
		Total     int    `db:"total_pets"`
		Available int    `db:"available_pets"`
		Pending   int    `db:"pending_pets"`
		Adopted   int    `db:"adopted_pets"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]reports.ShelterStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, reports.ShelterStat{
			ID:            r.ID,
			Name:          r.Name,
			Email:         r.Email,
			Contact:       r.Contact,
			Address:       r.Address,
			TotalPets:     r.Total,
			AvailablePets: r.Available,
			PendingPets:   r.Pending,
			AdoptedPets:   r.Adopted,
		})
	}
	return out, nil
}
