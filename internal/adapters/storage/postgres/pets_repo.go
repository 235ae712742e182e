package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

var petColumns = []string{
	"id", "name", "breed", "age", "gender", "category", "size",
	"description", "image", "adoption_status", "shelter_id",
	"created_at", "updated_at",
}

type petRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Breed          string    `db:"breed"`
	Age            string    `db:"age"`
	Gender         string    `db:"gender"`
	Category       string    `db:"category"`
	Size           string    `db:"size"`
	Description    string    `db:"description"`
	Image          string    `db:"image"`
	AdoptionStatus string    `db:"adoption_status"`
	ShelterID      string    `db:"shelter_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r petRow) toDomain() pets.Pet {
	return pets.Pet{
		ID:             r.ID,
		Name:           r.Name,
		Breed:          r.Breed,
		Age:            r.Age,
		Gender:         pets.Gender(r.Gender),
		Category:       pets.Category(r.Category),
		Size:           pets.Size(r.Size),
		Description:    r.Description,
		Image:          r.Image,
		AdoptionStatus: pets.AdoptionStatus(r.AdoptionStatus),
		ShelterID:      r.ShelterID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func petsFromRows(rows []petRow) []pets.Pet {
	out := make([]pets.Pet, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

// columnas ordenables; age es texto y se ordena lexicográficamente
var petSortColumns = map[pets.SortField]string{
	pets.SortCreatedAt:      "created_at",
	pets.SortName:           "name",
	pets.SortBreed:          "breed",
	pets.SortAge:            "age",
	pets.SortCategory:       "category",
	pets.SortAdoptionStatus: "adoption_status",
}

type PetsRepo struct {
	db *sqlx.DB
}

func NewPetsRepo(db *sqlx.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

var _ pets.Repository = (*PetsRepo)(nil)

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	ib := newInsert()
	ib.InsertInto("pets")
	ib.Cols(petColumns...)
	ib.Values(
		p.ID, p.Name, p.Breed, p.Age, string(p.Gender), string(p.Category), string(p.Size),
		p.Description, p.Image, string(p.AdoptionStatus), p.ShelterID,
		p.CreatedAt, p.UpdatedAt,
	)

	query, args := ib.Build()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	ub := newUpdate()
	ub.Update("pets")
	ub.Set(
		ub.Assign("name", p.Name),
		ub.Assign("breed", p.Breed),
		ub.Assign("age", p.Age),
		ub.Assign("gender", string(p.Gender)),
		ub.Assign("category", string(p.Category)),
		ub.Assign("size", string(p.Size)),
		ub.Assign("description", p.Description),
		ub.Assign("image", p.Image),
		ub.Assign("updated_at", p.UpdatedAt),
	)
	ub.Where(ub.Equal("id", p.ID))

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	del := newDelete()
	del.DeleteFrom("pets")
	// condicional: una solicitud que entre entre el chequeo y el borrado no se pierde
	del.Where(
		del.Equal("id", id),
		del.NotEqual("adoption_status", string(pets.StatusPending)),
	)

	query, args := del.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}
	// 0 filas: o no existe o está Pending
	if _, err := getPet(ctx, r.db, id, false); err != nil {
		return err
	}
	return pets.ErrPendingApps
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, r.db, id, false)
}

// getPet sirve tanto al repo como a la transacción de adopciones.
func getPet(ctx context.Context, q querier, id string, forUpdate bool) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	sb := newSelect()
	sb.Select(petColumns...)
	sb.From("pets")
	sb.Where(sb.Equal("id", id))
	if forUpdate {
		sb.ForUpdate()
	}

	query, args := sb.Build()
	var row petRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return row.toDomain(), nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	cb := newSelect()
	cb.Select("COUNT(*)")
	cb.From("pets")
	applyPetFilter(cb, f)

	countQuery, countArgs := cb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	sb := newSelect()
	sb.Select(petColumns...)
	sb.From("pets")
	applyPetFilter(sb, f)

	col, ok := petSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	sb.OrderBy(col+" "+dir(f.Asc), "id ASC")
	sb.Limit(f.Limit).Offset(f.Offset())

	query, args := sb.Build()
	var rows []petRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return petsFromRows(rows), total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func applyPetFilter(sb *sqlbuilder.SelectBuilder, f pets.ListFilter) {
	where := make([]string, 0, 6)
	if f.Category != "" {
		where = append(where, sb.Equal("category", string(f.Category)))
	}
	if f.Gender != "" {
		where = append(where, sb.Equal("gender", string(f.Gender)))
	}
	if f.Size != "" {
		where = append(where, sb.Equal("size", string(f.Size)))
	}
	if f.Status != "" {
		where = append(where, sb.Equal("adoption_status", string(f.Status)))
	}
	if f.ShelterID != "" {
		where = append(where, sb.Equal("shelter_id", f.ShelterID))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		where = append(where, sb.Or(
			sb.ILike("name", pattern),
			sb.ILike("breed", pattern),
			sb.ILike("description", pattern),
			sb.ILike("category", pattern),
		))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
}
