package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

var appColumns = []string{
	"id", "pet_id", "applicant_id", "shelter_id", "status",
	"residence_type", "has_children", "has_other_pets", "other_pet_details",
	"work_schedule", "reason_for_adopting", "additional_info",
	"reviewed_by", "review_date", "review_notes",
	"adoption_date", "success_story",
	"created_at", "updated_at",
}

// storyDoc es la forma jsonb de success_story.
type storyDoc struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	IsPublished bool     `json:"isPublished"`
}

type appRow struct {
	ID                string     `db:"id"`
	PetID             string     `db:"pet_id"`
	ApplicantID       string     `db:"applicant_id"`
	ShelterID         string     `db:"shelter_id"`
	Status            string     `db:"status"`
	ResidenceType     string     `db:"residence_type"`
	HasChildren       bool       `db:"has_children"`
	HasOtherPets      bool       `db:"has_other_pets"`
	OtherPetDetails   string     `db:"other_pet_details"`
	WorkSchedule      string     `db:"work_schedule"`
	ReasonForAdopting string     `db:"reason_for_adopting"`
	AdditionalInfo    string     `db:"additional_info"`
	ReviewedBy        string     `db:"reviewed_by"`
	ReviewDate        *time.Time `db:"review_date"`
	ReviewNotes       string     `db:"review_notes"`
	AdoptionDate      *time.Time `db:"adoption_date"`
	SuccessStory      []byte     `db:"success_story"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r appRow) toDomain() (adoptions.Application, error) {
	a := adoptions.Application{
		ID:          r.ID,
		PetID:       r.PetID,
		ApplicantID: r.ApplicantID,
		ShelterID:   r.ShelterID,
		Status:      adoptions.Status(r.Status),
		Details: adoptions.Details{
			ResidenceType:     adoptions.ResidenceType(r.ResidenceType),
			HasChildren:       r.HasChildren,
			HasOtherPets:      r.HasOtherPets,
			OtherPetDetails:   r.OtherPetDetails,
			WorkSchedule:      r.WorkSchedule,
			ReasonForAdopting: r.ReasonForAdopting,
			AdditionalInfo:    r.AdditionalInfo,
		},
		Review: adoptions.Review{
			ReviewedBy:  r.ReviewedBy,
			ReviewDate:  r.ReviewDate,
			ReviewNotes: r.ReviewNotes,
		},
		AdoptionDate: r.AdoptionDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if len(r.SuccessStory) > 0 {
		var doc storyDoc
		if err := json.Unmarshal(r.SuccessStory, &doc); err != nil {
			return adoptions.Application{}, fmt.Errorf("decode success_story %s: %w", r.ID, err)
		}
		a.SuccessStory = &adoptions.SuccessStory{
			Title:       doc.Title,
			Description: doc.Description,
			Images:      doc.Images,
			IsPublished: doc.IsPublished,
		}
	}
	return a, nil
}

func appsFromRows(rows []appRow) ([]adoptions.Application, error) {
	out := make([]adoptions.Application, 0, len(rows))
	for _, r := range rows {
		a, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// encodeStory devuelve nil (NULL) si no hay historia.
func encodeStory(s *adoptions.SuccessStory) (any, error) {
	if s == nil {
		return nil, nil
	}
	images := s.Images
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(storyDoc{Title: s.Title, Description: s.Description, Images: images, IsPublished: s.IsPublished})
	if err != nil {
		return nil, err
	}
	return b, nil
}

var appSortColumns = map[adoptions.SortField]string{
	adoptions.SortCreatedAt: "created_at",
	adoptions.SortUpdatedAt: "updated_at",
	adoptions.SortStatus:    "status",
}

type AdoptionStore struct {
	db *sqlx.DB
}

func NewAdoptionStore(db *sqlx.DB) *AdoptionStore {
	return &AdoptionStore{db: db}
}

var _ adoptions.Store = (*AdoptionStore)(nil)

// Atomically abre una transacción y bloquea la fila de la mascota con
// SELECT ... FOR UPDATE; las unidades sobre la misma mascota se serializan.
func (s *AdoptionStore) Atomically(ctx context.Context, petID string, fn func(ctx context.Context, tx adoptions.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ptx := &pgTx{tx: tx}
	if _, err = getPet(ctx, tx, petID, true); err != nil && !errors.Is(err, pets.ErrNotFound) {
		return fmt.Errorf("lock pet: %w", err)
	}

	if err = fn(ctx, ptx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *AdoptionStore) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	sb := newSelect()
	sb.Select(appColumns...)
	sb.From("applications")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row appRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return adoptions.Application{}, adoptions.ErrNotFound
		}
		return adoptions.Application{}, err
	}
	return row.toDomain()
}

func (s *AdoptionStore) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Application, int, error) {
	filter := func(sb *sqlbuilder.SelectBuilder) {
		where := make([]string, 0, 2)
		if f.ShelterID != "" {
			where = append(where, sb.Equal("shelter_id", f.ShelterID))
		}
		if f.Status != "" {
			where = append(where, sb.Equal("status", string(f.Status)))
		}
		if len(where) > 0 {
			sb.Where(where...)
		}
	}

	cb := newSelect()
	cb.Select("COUNT(*)")
	cb.From("applications")
	filter(cb)

	countQuery, countArgs := cb.Build()
	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	sb := newSelect()
	sb.Select(appColumns...)
	sb.From("applications")
	filter(sb)

	col, ok := appSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	sb.OrderBy(col+" "+dir(f.Asc), "id ASC")
	sb.Limit(f.Limit).Offset(f.Offset())

	query, args := sb.Build()
	var rows []appRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	items, err := appsFromRows(rows)
	return items, total, err
}

func (s *AdoptionStore) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.Application, error) {
	sb := newSelect()
	sb.Select(appColumns...)
	sb.From("applications")
	sb.Where(sb.Equal("applicant_id", applicantID))
	sb.OrderBy("created_at DESC", "id ASC")

	query, args := sb.Build()
	var rows []appRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return appsFromRows(rows)
}

func (s *AdoptionStore) ListPublishedStories(ctx context.Context, page, limit int) ([]adoptions.Application, int, error) {
	filter := func(sb *sqlbuilder.SelectBuilder) {
		sb.Where(
			sb.Equal("status", string(adoptions.StatusCompleted)),
			"(success_story->>'isPublished')::boolean",
		)
	}

	cb := newSelect()
	cb.Select("COUNT(*)")
	cb.From("applications")
	filter(cb)

	countQuery, countArgs := cb.Build()
	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	sb := newSelect()
	sb.Select(appColumns...)
	sb.From("applications")
	filter(sb)
	sb.OrderBy("adoption_date DESC NULLS LAST", "id ASC")
	sb.Limit(limit).Offset((page - 1) * limit)

	query, args := sb.Build()
	var rows []appRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	items, err := appsFromRows(rows)
	return items, total, err
}

// pgTx implementa adoptions.Tx sobre una transacción ya abierta.
type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) GetPet(ctx context.Context, petID string) (pets.Pet, error) {
	return getPet(ctx, t.tx, petID, false)
}

func (t *pgTx) SetPetStatus(ctx context.Context, petID string, status pets.AdoptionStatus, at time.Time) error {
	ub := newUpdate()
	ub.Update("pets")
	ub.Set(
		ub.Assign("adoption_status", string(status)),
		ub.Assign("updated_at", at),
	)
	ub.Where(ub.Equal("id", petID))

	query, args := ub.Build()
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (t *pgTx) ListByPet(ctx context.Context, petID string) ([]adoptions.Application, error) {
	sb := newSelect()
	sb.Select(appColumns...)
	sb.From("applications")
	sb.Where(sb.Equal("pet_id", petID))
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()
	var rows []appRow
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return appsFromRows(rows)
}

func (t *pgTx) Create(ctx context.Context, a adoptions.Application) error {
	story, err := encodeStory(a.SuccessStory)
	if err != nil {
		return err
	}

	ib := newInsert()
	ib.InsertInto("applications")
	ib.Cols(appColumns...)
	ib.Values(
		a.ID, a.PetID, a.ApplicantID, a.ShelterID, string(a.Status),
		string(a.Details.ResidenceType), a.Details.HasChildren, a.Details.HasOtherPets, a.Details.OtherPetDetails,
		a.Details.WorkSchedule, a.Details.ReasonForAdopting, a.Details.AdditionalInfo,
		a.Review.ReviewedBy, a.Review.ReviewDate, a.Review.ReviewNotes,
		a.AdoptionDate, story,
		a.CreatedAt, a.UpdatedAt,
	)

	query, args := ib.Build()
	_, err = t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *pgTx) Update(ctx context.Context, a adoptions.Application) error {
	story, err := encodeStory(a.SuccessStory)
	if err != nil {
		return err
	}

	ub := newUpdate()
	ub.Update("applications")
	ub.Set(
		ub.Assign("status", string(a.Status)),
		ub.Assign("reviewed_by", a.Review.ReviewedBy),
		ub.Assign("review_date", a.Review.ReviewDate),
		ub.Assign("review_notes", a.Review.ReviewNotes),
		ub.Assign("adoption_date", a.AdoptionDate),
		ub.Assign("success_story", story),
		ub.Assign("updated_at", a.UpdatedAt),
	)
	ub.Where(ub.Equal("id", a.ID))

	query, args := ub.Build()
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

// RejectOtherPending es un único UPDATE condicional.
func (t *pgTx) RejectOtherPending(ctx context.Context, petID, exceptID string, review adoptions.Review, at time.Time) (int, error) {
	ub := newUpdate()
	ub.Update("applications")
	ub.Set(
		ub.Assign("status", string(adoptions.StatusRejected)),
		ub.Assign("reviewed_by", review.ReviewedBy),
		ub.Assign("review_date", review.ReviewDate),
		ub.Assign("review_notes", review.ReviewNotes),
		ub.Assign("updated_at", at),
	)
	ub.Where(
		ub.Equal("pet_id", petID),
		ub.Equal("status", string(adoptions.StatusPending)),
		ub.NotEqual("id", exceptID),
	)

	query, args := ub.Build()
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
