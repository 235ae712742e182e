package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/ports/auth"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{
	"id", "name", "email", "password_hash", "role", "contact", "address",
	"created_at", "updated_at",
}

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Contact      string    `db:"contact"`
	Address      string    `db:"address"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain(favorites []string) users.User {
	if favorites == nil {
		favorites = []string{}
	}
	return users.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         auth.Role(r.Role),
		Contact:      r.Contact,
		Address:      r.Address,
		Favorites:    favorites,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type UsersRepo struct {
	db *sqlx.DB
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

var (
	_ users.Repository   = (*UsersRepo)(nil)
	_ pets.ShelterLookup = (*UsersRepo)(nil)
)

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	ib := newInsert()
	ib.InsertInto("users")
	ib.Cols(userColumns...)
	ib.Values(u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Contact, u.Address, u.CreatedAt, u.UpdatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update no toca favoritos; esos tienen sus propias operaciones.
func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	ub := newUpdate()
	ub.Update("users")
	ub.Set(
		ub.Assign("name", u.Name),
		ub.Assign("email", u.Email),
		ub.Assign("password_hash", u.PasswordHash),
		ub.Assign("role", string(u.Role)),
		ub.Assign("contact", u.Contact),
		ub.Assign("address", u.Address),
		ub.Assign("updated_at", u.UpdatedAt),
	)
	ub.Where(ub.Equal("id", u.ID))

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UsersRepo) getBy(ctx context.Context, col, value string) (users.User, error) {
	sb := newSelect()
	sb.Select(userColumns...)
	sb.From("users")
	sb.Where(sb.Equal(col, value))

	query, args := sb.Build()
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}

	favs, err := r.favorites(ctx, row.ID)
	if err != nil {
		return users.User{}, err
	}
	return row.toDomain(favs), nil
}

func (r *UsersRepo) favorites(ctx context.Context, userID string) ([]string, error) {
	sb := newSelect()
	sb.Select("pet_id")
	sb.From("user_favorites")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at ASC", "pet_id ASC")

	query, args := sb.Build()
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *UsersRepo) AddFavorite(ctx context.Context, userID, petID string) error {
	ib := newInsert()
	ib.InsertInto("user_favorites")
	ib.Cols("user_id", "pet_id")
	ib.Values(userID, petID)
	ib.SQL("ON CONFLICT DO NOTHING")

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return users.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *UsersRepo) RemoveFavorite(ctx context.Context, userID, petID string) error {
	del := newDelete()
	del.DeleteFrom("user_favorites")
	del.Where(del.Equal("user_id", userID), del.Equal("pet_id", petID))

	query, args := del.Build()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SheltersByID resuelve refugios (y admins, que también publican mascotas).
func (r *UsersRepo) SheltersByID(ctx context.Context, ids []string) (map[string]pets.Shelter, error) {
	out := make(map[string]pets.Shelter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sb := newSelect()
	sb.Select("id", "name", "email", "contact")
	sb.From("users")
	sb.Where(
		sb.In("id", sqlbuilder.List(ids)),
		sb.NotEqual("role", string(auth.RoleAdopter)),
	)

	query, args := sb.Build()
	var rows []struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		Email   string `db:"email"`
		Contact string `db:"contact"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = pets.Shelter{ID: row.ID, Name: row.Name, Email: row.Email, Contact: row.Contact}
	}
	return out, nil
}
