package memory

import (
	"context"
	"errors"
	"strings"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/ports/auth"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

var (
	_ users.Repository   = (*UserRepo)(nil)
	_ pets.ShelterLookup = (*UserRepo)(nil)
)

func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return users.ErrEmailTaken
	}
	r.db.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u users.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[u.ID]; !ok {
		return users.ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return users.ErrEmailTaken
	}
	r.db.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UserRepo) AddFavorite(ctx context.Context, userID, petID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return users.ErrNotFound
	}
	if !u.HasFavorite(petID) {
		u.Favorites = append(append([]string{}, u.Favorites...), petID)
		r.db.users[userID] = u
	}
	return nil
}

func (r *UserRepo) RemoveFavorite(ctx context.Context, userID, petID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return users.ErrNotFound
	}
	kept := make([]string, 0, len(u.Favorites))
	for _, id := range u.Favorites {
		if id != petID {
			kept = append(kept, id)
		}
	}
	u.Favorites = kept
	r.db.users[userID] = u
	return nil
}

// SheltersByID resuelve cualquier usuario con rol shelter o admin.
func (r *UserRepo) SheltersByID(ctx context.Context, ids []string) (map[string]pets.Shelter, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[string]pets.Shelter, len(ids))
	for _, id := range ids {
		u, ok := r.db.users[id]
		if !ok || u.Role == auth.RoleAdopter {
			continue
		}
		out[id] = pets.Shelter{ID: u.ID, Name: u.Name, Email: u.Email, Contact: u.Contact}
	}
	return out, nil
}

func (r *UserRepo) emailTakenLocked(email, exceptID string) bool {
	for id, other := range r.db.users {
		if id != exceptID && other.Email == email {
			return true
		}
	}
	return false
}

func cloneUser(u users.User) users.User {
	u.Favorites = append([]string{}, u.Favorites...)
	return u
}
