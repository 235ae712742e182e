package mongodb

import (
	"context"
	"errors"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/ports/auth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UsersRepo struct {
	col *mongo.Collection
}

func NewUsersRepo(db *mongo.Database) *UsersRepo {
	return &UsersRepo{col: db.Collection(colUsers)}
}

var (
	_ users.Repository   = (*UsersRepo)(nil)
	_ pets.ShelterLookup = (*UsersRepo)(nil)
)

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.col.InsertOne(ctx, toUserDoc(u))
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrEmailTaken
	}
	return err
}

// Update no toca favorites: se manejan con Add/RemoveFavorite.
func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	set := bson.M{
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
		"contact":       u.Contact,
		"address":       u.Address,
		"updated_at":    u.UpdatedAt,
	}
	res, err := r.col.UpdateByID(ctx, u.ID, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UsersRepo) findOne(ctx context.Context, filter bson.M) (users.User, error) {
	var d userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return d.toDomain(), nil
}

func (r *UsersRepo) AddFavorite(ctx context.Context, userID, petID string) error {
	return r.updateFavorites(ctx, userID, bson.M{"$addToSet": bson.M{"favorites": petID}})
}

func (r *UsersRepo) RemoveFavorite(ctx context.Context, userID, petID string) error {
	return r.updateFavorites(ctx, userID, bson.M{"$pull": bson.M{"favorites": petID}})
}

func (r *UsersRepo) updateFavorites(ctx context.Context, userID string, update bson.M) error {
	res, err := r.col.UpdateByID(ctx, userID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

// SheltersByID resuelve refugios y admins; los adoptantes no publican.
func (r *UsersRepo) SheltersByID(ctx context.Context, ids []string) (map[string]pets.Shelter, error) {
	out := make(map[string]pets.Shelter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, shelterLookupFilter(ids))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID] = pets.Shelter{ID: d.ID, Name: d.Name, Email: d.Email, Contact: d.Contact}
	}
	return out, nil
}

func shelterLookupFilter(ids []string) bson.M {
	return bson.M{
		"_id":  bson.M{"$in": ids},
		"role": bson.M{"$ne": string(auth.RoleAdopter)},
	}
}
