package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"pet-adoption/internal/domain/pets"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var petSortFields = map[pets.SortField]string{
	pets.SortCreatedAt:      "created_at",
	pets.SortName:           "name",
	pets.SortBreed:          "breed",
	pets.SortAge:            "age",
	pets.SortCategory:       "category",
	pets.SortAdoptionStatus: "adoption_status",
}

type PetsRepo struct {
	col *mongo.Collection
}

func NewPetsRepo(db *mongo.Database) *PetsRepo {
	return &PetsRepo{col: db.Collection(colPets)}
}

var _ pets.Repository = (*PetsRepo)(nil)

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.col.InsertOne(ctx, toPetDoc(p))
	return err
}

// Update no toca adoption_status ni lock_version: son del ciclo de adopción.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	set := bson.M{
		"name":        p.Name,
		"breed":       p.Breed,
		"age":         p.Age,
		"gender":      string(p.Gender),
		"category":    string(p.Category),
		"size":        string(p.Size),
		"description": p.Description,
		"image":       p.Image,
		"updated_at":  p.UpdatedAt,
	}
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// deletableFilter solo matchea la mascota si no está Pending.
func deletableFilter(id string) bson.M {
	return bson.M{
		"_id":             id,
		"adoption_status": bson.M{"$ne": string(pets.StatusPending)},
	}
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, deletableFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		return nil
	}
	if _, err := findPet(ctx, r.col, id); err != nil {
		return err
	}
	return pets.ErrPendingApps
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return findPet(ctx, r.col, id)
}

// findPet recibe el ctx de sesión cuando corre dentro de una transacción.
func findPet(ctx context.Context, col *mongo.Collection, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}
	var d petDoc
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return d.toDomain(), nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	filter := petFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(petSort(f)).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []petDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	out := make([]pets.Pet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, int(total), nil
}

// petFilter arma el filtro del listado. La búsqueda es substring
// case-insensitive, igual que en los otros backends.
func petFilter(f pets.ListFilter) bson.D {
	filter := bson.D{}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: string(f.Category)})
	}
	if f.Gender != "" {
		filter = append(filter, bson.E{Key: "gender", Value: string(f.Gender)})
	}
	if f.Size != "" {
		filter = append(filter, bson.E{Key: "size", Value: string(f.Size)})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "adoption_status", Value: string(f.Status)})
	}
	if f.ShelterID != "" {
		filter = append(filter, bson.E{Key: "shelter_id", Value: f.ShelterID})
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.M{"name": re},
			bson.M{"breed": re},
			bson.M{"description": re},
			bson.M{"category": re},
		}})
	}
	return filter
}

func petSort(f pets.ListFilter) bson.D {
	field, ok := petSortFields[f.SortBy]
	if !ok {
		field = "created_at"
	}
	return bson.D{{Key: field, Value: dir(f.Asc)}, {Key: "_id", Value: 1}}
}
