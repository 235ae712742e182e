package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var appSortFields = map[adoptions.SortField]string{
	adoptions.SortCreatedAt: "created_at",
	adoptions.SortUpdatedAt: "updated_at",
	adoptions.SortStatus:    "status",
}

type AdoptionStore struct {
	db   *mongo.Database
	apps *mongo.Collection
	pets *mongo.Collection
}

func NewAdoptionStore(db *mongo.Database) *AdoptionStore {
	return &AdoptionStore{db: db, apps: db.Collection(colApplications), pets: db.Collection(colPets)}
}

var _ adoptions.Store = (*AdoptionStore)(nil)

// Atomically corre fn dentro de una transacción multi-documento. Antes de
// fn incrementa lock_version de la mascota: dos unidades sobre la misma
// mascota chocan por write conflict y el driver reintenta la perdedora.
func (s *AdoptionStore) Atomically(ctx context.Context, petID string, fn func(ctx context.Context, tx adoptions.Tx) error) error {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := s.pets.UpdateByID(sc, petID, bson.M{"$inc": bson.M{"lock_version": 1}}); err != nil {
			return nil, fmt.Errorf("lock pet: %w", err)
		}
		return nil, fn(sc, &mongoTx{apps: s.apps, pets: s.pets})
	})
	return err
}

func (s *AdoptionStore) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	var d appDoc
	if err := s.apps.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return adoptions.Application{}, adoptions.ErrNotFound
		}
		return adoptions.Application{}, err
	}
	return d.toDomain(), nil
}

func (s *AdoptionStore) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Application, int, error) {
	filter := appFilter(f)
	total, err := s.apps.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	field, ok := appSortFields[f.SortBy]
	if !ok {
		field = "created_at"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir(f.Asc)}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))

	out, err := findApps(ctx, s.apps, filter, opts)
	return out, int(total), err
}

func (s *AdoptionStore) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	return findApps(ctx, s.apps, bson.M{"applicant_id": applicantID}, opts)
}

func (s *AdoptionStore) ListPublishedStories(ctx context.Context, page, limit int) ([]adoptions.Application, int, error) {
	filter := publishedStoriesFilter()
	total, err := s.apps.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "adoption_date", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	out, err := findApps(ctx, s.apps, filter, opts)
	return out, int(total), err
}

func appFilter(f adoptions.ListFilter) bson.M {
	filter := bson.M{}
	if f.ShelterID != "" {
		filter["shelter_id"] = f.ShelterID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

func publishedStoriesFilter() bson.M {
	return bson.M{
		"status":                     string(adoptions.StatusCompleted),
		"success_story.is_published": true,
	}
}

func findApps(ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions) ([]adoptions.Application, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []appDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]adoptions.Application, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// mongoTx usa el ctx de sesión que recibe cada método.
type mongoTx struct {
	apps *mongo.Collection
	pets *mongo.Collection
}

func (t *mongoTx) GetPet(ctx context.Context, petID string) (pets.Pet, error) {
	return findPet(ctx, t.pets, petID)
}

func (t *mongoTx) SetPetStatus(ctx context.Context, petID string, status pets.AdoptionStatus, at time.Time) error {
	res, err := t.pets.UpdateByID(ctx, petID, bson.M{"$set": bson.M{
		"adoption_status": string(status),
		"updated_at":      at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (t *mongoTx) ListByPet(ctx context.Context, petID string) ([]adoptions.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findApps(ctx, t.apps, bson.M{"pet_id": petID}, opts)
}

func (t *mongoTx) Create(ctx context.Context, a adoptions.Application) error {
	_, err := t.apps.InsertOne(ctx, toAppDoc(a))
	return err
}

func (t *mongoTx) Update(ctx context.Context, a adoptions.Application) error {
	d := toAppDoc(a)
	res, err := t.apps.UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{
		"status":        d.Status,
		"reviewed_by":   d.ReviewedBy,
		"review_date":   d.ReviewDate,
		"review_notes":  d.ReviewNotes,
		"adoption_date": d.AdoptionDate,
		"success_story": d.SuccessStory,
		"updated_at":    d.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

func (t *mongoTx) RejectOtherPending(ctx context.Context, petID, exceptID string, review adoptions.Review, at time.Time) (int, error) {
	res, err := t.apps.UpdateMany(ctx, rejectOthersFilter(petID, exceptID), bson.M{"$set": bson.M{
		"status":       string(adoptions.StatusRejected),
		"reviewed_by":  review.ReviewedBy,
		"review_date":  review.ReviewDate,
		"review_notes": review.ReviewNotes,
		"updated_at":   at,
	}})
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func rejectOthersFilter(petID, exceptID string) bson.M {
	return bson.M{
		"pet_id": petID,
		"status": string(adoptions.StatusPending),
		"_id":    bson.M{"$ne": exceptID},
	}
}
