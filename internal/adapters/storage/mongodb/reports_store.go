package mongodb

import (
	"context"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/reports"
	"pet-adoption/internal/ports/auth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReportStore struct {
	users *mongo.Collection
	pets  *mongo.Collection
	apps  *mongo.Collection
}

func NewReportStore(db *mongo.Database) *ReportStore {
	return &ReportStore{
		users: db.Collection(colUsers),
		pets:  db.Collection(colPets),
		apps:  db.Collection(colApplications),
	}
}

var _ reports.Store = (*ReportStore)(nil)

func (s *ReportStore) PetsWithApplications(ctx context.Context) ([]pets.Pet, error) {
	cur, err := s.pets.Aggregate(ctx, petsWithApplicationsPipeline())
	if err != nil {
		return nil, err
	}
	var docs []petDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]pets.Pet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *ReportStore) AdoptionsByMonth(ctx context.Context) ([]reports.MonthCount, error) {
	cur, err := s.apps.Aggregate(ctx, adoptionsByMonthPipeline())
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]reports.MonthCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, reports.MonthCount{Year: r.ID.Year, Month: r.ID.Month, Count: r.Count})
	}
	return out, nil
}

func (s *ReportStore) ShelterStats(ctx context.Context) ([]reports.ShelterStat, error) {
	cur, err := s.users.Aggregate(ctx, shelterStatsPipeline())
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID            string `bson:"_id"`
		Name          string `bson:"name"`
		Email         string `bson:"email"`
		Contact       string `bson:"contact"`
		Address       string `bson:"address"`
		TotalPets     int    `bson:"total_pets"`
		AvailablePets int    `bson:"available_pets"`
		PendingPets   int    `bson:"pending_pets"`
		AdoptedPets   int    `bson:"adopted_pets"`
	}
	if err := cur.All(ctx, &rows); err != nil {
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
			TotalPets:     r.TotalPets,
			AvailablePets: r.AvailablePets,
			PendingPets:   r.PendingPets,
			AdoptedPets:   r.AdoptedPets,
		})
	}
	return out, nil
}

// petsWithApplicationsPipeline: mascotas con al menos una solicitud.
// El agrupado por categoría se hace en reports.GroupByCategory.
func petsWithApplicationsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colApplications},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "pet_id"},
			{Key: "as", Value: "applications"},
		}}},
		{{Key: "$match", Value: bson.M{"applications.0": bson.M{"$exists": true}}}},
		{{Key: "$project", Value: bson.M{"applications": 0}}},
	}
}

// adoptionsByMonthPipeline cuenta Approved y Completed por año/mes UTC.
func adoptionsByMonthPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":        bson.M{"$in": bson.A{string(adoptions.StatusApproved), string(adoptions.StatusCompleted)}},
			"adoption_date": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.M{"$year": "$adoption_date"}},
				{Key: "month", Value: bson.M{"$month": "$adoption_date"}},
			}},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
}

func countByStatus(status pets.AdoptionStatus) bson.M {
	return bson.M{"$size": bson.M{"$filter": bson.M{
		"input": "$pets",
		"as":    "p",
		"cond":  bson.M{"$eq": bson.A{"$$p.adoption_status", string(status)}},
	}}}
}

// shelterStatsPipeline: refugios con sus mascotas contadas por estado.
func shelterStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": string(auth.RoleShelter)}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colPets},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "shelter_id"},
			{Key: "as", Value: "pets"},
		}}},
		{{Key: "$project", Value: bson.M{
			"name":           1,
			"email":          1,
			"contact":        1,
			"address":        1,
			"total_pets":     bson.M{"$size": "$pets"},
			"available_pets": countByStatus(pets.StatusAvailable),
			"pending_pets":   countByStatus(pets.StatusPending),
			"adopted_pets":   countByStatus(pets.StatusAdopted),
		}}},
	}
}
