package mongodb

import (
	"context"
	"fmt"
	"time"

	"pet-adoption/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	colUsers        = "users"
	colPets         = "pets"
	colApplications = "applications"
)

// Connect abre el cliente, hace ping y devuelve la base pedida.
// Las transacciones de adopciones requieren un replica set.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(database), nil
}

// EnsureIndexes crea los índices que usan los repos (idempotente).
func EnsureIndexes(ctx context.Context, db *mongo.Database, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		colPets: {
			{Keys: bson.D{{Key: "shelter_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colApplications: {
			{Keys: bson.D{{Key: "pet_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "shelter_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "applicant_id", Value: 1}}},
		},
	}

	for col, models := range specs {
		names, err := db.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("indexes %s: %w", col, err)
		}
		log.Debug("mongo indexes ensured", map[string]any{"collection": col, "indexes": names})
	}
	return nil
}

// Reset borra todos los documentos (los índices quedan).
func Reset(ctx context.Context, db *mongo.Database) error {
	for _, col := range []string{colApplications, colPets, colUsers} {
		if _, err := db.Collection(col).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("reset %s: %w", col, err)
		}
	}
	return nil
}

func dir(asc bool) int {
	if asc {
		return 1
	}
	return -1
}
