package router

import (
	"context"
	"fmt"

	mem "pet-adoption/internal/adapters/storage/memory"
	mdb "pet-adoption/internal/adapters/storage/mongodb"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/config"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/reports"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/platform/logger"
)

// UserStore es el repo de usuarios, que además resuelve refugios.
type UserStore interface {
	users.Repository
	pets.ShelterLookup
}

// Stores agrupa los repos de un backend. Reset vacía todo (seeder, tests).
type Stores struct {
	Backend   string
	Pets      pets.Repository
	Users     UserStore
	Adoptions adoptions.Store
	Reports   reports.Store

	Reset func(ctx context.Context) error
	Close func(ctx context.Context) error
}

func MemoryStores() Stores {
	db := mem.NewDB()
	return Stores{
		Backend:   "memory",
		Pets:      mem.NewPetRepo(db),
		Users:     mem.NewUserRepo(db),
		Adoptions: mem.NewAdoptionStore(db),
		Reports:   mem.NewReportStore(db),
		Reset:     db.Reset,
		Close:     func(context.Context) error { return nil },
	}
}

// OpenStores elige backend según config: mongo > postgres > memoria.
func OpenStores(ctx context.Context, cfg config.Config, log logger.Logger) (Stores, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.Backend() {
	case "mongo":
		db, err := mdb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return Stores{}, err
		}
		if err := mdb.EnsureIndexes(ctx, db, log); err != nil {
			_ = db.Client().Disconnect(ctx)
			return Stores{}, err
		}
		log.Info("storage ready", map[string]any{"backend": "mongo", "database": cfg.MongoDatabase})
		return Stores{
			Backend:   "mongo",
			Pets:      mdb.NewPetsRepo(db),
			Users:     mdb.NewUsersRepo(db),
			Adoptions: mdb.NewAdoptionStore(db),
			Reports:   mdb.NewReportStore(db),
			Reset:     func(ctx context.Context) error { return mdb.Reset(ctx, db) },
			Close:     func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
		}, nil

	case "postgres":
		db, err := pg.Open(cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			return Stores{}, fmt.Errorf("postgres: %w", err)
		}
		if cfg.DBMigrate {
			if err := pg.Migrate(db, log); err != nil {
				_ = db.Close()
				return Stores{}, err
			}
		}
		log.Info("storage ready", map[string]any{"backend": "postgres"})
		return Stores{
			Backend:   "postgres",
			Pets:      pg.NewPetsRepo(db),
			Users:     pg.NewUsersRepo(db),
			Adoptions: pg.NewAdoptionStore(db),
			Reports:   pg.NewReportStore(db),
			Reset:     func(ctx context.Context) error { return pg.Reset(ctx, db) },
			Close:     func(context.Context) error { return db.Close() },
		}, nil

	default:
		log.Warn("storage ready (in-memory, data is lost on restart)", map[string]any{"backend": "memory"})
		return MemoryStores(), nil
	}
}
