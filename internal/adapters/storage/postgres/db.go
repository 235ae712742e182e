package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"pet-adoption/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open abre un pool a Postgres usando pgx (database/sql) envuelto en sqlx.
func Open(dsn string, maxOpen int) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

type migrateLogger struct {
	log logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...), nil)
}

func (l migrateLogger) Verbose() bool { return false }

// Migrate aplica las migraciones embebidas hasta la última versión.
func Migrate(db *sqlx.DB, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	drv, err := pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	m.Log = migrateLogger{log: log}

	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Info("database migrated", map[string]any{
		"version":     version,
		"dirty":       dirty,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// Reset vacía todas las tablas (seed destroy).
func Reset(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE applications, user_favorites, pets, users`)
	return err
}

// querier es lo común entre *sqlx.DB y *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgCode(err) == pgerrcode.UniqueViolation }

func isForeignKeyViolation(err error) bool { return pgCode(err) == pgerrcode.ForeignKeyViolation }

func newSelect() *sqlbuilder.SelectBuilder { return sqlbuilder.PostgreSQL.NewSelectBuilder() }

func newInsert() *sqlbuilder.InsertBuilder { return sqlbuilder.PostgreSQL.NewInsertBuilder() }

func newUpdate() *sqlbuilder.UpdateBuilder { return sqlbuilder.PostgreSQL.NewUpdateBuilder() }

func newDelete() *sqlbuilder.DeleteBuilder { return sqlbuilder.PostgreSQL.NewDeleteBuilder() }

func dir(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}
