package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDuplicateSchema is returned when the catalog schema already exists.
// Schema creation is a one-shot operation; deciding what to do about an
// existing schema is left to the operator.
var ErrDuplicateSchema = errors.New("catalog schema already exists")

// pgDuplicateTable is the SQLSTATE for "relation already exists".
const pgDuplicateTable = "42P07"

// CreateSchema applies the embedded catalog schema through the given pool.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// dedicated handle: closing the migrator also closes the sql.DB it was given
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if isDuplicateSchema(err) {
			return ErrDuplicateSchema
		}
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("catalog_schema_created")
	return nil
}

func isDuplicateSchema(err error) bool {
	if errors.Is(err, migrate.ErrNoChange) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDuplicateTable
	}
	// migrate's database.Error does not always unwrap to the driver error
	return strings.Contains(err.Error(), "SQLSTATE "+pgDuplicateTable)
}
