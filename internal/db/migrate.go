package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending up migrations embedded in the binary.
// It reports whether any migration was applied.
func Migrate(dsn string) (applied bool, err error) {
	// golang-migrate needs a database/sql handle; the pgx stdlib driver shares the DSN format.
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return false, fmt.Errorf("open migration connection failed: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return false, fmt.Errorf("create migration driver failed: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return false, fmt.Errorf("open embedded migrations failed: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return false, fmt.Errorf("create migrate instance failed: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return false, fmt.Errorf("apply migrations failed: %w", err)
	}
	return err == nil, nil
}
