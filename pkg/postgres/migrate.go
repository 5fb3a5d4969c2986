package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// RunMigrations applies all pending migrations from sourceURL
// (e.g. "file://./migrations"). Having nothing to apply is not an error.
func RunMigrations(dsn string, sourceURL string) error {
	return migrateWith(dsn, sourceURL, "up", (*migrate.Migrate).Up)
}

// RunMigrationsDown rolls back every migration from sourceURL.
func RunMigrationsDown(dsn string, sourceURL string) error {
	return migrateWith(dsn, sourceURL, "down", (*migrate.Migrate).Down)
}

func migrateWith(dsn, sourceURL, direction string, step func(*migrate.Migrate) error) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations %s: %w", direction, err)
	}
	return nil
}
