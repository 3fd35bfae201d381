package postgres

import (
	"errors"
	"fmt"

	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending schema migration from the given
// directory. An already-current schema is not an error.
func RunMigrations(databaseURL, migrationsPath string) error {
	m, err := newMigrator(databaseURL, migrationsPath)
	if err != nil {
		return err
	}

	switch err := m.Up(); {
	case err == nil:
		slog.Info("schema migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("schema already up to date")
	default:
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// RunMigrationsDown rolls back the most recently applied migration.
func RunMigrationsDown(databaseURL, migrationsPath string) error {
	m, err := newMigrator(databaseURL, migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	slog.Info("schema migration rolled back")
	return nil
}

func newMigrator(databaseURL, migrationsPath string) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	return m, nil
}
