package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

// RunMigrations brings the wallet schema up to date. The migrations path is a
// plain directory (./migrations/postgres); the file:// scheme is added here.
func RunMigrations(databaseURL string, migrationsPath string) error {
	if migrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	return nil
}
