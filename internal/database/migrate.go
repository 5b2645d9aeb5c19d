package database

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/avissapr/projectdesk/internal/config"
	"github.com/avissapr/projectdesk/internal/logging"
)

// RunMigrations applies all pending database migrations from the configured
// migrations directory.
func RunMigrations(cfg config.DatabaseConfig) error {
	log := logging.Logger

	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Warnf("could not get migration version: %v", err)
	}

	// A dirty version means a previous run died mid-migration; force the
	// recorded version so Up can proceed.
	if dirty {
		log.Warnf("database in dirty state at version %d, forcing clean", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Infof("database is up to date at version %d", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ = m.Version()
	log.Infof("migrations complete, current version: %d", version)
	return nil
}

// RollbackMigration rolls back the most recent migration.
func RollbackMigration(cfg config.DatabaseConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	version, _, _ := m.Version()
	logging.Logger.Infof("rolled back to version: %d", version)
	return nil
}
