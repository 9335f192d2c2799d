package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/garnet-screening/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationSource returns the embedded migration files as a migrate source.
func MigrationSource() (source.Driver, error) {
	return iofs.New(migrationFiles, "migrations")
}

func (c *Connection) newMigrate() (*migrate.Migrate, error) {
	src, err := MigrationSource()
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeInternal, "failed to open embedded migrations")
	}
	driver, err := mpostgres.WithInstance(c.db, &mpostgres.Config{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return m, nil
}

// RunMigrations applies every pending embedded migration.
func (c *Connection) RunMigrations() error {
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, _, _ := m.Version()
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to run migrations (current version: %d)", version))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		c.logger.Warn("Failed to get migration version", logging.Err(err))
	}
	c.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// RollbackMigration rolls the schema back by steps.
func (c *Connection) RollbackMigration(steps int) error {
	if steps <= 0 {
		return pkgerrors.InvalidParam(fmt.Sprintf("steps must be greater than 0, got %d", steps))
	}
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return pkgerrors.New(pkgerrors.ErrCodeConflict, "no migrations to roll back")
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, fmt.Sprintf("failed to rollback %d step(s)", steps))
	}
	return nil
}

// MigrationStatus returns the applied version and dirty flag.  A database
// with no migrations reports version 0.
func (c *Connection) MigrationStatus() (version uint, dirty bool, err error) {
	m, err := c.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to get migration version")
	}
	return version, dirty, nil
}

//Personal.AI order the ending
