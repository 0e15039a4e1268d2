package sqldb

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending up-migration for the configured dialect.
// It opens its own connection because closing a migrate instance also closes
// the database handle it was given.
func Migrate(ctx context.Context, cfg Config, log zerolog.Logger) error {
	db, err := Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: load migrations: %w", err)
	}

	var driver database.Driver
	switch cfg.Driver {
	case DriverPostgres:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case DriverSQLite:
		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return fmt.Errorf("migrate: driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return fmt.Errorf("migrate: init: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("migrate: close failed")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate: version: %w", err)
	}
	log.Info().Str("driver", cfg.Driver).Uint("version", version).Bool("dirty", dirty).Msg("schema up to date")
	return nil
}
