// Package migration applies the bundled gym schema with golang-migrate.
//
// Migrations are embedded per backend under migrations/<driver>/ and follow the
// golang-migrate naming convention {version}_{description}.{up|down}.sql. The
// PostgreSQL set also installs the AddMemberAndPayment stored procedure; SQLite
// has no procedures, so the file-backed writer performs the same inserts in a
// client-side transaction instead.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/example/gym-dashboard/internal/persistence"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// ErrNoChange is returned when the schema is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Direction selects whether migrations are applied or reverted.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction supplied on the command line.
func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case Up, Down:
		return Direction(value), nil
	default:
		return "", fmt.Errorf("direction must be up or down, got %q", value)
	}
}

// Source returns the embedded migration files for a driver.
func Source(driver persistence.Driver) (fs.FS, error) {
	switch driver {
	case persistence.DriverPostgres, persistence.DriverSQLite:
		return fs.Sub(migrationFS, "migrations/"+string(driver))
	default:
		return nil, fmt.Errorf("migration: unsupported driver %q", driver)
	}
}

// Run applies (or reverts) every migration for cfg. It returns nil when the
// schema is already current.
func Run(cfg persistence.ConnectionConfig, direction Direction, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := ParseDirection(string(direction)); err != nil {
		return err
	}
	if cfg.Driver == persistence.DriverSQLite && cfg.FilePath == "" {
		return errors.New("migration: sqlite file path is not set")
	}
	if cfg.Driver == persistence.DriverPostgres && cfg.DatabaseName == "" {
		return errors.New("migration: database name is not set")
	}

	files, err := Source(cfg.Driver)
	if err != nil {
		return err
	}
	sourceDriver, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, cfg.MigrationURL())
	if err != nil {
		return &persistence.ConnectionError{Driver: cfg.Driver, Err: fmt.Errorf("migrate: %w", err)}
	}
	defer func() { _, _ = m.Close() }()

	logger = logger.With("driver", string(cfg.Driver), "direction", string(direction))
	if version, dirty, verr := m.Version(); verr == nil {
		logger.Info("current schema version", "version", version, "dirty", dirty)
	}

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "error", err)
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current")
		return nil
	}

	if version, _, verr := m.Version(); verr == nil {
		logger.Info("migrations applied", "version", version)
	}
	return nil
}
