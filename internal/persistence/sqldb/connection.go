package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/example/gym-dashboard/internal/persistence"
)

const defaultMaxOpenConns = 4

// ConnectionPool hands out connections scoped to a single operation. The
// underlying *sql.DB stays bounded; callers must Close every acquired conn.
type ConnectionPool struct {
	db     *sql.DB
	driver persistence.Driver
}

// Open prepares a pool for the configured backend. No connection is dialled
// until the first Acquire or Ping.
func Open(cfg persistence.ConnectionConfig) (*ConnectionPool, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, &persistence.ConnectionError{Driver: cfg.Driver, Err: err}
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if cfg.Driver == persistence.DriverSQLite {
		// a single writer avoids SQLITE_BUSY between concurrent requests
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &ConnectionPool{db: db, driver: cfg.Driver}, nil
}

// NewConnectionPool wraps an existing handle, mainly for tests that supply a mock driver.
func NewConnectionPool(db *sql.DB, driver persistence.Driver) *ConnectionPool {
	return &ConnectionPool{db: db, driver: driver}
}

// Driver reports the backend this pool talks to.
func (cp *ConnectionPool) Driver() persistence.Driver {
	return cp.driver
}

// Acquire returns a dedicated connection. Failures to reach or authenticate
// against the database surface as *persistence.ConnectionError.
func (cp *ConnectionPool) Acquire(ctx context.Context) (*sql.Conn, error) {
	if cp == nil || cp.db == nil {
		return nil, &persistence.ConnectionError{Err: fmt.Errorf("connection pool not configured")}
	}
	conn, err := cp.db.Conn(ctx)
	if err != nil {
		return nil, &persistence.ConnectionError{Driver: cp.driver, Err: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &persistence.ConnectionError{Driver: cp.driver, Err: err}
	}
	return conn, nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	conn, err := cp.Acquire(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close closes the pool.
func (cp *ConnectionPool) Close() error {
	if cp != nil && cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// TransactionFunc represents a function that executes within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn inside a transaction on conn, rolling back on error or panic.
func WithTransaction(ctx context.Context, conn *sql.Conn, fn TransactionFunc) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func sqlDriverName(driver persistence.Driver) (string, error) {
	switch driver {
	case persistence.DriverPostgres:
		return "postgres", nil
	case persistence.DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("sqldb: unsupported driver %q", driver)
	}
}
