package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/gym-dashboard/internal/persistence"
	"github.com/example/gym-dashboard/internal/persistence/migration"
	"github.com/example/gym-dashboard/internal/persistence/sqldb"
)

// SQLiteHarness provides the executor and writer backed by a temporary,
// migrated SQLite database for integration-style tests.
type SQLiteHarness struct {
	Config   persistence.ConnectionConfig
	Pool     *sqldb.ConnectionPool
	Executor *sqldb.Executor
	Writer   *sqldb.MemberWriter

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file migrated
// with the bundled schema and plans. Callers may optionally invoke Close, but
// the helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	cfg := persistence.ConnectionConfig{
		Driver:   persistence.DriverSQLite,
		FilePath: filepath.Join(tb.TempDir(), "gym.db"),
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := migration.Run(cfg, migration.Up, quiet); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	pool, err := sqldb.Open(cfg)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Config:   cfg,
		Pool:     pool,
		Executor: sqldb.NewExecutor(pool, 5*time.Second, nil),
		Writer:   sqldb.NewMemberWriter(pool, 5*time.Second, nil),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// Exec runs a seeding statement and returns the last inserted row id.
func (h *SQLiteHarness) Exec(tb testing.TB, query string, args ...any) int64 {
	tb.Helper()

	ctx := context.Background()
	conn, err := h.Pool.Acquire(ctx)
	if err != nil {
		tb.Fatalf("failed to acquire connection: %v", err)
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		tb.Fatalf("failed to exec %q: %v", query, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		tb.Fatalf("failed to read inserted id: %v", err)
	}
	return id
}

// InsertMember stores m directly, bypassing the writer, and returns its id.
func (h *SQLiteHarness) InsertMember(tb testing.TB, m persistence.Member) int64 {
	tb.Helper()
	return h.Exec(tb,
		`INSERT INTO members (name, join_date, plan_id, expiration_date) VALUES (?, ?, ?, ?)`,
		m.Name, m.JoinDate.Format(persistence.DateLayout), m.PlanID, m.ExpirationDate.Format(persistence.DateLayout),
	)
}

// InsertTrainer stores t and returns its id.
func (h *SQLiteHarness) InsertTrainer(tb testing.TB, t persistence.Trainer) int64 {
	tb.Helper()
	return h.Exec(tb,
		`INSERT INTO trainers (name, specialty, availability_days) VALUES (?, ?, ?)`,
		t.Name, t.Specialty, t.AvailabilityDays,
	)
}

// InsertEvent stores e and returns its id.
func (h *SQLiteHarness) InsertEvent(tb testing.TB, e persistence.Event) int64 {
	tb.Helper()
	return h.Exec(tb,
		`INSERT INTO events (event_name, event_date, trainer_id, description) VALUES (?, ?, ?, ?)`,
		e.Name, e.Date.Format(persistence.DateLayout), e.TrainerID, e.Description,
	)
}

// Attend records attendance of a member at an event.
func (h *SQLiteHarness) Attend(tb testing.TB, a persistence.EventAttendance) {
	tb.Helper()
	h.Exec(tb, `INSERT INTO event_attendance (event_id, member_id) VALUES (?, ?)`, a.EventID, a.MemberID)
}

// CountRows returns the number of rows in table.
func (h *SQLiteHarness) CountRows(tb testing.TB, table string) int64 {
	tb.Helper()

	result, err := h.Executor.Query(context.Background(), "SELECT COUNT(*) FROM "+table)
	if err != nil {
		tb.Fatalf("failed to count %s: %v", table, err)
	}
	count, ok := result.Rows[0][0].(int64)
	if !ok {
		tb.Fatalf("unexpected count type %T", result.Rows[0][0])
	}
	return count
}
