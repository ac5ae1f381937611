package migration

import (
	"database/sql"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/example/gym-dashboard/internal/persistence"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseDirection(t *testing.T) {
	for _, value := range []string{"up", "down"} {
		got, err := ParseDirection(value)
		require.NoError(t, err)
		assert.Equal(t, Direction(value), got)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	pg, err := Source(persistence.DriverPostgres)
	require.NoError(t, err)
	procs, err := fs.Glob(pg, "*add_member_and_payment*.sql")
	require.NoError(t, err)
	assert.Len(t, procs, 2)

	lite, err := Source(persistence.DriverSQLite)
	require.NoError(t, err)
	ups, err := fs.Glob(lite, "*.up.sql")
	require.NoError(t, err)
	assert.Len(t, ups, 2)

	_, err = Source("oracle")
	assert.Error(t, err)
}

func TestRun_Validation(t *testing.T) {
	err := Run(persistence.ConnectionConfig{Driver: persistence.DriverSQLite}, Up, quietLogger())
	assert.Error(t, err)

	err = Run(persistence.ConnectionConfig{Driver: persistence.DriverPostgres, Host: "localhost"}, Up, quietLogger())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "gym.db")
	err = Run(persistence.ConnectionConfig{Driver: persistence.DriverSQLite, FilePath: path}, "sideways", quietLogger())
	assert.Error(t, err)
}

func TestRun_SQLite(t *testing.T) {
	cfg := persistence.ConnectionConfig{
		Driver:   persistence.DriverSQLite,
		FilePath: filepath.Join(t.TempDir(), "gym.db"),
	}

	require.NoError(t, Run(cfg, Up, quietLogger()))
	// a second run finds nothing to apply
	require.NoError(t, Run(cfg, Up, quietLogger()))

	db, err := sql.Open("sqlite", cfg.DSN())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"members", "membership_plans", "payments", "trainers", "events", "event_attendance"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var plans int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM membership_plans`).Scan(&plans))
	assert.Equal(t, 4, plans)

	require.NoError(t, Run(cfg, Down, quietLogger()))
	var remaining int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'members'`).Scan(&remaining))
	assert.Zero(t, remaining)
}
