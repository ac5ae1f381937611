package sqldb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gym-dashboard/internal/persistence"
)

func setupMockPool(t *testing.T, driver persistence.Driver) (*ConnectionPool, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewConnectionPool(db, driver), mock
}

func TestExecutor_Query(t *testing.T) {
	t.Run("materialises and normalises rows", func(t *testing.T) {
		pool, mock := setupMockPool(t, persistence.DriverPostgres)
		joined := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
		created := time.Date(2024, time.January, 15, 8, 30, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "member_id" FROM "members" LIMIT $1`)).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"member_id", "name", "join_date", "created_at", "note"}).
				AddRow(int64(1), []byte("Alice"), joined, created, nil))

		executor := NewExecutor(pool, time.Second, nil)
		result, err := executor.Query(context.Background(), `SELECT "member_id" FROM "members" LIMIT $1`, int64(10))
		require.NoError(t, err)

		assert.Equal(t, []string{"member_id", "name", "join_date", "created_at", "note"}, result.Columns)
		assert.Equal(t, [][]any{{int64(1), "Alice", "2024-01-15", "2024-01-15T08:30:00Z", nil}}, result.Rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty results are not nil", func(t *testing.T) {
		pool, mock := setupMockPool(t, persistence.DriverSQLite)
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"trainer_id"}))

		result, err := NewExecutor(pool, 0, nil).Query(context.Background(), "SELECT trainer_id FROM trainers")
		require.NoError(t, err)
		assert.True(t, result.Empty())
		assert.NotNil(t, result.Rows)
	})

	t.Run("wraps statement failures as query errors", func(t *testing.T) {
		pool, mock := setupMockPool(t, persistence.DriverPostgres)
		driverErr := errors.New(`relation "members" does not exist`)
		mock.ExpectQuery("SELECT").WillReturnError(driverErr)

		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)
		ctx := persistence.WithOperation(context.Background(), "roster")
		_, err := NewExecutor(pool, time.Second, metrics).Query(ctx, "SELECT 1")

		var qErr *persistence.QueryError
		require.ErrorAs(t, err, &qErr)
		assert.ErrorIs(t, err, driverErr)
		assert.Equal(t, "SELECT 1", qErr.Statement)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("roster", "query")))
	})

	t.Run("reports an unreachable database as a connection error", func(t *testing.T) {
		pool, mock := setupMockPool(t, persistence.DriverPostgres)
		mock.ExpectClose()
		require.NoError(t, pool.Close())

		_, err := NewExecutor(pool, time.Second, nil).Query(context.Background(), "SELECT 1")

		var connErr *persistence.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, persistence.DriverPostgres, connErr.Driver)
	})
}

func TestExecutor_Dialect(t *testing.T) {
	pool, _ := setupMockPool(t, persistence.DriverSQLite)
	assert.Equal(t, persistence.DriverSQLite, NewExecutor(pool, 0, nil).Dialect())
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(3), normalizeValue(3))
	assert.Equal(t, int64(3), normalizeValue(int32(3)))
	assert.Equal(t, 1.5, normalizeValue(float32(1.5)))
	assert.Equal(t, "abc", normalizeValue([]byte("abc")))
	assert.Equal(t, true, normalizeValue(true))
	assert.Nil(t, normalizeValue(nil))

	local := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "2024-03-01T08:00:00Z", normalizeValue(time.Date(2024, time.March, 1, 10, 0, 0, 0, local)))
}
