package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/gym-dashboard/internal/persistence"
)

// DefaultQueryTimeout bounds a statement when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// Executor runs read-only statements on a connection acquired per call.
type Executor struct {
	pool    *ConnectionPool
	timeout time.Duration
	metrics *Metrics
}

// NewExecutor creates an executor. A non-positive timeout selects DefaultQueryTimeout.
func NewExecutor(pool *ConnectionPool, timeout time.Duration, metrics *Metrics) *Executor {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Executor{pool: pool, timeout: timeout, metrics: metrics}
}

// Dialect reports the backend the statements must be written for.
func (e *Executor) Dialect() persistence.Driver {
	return e.pool.Driver()
}

// Query runs statement with bound args and materialises every row before the
// connection is released.
func (e *Executor) Query(ctx context.Context, statement string, args ...any) (result persistence.RowSet, err error) {
	operation := persistence.OperationFromContext(ctx)
	started := time.Now()
	defer func() {
		e.metrics.observe(operation, started)
		if err != nil {
			e.metrics.fail(operation, failureKind(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return persistence.RowSet{}, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, statement, args...)
	if err != nil {
		return persistence.RowSet{}, &persistence.QueryError{Statement: statement, Err: err}
	}
	defer rows.Close()

	result, err = collectRows(rows)
	if err != nil {
		return persistence.RowSet{}, &persistence.QueryError{Statement: statement, Err: err}
	}
	return result, nil
}

func collectRows(rows *sql.Rows) (persistence.RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return persistence.RowSet{}, fmt.Errorf("failed to read columns: %w", err)
	}

	out := persistence.RowSet{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return persistence.RowSet{}, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return persistence.RowSet{}, err
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(persistence.DateLayout)
		}
		return val.UTC().Format(time.RFC3339)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}

func failureKind(err error) string {
	var (
		connErr  *persistence.ConnectionError
		queryErr *persistence.QueryError
		writeErr *persistence.WriteError
	)
	switch {
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &queryErr):
		return "query"
	case errors.As(err, &writeErr):
		return "write"
	default:
		return "unexpected"
	}
}
