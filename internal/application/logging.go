package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/gym-dashboard/internal/logging"
	"github.com/example/gym-dashboard/internal/persistence"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps persistence and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var connErr *persistence.ConnectionError
	if errors.As(err, &connErr) {
		return "connection"
	}
	var writeErr *persistence.WriteError
	if errors.As(err, &writeErr) {
		return "write_" + writeErr.Reason
	}
	var queryErr *persistence.QueryError
	if errors.As(err, &queryErr) {
		return "query"
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
