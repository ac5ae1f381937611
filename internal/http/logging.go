package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/gym-dashboard/internal/application"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request scoped logger so request_id, method and
// path are carried into handler logs.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := make([]any, 0, 4+len(attrs))
	pairs = append(pairs, "handler", handlerName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

// logFailure records a failed request with its error_kind. Rejected input,
// whether caught here or by the database, is logged at warn.
func logFailure(ctx context.Context, logger *slog.Logger, message string, err error) {
	kind := application.ErrorKind(err)
	level := slog.LevelError
	if kind == "validation" || strings.HasPrefix(kind, "write_") {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, message, "error", err, "error_kind", kind)
}
