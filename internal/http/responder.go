package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/gym-dashboard/internal/application"
	"github.com/example/gym-dashboard/internal/persistence"
)

var (
	errBadRequestBody = errors.New("request body must be a JSON object with name, join_date and plan_id")
	errBadJoinDate    = errors.New("join_date must use the YYYY-MM-DD format")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps the persistence and validation taxonomy onto status codes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		vErr     *application.ValidationError
		writeErr *persistence.WriteError
		connErr  *persistence.ConnectionError
		queryErr *persistence.QueryError
	)
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "request parameters are invalid",
			Errors:  vErr.FieldErrors,
		})
	case errors.As(err, &writeErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: writeErr.Reason,
			Message:   writeFailureMessage(writeErr),
		})
	case errors.As(err, &connErr):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "database_unavailable",
			Message:   "the database is unreachable, check the connection settings",
		})
	case errors.As(err, &queryErr):
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: "query_failed",
			Message:   "the report query failed",
		})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// writeFailureMessage surfaces the database's own explanation when there is one.
func writeFailureMessage(err *persistence.WriteError) string {
	if err.Err != nil {
		if msg := strings.TrimSpace(err.Err.Error()); msg != "" {
			return msg
		}
	}
	switch err.Reason {
	case persistence.ReasonPlanNotFound:
		return "the selected membership plan does not exist"
	case persistence.ReasonInvalidArgument:
		return "the database rejected the member details"
	default:
		return "the member could not be added"
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
