package sqldb

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/example/gym-dashboard/internal/persistence"
)

// ErrorMapper classifies driver errors raised by member writes.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// WriteReason maps a driver error to one of the persistence.Reason* labels.
func (em *ErrorMapper) WriteReason(err error) string {
	if err == nil {
		return ""
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return postgresReason(pqErr)
	}

	errStr := err.Error()
	switch {
	case containsAny(errStr, []string{"FOREIGN KEY constraint failed", "foreign key constraint"}):
		return persistence.ReasonPlanNotFound
	case containsAny(errStr, []string{"CHECK constraint failed", "NOT NULL constraint failed"}):
		return persistence.ReasonInvalidArgument
	case containsAny(errStr, []string{"UNIQUE constraint failed", "constraint failed"}):
		return persistence.ReasonConstraintViolation
	}
	return persistence.ReasonUnknown
}

func postgresReason(err *pq.Error) string {
	switch err.Code.Name() {
	case "foreign_key_violation", "no_data_found":
		return persistence.ReasonPlanNotFound
	case "check_violation", "not_null_violation", "invalid_parameter_value":
		return persistence.ReasonInvalidArgument
	}
	switch err.Code.Class() {
	case "22":
		return persistence.ReasonInvalidArgument
	case "23":
		return persistence.ReasonConstraintViolation
	}
	return persistence.ReasonUnknown
}

func containsAny(s string, substrings []string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
