package persistence

import "fmt"

// WriteError reasons reported by the member writer.
const (
	ReasonPlanNotFound        = "plan_not_found"
	ReasonInvalidArgument     = "invalid_argument"
	ReasonConstraintViolation = "constraint_violation"
	ReasonUnknown             = "unknown"
)

// ConnectionError reports that the database could not be reached or rejected the credentials.
type ConnectionError struct {
	Driver Driver
	Err    error
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("persistence: %s connection failed: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// QueryError wraps a failure raised while running a read statement.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("persistence: query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WriteError wraps a failure raised by AddMemberAndPayment. Reason classifies the
// underlying driver error so callers can tell a missing plan from a rejected argument.
type WriteError struct {
	Procedure string
	Reason    string
	Err       error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" && e.Reason != ReasonUnknown {
		return fmt.Sprintf("persistence: %s failed (%s): %v", e.Procedure, e.Reason, e.Err)
	}
	return fmt.Sprintf("persistence: %s failed: %v", e.Procedure, e.Err)
}

func (e *WriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
