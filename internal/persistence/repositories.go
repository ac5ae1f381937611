package persistence

import "context"

// QueryExecutor runs read-only statements and returns fully materialised results.
type QueryExecutor interface {
	Query(ctx context.Context, statement string, args ...any) (RowSet, error)
	Dialect() Driver
}

// MemberWriter registers a member together with its initial payment as one atomic unit.
type MemberWriter interface {
	AddMemberAndPayment(ctx context.Context, member NewMember) error
}

type operationKey struct{}

// WithOperation labels statements issued under ctx, for logs and metrics.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFromContext returns the label set by WithOperation, or "query".
func OperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return "query"
	}
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "query"
}
