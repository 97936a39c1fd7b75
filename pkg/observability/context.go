package observability

import (
	"context"

	"github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/google/uuid"
)

type operationKey struct{}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFromContext extracts the operation name from context.
func OperationFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok {
		return op
	}
	return ""
}

// NewRequestContext tags ctx with an operation name and a fresh correlation
// id, unless ctx already carries one.
func NewRequestContext(ctx context.Context, operation string) context.Context {
	if application.CorrelationIDFromContext(ctx) == uuid.Nil {
		ctx = application.WithCorrelationID(ctx, uuid.New())
	}
	return WithOperation(ctx, operation)
}
