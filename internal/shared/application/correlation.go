package application

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// WithCorrelationID tags ctx so events raised under it share one chain.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID, or uuid.Nil.
func CorrelationIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(correlationKey{}).(uuid.UUID)
	return id
}
