package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. SaveBatch joins the ambient
// transaction so events commit atomically with the aggregate change.
type Repository interface {
	SaveBatch(ctx context.Context, msgs []*Message) error

	// FetchPending returns unpublished, non-dead messages due at now,
	// oldest first.
	FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// Purge deletes published messages older than before.
	Purge(ctx context.Context, before time.Time) (int64, error)
}
