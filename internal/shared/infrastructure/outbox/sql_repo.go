package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLRepository implements Repository for SQLite and PostgreSQL.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates an outbox repository over conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLRepository) q(query string) string {
	return r.conn.Driver().Rebind(query)
}

const insertMessage = `
INSERT INTO outbox_events (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	d := r.conn.Driver()
	exec := r.exec(ctx)
	for _, msg := range msgs {
		err := exec.QueryRow(ctx, r.q(insertMessage),
			msg.EventID.String(),
			msg.AggregateType,
			msg.AggregateID.String(),
			msg.RoutingKey,
			string(msg.Payload),
			string(msg.Metadata),
			d.TimeArg(msg.CreatedAt),
		).Scan(&msg.ID)
		if err != nil {
			return fmt.Errorf("insert outbox event %s: %w", msg.RoutingKey, err)
		}
	}
	return nil
}

const selectPending = `
SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
       created_at, published_at, next_retry_at, retry_count, last_error, dead_at
FROM outbox_events
WHERE published_at IS NULL
  AND dead_at IS NULL
  AND (next_retry_at IS NULL OR next_retry_at <= ?)
ORDER BY id
LIMIT ?`

func (r *SQLRepository) FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.exec(ctx).Query(ctx, r.q(selectPending), r.conn.Driver().TimeArg(now), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox events: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                    Message
		eventID, aggregateID   string
		payload, lastError     string
		metadata               sql.NullString
		createdAt, publishedAt database.Time
		nextRetryAt, deadAt    database.Time
	)
	err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt,
		&msg.RetryCount, &lastError, &deadAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan outbox event: %w", err)
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("parse aggregate id: %w", err)
	}
	msg.Payload = []byte(payload)
	if metadata.Valid {
		msg.Metadata = []byte(metadata.String)
	}
	msg.LastError = lastError
	msg.CreatedAt = createdAt.Time
	msg.PublishedAt = publishedAt.Ptr()
	msg.NextRetryAt = nextRetryAt.Ptr()
	msg.DeadAt = deadAt.Ptr()
	return &msg, nil
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.exec(ctx).Exec(ctx,
		r.q(`UPDATE outbox_events SET published_at = ?, last_error = '' WHERE id = ?`),
		r.conn.Driver().TimeArg(at), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.exec(ctx).Exec(ctx,
		r.q(`UPDATE outbox_events SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`),
		reason, r.conn.Driver().TimeArg(nextRetryAt), id)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.exec(ctx).Exec(ctx,
		r.q(`UPDATE outbox_events SET retry_count = retry_count + 1, last_error = ?, dead_at = ? WHERE id = ?`),
		reason, r.conn.Driver().TimeArg(at), id)
	return err
}

func (r *SQLRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.exec(ctx).Exec(ctx,
		r.q(`DELETE FROM outbox_events WHERE published_at IS NOT NULL AND published_at < ?`),
		r.conn.Driver().TimeArg(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
