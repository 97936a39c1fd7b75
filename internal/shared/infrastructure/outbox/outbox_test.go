package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type pingEvent struct {
	domain.BaseEvent
	Note string `json:"note"`
}

func newPing(note string) *pingEvent {
	e := &pingEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Ping", "ping.sent", now),
		Note:      note,
	}
	e.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New()})
	return e
}

func setup(t *testing.T) (*sqlite.Connection, *outbox.SQLRepository) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn, nil))
	return conn, outbox.NewSQLRepository(conn)
}

func TestNewMessage(t *testing.T) {
	e := newPing("hello")

	msg, err := outbox.NewMessage(e)
	require.NoError(t, err)

	assert.Equal(t, e.EventID(), msg.EventID)
	assert.Equal(t, "ping.sent", msg.RoutingKey)
	assert.Equal(t, "Ping", msg.AggregateType)
	assert.JSONEq(t, `{"note":"hello"}`, string(msg.Payload))
	assert.Equal(t, e.Metadata().CorrelationID.String(), msg.CorrelationID())
	assert.False(t, msg.IsPublished())
}

func TestSQLRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, repo := setup(t)

	msgs, err := outbox.NewMessages([]domain.DomainEvent{newPing("a"), newPing("b")})
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(ctx, msgs))
	assert.NotZero(t, msgs[0].ID)
	assert.Greater(t, msgs[1].ID, msgs[0].ID)

	pending, err := repo.FetchPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, msgs[0].EventID, pending[0].EventID)
	assert.Equal(t, now, pending[0].CreatedAt)

	require.NoError(t, repo.MarkPublished(ctx, pending[0].ID, now))
	require.NoError(t, repo.MarkFailed(ctx, pending[1].ID, "broker down", now.Add(time.Minute)))

	pending, err = repo.FetchPending(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed message is not due yet")

	pending, err = repo.FetchPending(ctx, now.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "broker down", pending[0].LastError)

	purged, err := repo.Purge(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestSQLRepository_JoinsTransaction(t *testing.T) {
	ctx := context.Background()
	conn, repo := setup(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	msgs, err := outbox.NewMessages([]domain.DomainEvent{newPing("rolled back")})
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, msgs))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.FetchPending(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelay(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes pending messages", func(t *testing.T) {
		_, repo := setup(t)
		msgs, err := outbox.NewMessages([]domain.DomainEvent{newPing("a"), newPing("b")})
		require.NoError(t, err)
		require.NoError(t, repo.SaveBatch(ctx, msgs))

		pub := &eventbus.MemoryPublisher{}
		relay := outbox.NewRelay(repo, pub, outbox.DefaultRelayConfig(), nil).WithClock(func() time.Time { return now })

		n, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, pub.Messages(), 2)
		assert.Equal(t, uint64(2), relay.Stats().Published)

		n, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("retries then dead-letters", func(t *testing.T) {
		_, repo := setup(t)
		msgs, err := outbox.NewMessages([]domain.DomainEvent{newPing("x")})
		require.NoError(t, err)
		require.NoError(t, repo.SaveBatch(ctx, msgs))

		clock := now
		cfg := outbox.DefaultRelayConfig()
		cfg.MaxRetries = 2
		pub := &eventbus.MemoryPublisher{Fail: errors.New("broker down")}
		relay := outbox.NewRelay(repo, pub, cfg, nil).WithClock(func() time.Time { return clock })

		_, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), relay.Stats().Failed)

		clock = clock.Add(time.Hour)
		_, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), relay.Stats().Dead)

		clock = clock.Add(time.Hour)
		pending, err := repo.FetchPending(ctx, clock, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
