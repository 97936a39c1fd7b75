package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestSQLBlockRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLBlockRepository(testdb.Open(t))

	taskID := uuid.New()
	b, err := domain.NewCalendarBlock(taskID, "Write report (Part 1)", at(9, 0), at(10, 30), now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, taskID, found.TaskID())
	assert.Equal(t, "Write report (Part 1)", found.Title())
	assert.True(t, at(9, 0).Equal(found.Start()))
	assert.True(t, at(10, 30).Equal(found.End()))
	assert.Equal(t, domain.BlockProposed, found.Status())

	require.NoError(t, found.Move(at(11, 0), at(12, 30), now.Add(time.Hour)))
	require.NoError(t, found.Transition(domain.BlockScheduled, now.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.True(t, at(11, 0).Equal(again.Start()))
	assert.Equal(t, domain.BlockScheduled, again.Status())
}

func TestSQLBlockRepository_Commitment(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLBlockRepository(testdb.Open(t))

	c, err := domain.NewCommitment("Standup", at(9, 0), at(9, 15), now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.True(t, found.IsCommitment())
	assert.Equal(t, domain.BlockScheduled, found.Status())
}

func TestSQLBlockRepository_FindInRange(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLBlockRepository(testdb.Open(t))

	mk := func(h1, m1, h2, m2 int) *domain.CalendarBlock {
		b, err := domain.NewCalendarBlock(uuid.New(), "b", at(h1, m1), at(h2, m2), now)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, b))
		return b
	}
	late := mk(14, 0, 15, 0)
	early := mk(9, 0, 10, 0)
	mk(16, 0, 17, 0)
	straddling := mk(11, 30, 12, 30)

	got, err := repo.FindInRange(ctx, at(9, 30), at(14, 30))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, early.ID(), got[0].ID())
	assert.Equal(t, straddling.ID(), got[1].ID())
	assert.Equal(t, late.ID(), got[2].ID())

	touching, err := repo.FindInRange(ctx, at(10, 0), at(11, 30))
	require.NoError(t, err)
	assert.Empty(t, touching)
}

func TestSQLBlockRepository_FindByIDMissing(t *testing.T) {
	repo := NewSQLBlockRepository(testdb.Open(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
}

func TestSQLBlockRepository_StatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLBlockRepository(testdb.Open(t))

	for i, status := range domain.BlockStatuses() {
		b := domain.RehydrateCalendarBlock(domain.BlockState{
			ID:        uuid.New(),
			TaskID:    uuid.New(),
			Title:     string(status),
			Start:     at(9+i, 0),
			End:       at(9+i, 30),
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, repo.Save(ctx, b))

		found, err := repo.FindByID(ctx, b.ID())
		require.NoError(t, err)
		assert.Equal(t, status, found.Status())
	}

	unknown := domain.RehydrateCalendarBlock(domain.BlockState{
		ID:        uuid.New(),
		Title:     "Legacy",
		Start:     at(16, 0),
		End:       at(17, 0),
		Status:    domain.BlockStatus("confirmed"),
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.Error(t, repo.Save(ctx, unknown))
}

func TestSQLBlockRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLBlockRepository(testdb.OpenPostgres(t))

	c, err := domain.NewCommitment("Lunch", at(12, 0), at(13, 0), now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindInRange(ctx, at(12, 30), at(12, 45))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	found := false
	for _, b := range got {
		if b.ID() == c.ID() {
			found = true
			assert.True(t, b.IsCommitment())
		}
	}
	assert.True(t, found)
}
