package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func scoredTask(t *testing.T, title string, score float64, created time.Time) *task.Task {
	t.Helper()
	tk, err := task.NewTask(title, 30, created)
	require.NoError(t, err)
	require.NoError(t, tk.ApplyPriority(score, "Standard priority", now))
	return tk
}

func TestGetTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("returns dto", func(t *testing.T) {
		tk := scoredTask(t, "Report", 0.4, now.Add(-time.Hour))
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, tk.ID()).Return(tk, nil)

		dto, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{TaskID: tk.ID()})
		require.NoError(t, err)
		assert.Equal(t, "Report", dto.Title)
		assert.Equal(t, "medium", dto.Importance)
		assert.Equal(t, "moderate", dto.Difficulty)
		assert.Equal(t, "not_started", dto.Status)
		assert.InDelta(t, 0.4, dto.PriorityScore, 1e-9)
		assert.False(t, dto.Stale)
	})

	t.Run("propagates not found", func(t *testing.T) {
		id := uuid.New()
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, id).Return(nil, task.ErrTaskNotFound)

		_, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{TaskID: id})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}

func TestListTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()

	a := scoredTask(t, "A", 0.2, now.Add(-3*time.Hour))
	b := scoredTask(t, "B", 0.9, now.Add(-2*time.Hour))
	c, err := task.NewTask("C", 30, now.Add(-time.Hour))
	require.NoError(t, err)

	t.Run("defaults to open tasks by priority", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.Filter{Statuses: task.OpenStatuses()}).Return([]*task.Task{a, b, c}, nil)

		dtos, err := NewListTasksHandler(repo).WithClock(func() time.Time { return now }).Handle(ctx, ListTasksQuery{})
		require.NoError(t, err)
		require.Len(t, dtos, 3)
		assert.Equal(t, []string{"B", "A", "C"}, []string{dtos[0].Title, dtos[1].Title, dtos[2].Title})
		assert.True(t, dtos[2].Stale)
	})

	t.Run("stale only with limit", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.Filter{}).Return([]*task.Task{a, b, c}, nil)

		dtos, err := NewListTasksHandler(repo).Handle(ctx, ListTasksQuery{Status: "all", StaleOnly: true, Limit: 5})
		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "C", dtos[0].Title)
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.Filter{Statuses: []task.Status{task.StatusNotStarted}}).Return([]*task.Task{c, b, a}, nil)

		dtos, err := NewListTasksHandler(repo).Handle(ctx, ListTasksQuery{Status: "not_started", SortBy: "created_at", Limit: 2})
		require.NoError(t, err)
		require.Len(t, dtos, 2)
		assert.Equal(t, "A", dtos[0].Title)
		assert.Equal(t, "B", dtos[1].Title)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewListTasksHandler(new(mockTaskRepo)).Handle(ctx, ListTasksQuery{Status: "archived"})
		assert.ErrorIs(t, err, task.ErrInvalidStatus)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(mockTaskRepo)
		boom := errors.New("boom")
		repo.On("List", ctx, mock.Anything).Return(nil, boom)

		_, err := NewListTasksHandler(repo).Handle(ctx, ListTasksQuery{})
		assert.ErrorIs(t, err, boom)
	})
}
