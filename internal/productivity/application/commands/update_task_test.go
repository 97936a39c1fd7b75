package commands

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateTaskHandler_Handle(t *testing.T) {
	t.Run("updates scoring inputs and marks score stale", func(t *testing.T) {
		existing := newTestTask("Write report", 60)
		require.NoError(t, existing.ApplyPriority(0.4, "Standard priority", fixedNow))
		existing.ClearDomainEvents()

		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, uow).WithClock(fixedClock)

		ctx := context.Background()
		txCtx := expectCommit(uow, ctx)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(existing, nil)
		taskRepo.On("Save", txCtx, existing).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 2
		})).Return(nil)

		err := handler.Handle(ctx, UpdateTaskCommand{
			TaskID:     existing.ID(),
			Importance: ptr("high"),
			Status:     ptr("in_progress"),
		})

		require.NoError(t, err)
		assert.Equal(t, value_objects.ImportanceHigh, existing.Importance())
		assert.Equal(t, task.StatusInProgress, existing.Status())
		assert.True(t, existing.NeedsRescore(fixedNow, 0))
		taskRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("skips save when nothing changes", func(t *testing.T) {
		existing := newTestTask("Write report", 60)

		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, uow).WithClock(fixedClock)

		ctx := context.Background()
		txCtx := expectCommit(uow, ctx)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(existing, nil)

		err := handler.Handle(ctx, UpdateTaskCommand{
			TaskID:           existing.ID(),
			Title:            ptr("Write report"),
			EstimatedMinutes: ptr(60),
			Importance:       ptr("medium"),
		})

		require.NoError(t, err)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("title change is saved without events", func(t *testing.T) {
		existing := newTestTask("Draft", 30)

		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, uow).WithClock(fixedClock)

		ctx := context.Background()
		txCtx := expectCommit(uow, ctx)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(existing, nil)
		taskRepo.On("Save", txCtx, existing).Return(nil)

		require.NoError(t, handler.Handle(ctx, UpdateTaskCommand{TaskID: existing.ID(), Title: ptr("Final")}))
		assert.Equal(t, "Final", existing.Title())
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("clears due date", func(t *testing.T) {
		existing := newTestTask("Draft", 30)
		due := fixedNow.AddDate(0, 0, 3)
		require.NoError(t, existing.SetDueDate(&due, fixedNow))
		existing.ClearDomainEvents()

		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, uow).WithClock(fixedClock)

		ctx := context.Background()
		txCtx := expectCommit(uow, ctx)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(existing, nil)
		taskRepo.On("Save", txCtx, existing).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)

		require.NoError(t, handler.Handle(ctx, UpdateTaskCommand{TaskID: existing.ID(), ClearDueDate: true}))
		assert.Nil(t, existing.DueDate())
	})

	t.Run("closed task rejects changes", func(t *testing.T) {
		existing := newTestTask("Draft", 30)
		require.NoError(t, existing.ChangeStatus(task.StatusCompleted, fixedNow))
		existing.ClearDomainEvents()

		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, uow).WithClock(fixedClock)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "tx")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(existing, nil)

		err := handler.Handle(ctx, UpdateTaskCommand{TaskID: existing.ID(), EstimatedMinutes: ptr(90)})
		assert.ErrorIs(t, err, task.ErrTaskClosed)
		uow.AssertExpectations(t)
	})

	t.Run("unknown task", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "tx")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)

		existing := newTestTask("ghost", 10)
		taskRepo.On("FindByID", txCtx, existing.ID()).Return(nil, task.ErrTaskNotFound)

		err := handler.Handle(ctx, UpdateTaskCommand{TaskID: existing.ID(), Title: ptr("x")})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
