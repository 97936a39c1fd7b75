package task

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestNewTask(t *testing.T) {
	task, err := NewTask("  Write report  ", 90, now)
	require.NoError(t, err)

	assert.Equal(t, "Write report", task.Title())
	assert.Equal(t, 90, task.EstimatedMinutes())
	assert.Equal(t, value_objects.ImportanceMedium, task.Importance())
	assert.Equal(t, value_objects.DifficultyModerate, task.Difficulty())
	assert.Equal(t, StatusNotStarted, task.Status())
	require.Len(t, task.DomainEvents(), 1)
	assert.Equal(t, RoutingKeyCreated, task.DomainEvents()[0].RoutingKey())
}

func TestNewTask_Validation(t *testing.T) {
	_, err := NewTask("   ", 30, now)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewTask("Task", 0, now)
	assert.ErrorIs(t, err, ErrInvalidEstimate)
}

func TestTask_InputChangesBumpRevision(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)
	task.ClearDomainEvents()

	require.NoError(t, task.SetImportance(value_objects.ImportanceHigh, now))
	require.NoError(t, task.SetDifficulty(value_objects.DifficultyEasy, now))
	due := now.Add(48 * time.Hour)
	require.NoError(t, task.SetDueDate(&due, now))
	require.NoError(t, task.SetEstimatedMinutes(45, now))
	require.NoError(t, task.SetDependencies([]uuid.UUID{uuid.New()}, now))
	require.NoError(t, task.ChangeStatus(StatusBlocked, now))

	assert.Equal(t, 6, task.Revision())
	assert.Len(t, task.DomainEvents(), 6)
	assert.True(t, task.HasDependencies())
}

func TestTask_SetTitleDoesNotInvalidateScore(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)
	require.NoError(t, task.ApplyPriority(0.5, "Standard priority", now))

	require.NoError(t, task.SetTitle("Renamed", now.Add(time.Minute)))
	assert.False(t, task.NeedsRescore(now.Add(time.Minute), 0))
}

func TestTask_NeedsRescore(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)
	assert.True(t, task.NeedsRescore(now, time.Hour), "never scored")

	require.NoError(t, task.ApplyPriority(0.4, "Standard priority", now))
	assert.False(t, task.NeedsRescore(now.Add(30*time.Minute), time.Hour))
	assert.True(t, task.NeedsRescore(now.Add(2*time.Hour), time.Hour), "score aged out")
	assert.False(t, task.NeedsRescore(now.Add(2*time.Hour), 0), "age check disabled")

	require.NoError(t, task.SetImportance(value_objects.ImportanceCritical, now.Add(time.Minute)))
	assert.True(t, task.NeedsRescore(now.Add(time.Minute), time.Hour), "input changed")
}

func TestTask_ApplyPriorityRejectsOutOfRange(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)

	assert.ErrorIs(t, task.ApplyPriority(1.2, "", now), ErrScoreOutOfRange)
	assert.ErrorIs(t, task.ApplyPriority(-0.1, "", now), ErrScoreOutOfRange)
}

func TestTask_ClosedTasksRejectChanges(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)
	require.NoError(t, task.ChangeStatus(StatusCompleted, now))

	assert.ErrorIs(t, task.SetImportance(value_objects.ImportanceHigh, now), ErrTaskClosed)
	assert.ErrorIs(t, task.ChangeStatus(StatusInProgress, now), ErrInvalidTransition)
	assert.NoError(t, task.ChangeStatus(StatusCompleted, now), "same status is a no-op")
}

func TestTask_SetDependencies(t *testing.T) {
	task, err := NewTask("Task", 30, now)
	require.NoError(t, err)

	dep := uuid.New()
	require.NoError(t, task.SetDependencies([]uuid.UUID{dep, dep}, now))
	assert.Equal(t, []uuid.UUID{dep}, task.Dependencies())

	assert.ErrorIs(t, task.SetDependencies([]uuid.UUID{task.ID()}, now), ErrSelfDependency)
}

func TestTask_SnapshotRoundTrip(t *testing.T) {
	task, err := NewTask("Task", 120, now)
	require.NoError(t, err)
	require.NoError(t, task.SetImportance(value_objects.ImportanceHigh, now))
	require.NoError(t, task.ApplyPriority(0.7, "High importance", now))

	restored := Rehydrate(task.Snapshot())

	assert.Equal(t, task.ID(), restored.ID())
	assert.Equal(t, task.Revision(), restored.Revision())
	assert.Equal(t, 0.7, restored.PriorityScore())
	assert.Empty(t, restored.DomainEvents())
	assert.False(t, restored.NeedsRescore(now, 0))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Blocked")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, s)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.True(t, StatusCancelled.IsClosed())
	assert.False(t, StatusBlocked.IsClosed())
}
