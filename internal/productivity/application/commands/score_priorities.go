package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/application/services"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ScorePrioritiesCommand selects the tasks to score. Without TaskIDs every
// open task is scored. StaleOnly restricts the run to tasks whose stored
// score is missing, outdated, or older than MaxAge.
type ScorePrioritiesCommand struct {
	TaskIDs   []uuid.UUID `validate:"dive,required"`
	StaleOnly bool
	MaxAge    time.Duration `validate:"gte=0"`
}

// ScorePrioritiesHandler scores tasks and persists the results.
type ScorePrioritiesHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	scorer     *services.PriorityScorer
	clock      func() time.Time
	logger     *slog.Logger
}

// NewScorePrioritiesHandler creates a new ScorePrioritiesHandler.
func NewScorePrioritiesHandler(
	taskRepo task.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	scorer *services.PriorityScorer,
	logger *slog.Logger,
) *ScorePrioritiesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScorePrioritiesHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		scorer:     scorer,
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time source.
func (h *ScorePrioritiesHandler) WithClock(clock func() time.Time) *ScorePrioritiesHandler {
	h.clock = clock
	return h
}

// Handle scores the selected tasks. Results are sorted by final score,
// highest first. Unknown task IDs are skipped.
func (h *ScorePrioritiesHandler) Handle(ctx context.Context, cmd ScorePrioritiesCommand) ([]services.PriorityResult, error) {
	if err := sharedApplication.Validate(cmd); err != nil {
		return nil, err
	}

	tasks, err := h.load(ctx, cmd.TaskIDs)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	if cmd.StaleOnly {
		stale := tasks[:0]
		for _, t := range tasks {
			if t.NeedsRescore(now, cmd.MaxAge) {
				stale = append(stale, t)
			}
		}
		tasks = stale
	}
	if len(tasks) == 0 {
		return []services.PriorityResult{}, nil
	}

	results := h.scorer.ScoreBatch(ctx, tasks)

	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID()] = t
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, r := range results {
			t := byID[r.TaskID]
			if err := t.ApplyPriority(r.FinalScore, r.Rationale, now); err != nil {
				return fmt.Errorf("apply priority to %s: %w", t.ID(), err)
			}
			if err := h.taskRepo.Save(txCtx, t); err != nil {
				return err
			}
			if err := saveEvents(txCtx, h.outboxRepo, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("priorities scored", "tasks", len(results))
	return results, nil
}

func (h *ScorePrioritiesHandler) load(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return h.taskRepo.List(ctx, task.Filter{Statuses: task.OpenStatuses()})
	}

	tasks := make([]*task.Task, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := h.taskRepo.FindByID(ctx, id)
		if errors.Is(err, task.ErrTaskNotFound) {
			h.logger.Warn("skipping unknown task", "task_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
