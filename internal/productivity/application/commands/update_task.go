package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UpdateTaskCommand contains the data needed to update a task. Nil fields
// are left unchanged.
type UpdateTaskCommand struct {
	TaskID           uuid.UUID `validate:"required"`
	Title            *string   `validate:"omitempty,min=1,max=200"`
	EstimatedMinutes *int      `validate:"omitempty,gt=0,lte=10080"`
	Importance       *string
	Difficulty       *string
	Status           *string
	DueDate          *time.Time
	ClearDueDate     bool
	Dependencies     *[]uuid.UUID
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      func() time.Time
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	return &UpdateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
	}
}

// WithClock overrides the time source.
func (h *UpdateTaskHandler) WithClock(clock func() time.Time) *UpdateTaskHandler {
	h.clock = clock
	return h
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	if err := sharedApplication.Validate(cmd); err != nil {
		return err
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		changed, err := applyUpdate(t, cmd, h.clock())
		if err != nil || !changed {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, t)
	})
}

// applyUpdate mutates t and reports whether anything changed.
func applyUpdate(t *task.Task, cmd UpdateTaskCommand, now time.Time) (bool, error) {
	title := t.Title()
	if err := applyFields(t, cmd, now); err != nil {
		return false, err
	}
	return t.Title() != title || len(t.DomainEvents()) > 0, nil
}

func applyFields(t *task.Task, cmd UpdateTaskCommand, now time.Time) error {
	if cmd.Title != nil && *cmd.Title != t.Title() {
		if err := t.SetTitle(*cmd.Title, now); err != nil {
			return err
		}
	}
	if cmd.EstimatedMinutes != nil && *cmd.EstimatedMinutes != t.EstimatedMinutes() {
		if err := t.SetEstimatedMinutes(*cmd.EstimatedMinutes, now); err != nil {
			return err
		}
	}
	if cmd.Importance != nil {
		importance, err := value_objects.ParseImportance(*cmd.Importance)
		if err != nil {
			return err
		}
		if importance != t.Importance() {
			if err := t.SetImportance(importance, now); err != nil {
				return err
			}
		}
	}
	if cmd.Difficulty != nil {
		difficulty, err := value_objects.ParseDifficulty(*cmd.Difficulty)
		if err != nil {
			return err
		}
		if difficulty != t.Difficulty() {
			if err := t.SetDifficulty(difficulty, now); err != nil {
				return err
			}
		}
	}
	switch {
	case cmd.ClearDueDate && t.DueDate() != nil:
		if err := t.SetDueDate(nil, now); err != nil {
			return err
		}
	case cmd.DueDate != nil:
		if err := t.SetDueDate(cmd.DueDate, now); err != nil {
			return err
		}
	}
	if cmd.Dependencies != nil {
		if err := t.SetDependencies(*cmd.Dependencies, now); err != nil {
			return err
		}
	}
	if cmd.Status != nil {
		status, err := task.ParseStatus(*cmd.Status)
		if err != nil {
			return err
		}
		if err := t.ChangeStatus(status, now); err != nil {
			return err
		}
	}
	return nil
}
