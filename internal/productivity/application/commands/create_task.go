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

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	Title            string `validate:"required,max=200"`
	EstimatedMinutes int    `validate:"gt=0,lte=10080"`
	Importance       string `validate:"omitempty"`
	Difficulty       string `validate:"omitempty"`
	DueDate          *time.Time
	Dependencies     []uuid.UUID `validate:"dive,required"`
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      func() time.Time
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
	}
}

// WithClock overrides the time source.
func (h *CreateTaskHandler) WithClock(clock func() time.Time) *CreateTaskHandler {
	h.clock = clock
	return h
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if err := sharedApplication.Validate(cmd); err != nil {
		return nil, err
	}

	now := h.clock()
	t, err := task.NewTask(cmd.Title, cmd.EstimatedMinutes, now)
	if err != nil {
		return nil, err
	}

	if cmd.Importance != "" {
		importance, err := value_objects.ParseImportance(cmd.Importance)
		if err != nil {
			return nil, err
		}
		if err := t.SetImportance(importance, now); err != nil {
			return nil, err
		}
	}
	if cmd.Difficulty != "" {
		difficulty, err := value_objects.ParseDifficulty(cmd.Difficulty)
		if err != nil {
			return nil, err
		}
		if err := t.SetDifficulty(difficulty, now); err != nil {
			return nil, err
		}
	}
	if cmd.DueDate != nil {
		if err := t.SetDueDate(cmd.DueDate, now); err != nil {
			return nil, err
		}
	}
	if len(cmd.Dependencies) > 0 {
		if err := t.SetDependencies(cmd.Dependencies, now); err != nil {
			return nil, err
		}
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, t)
	})
	if err != nil {
		return nil, err
	}

	return &CreateTaskResult{TaskID: t.ID()}, nil
}

// saveEvents stamps the aggregate's pending events and writes them to the
// outbox inside the caller's transaction.
func saveEvents(ctx context.Context, repo outbox.Repository, t *task.Task) error {
	events := t.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(sharedApplication.CorrelationIDFromContext(ctx)))
	if err := outbox.SaveEvents(ctx, repo, events); err != nil {
		return err
	}
	t.ClearDomainEvents()
	return nil
}
