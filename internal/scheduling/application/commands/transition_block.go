package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/google/uuid"
)

// TransitionBlockCommand moves a block to a new review status.
type TransitionBlockCommand struct {
	BlockID uuid.UUID `validate:"required"`
	Status  string    `validate:"required"`
}

// TransitionBlockHandler handles the TransitionBlockCommand.
type TransitionBlockHandler struct {
	blockRepo domain.BlockRepository
	uow       sharedApplication.UnitOfWork
	clock     func() time.Time
}

// NewTransitionBlockHandler creates a new TransitionBlockHandler.
func NewTransitionBlockHandler(blockRepo domain.BlockRepository, uow sharedApplication.UnitOfWork) *TransitionBlockHandler {
	return &TransitionBlockHandler{blockRepo: blockRepo, uow: uow, clock: time.Now}
}

// WithClock overrides the time source.
func (h *TransitionBlockHandler) WithClock(clock func() time.Time) *TransitionBlockHandler {
	h.clock = clock
	return h
}

// Handle applies the transition.
func (h *TransitionBlockHandler) Handle(ctx context.Context, cmd TransitionBlockCommand) error {
	if err := sharedApplication.Validate(cmd); err != nil {
		return err
	}
	next, err := domain.ParseBlockStatus(cmd.Status)
	if err != nil {
		return err
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		block, err := h.blockRepo.FindByID(txCtx, cmd.BlockID)
		if err != nil {
			return err
		}
		if err := block.Transition(next, h.clock()); err != nil {
			return err
		}
		return h.blockRepo.Save(txCtx, block)
	})
}
