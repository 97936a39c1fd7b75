package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ResolveConflictsCommand repairs overlaps among stored blocks in [Start, End).
type ResolveConflictsCommand struct {
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtfield=Start"`
	// MaxPasses > 1 repeats the pass until no overlap is left or the limit
	// is reached. Zero or one runs the single pass.
	MaxPasses int `validate:"gte=0,lte=100"`
	DryRun    bool
}

// ResolveConflictsResult lists the repairs and the blocks after shifting.
type ResolveConflictsResult struct {
	Conflicts []domain.Conflict
	Blocks    []*domain.CalendarBlock
	// Stable is false only when MaxPasses ran out with overlaps remaining.
	Stable bool
}

// ResolveConflictsHandler shifts overlapping blocks and saves the moves.
type ResolveConflictsHandler struct {
	blockRepo  domain.BlockRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	resolver   *services.ConflictResolver
	clock      func() time.Time
	logger     *slog.Logger
}

// NewResolveConflictsHandler creates a new ResolveConflictsHandler.
func NewResolveConflictsHandler(
	blockRepo domain.BlockRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ResolveConflictsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &ResolveConflictsHandler{
		blockRepo:  blockRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      time.Now,
		logger:     logger,
	}
	h.resolver = services.NewConflictResolver(func() time.Time { return h.clock() }, logger)
	return h
}

// WithClock overrides the time source.
func (h *ResolveConflictsHandler) WithClock(clock func() time.Time) *ResolveConflictsHandler {
	h.clock = clock
	return h
}

// Handle loads the blocks that still occupy time, resolves them and saves
// every block that moved together with a ConflictsResolved event.
func (h *ResolveConflictsHandler) Handle(ctx context.Context, cmd ResolveConflictsCommand) (*ResolveConflictsResult, error) {
	if err := sharedApplication.Validate(cmd); err != nil {
		return nil, err
	}

	var result *ResolveConflictsResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		stored, err := h.blockRepo.FindInRange(txCtx, cmd.Start, cmd.End)
		if err != nil {
			return err
		}

		blocks := make([]*domain.CalendarBlock, 0, len(stored))
		before := make(map[uuid.UUID]domain.TimeRange, len(stored))
		for _, b := range stored {
			if b.Status().Occupies() {
				blocks = append(blocks, b)
				before[b.ID()] = b.Span()
			}
		}

		result = &ResolveConflictsResult{Blocks: blocks, Conflicts: []domain.Conflict{}, Stable: true}
		if cmd.MaxPasses > 1 {
			result.Conflicts, result.Stable = h.resolver.ResolveUntilStable(blocks, cmd.MaxPasses)
		} else if found := h.resolver.Resolve(blocks); len(found) > 0 {
			result.Conflicts = found
		}
		if result.Conflicts == nil {
			result.Conflicts = []domain.Conflict{}
		}

		if len(result.Conflicts) == 0 || cmd.DryRun {
			return nil
		}
		for _, b := range blocks {
			if b.Span() == before[b.ID()] {
				continue
			}
			if err := h.blockRepo.Save(txCtx, b); err != nil {
				return err
			}
		}
		return saveEvent(txCtx, h.outboxRepo, domain.NewConflictsResolved(uuid.New(), result.Conflicts, h.clock()))
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("conflicts resolved", "blocks", len(result.Blocks), "conflicts", len(result.Conflicts), "stable", result.Stable)
	return result, nil
}
