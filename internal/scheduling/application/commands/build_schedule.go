package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	productivityServices "github.com/felixgeelhaar/cadence/internal/productivity/application/services"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// MessageNoTasks is returned in the result of an empty scheduling request.
const MessageNoTasks = "No tasks to schedule"

// WindowInput is a recurring availability window as supplied by callers.
type WindowInput struct {
	Weekday string `json:"weekday" validate:"required"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end" validate:"required"`
}

// BlockInput is an existing commitment supplied with the request.
type BlockInput struct {
	Title string    `json:"title"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

// BuildScheduleCommand requests a scheduling pass over [Start, End].
type BuildScheduleCommand struct {
	TaskIDs         []uuid.UUID   `validate:"dive,required"`
	Windows         []WindowInput `validate:"dive"`
	ExistingBlocks  []BlockInput  `validate:"dive"`
	Start           time.Time     `validate:"required"`
	End             time.Time     `validate:"required,gtefield=Start"`
	MinBlockMinutes int           `validate:"gte=0,lte=1440"`
	MaxBlockMinutes int           `validate:"gte=0,lte=1440"`
	// DryRun computes the schedule without persisting blocks or events.
	DryRun bool
}

// BuildScheduleHandler scores tasks, plans availability, allocates blocks
// and stores the proposal.
type BuildScheduleHandler struct {
	taskRepo   task.Repository
	blockRepo  domain.BlockRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	scorer     *productivityServices.PriorityScorer
	policy     services.BlockPolicy
	planner    *services.AvailabilityPlanner
	allocator  *services.GreedyBlockAllocator
	resolver   *services.ConflictResolver
	clock      func() time.Time
	logger     *slog.Logger
}

// NewBuildScheduleHandler creates a new BuildScheduleHandler.
func NewBuildScheduleHandler(
	taskRepo task.Repository,
	blockRepo domain.BlockRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	scorer *productivityServices.PriorityScorer,
	logger *slog.Logger,
) *BuildScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &BuildScheduleHandler{
		taskRepo:   taskRepo,
		blockRepo:  blockRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		scorer:     scorer,
		policy:     services.DefaultBlockPolicy(),
		clock:      time.Now,
		logger:     logger,
	}
	now := func() time.Time { return h.clock() }
	h.planner = services.NewAvailabilityPlanner(now)
	h.allocator = services.NewGreedyBlockAllocator(now, logger)
	h.resolver = services.NewConflictResolver(now, logger)
	return h
}

// WithClock overrides the time source for planning and allocation. The
// scorer keeps its own clock.
func (h *BuildScheduleHandler) WithClock(clock func() time.Time) *BuildScheduleHandler {
	h.clock = clock
	return h
}

// WithPolicy sets the block size policy used when a request leaves it open.
func (h *BuildScheduleHandler) WithPolicy(policy services.BlockPolicy) *BuildScheduleHandler {
	h.policy = policy
	return h
}

// Handle runs one scheduling pass. Only validation and storage errors are
// returned; unschedulable tasks and cancellation are reported in the result.
func (h *BuildScheduleHandler) Handle(ctx context.Context, cmd BuildScheduleCommand) (*domain.SchedulingResult, error) {
	if len(cmd.TaskIDs) == 0 {
		return &domain.SchedulingResult{
			Success:       true,
			Message:       MessageNoTasks,
			Unschedulable: []domain.UnschedulableTask{},
			Conflicts:     []domain.Conflict{},
		}, nil
	}
	if err := sharedApplication.Validate(cmd); err != nil {
		return nil, err
	}

	windows, err := ParseWindows(cmd.Windows)
	if err != nil {
		return nil, err
	}
	policy := h.policy
	if cmd.MinBlockMinutes > 0 {
		policy.MinBlockMinutes = cmd.MinBlockMinutes
	}
	if cmd.MaxBlockMinutes > 0 {
		policy.MaxBlockMinutes = cmd.MaxBlockMinutes
	}

	result := &domain.SchedulingResult{
		Unschedulable: []domain.UnschedulableTask{},
		Conflicts:     []domain.Conflict{},
	}

	// Storage runs detached from cancellation: a cancelled pass still
	// reports what it reached instead of failing on a dead context.
	store := context.WithoutCancel(ctx)

	tasks, err := h.loadTasks(store, cmd.TaskIDs, result)
	if err != nil {
		return nil, err
	}

	existing, err := h.commitments(store, cmd)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID()] = t
	}
	ranked := h.scorer.ScoreBatch(ctx, tasks)
	schedulable := make([]services.SchedulableTask, 0, len(ranked))
	for _, r := range ranked {
		t := byID[r.TaskID]
		schedulable = append(schedulable, services.SchedulableTask{
			ID:               t.ID(),
			Title:            t.Title(),
			EstimatedMinutes: t.EstimatedMinutes(),
		})
	}

	slots := h.planner.BuildSlots(cmd.Start, cmd.End, windows, existing, policy.MinBlockMinutes)
	allocation := h.allocator.Allocate(ctx, schedulable, slots, policy)

	result.Blocks = allocation.Blocks
	result.Partial = allocation.Partial
	result.Unschedulable = append(result.Unschedulable, allocation.Unschedulable...)
	if conflicts := h.resolver.Resolve(result.Blocks); len(conflicts) > 0 {
		result.Conflicts = conflicts
	}
	result.Success = len(result.Unschedulable) == 0 && !result.Partial
	result.Message = summarize(result, len(schedulable))

	h.logger.Info("schedule built",
		"tasks", len(cmd.TaskIDs),
		"slots", len(slots),
		"blocks", len(result.Blocks),
		"unschedulable", len(result.Unschedulable),
		"partial", result.Partial,
	)

	// A partial pass is returned but not stored; a rerun would otherwise
	// collide with its half-placed blocks.
	if cmd.DryRun || result.Partial || (len(result.Blocks) == 0 && len(result.Unschedulable) == 0) {
		return result, nil
	}

	horizon := domain.TimeRange{Start: cmd.Start, End: cmd.End}
	err = sharedApplication.WithUnitOfWork(store, h.uow, func(txCtx context.Context) error {
		for _, b := range result.Blocks {
			if err := h.blockRepo.Save(txCtx, b); err != nil {
				return err
			}
		}
		event := domain.NewScheduleBuilt(uuid.New(), horizon, result, h.clock())
		return saveEvent(txCtx, h.outboxRepo, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadTasks fetches tasks in request order. Unknown and closed tasks are
// recorded as unschedulable.
func (h *BuildScheduleHandler) loadTasks(ctx context.Context, ids []uuid.UUID, result *domain.SchedulingResult) ([]*task.Task, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	tasks := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := h.taskRepo.FindByID(ctx, id)
		switch {
		case errors.Is(err, task.ErrTaskNotFound):
			result.Unschedulable = append(result.Unschedulable, domain.UnschedulableTask{
				TaskID: id,
				Reason: domain.ReasonTaskNotFound,
			})
			continue
		case err != nil:
			return nil, fmt.Errorf("load task %s: %w", id, err)
		}

		if t.Status().IsClosed() {
			result.Unschedulable = append(result.Unschedulable, domain.UnschedulableTask{
				TaskID:          id,
				Title:           t.Title(),
				RequiredMinutes: t.EstimatedMinutes(),
				Reason:          domain.ReasonTaskClosed,
			})
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// commitments merges request-supplied blocks with stored blocks that still
// occupy time anywhere on the horizon's dates.
func (h *BuildScheduleHandler) commitments(ctx context.Context, cmd BuildScheduleCommand) ([]domain.TimeRange, error) {
	ranges := make([]domain.TimeRange, 0, len(cmd.ExistingBlocks))
	for _, b := range cmd.ExistingBlocks {
		ranges = append(ranges, domain.TimeRange{Start: b.Start, End: b.End})
	}

	loc := cmd.Start.Location()
	from := startOfDay(cmd.Start)
	to := startOfDay(cmd.End.In(loc)).AddDate(0, 0, 1)
	stored, err := h.blockRepo.FindInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load existing blocks: %w", err)
	}
	for _, b := range stored {
		if b.Status().Occupies() {
			ranges = append(ranges, b.Span())
		}
	}
	return ranges, nil
}

// ParseWindows converts caller input into validated availability windows.
func ParseWindows(inputs []WindowInput) ([]domain.AvailabilityWindow, error) {
	windows := make([]domain.AvailabilityWindow, 0, len(inputs))
	for _, in := range inputs {
		day, err := domain.ParseWeekday(in.Weekday)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sharedApplication.ErrValidation, err)
		}
		start, err := domain.ParseClockTime(in.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start %q: %v", sharedApplication.ErrValidation, in.Start, err)
		}
		end, err := domain.ParseClockTime(in.End)
		if err != nil {
			return nil, fmt.Errorf("%w: end %q: %v", sharedApplication.ErrValidation, in.End, err)
		}
		windows = append(windows, domain.AvailabilityWindow{Weekday: day, Start: start, End: end})
	}
	if err := domain.ValidateWindows(windows); err != nil {
		return nil, fmt.Errorf("%w: %v", sharedApplication.ErrValidation, err)
	}
	return windows, nil
}

func summarize(r *domain.SchedulingResult, tasks int) string {
	msg := fmt.Sprintf("Scheduled %d blocks for %d tasks", len(r.Blocks), tasks)
	if n := len(r.Unschedulable); n > 0 {
		msg += fmt.Sprintf("; %d unschedulable", n)
	}
	if r.Partial {
		msg += "; stopped early"
	}
	return msg
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func saveEvent(ctx context.Context, repo outbox.Repository, event sharedDomain.DomainEvent) error {
	events := []sharedDomain.DomainEvent{event}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(sharedApplication.CorrelationIDFromContext(ctx)))
	return outbox.SaveEvents(ctx, repo, events)
}
