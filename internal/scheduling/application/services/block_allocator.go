package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/google/uuid"
)

// Block size policy defaults, in minutes.
const (
	DefaultMinBlockMinutes = 30
	DefaultMaxBlockMinutes = 180
)

// SchedulableTask is the allocator's view of a task.
type SchedulableTask struct {
	ID               uuid.UUID
	Title            string
	EstimatedMinutes int
}

// BlockPolicy bounds the size of emitted blocks.
type BlockPolicy struct {
	MinBlockMinutes int
	MaxBlockMinutes int
}

// DefaultBlockPolicy returns the 30/180 minute policy.
func DefaultBlockPolicy() BlockPolicy {
	return BlockPolicy{MinBlockMinutes: DefaultMinBlockMinutes, MaxBlockMinutes: DefaultMaxBlockMinutes}
}

func (p BlockPolicy) normalized() BlockPolicy {
	if p.MinBlockMinutes <= 0 {
		p.MinBlockMinutes = DefaultMinBlockMinutes
	}
	if p.MaxBlockMinutes <= 0 {
		p.MaxBlockMinutes = DefaultMaxBlockMinutes
	}
	if p.MaxBlockMinutes < p.MinBlockMinutes {
		p.MaxBlockMinutes = p.MinBlockMinutes
	}
	return p
}

// Allocation is the allocator's output.
type Allocation struct {
	Blocks        []*domain.CalendarBlock
	Unschedulable []domain.UnschedulableTask
	// Partial is set when cancellation stopped the pass early. Tasks that
	// were never reached appear in neither list.
	Partial bool
}

// GreedyBlockAllocator places tasks into slots first-fit, in the order given.
type GreedyBlockAllocator struct {
	clock  func() time.Time
	logger *slog.Logger
}

// NewGreedyBlockAllocator creates an allocator.
func NewGreedyBlockAllocator(clock func() time.Time, logger *slog.Logger) *GreedyBlockAllocator {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GreedyBlockAllocator{clock: clock, logger: logger}
}

// Allocate assigns blocks for tasks, most urgent first. Slots are updated
// as time is consumed so later tasks see the reduced availability.
// Cancellation is checked once per task.
func (a *GreedyBlockAllocator) Allocate(
	ctx context.Context,
	tasks []SchedulableTask,
	slots []*domain.TimeSlot,
	policy BlockPolicy,
) Allocation {
	policy = policy.normalized()
	now := a.clock()
	var out Allocation

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("allocation cancelled",
				"allocated_tasks", i,
				"remaining_tasks", len(tasks)-i,
				"error", err,
			)
			out.Partial = true
			break
		}

		available := totalRemaining(slots)
		spans, remaining := a.place(task.EstimatedMinutes, slots, policy)

		for n, s := range spans {
			title := task.Title
			if len(spans) > 1 {
				title = fmt.Sprintf("%s (Part %d)", task.Title, n+1)
			}
			block, err := domain.NewCalendarBlock(task.ID, title, s.Start, s.End, now)
			if err != nil {
				// spans are built with positive length, so this is unreachable
				a.logger.Error("dropping invalid block", "task_id", task.ID, "error", err)
				continue
			}
			out.Blocks = append(out.Blocks, block)
		}

		if remaining > 0 {
			out.Unschedulable = append(out.Unschedulable, domain.UnschedulableTask{
				TaskID:           task.ID,
				Title:            task.Title,
				RequiredMinutes:  task.EstimatedMinutes,
				AvailableMinutes: available,
				Reason:           domain.ReasonInsufficientTime,
			})
		}
	}

	return out
}

// place carves spans for one task and returns them with the minutes left
// unplaced.
func (a *GreedyBlockAllocator) place(minutes int, slots []*domain.TimeSlot, policy BlockPolicy) ([]domain.TimeRange, int) {
	remaining := minutes
	var spans []domain.TimeRange

	for _, slot := range slots {
		if remaining <= 0 {
			break
		}
		if slot.RemainingMinutes() < policy.MinBlockMinutes {
			continue
		}

		for _, free := range slot.FreeRanges() {
			cursor := free.Start
			for remaining > 0 {
				avail := int(free.End.Sub(cursor) / time.Minute)
				if avail < policy.MinBlockMinutes {
					break
				}
				size := min(remaining, avail, policy.MaxBlockMinutes)
				if size < policy.MinBlockMinutes && remaining >= policy.MinBlockMinutes {
					break
				}

				span := domain.TimeRange{Start: cursor, End: cursor.Add(time.Duration(size) * time.Minute)}
				slot.MarkUsed(span)
				spans = append(spans, span)
				cursor = span.End
				remaining -= size
			}
			if remaining <= 0 {
				break
			}
		}
	}

	return spans, remaining
}

func totalRemaining(slots []*domain.TimeSlot) int {
	total := 0
	for _, s := range slots {
		total += s.RemainingMinutes()
	}
	return total
}
