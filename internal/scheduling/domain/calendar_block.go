package domain

import (
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrBlockNotFound          = errors.New("calendar block not found")
	ErrInvalidBlockStatus     = errors.New("invalid block status")
	ErrInvalidBlockTransition = errors.New("invalid block status transition")
)

// BlockStatus tracks a block from proposal to outcome.
type BlockStatus string

const (
	BlockProposed  BlockStatus = "proposed"
	BlockScheduled BlockStatus = "scheduled"
	BlockAccepted  BlockStatus = "accepted"
	BlockRejected  BlockStatus = "rejected"
	BlockCompleted BlockStatus = "completed"
	BlockMissed    BlockStatus = "missed"
)

var blockTransitions = map[BlockStatus][]BlockStatus{
	BlockProposed:  {BlockScheduled, BlockRejected},
	BlockScheduled: {BlockAccepted, BlockRejected, BlockMissed},
	BlockAccepted:  {BlockCompleted, BlockMissed},
}

// BlockStatuses lists every status in lifecycle order.
func BlockStatuses() []BlockStatus {
	return []BlockStatus{BlockProposed, BlockScheduled, BlockAccepted, BlockRejected, BlockCompleted, BlockMissed}
}

// ParseBlockStatus parses a status name.
func ParseBlockStatus(s string) (BlockStatus, error) {
	for _, st := range BlockStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBlockStatus, s)
}

// CanTransitionTo reports whether next is a legal successor.
func (s BlockStatus) CanTransitionTo(next BlockStatus) bool {
	for _, allowed := range blockTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s BlockStatus) IsTerminal() bool {
	return len(blockTransitions[s]) == 0
}

// Occupies reports whether a block in this status still takes up time.
func (s BlockStatus) Occupies() bool {
	return s != BlockRejected && s != BlockMissed
}

// CalendarBlock is an interval of calendar time. Blocks with a nil task
// ID are external commitments the allocator must work around.
type CalendarBlock struct {
	sharedDomain.BaseEntity
	taskID uuid.UUID
	title  string
	span   TimeRange
	status BlockStatus
}

// NewCalendarBlock creates a proposed block.
func NewCalendarBlock(taskID uuid.UUID, title string, start, end time.Time, now time.Time) (*CalendarBlock, error) {
	span, err := NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}
	return &CalendarBlock{
		BaseEntity: sharedDomain.NewBaseEntity(now),
		taskID:     taskID,
		title:      title,
		span:       span,
		status:     BlockProposed,
	}, nil
}

// NewCommitment creates a scheduled external block that is not tied to a task.
func NewCommitment(title string, start, end time.Time, now time.Time) (*CalendarBlock, error) {
	b, err := NewCalendarBlock(uuid.Nil, title, start, end, now)
	if err != nil {
		return nil, err
	}
	b.status = BlockScheduled
	return b, nil
}

func (b *CalendarBlock) TaskID() uuid.UUID       { return b.taskID }
func (b *CalendarBlock) Title() string           { return b.title }
func (b *CalendarBlock) Start() time.Time        { return b.span.Start }
func (b *CalendarBlock) End() time.Time          { return b.span.End }
func (b *CalendarBlock) Span() TimeRange         { return b.span }
func (b *CalendarBlock) Status() BlockStatus     { return b.status }
func (b *CalendarBlock) Duration() time.Duration { return b.span.Duration() }
func (b *CalendarBlock) IsCommitment() bool      { return b.taskID == uuid.Nil }

// Move places the block at a new interval.
func (b *CalendarBlock) Move(start, end time.Time, now time.Time) error {
	span, err := NewTimeRange(start, end)
	if err != nil {
		return err
	}
	b.span = span
	b.TouchAt(now)
	return nil
}

// Transition moves the block to next if the lifecycle allows it.
func (b *CalendarBlock) Transition(next BlockStatus, now time.Time) error {
	if !b.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidBlockTransition, b.status, next)
	}
	b.status = next
	b.TouchAt(now)
	return nil
}

// BlockState is the persisted shape of a block.
type BlockState struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Title     string
	Start     time.Time
	End       time.Time
	Status    BlockStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *CalendarBlock) Snapshot() BlockState {
	return BlockState{
		ID:        b.ID(),
		TaskID:    b.taskID,
		Title:     b.title,
		Start:     b.span.Start,
		End:       b.span.End,
		Status:    b.status,
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

// RehydrateCalendarBlock recreates a block from persisted state.
func RehydrateCalendarBlock(s BlockState) *CalendarBlock {
	return &CalendarBlock{
		BaseEntity: sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
		taskID:     s.TaskID,
		title:      s.Title,
		span:       TimeRange{Start: s.Start, End: s.End},
		status:     s.Status,
	}
}
