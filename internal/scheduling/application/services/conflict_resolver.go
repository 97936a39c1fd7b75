package services

import (
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
)

// ConflictResolver repairs overlapping blocks by pushing the later block
// back by exactly the overlap, preserving its duration.
type ConflictResolver struct {
	clock  func() time.Time
	logger *slog.Logger
}

// NewConflictResolver creates a resolver.
func NewConflictResolver(clock func() time.Time, logger *slog.Logger) *ConflictResolver {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictResolver{clock: clock, logger: logger}
}

// Resolve sorts blocks by start time in place and walks adjacent pairs once,
// shifting the later block of each overlapping pair. Each pair is checked
// against the already repaired predecessor; blocks further ahead are not
// revisited.
func (r *ConflictResolver) Resolve(blocks []*domain.CalendarBlock) []domain.Conflict {
	if len(blocks) < 2 {
		return nil
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start().Before(blocks[j].Start())
	})

	now := r.clock()
	var conflicts []domain.Conflict
	for i := 0; i < len(blocks)-1; i++ {
		current, next := blocks[i], blocks[i+1]
		if !current.End().After(next.Start()) {
			continue
		}

		overlap := domain.TimeRange{Start: next.Start(), End: current.End()}
		shift := overlap.Duration()
		if err := next.Move(next.Start().Add(shift), next.End().Add(shift), now); err != nil {
			r.logger.Error("failed to shift block", "block_id", next.ID(), "error", err)
			continue
		}

		conflicts = append(conflicts, domain.Conflict{
			BlockID:        current.ID(),
			ShiftedBlockID: next.ID(),
			Overlap:        overlap,
			Resolution:     domain.ResolutionShiftedLater,
		})
	}

	if len(conflicts) > 0 {
		r.logger.Debug("resolved block conflicts", "blocks", len(blocks), "conflicts", len(conflicts))
	}
	return conflicts
}

// ResolveUntilStable repeats Resolve until a pass finds nothing or
// maxPasses is reached. It returns every conflict found and whether the
// final pass was clean.
func (r *ConflictResolver) ResolveUntilStable(blocks []*domain.CalendarBlock, maxPasses int) ([]domain.Conflict, bool) {
	if maxPasses <= 0 {
		maxPasses = 1
	}

	var all []domain.Conflict
	for pass := 0; pass < maxPasses; pass++ {
		found := r.Resolve(blocks)
		if len(found) == 0 {
			return all, true
		}
		all = append(all, found...)
	}
	return all, false
}
