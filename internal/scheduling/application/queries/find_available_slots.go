package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
)

// SlotDTO is one dated availability slot with its free ranges.
type SlotDTO struct {
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	FreeMinutes int                `json:"free_minutes"`
	Free        []domain.TimeRange `json:"free"`
}

// FindAvailableSlotsQuery contains the parameters for finding free time.
type FindAvailableSlotsQuery struct {
	Start           time.Time
	End             time.Time
	Windows         []domain.AvailabilityWindow
	MinBlockMinutes int
}

// FindAvailableSlotsHandler handles the FindAvailableSlotsQuery.
type FindAvailableSlotsHandler struct {
	blockRepo domain.BlockRepository
	planner   *services.AvailabilityPlanner
}

// NewFindAvailableSlotsHandler creates a new FindAvailableSlotsHandler.
func NewFindAvailableSlotsHandler(blockRepo domain.BlockRepository, clock func() time.Time) *FindAvailableSlotsHandler {
	return &FindAvailableSlotsHandler{
		blockRepo: blockRepo,
		planner:   services.NewAvailabilityPlanner(clock),
	}
}

// Handle returns the slots left after stored blocks are subtracted.
func (h *FindAvailableSlotsHandler) Handle(ctx context.Context, query FindAvailableSlotsQuery) ([]SlotDTO, error) {
	if query.End.Before(query.Start) {
		return nil, domain.ErrInvalidTimeRange
	}
	if err := domain.ValidateWindows(query.Windows); err != nil {
		return nil, err
	}
	minBlock := query.MinBlockMinutes
	if minBlock <= 0 {
		minBlock = services.DefaultMinBlockMinutes
	}

	y, m, d := query.Start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, query.Start.Location())
	y, m, d = query.End.In(query.Start.Location()).Date()
	to := time.Date(y, m, d+1, 0, 0, 0, 0, query.Start.Location())

	blocks, err := h.blockRepo.FindInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var busy []domain.TimeRange
	for _, b := range blocks {
		if b.Status().Occupies() {
			busy = append(busy, b.Span())
		}
	}

	slots := h.planner.BuildSlots(query.Start, query.End, query.Windows, busy, minBlock)
	dtos := make([]SlotDTO, len(slots))
	for i, s := range slots {
		dtos[i] = SlotDTO{
			Start:       s.Start(),
			End:         s.End(),
			FreeMinutes: s.RemainingMinutes(),
			Free:        s.FreeRanges(),
		}
	}
	return dtos, nil
}
