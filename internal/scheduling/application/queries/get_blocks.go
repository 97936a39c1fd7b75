package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
)

// GetBlocksQuery selects blocks overlapping [Start, End).
type GetBlocksQuery struct {
	Start           time.Time
	End             time.Time
	IncludeRejected bool
}

// ScheduleDTO summarises the blocks in a range.
type ScheduleDTO struct {
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	Blocks             []BlockDTO `json:"blocks"`
	TotalScheduledMins int        `json:"total_scheduled_minutes"`
	ProposedCount      int        `json:"proposed"`
	ScheduledCount     int        `json:"scheduled"`
	AcceptedCount      int        `json:"accepted"`
	CompletedCount     int        `json:"completed"`
	MissedCount        int        `json:"missed"`
}

// GetBlocksHandler handles the GetBlocksQuery.
type GetBlocksHandler struct {
	blockRepo domain.BlockRepository
}

// NewGetBlocksHandler creates a new GetBlocksHandler.
func NewGetBlocksHandler(blockRepo domain.BlockRepository) *GetBlocksHandler {
	return &GetBlocksHandler{blockRepo: blockRepo}
}

// Handle executes the GetBlocksQuery.
func (h *GetBlocksHandler) Handle(ctx context.Context, query GetBlocksQuery) (*ScheduleDTO, error) {
	if !query.End.After(query.Start) {
		return nil, domain.ErrInvalidTimeRange
	}

	blocks, err := h.blockRepo.FindInRange(ctx, query.Start, query.End)
	if err != nil {
		return nil, err
	}

	dto := &ScheduleDTO{Start: query.Start, End: query.End, Blocks: []BlockDTO{}}
	for _, b := range blocks {
		if b.Status() == domain.BlockRejected && !query.IncludeRejected {
			continue
		}
		dto.Blocks = append(dto.Blocks, NewBlockDTO(b))

		switch b.Status() {
		case domain.BlockProposed:
			dto.ProposedCount++
		case domain.BlockScheduled:
			dto.ScheduledCount++
		case domain.BlockAccepted:
			dto.AcceptedCount++
		case domain.BlockCompleted:
			dto.CompletedCount++
		case domain.BlockMissed:
			dto.MissedCount++
		}
		if b.Status().Occupies() {
			dto.TotalScheduledMins += b.Span().Minutes()
		}
	}
	return dto, nil
}
