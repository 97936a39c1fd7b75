package queries

import (
	"time"

	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/google/uuid"
)

// BlockDTO is a data transfer object for calendar blocks.
type BlockDTO struct {
	ID              uuid.UUID  `json:"id"`
	TaskID          *uuid.UUID `json:"task_id,omitempty"`
	Title           string     `json:"title"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
}

// NewBlockDTO converts a block. Commitments carry no task ID.
func NewBlockDTO(b *domain.CalendarBlock) BlockDTO {
	dto := BlockDTO{
		ID:              b.ID(),
		Title:           b.Title(),
		Start:           b.Start(),
		End:             b.End(),
		DurationMinutes: b.Span().Minutes(),
		Status:          string(b.Status()),
	}
	if !b.IsCommitment() {
		id := b.TaskID()
		dto.TaskID = &id
	}
	return dto
}

// NewBlockDTOs converts a slice of blocks.
func NewBlockDTOs(blocks []*domain.CalendarBlock) []BlockDTO {
	dtos := make([]BlockDTO, len(blocks))
	for i, b := range blocks {
		dtos[i] = NewBlockDTO(b)
	}
	return dtos
}
