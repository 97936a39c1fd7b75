package domain

import "github.com/google/uuid"

// ResolutionShiftedLater is recorded when the later block was pushed back.
const ResolutionShiftedLater = "Shifted later block"

// Conflict records one overlap found between adjacent blocks and how it
// was repaired.
type Conflict struct {
	BlockID        uuid.UUID `json:"block_id"`
	ShiftedBlockID uuid.UUID `json:"shifted_block_id"`
	Overlap        TimeRange `json:"overlap"`
	Resolution     string    `json:"resolution"`
}
