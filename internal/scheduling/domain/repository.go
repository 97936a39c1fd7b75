package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlockRepository persists calendar blocks.
type BlockRepository interface {
	Save(ctx context.Context, block *CalendarBlock) error
	FindByID(ctx context.Context, id uuid.UUID) (*CalendarBlock, error)
	// FindInRange returns blocks overlapping [start, end), ordered by start.
	FindInRange(ctx context.Context, start, end time.Time) ([]*CalendarBlock, error)
}
