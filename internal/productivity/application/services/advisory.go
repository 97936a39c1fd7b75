package services

import (
	"context"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
)

// Adjustment is an advisory opinion about one task.
type Adjustment struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// AdvisoryScorer supplies optional secondary scores. Implementations may
// fail, time out or omit tasks freely; callers fall back to heuristics.
type AdvisoryScorer interface {
	GetAdjustments(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error)
}

// NoopAdvisor never has an opinion.
type NoopAdvisor struct{}

func (NoopAdvisor) GetAdjustments(context.Context, []*task.Task) (map[uuid.UUID]Adjustment, error) {
	return nil, nil
}

// AdvisoryFunc adapts a function to AdvisoryScorer.
type AdvisoryFunc func(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error)

func (f AdvisoryFunc) GetAdjustments(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error) {
	return f(ctx, tasks)
}
