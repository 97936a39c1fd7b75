package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows ListTasks results. Zero values mean "no constraint".
type Filter struct {
	Statuses  []Status
	DueBefore *time.Time
	Limit     int
}

// Repository defines the interface for task persistence.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter Filter) ([]*Task, error)
}
