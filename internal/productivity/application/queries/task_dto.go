package queries

import (
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	EstimatedMinutes  int         `json:"estimated_minutes"`
	Importance        string      `json:"importance"`
	Difficulty        string      `json:"difficulty"`
	DueDate           *time.Time  `json:"due_date,omitempty"`
	Dependencies      []uuid.UUID `json:"dependencies,omitempty"`
	Status            string      `json:"status"`
	PriorityScore     float64     `json:"priority_score"`
	PriorityRationale string      `json:"priority_rationale,omitempty"`
	ScoredAt          *time.Time  `json:"scored_at,omitempty"`
	Stale             bool        `json:"stale"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func toTaskDTO(t *task.Task, now time.Time) TaskDTO {
	return TaskDTO{
		ID:                t.ID(),
		Title:             t.Title(),
		EstimatedMinutes:  t.EstimatedMinutes(),
		Importance:        t.Importance().String(),
		Difficulty:        t.Difficulty().String(),
		DueDate:           t.DueDate(),
		Dependencies:      t.Dependencies(),
		Status:            t.Status().String(),
		PriorityScore:     t.PriorityScore(),
		PriorityRationale: t.PriorityRationale(),
		ScoredAt:          t.ScoredAt(),
		Stale:             t.NeedsRescore(now, 0),
		CreatedAt:         t.CreatedAt(),
		UpdatedAt:         t.UpdatedAt(),
	}
}
