package task

import (
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated        = "task.created"
	RoutingKeyUpdated        = "task.updated"
	RoutingKeyPriorityScored = "task.priority_scored"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

func NewTaskCreated(taskID uuid.UUID, title string, estimatedMinutes int, at time.Time) *TaskCreated {
	return &TaskCreated{
		BaseEvent:        domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated, at),
		Title:            title,
		EstimatedMinutes: estimatedMinutes,
	}
}

// TaskUpdated is emitted when a scoring input changes.
type TaskUpdated struct {
	domain.BaseEvent
	Fields []string `json:"fields"`
}

func NewTaskUpdated(taskID uuid.UUID, fields []string, at time.Time) *TaskUpdated {
	return &TaskUpdated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyUpdated, at),
		Fields:    fields,
	}
}

// TaskPriorityScored is emitted when a new priority score is stored.
type TaskPriorityScored struct {
	domain.BaseEvent
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

func NewTaskPriorityScored(taskID uuid.UUID, score float64, rationale string, at time.Time) *TaskPriorityScored {
	return &TaskPriorityScored{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyPriorityScored, at),
		Score:     score,
		Rationale: rationale,
	}
}
