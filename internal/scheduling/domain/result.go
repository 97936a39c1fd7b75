package domain

import "github.com/google/uuid"

const (
	ReasonInsufficientTime = "Insufficient time slots available"
	ReasonTaskNotFound     = "Task not found"
	ReasonTaskClosed       = "Task is completed or cancelled"
)

// UnschedulableTask explains why a task could not be fully placed.
type UnschedulableTask struct {
	TaskID           uuid.UUID `json:"task_id"`
	Title            string    `json:"title,omitempty"`
	RequiredMinutes  int       `json:"required_minutes"`
	AvailableMinutes int       `json:"available_minutes"`
	Reason           string    `json:"reason"`
}

// SchedulingResult is the outcome of one scheduling pass.
type SchedulingResult struct {
	Success       bool                `json:"success"`
	Partial       bool                `json:"partial"`
	Message       string              `json:"message,omitempty"`
	Blocks        []*CalendarBlock    `json:"-"`
	Unschedulable []UnschedulableTask `json:"unschedulable"`
	Conflicts     []Conflict          `json:"conflicts"`
}

// ScheduledMinutes sums the block durations assigned to taskID.
func (r *SchedulingResult) ScheduledMinutes(taskID uuid.UUID) int {
	total := 0
	for _, b := range r.Blocks {
		if b.TaskID() == taskID {
			total += b.Span().Minutes()
		}
	}
	return total
}
