package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
)

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	Status    string     // "open" (default), "all", or a single status name
	DueBefore *time.Time // tasks due before this instant
	StaleOnly bool       // only tasks whose score needs recomputing
	SortBy    string     // "priority" (default), "due_date", "created_at"
	Limit     int        // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
	clock    func() time.Time
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo, clock: time.Now}
}

// WithClock overrides the time source.
func (h *ListTasksHandler) WithClock(clock func() time.Time) *ListTasksHandler {
	h.clock = clock
	return h
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	filter := task.Filter{DueBefore: query.DueBefore}
	switch query.Status {
	case "", "open":
		filter.Statuses = task.OpenStatuses()
	case "all":
	default:
		status, err := task.ParseStatus(query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, query.Status)
		}
		filter.Statuses = []task.Status{status}
	}

	tasks, err := h.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	if query.StaleOnly {
		var stale []*task.Task
		for _, t := range tasks {
			if t.NeedsRescore(now, 0) {
				stale = append(stale, t)
			}
		}
		tasks = stale
	}

	sortTasks(tasks, query.SortBy)

	if query.Limit > 0 && len(tasks) > query.Limit {
		tasks = tasks[:query.Limit]
	}

	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t, now)
	}
	return dtos, nil
}

func sortTasks(tasks []*task.Task, sortBy string) {
	switch sortBy {
	case "due_date":
		// Tasks without a due date go last.
		sort.SliceStable(tasks, func(i, j int) bool {
			di, dj := tasks[i].DueDate(), tasks[j].DueDate()
			if di == nil || dj == nil {
				return di != nil && dj == nil
			}
			return di.Before(*dj)
		})
	case "created_at":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt().Before(tasks[j].CreatedAt())
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].PriorityScore() > tasks[j].PriorityScore()
		})
	}
}
