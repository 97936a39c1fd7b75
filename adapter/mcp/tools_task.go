package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type taskCreateInput struct {
	Title            string   `json:"title" jsonschema:"required"`
	EstimatedMinutes int      `json:"estimated_minutes" jsonschema:"required"`
	Importance       string   `json:"importance,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	DueDate          string   `json:"due_date,omitempty"`
	Dependencies     []string `json:"dependencies,omitempty"`
}

type taskListInput struct {
	Status    string `json:"status,omitempty"`
	DueBefore string `json:"due_before,omitempty"`
	StaleOnly bool   `json:"stale_only,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

type taskUpdateInput struct {
	TaskID           string    `json:"task_id" jsonschema:"required"`
	Title            *string   `json:"title,omitempty"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	Importance       *string   `json:"importance,omitempty"`
	Difficulty       *string   `json:"difficulty,omitempty"`
	Status           *string   `json:"status,omitempty"`
	DueDate          *string   `json:"due_date,omitempty"`
	Dependencies     *[]string `json:"dependencies,omitempty"`
}

func registerTaskTools(srv *mcp.Server, h *toolHandlers) {
	srv.Tool("task.create").
		Description("Create a task with its estimated effort, importance, difficulty, due date and dependencies").
		Handler(h.taskCreate)

	srv.Tool("task.list").
		Description("List tasks, highest priority first by default").
		Handler(h.taskList)

	srv.Tool("task.get").
		Description("Get a task with its current priority score and rationale").
		Handler(h.taskGet)

	srv.Tool("task.update").
		Description("Update task fields; an empty due_date clears it").
		Handler(h.taskUpdate)
}

func (h *toolHandlers) taskCreate(ctx context.Context, input taskCreateInput) (*commands.CreateTaskResult, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	cmd := commands.CreateTaskCommand{
		Title:            input.Title,
		EstimatedMinutes: input.EstimatedMinutes,
		Importance:       input.Importance,
		Difficulty:       input.Difficulty,
	}
	if input.DueDate != "" {
		due, err := parseDate(input.DueDate, today())
		if err != nil {
			return nil, err
		}
		cmd.DueDate = &due
	}
	deps, err := parseUUIDs(input.Dependencies)
	if err != nil {
		return nil, err
	}
	cmd.Dependencies = deps

	return h.app.CreateTaskHandler.Handle(ctx, cmd)
}

func (h *toolHandlers) taskList(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
	query := queries.ListTasksQuery{
		Status:    input.Status,
		StaleOnly: input.StaleOnly,
		SortBy:    input.SortBy,
		Limit:     input.Limit,
	}
	if input.DueBefore != "" {
		due, err := parseDate(input.DueBefore, today())
		if err != nil {
			return nil, err
		}
		query.DueBefore = &due
	}
	return h.app.ListTasksHandler.Handle(ctx, query)
}

func (h *toolHandlers) taskGet(ctx context.Context, input taskIDInput) (*queries.TaskDTO, error) {
	id, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	return h.app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: id})
}

func (h *toolHandlers) taskUpdate(ctx context.Context, input taskUpdateInput) (*queries.TaskDTO, error) {
	id, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	cmd := commands.UpdateTaskCommand{
		TaskID:           id,
		Title:            input.Title,
		EstimatedMinutes: input.EstimatedMinutes,
		Importance:       input.Importance,
		Difficulty:       input.Difficulty,
		Status:           input.Status,
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			cmd.ClearDueDate = true
		} else {
			due, err := parseDate(*input.DueDate, today())
			if err != nil {
				return nil, err
			}
			cmd.DueDate = &due
		}
	}
	if input.Dependencies != nil {
		deps, err := parseUUIDs(*input.Dependencies)
		if err != nil {
			return nil, err
		}
		if deps == nil {
			deps = []uuid.UUID{}
		}
		cmd.Dependencies = &deps
	}

	if err := h.app.UpdateTaskHandler.Handle(ctx, cmd); err != nil {
		return nil, err
	}
	return h.app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: id})
}
