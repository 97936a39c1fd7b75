package mcp

import (
	"context"
	"time"

	productivityQueries "github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type scheduleBuildInput struct {
	TaskIDs         []string               `json:"task_ids,omitempty"`
	From            string                 `json:"from,omitempty"`
	Days            int                    `json:"days,omitempty"`
	Windows         []commands.WindowInput `json:"windows,omitempty"`
	ExistingBlocks  []commands.BlockInput  `json:"existing_blocks,omitempty"`
	MinBlockMinutes int                    `json:"min_block_minutes,omitempty"`
	MaxBlockMinutes int                    `json:"max_block_minutes,omitempty"`
	DryRun          bool                   `json:"dry_run,omitempty"`
}

type scheduleBuildOutput struct {
	*domain.SchedulingResult
	Blocks []queries.BlockDTO `json:"blocks"`
}

type scheduleShowInput struct {
	From            string `json:"from,omitempty"`
	Days            int    `json:"days,omitempty"`
	IncludeRejected bool   `json:"include_rejected,omitempty"`
}

type scheduleResolveInput struct {
	From      string `json:"from,omitempty"`
	Days      int    `json:"days,omitempty"`
	MaxPasses int    `json:"max_passes,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

type scheduleResolveOutput struct {
	Conflicts []domain.Conflict  `json:"conflicts"`
	Blocks    []queries.BlockDTO `json:"blocks"`
	Stable    bool               `json:"stable"`
}

type scheduleSlotsInput struct {
	From            string                 `json:"from,omitempty"`
	Days            int                    `json:"days,omitempty"`
	Windows         []commands.WindowInput `json:"windows,omitempty"`
	MinBlockMinutes int                    `json:"min_block_minutes,omitempty"`
}

type blockTransitionInput struct {
	BlockID string `json:"block_id" jsonschema:"required"`
	Status  string `json:"status" jsonschema:"required"`
}

func registerScheduleTools(srv *mcp.Server, h *toolHandlers) {
	srv.Tool("schedule.build").
		Description("Schedule tasks into free time, highest priority first (all open tasks when task_ids is empty)").
		Handler(h.scheduleBuild)

	srv.Tool("schedule.show").
		Description("Show scheduled blocks for a range of days").
		Handler(h.scheduleShow)

	srv.Tool("schedule.resolve_conflicts").
		Description("Shift overlapping blocks forward until none overlap").
		Handler(h.scheduleResolve)

	srv.Tool("schedule.slots").
		Description("List free time left in the availability windows").
		Handler(h.scheduleSlots)

	srv.Tool("schedule.transition").
		Description("Move a block through its lifecycle: proposed -> scheduled|rejected, scheduled -> accepted|rejected|missed, accepted -> completed|missed").
		Handler(h.scheduleTransition)
}

func (h *toolHandlers) scheduleBuild(ctx context.Context, input scheduleBuildInput) (*scheduleBuildOutput, error) {
	start, end, err := dayRange(input.From, input.Days)
	if err != nil {
		return nil, err
	}

	ids, err := parseUUIDs(input.TaskIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids, err = h.openTaskIDs(ctx)
		if err != nil {
			return nil, err
		}
	}

	result, err := h.app.BuildScheduleHandler.Handle(ctx, commands.BuildScheduleCommand{
		TaskIDs:         ids,
		Windows:         input.Windows,
		ExistingBlocks:  input.ExistingBlocks,
		Start:           start,
		End:             end.Add(-time.Minute),
		MinBlockMinutes: input.MinBlockMinutes,
		MaxBlockMinutes: input.MaxBlockMinutes,
		DryRun:          input.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return &scheduleBuildOutput{
		SchedulingResult: result,
		Blocks:           queries.NewBlockDTOs(result.Blocks),
	}, nil
}

func (h *toolHandlers) openTaskIDs(ctx context.Context) ([]uuid.UUID, error) {
	tasks, err := h.app.ListTasksHandler.Handle(ctx, productivityQueries.ListTasksQuery{Status: "open"})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids, nil
}

func (h *toolHandlers) scheduleShow(ctx context.Context, input scheduleShowInput) (*queries.ScheduleDTO, error) {
	start, end, err := dayRange(input.From, input.Days)
	if err != nil {
		return nil, err
	}
	return h.app.GetBlocksHandler.Handle(ctx, queries.GetBlocksQuery{
		Start:           start,
		End:             end,
		IncludeRejected: input.IncludeRejected,
	})
}

func (h *toolHandlers) scheduleResolve(ctx context.Context, input scheduleResolveInput) (*scheduleResolveOutput, error) {
	start, end, err := dayRange(input.From, input.Days)
	if err != nil {
		return nil, err
	}
	result, err := h.app.ResolveConflictsHandler.Handle(ctx, commands.ResolveConflictsCommand{
		Start:     start,
		End:       end,
		MaxPasses: input.MaxPasses,
		DryRun:    input.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return &scheduleResolveOutput{
		Conflicts: result.Conflicts,
		Blocks:    queries.NewBlockDTOs(result.Blocks),
		Stable:    result.Stable,
	}, nil
}

func (h *toolHandlers) scheduleSlots(ctx context.Context, input scheduleSlotsInput) ([]queries.SlotDTO, error) {
	start, end, err := dayRange(input.From, input.Days)
	if err != nil {
		return nil, err
	}
	windows, err := commands.ParseWindows(input.Windows)
	if err != nil {
		return nil, err
	}
	return h.app.FindAvailableSlotsHandler.Handle(ctx, queries.FindAvailableSlotsQuery{
		Start:           start,
		End:             end.Add(-time.Minute),
		Windows:         windows,
		MinBlockMinutes: input.MinBlockMinutes,
	})
}

func (h *toolHandlers) scheduleTransition(ctx context.Context, input blockTransitionInput) (map[string]any, error) {
	id, err := parseUUID(input.BlockID)
	if err != nil {
		return nil, err
	}
	if err := h.app.TransitionBlockHandler.Handle(ctx, commands.TransitionBlockCommand{
		BlockID: id,
		Status:  input.Status,
	}); err != nil {
		return nil, err
	}
	return map[string]any{"block_id": id, "status": input.Status}, nil
}
