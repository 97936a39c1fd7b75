package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/services"
	"github.com/felixgeelhaar/mcp-go"
)

type priorityScoreInput struct {
	TaskIDs   []string `json:"task_ids,omitempty"`
	StaleOnly bool     `json:"stale_only,omitempty"`
	// MaxAge is a Go duration such as "6h".
	MaxAge string `json:"max_age,omitempty"`
}

func registerPriorityTools(srv *mcp.Server, h *toolHandlers) {
	srv.Tool("priority.score").
		Description("Score tasks (all open tasks when task_ids is empty) and return them ranked with rationales").
		Handler(h.priorityScore)
}

func (h *toolHandlers) priorityScore(ctx context.Context, input priorityScoreInput) ([]services.PriorityResult, error) {
	ids, err := parseUUIDs(input.TaskIDs)
	if err != nil {
		return nil, err
	}
	cmd := commands.ScorePrioritiesCommand{TaskIDs: ids, StaleOnly: input.StaleOnly}
	if input.MaxAge != "" {
		maxAge, err := time.ParseDuration(input.MaxAge)
		if err != nil {
			return nil, err
		}
		cmd.MaxAge = maxAge
	}
	return h.app.ScorePrioritiesHandler.Handle(ctx, cmd)
}
