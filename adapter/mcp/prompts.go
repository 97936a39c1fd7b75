package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common Cadence workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_week").
		Description("Score open tasks, schedule them into the coming week and review the result.").
		Argument("from", "First day to plan (YYYY-MM-DD, default today)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			from := args["from"]
			if from == "" {
				from = "today"
			}
			return &mcp.PromptResult{
				Description: "Weekly Planning",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Plan my week starting %s.

1. Read cadence://tasks/stale and run priority.score if anything is listed
2. Read cadence://tasks/ranked and check the top tasks make sense to me
3. Run schedule.build with dry_run=true and days=7
4. Summarize what was placed and list every unschedulable task with its reason
5. Once I agree, run schedule.build again without dry_run
6. Run schedule.resolve_conflicts for the same range

Ask before changing task estimates or importance with task.update.`, from),
						},
					},
				},
			}, nil
		})

	srv.Prompt("explain_priorities").
		Description("Explain why tasks are ranked the way they are.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Priority Explanation",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Read cadence://tasks/ranked and explain the ranking of my top five tasks.
Use each task's priority_rationale. Point out tasks whose score looks stale
and suggest which inputs (importance, due date, estimate) I might revisit.`,
						},
					},
				},
			}, nil
		})

	return nil
}
