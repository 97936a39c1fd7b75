package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose Cadence data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	h := &toolHandlers{app: deps.App}

	srv.Resource("cadence://tasks/ranked").
		Name("Ranked tasks").
		Description("Open tasks ordered by priority score").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			tasks, err := h.taskList(ctx, taskListInput{Status: "open", SortBy: "priority", Limit: 100})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, tasks)
		})

	srv.Resource("cadence://tasks/stale").
		Name("Stale tasks").
		Description("Open tasks whose priority score is missing or outdated").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			tasks, err := h.taskList(ctx, taskListInput{Status: "open", StaleOnly: true})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, tasks)
		})

	srv.Resource("cadence://schedule/today").
		Name("Today's schedule").
		Description("Blocks scheduled for today").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			schedule, err := h.scheduleShow(ctx, scheduleShowInput{Days: 1})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, schedule)
		})

	srv.Resource("cadence://schedule/week").
		Name("This week's schedule").
		Description("Blocks scheduled for the next seven days").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			schedule, err := h.scheduleShow(ctx, scheduleShowInput{Days: 7})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, schedule)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
