package task

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show [task-id]",
	Short:   "Show task details",
	Aliases: []string{"get", "view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		t, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{TaskID: taskID})
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, t)
		}

		fmt.Fprintf(out, "Task: %s\n", t.ID)
		fmt.Fprintf(out, "  Title:      %s\n", t.Title)
		fmt.Fprintf(out, "  Status:     %s\n", t.Status)
		fmt.Fprintf(out, "  Estimate:   %s\n", cli.FormatMinutes(t.EstimatedMinutes))
		fmt.Fprintf(out, "  Importance: %s\n", t.Importance)
		fmt.Fprintf(out, "  Difficulty: %s\n", t.Difficulty)
		if t.DueDate != nil {
			fmt.Fprintf(out, "  Due:        %s\n", t.DueDate.Format("2006-01-02"))
		}
		for _, dep := range t.Dependencies {
			fmt.Fprintf(out, "  Depends on: %s\n", dep)
		}
		if t.ScoredAt == nil {
			fmt.Fprintln(out, "  Priority:   not scored")
		} else {
			fmt.Fprintf(out, "  Priority:   %.1f (scored %s)\n", t.PriorityScore, t.ScoredAt.Format("2006-01-02 15:04"))
			if t.PriorityRationale != "" {
				fmt.Fprintf(out, "  Rationale:  %s\n", t.PriorityRationale)
			}
		}
		if t.Stale {
			fmt.Fprintln(out, "  Score is stale; run `cadence priority score`")
		}
		return nil
	},
}
