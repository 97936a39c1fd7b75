package task

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var (
	status    string
	dueBefore string
	staleOnly bool
	sortBy    string
	limit     int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, highest priority first by default.

Examples:
  cadence task list                     # Open tasks by priority
  cadence task list --status all        # Every task
  cadence task list --stale             # Tasks whose score is out of date
  cadence task list --sort due_date -n 5`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.ListTasksQuery{
			Status:    status,
			StaleOnly: staleOnly,
			SortBy:    sortBy,
			Limit:     limit,
		}
		if dueBefore != "" {
			t, err := cli.ParseDate(dueBefore)
			if err != nil {
				return fmt.Errorf("invalid --due-before: %w", err)
			}
			query.DueBefore = &t
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range tasks {
			marker := ""
			if t.Stale {
				marker = " [STALE]"
			}
			fmt.Fprintf(out, "%5.1f  %s [%s]%s\n", t.PriorityScore, t.Title, t.Importance, marker)
			fmt.Fprintf(out, "       ID: %s  Estimate: %s  Status: %s\n", t.ID, cli.FormatMinutes(t.EstimatedMinutes), t.Status)
			if t.DueDate != nil {
				fmt.Fprintf(out, "       Due: %s\n", t.DueDate.Format("2006-01-02"))
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&status, "status", "open", "open, all, or a single status")
	listCmd.Flags().StringVar(&dueBefore, "due-before", "", "only tasks due before this date (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&staleOnly, "stale", false, "only tasks that need rescoring")
	listCmd.Flags().StringVar(&sortBy, "sort", "priority", "sort by priority, due_date or created_at")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
}
