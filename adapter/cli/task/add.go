package task

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	estimate   int
	importance string
	difficulty string
	dueDate    string
	dependsOn  []string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a task with its estimated effort and optional scoring inputs.

Importance: low, medium, high, critical (or 1-4)
Difficulty: trivial, easy, moderate, hard, extreme (or 1-5)

Examples:
  cadence task add "Write quarterly report" -e 90 -i high
  cadence task add "Fix login bug" -e 30 -i critical --due 2026-11-02
  cadence task add "Deploy" -e 15 --depends-on 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"create", "new"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		createCmd := commands.CreateTaskCommand{
			Title:            args[0],
			EstimatedMinutes: estimate,
			Importance:       importance,
			Difficulty:       difficulty,
		}

		if dueDate != "" {
			due, err := cli.ParseDate(dueDate)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			createCmd.DueDate = &due
		}

		deps, err := parseIDs(dependsOn)
		if err != nil {
			return fmt.Errorf("invalid --depends-on: %w", err)
		}
		createCmd.Dependencies = deps

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]string{"task_id": result.TaskID.String()})
		}
		fmt.Fprintf(out, "Task created: %s\n", result.TaskID)
		fmt.Fprintf(out, "  title:    %s\n", args[0])
		fmt.Fprintf(out, "  estimate: %s\n", cli.FormatMinutes(estimate))
		return nil
	},
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a task ID", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	addCmd.Flags().IntVarP(&estimate, "estimate", "e", 30, "estimated effort in minutes")
	addCmd.Flags().StringVarP(&importance, "importance", "i", "", "importance (low, medium, high, critical)")
	addCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "difficulty (trivial, easy, moderate, hard, extreme)")
	addCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "IDs of tasks this task depends on")
}
