package task

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	newTitle      string
	newEstimate   int
	newImportance string
	newDifficulty string
	newStatus     string
	newDue        string
	clearDue      bool
	newDeps       []string
	clearDeps     bool
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Change task fields. Only the flags given are applied.

Changing a scoring input marks the task's priority as stale.

Examples:
  cadence task update 550e8400-... --importance critical
  cadence task update 550e8400-... --status completed
  cadence task update 550e8400-... --clear-due`,
	Aliases: []string{"edit"},
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

		update := commands.UpdateTaskCommand{TaskID: taskID, ClearDueDate: clearDue}
		flags := cmd.Flags()
		if flags.Changed("title") {
			update.Title = &newTitle
		}
		if flags.Changed("estimate") {
			update.EstimatedMinutes = &newEstimate
		}
		if flags.Changed("importance") {
			update.Importance = &newImportance
		}
		if flags.Changed("difficulty") {
			update.Difficulty = &newDifficulty
		}
		if flags.Changed("status") {
			update.Status = &newStatus
		}
		if newDue != "" {
			due, err := cli.ParseDate(newDue)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			update.DueDate = &due
		}
		if clearDeps {
			empty := []uuid.UUID{}
			update.Dependencies = &empty
		} else if len(newDeps) > 0 {
			deps, err := parseIDs(newDeps)
			if err != nil {
				return fmt.Errorf("invalid --depends-on: %w", err)
			}
			update.Dependencies = &deps
		}

		if err := app.UpdateTaskHandler.Handle(cmd.Context(), update); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]string{"task_id": taskID.String(), "status": "updated"})
		}
		fmt.Fprintf(out, "Task updated: %s\n", taskID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&newTitle, "title", "", "new title")
	updateCmd.Flags().IntVarP(&newEstimate, "estimate", "e", 0, "estimated effort in minutes")
	updateCmd.Flags().StringVarP(&newImportance, "importance", "i", "", "importance (low, medium, high, critical)")
	updateCmd.Flags().StringVarP(&newDifficulty, "difficulty", "d", "", "difficulty (trivial, easy, moderate, hard, extreme)")
	updateCmd.Flags().StringVar(&newStatus, "status", "", "not_started, in_progress, blocked, completed or cancelled")
	updateCmd.Flags().StringVar(&newDue, "due", "", "due date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	updateCmd.Flags().StringSliceVar(&newDeps, "depends-on", nil, "replace dependencies with these task IDs")
	updateCmd.Flags().BoolVar(&clearDeps, "clear-deps", false, "remove all dependencies")
}
