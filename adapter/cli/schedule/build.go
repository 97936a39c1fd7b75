package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	buildFrom    string
	buildDays    int
	buildWindows []string
	minBlock     int
	maxBlock     int
	dryRun       bool
)

var buildCmd = &cobra.Command{
	Use:   "build [task-id...]",
	Short: "Schedule tasks into free time",
	Long: `Score the tasks, find free time in the availability windows, and
propose calendar blocks, highest priority first. Without IDs every open
task is scheduled. Without --window the working week is Monday to
Friday, 09:00 to 17:00.

Examples:
  cadence schedule build
  cadence schedule build --from 2026-11-02 --days 5
  cadence schedule build --window weekdays=08:30-12:00 --window sat=10:00-12:00
  cadence schedule build --max-block 90 --dry-run`,
	Aliases: []string{"auto", "plan"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		h, err := parseHorizon(buildFrom, buildDays)
		if err != nil {
			return err
		}
		windows, err := parseWindowFlags(buildWindows)
		if err != nil {
			return err
		}

		ids, err := taskIDs(cmd, app, args)
		if err != nil {
			return err
		}

		result, err := app.BuildScheduleHandler.Handle(ctx, scheduleCommands.BuildScheduleCommand{
			TaskIDs:         ids,
			Windows:         windows,
			Start:           h.start,
			End:             h.lastMinute(),
			MinBlockMinutes: minBlock,
			MaxBlockMinutes: maxBlock,
			DryRun:          dryRun,
		})
		if err != nil {
			return fmt.Errorf("failed to build schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, buildOutput{
				SchedulingResult: result,
				Blocks:           scheduleQueries.NewBlockDTOs(result.Blocks),
			})
		}

		fmt.Fprintln(out, result.Message)
		for _, b := range result.Blocks {
			fmt.Fprintf(out, "  %s  %s\n", b.Span(), b.Title())
		}
		for _, u := range result.Unschedulable {
			fmt.Fprintf(out, "  ! %s: %s (needs %d min, %d free)\n", u.Title, u.Reason, u.RequiredMinutes, u.AvailableMinutes)
		}
		if dryRun {
			fmt.Fprintln(out, "Dry run: nothing was saved.")
		}
		return nil
	},
}

type buildOutput struct {
	*domain.SchedulingResult
	Blocks []scheduleQueries.BlockDTO `json:"blocks"`
}

func taskIDs(cmd *cobra.Command, app *cli.App, args []string) ([]uuid.UUID, error) {
	if len(args) > 0 {
		ids := make([]uuid.UUID, 0, len(args))
		for _, arg := range args {
			id, err := uuid.Parse(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid task ID %q: %w", arg, err)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{Status: "open"})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids, nil
}

func init() {
	buildCmd.Flags().StringVar(&buildFrom, "from", "", "first day to schedule (YYYY-MM-DD, default today)")
	buildCmd.Flags().IntVar(&buildDays, "days", 1, "number of days to schedule")
	buildCmd.Flags().StringArrayVarP(&buildWindows, "window", "w", nil, "availability window DAY=HH:MM-HH:MM (repeatable)")
	buildCmd.Flags().IntVar(&minBlock, "min-block", 0, "minimum block length in minutes (default from config)")
	buildCmd.Flags().IntVar(&maxBlock, "max-block", 0, "maximum block length in minutes (default from config)")
	buildCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the schedule without saving it")
}
