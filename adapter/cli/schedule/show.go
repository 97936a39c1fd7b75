package schedule

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var (
	showFrom     string
	showDays     int
	showRejected bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show scheduled blocks",
	Long: `Display the blocks for today or a range of days.

Examples:
  cadence schedule show
  cadence schedule show --from 2026-11-02 --days 7
  cadence schedule show --rejected`,
	Aliases: []string{"today", "view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		h, err := parseHorizon(showFrom, showDays)
		if err != nil {
			return err
		}

		schedule, err := app.GetBlocksHandler.Handle(cmd.Context(), queries.GetBlocksQuery{
			Start:           h.start,
			End:             h.end,
			IncludeRejected: showRejected,
		})
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, schedule)
		}
		if len(schedule.Blocks) == 0 {
			fmt.Fprintln(out, "No blocks scheduled.")
			return nil
		}

		fmt.Fprintf(out, "Schedule %s to %s\n", h.start.Format("2006-01-02"), h.lastMinute().Format("2006-01-02"))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, b := range schedule.Blocks {
			fmt.Fprintf(out, "%s - %s  %-10s %s\n",
				b.Start.Format("Mon 01-02 15:04"), b.End.Format("15:04"), b.Status, b.Title)
			fmt.Fprintf(out, "   ID: %s\n", b.ID)
		}
		fmt.Fprintln(out, strings.Repeat("-", 60))
		fmt.Fprintf(out, "Scheduled: %s  (%d proposed, %d scheduled, %d accepted, %d completed, %d missed)\n",
			cli.FormatMinutes(schedule.TotalScheduledMins),
			schedule.ProposedCount, schedule.ScheduledCount, schedule.AcceptedCount,
			schedule.CompletedCount, schedule.MissedCount)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showFrom, "from", "", "first day to show (YYYY-MM-DD, default today)")
	showCmd.Flags().IntVar(&showDays, "days", 1, "number of days to show")
	showCmd.Flags().BoolVar(&showRejected, "rejected", false, "include rejected blocks")
}
