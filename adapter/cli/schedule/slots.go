package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var (
	slotsFrom    string
	slotsDays    int
	slotsWindows []string
	slotsMin     int
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show free time",
	Long: `List the free ranges left in each availability window after the
blocks already scheduled.

Examples:
  cadence schedule slots --days 5
  cadence schedule slots --window weekdays=10:00-16:00 --min 60`,
	Aliases: []string{"available", "free"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		h, err := parseHorizon(slotsFrom, slotsDays)
		if err != nil {
			return err
		}
		inputs, err := parseWindowFlags(slotsWindows)
		if err != nil {
			return err
		}
		windows, err := scheduleCommands.ParseWindows(inputs)
		if err != nil {
			return err
		}

		slots, err := app.FindAvailableSlotsHandler.Handle(cmd.Context(), queries.FindAvailableSlotsQuery{
			Start:           h.start,
			End:             h.lastMinute(),
			Windows:         windows,
			MinBlockMinutes: slotsMin,
		})
		if err != nil {
			return fmt.Errorf("failed to find slots: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, slots)
		}
		if len(slots) == 0 {
			fmt.Fprintln(out, "No free time in range.")
			return nil
		}

		total := 0
		for _, s := range slots {
			total += s.FreeMinutes
			fmt.Fprintf(out, "%s  %s free\n", s.Start.Format("Mon 01-02"), cli.FormatMinutes(s.FreeMinutes))
			for _, r := range s.Free {
				fmt.Fprintf(out, "    %s - %s\n", r.Start.Format("15:04"), r.End.Format("15:04"))
			}
		}
		fmt.Fprintf(out, "Total free: %s\n", cli.FormatMinutes(total))
		return nil
	},
}

func init() {
	slotsCmd.Flags().StringVar(&slotsFrom, "from", "", "first day (YYYY-MM-DD, default today)")
	slotsCmd.Flags().IntVar(&slotsDays, "days", 1, "number of days")
	slotsCmd.Flags().StringArrayVarP(&slotsWindows, "window", "w", nil, "availability window DAY=HH:MM-HH:MM (repeatable)")
	slotsCmd.Flags().IntVar(&slotsMin, "min", 0, "hide slots with less free time than this many minutes")
}
