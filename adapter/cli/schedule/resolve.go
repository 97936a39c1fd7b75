package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	resolveFrom   string
	resolveDays   int
	maxPasses     int
	resolveDryRun bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Repair overlapping blocks",
	Long: `Shift later blocks forward until no two blocks overlap. Blocks keep
their length; fixed commitments are never moved.

Examples:
  cadence schedule resolve
  cadence schedule resolve --days 7 --passes 5`,
	Aliases: []string{"fix"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		h, err := parseHorizon(resolveFrom, resolveDays)
		if err != nil {
			return err
		}

		result, err := app.ResolveConflictsHandler.Handle(cmd.Context(), scheduleCommands.ResolveConflictsCommand{
			Start:     h.start,
			End:       h.end,
			MaxPasses: maxPasses,
			DryRun:    resolveDryRun,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve conflicts: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, resolveOutput{
				Conflicts: result.Conflicts,
				Blocks:    queries.NewBlockDTOs(result.Blocks),
				Stable:    result.Stable,
			})
		}
		if len(result.Conflicts) == 0 {
			fmt.Fprintln(out, "No conflicts found.")
			return nil
		}

		fmt.Fprintf(out, "Resolved %d conflicts:\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			fmt.Fprintf(out, "  %s\n", c.Resolution)
		}
		if !result.Stable {
			fmt.Fprintln(out, "Overlaps remain; run again or raise --passes.")
		}
		return nil
	},
}

type resolveOutput struct {
	Conflicts []domain.Conflict  `json:"conflicts"`
	Blocks    []queries.BlockDTO `json:"blocks"`
	Stable    bool               `json:"stable"`
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "first day to check (YYYY-MM-DD, default today)")
	resolveCmd.Flags().IntVar(&resolveDays, "days", 1, "number of days to check")
	resolveCmd.Flags().IntVar(&maxPasses, "passes", 1, "repeat until stable, at most this many passes")
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "report repairs without saving them")
}
