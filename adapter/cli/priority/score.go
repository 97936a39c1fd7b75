package priority

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	staleOnly bool
	maxAge    time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score [task-id...]",
	Short: "Compute priority scores",
	Long: `Score the given tasks, or every open task when no IDs are given, and
print them highest priority first.

Examples:
  cadence priority score
  cadence priority score --stale --max-age 6h
  cadence priority score 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"recalc"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(args))
		for _, arg := range args {
			id, err := uuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid task ID %q: %w", arg, err)
			}
			ids = append(ids, id)
		}

		results, err := app.ScorePrioritiesHandler.Handle(cmd.Context(), commands.ScorePrioritiesCommand{
			TaskIDs:   ids,
			StaleOnly: staleOnly,
			MaxAge:    maxAge,
		})
		if err != nil {
			return fmt.Errorf("failed to score tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "Nothing to score.")
			return nil
		}

		fmt.Fprintf(out, "Scored %d tasks:\n", len(results))
		for i, r := range results {
			advisory := ""
			if r.AdvisoryScore != nil {
				advisory = fmt.Sprintf(" (advisory %.1f)", *r.AdvisoryScore)
			}
			fmt.Fprintf(out, "%2d. %5.1f  %s%s\n", i+1, r.FinalScore, r.Title, advisory)
			fmt.Fprintf(out, "           %s\n", r.Rationale)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&staleOnly, "stale", false, "only tasks whose score is missing or outdated")
	scoreCmd.Flags().DurationVar(&maxAge, "max-age", 0, "with --stale, also rescore scores older than this")
}
