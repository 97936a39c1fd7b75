package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [block-id] [scheduled|accepted|rejected|completed|missed]",
	Short: "Move a block through its lifecycle",
	Long: `Record what happened to a block.

Proposed blocks become scheduled or rejected. Scheduled blocks are
accepted, rejected or missed. Accepted blocks end completed or missed.
Rejected and missed blocks free their time for the next build.

Examples:
  cadence schedule status 550e8400-... scheduled
  cadence schedule status 550e8400-... rejected`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		blockID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid block ID: %w", err)
		}

		err = app.TransitionBlockHandler.Handle(cmd.Context(), scheduleCommands.TransitionBlockCommand{
			BlockID: blockID,
			Status:  args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to update block: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]string{"block_id": blockID.String(), "status": args[1]})
		}
		fmt.Fprintf(out, "Block %s is now %s\n", blockID, args[1])
		return nil
	},
}
