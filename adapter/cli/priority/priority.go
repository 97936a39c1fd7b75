package priority

import "github.com/spf13/cobra"

// Cmd is the priority command group.
var Cmd = &cobra.Command{
	Use:   "priority",
	Short: "Score and rank tasks",
}

func init() {
	Cmd.AddCommand(scoreCmd)
}
