package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ward/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the specified targets and their dependencies",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			watch, _ := cmd.Flags().GetBool("watch")
			force, _ := cmd.Flags().GetBool("force")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Watch: watch,
				Force: force,
			})
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Stay alive and rebuild targets when their inputs change")
	cmd.Flags().BoolP("force", "f", false, "Bypass the fingerprint cache and rebuild every target")
	return cmd
}
