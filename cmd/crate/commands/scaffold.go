package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
)

func (c *CLI) newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold [name]",
		Short: "Create a new package in the workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ScaffoldOptions{}
			if len(args) == 1 {
				opts.Name = args[0]
			}
			if cmd.Flags().Changed("org") {
				org, _ := cmd.Flags().GetBool("org")
				opts.Organisation = &org
			}
			return c.app.Scaffold(cmd.Context(), c.opts, opts)
		},
	}
	cmd.Flags().Bool("org", true, "Prefix the package name with the workspace scope")
	return cmd
}
