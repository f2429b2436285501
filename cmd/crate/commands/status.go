package commands

import "github.com/spf13/cobra"

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show versions and release state of every package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Status(cmd.Context(), c.opts)
		},
	}
}
