package commands

import "github.com/spf13/cobra"

func (c *CLI) newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format the sources of packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Format(cmd.Context(), c.opts, scope(cmd))
		},
	}
	addScopeFlag(cmd)
	return cmd
}
