package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build packages with a staged version",
		Long: "Build every package with a staged version together with the dependents that\n" +
			"have to follow it, then commit the staged versions.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rebuild, _ := cmd.Flags().GetBool("rebuild")
			return c.app.Build(cmd.Context(), c.opts, app.BuildOptions{
				Scope:   scope(cmd),
				Rebuild: rebuild,
			})
		},
	}
	addScopeFlag(cmd)
	cmd.Flags().BoolP("rebuild", "r", false, "Rebuild at the committed versions without planning")
	return cmd
}
