package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
)

func (c *CLI) newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Publish committed packages to release channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			channels, _ := cmd.Flags().GetStringSlice("channel")
			return c.app.Release(cmd.Context(), c.opts, app.ReleaseOptions{
				Scope:    scope(cmd),
				Channels: channels,
			})
		},
	}
	addScopeFlag(cmd)
	cmd.Flags().StringSlice("channel", nil, "Release channel to publish to (default \""+app.DefaultChannel+"\")")
	return cmd
}
