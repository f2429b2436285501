package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
	"go.trai.ch/crate/internal/core/domain"
)

var transitionKinds = []string{
	string(domain.TransitionPatch),
	string(domain.TransitionMinor),
	string(domain.TransitionMajor),
	string(domain.TransitionPreRelease),
	string(domain.TransitionPreReleaseRemove),
}

func (c *CLI) newBumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump [" + strings.Join(transitionKinds, "|") + "]",
		Short: "Stage the next version of packages",
		Long: "Stage the next version of every package in scope. Without a transition kind\n" +
			"each package offers the menu of possible versions.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: transitionKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind string
			if len(args) == 1 {
				kind = args[0]
			}
			channel, _ := cmd.Flags().GetString("channel")
			return c.app.Bump(cmd.Context(), c.opts, app.BumpOptions{
				Scope:   scope(cmd),
				Kind:    kind,
				Channel: channel,
			})
		},
	}
	addScopeFlag(cmd)
	cmd.Flags().String("channel", "", "Pre-release channel for pre-release: alpha, beta or rs")
	return cmd
}
