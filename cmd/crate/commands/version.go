package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the crate version and the platform it was built for",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "crate version %s (commit: %s, date: %s, %s/%s)\n",
				build.Version, build.Commit, build.Date, runtime.GOOS, runtime.GOARCH)
		},
	}
}
