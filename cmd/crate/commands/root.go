// Package commands implements the CLI commands for the crate workspace tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
	"go.trai.ch/crate/internal/build"
)

// CLI represents the command line interface for crate.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	opts    app.Options
}

// Application represents the application logic interface.
type Application interface {
	Bump(ctx context.Context, opts app.Options, bump app.BumpOptions) error
	Format(ctx context.Context, opts app.Options, scope []string) error
	Build(ctx context.Context, opts app.Options, build app.BuildOptions) error
	Release(ctx context.Context, opts app.Options, rel app.ReleaseOptions) error
	Scaffold(ctx context.Context, opts app.Options, sc app.ScaffoldOptions) error
	Status(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "crate",
		Short:         "Build, version and release the packages of a workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.opts.Config, "config", "c", "", "Path to the workspace configuration file")
	flags.StringVar(&c.opts.Cwd, "cwd", "", "Directory to start configuration discovery from")
	flags.BoolVar(&c.opts.JSON, "json", false, "Write logs and reports as JSON")
	flags.BoolVarP(&c.opts.Yes, "yes", "y", false, "Answer every question with its default")

	rootCmd.AddCommand(c.newBumpCmd())
	rootCmd.AddCommand(c.newFormatCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newReleaseCmd())
	rootCmd.AddCommand(c.newScaffoldCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func addScopeFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("scope", "s", nil, "Restrict the command to these packages (repeatable)")
}

func scope(cmd *cobra.Command) []string {
	s, _ := cmd.Flags().GetStringSlice("scope")
	return s
}
