// Package commands implements the CLI commands of cleardep.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/cleardep/internal/app"
	"go.trai.ch/cleardep/internal/build"
)

// jsonSwitch is implemented by loggers that can emit structured output.
type jsonSwitch interface {
	SetJSON(enable bool)
}

// CLI represents the command line interface for cleardep.
type CLI struct {
	app        *app.App
	components *app.Components
	rootCmd    *cobra.Command
	out        io.Writer

	dir string
}

// New creates a new CLI for the given components.
func New(components *app.Components) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cleardep",
		Short:         "Incremental builds driven by persisted unit dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Info(),
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:        components.App,
		components: components,
		rootCmd:    rootCmd,
		out:        os.Stdout,
	}

	rootCmd.PersistentFlags().StringVarP(&c.dir, "dir", "C", "", "Directory to search the manifest from")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		enable, _ := cmd.Flags().GetBool("json")
		if l, ok := c.components.Logger.(jsonSwitch); ok {
			l.SetJSON(enable)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
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

// SetOutput redirects the reports of plan, status and version. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
	c.rootCmd.SetOut(w)
}

// addScheduleFlags registers the flags shared by the commands that compute a schedule.
func addScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "Schedule mode: rebuild-inconsistent, rebuild-all or rebuild-inconsistent-interface")
	cmd.Flags().String("stamper", "", "Stamper kind: content or time")
}

func (c *CLI) runOptions(cmd *cobra.Command, targets []string) app.RunOptions {
	opts := app.RunOptions{Dir: c.dir, Targets: targets}
	if f := cmd.Flags().Lookup("mode"); f != nil {
		opts.Mode = f.Value.String()
	}
	if f := cmd.Flags().Lookup("stamper"); f != nil {
		opts.Stamper = f.Value.String()
	}
	if f := cmd.Flags().Lookup("force"); f != nil {
		opts.Force, _ = cmd.Flags().GetBool("force")
	}
	if f := cmd.Flags().Lookup("jobs"); f != nil {
		opts.Parallelism, _ = cmd.Flags().GetInt("jobs")
	}
	if f := cmd.Flags().Lookup("tui"); f != nil {
		opts.TUI, _ = cmd.Flags().GetBool("tui")
	}
	if f := cmd.Flags().Lookup("debounce"); f != nil {
		opts.Debounce, _ = cmd.Flags().GetDuration("debounce")
	}
	return opts
}
