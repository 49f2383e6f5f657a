package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [units...]",
		Short: "Compile the units that are out of date",
		Long: "Compile the given units and everything they depend on that is out of date.\n" +
			"Without arguments every unit of the manifest is a root.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), c.runOptions(cmd, args))
		},
	}
	addScheduleFlags(cmd)
	cmd.Flags().BoolP("force", "f", false, "Compile every unit regardless of its state")
	cmd.Flags().IntP("jobs", "j", 0, "Number of tasks compiled at once (default: number of CPUs)")
	cmd.Flags().Bool("tui", false, "Show build progress in an interactive terminal view")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [units...]",
		Short: "Rebuild whenever project files change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), c.runOptions(cmd, args))
		},
	}
	addScheduleFlags(cmd)
	cmd.Flags().IntP("jobs", "j", 0, "Number of tasks compiled at once (default: number of CPUs)")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a rebuild (default 200ms)")
	return cmd
}

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every persisted unit of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Clean(cmd.Context(), c.runOptions(cmd, nil))
		},
	}
}
