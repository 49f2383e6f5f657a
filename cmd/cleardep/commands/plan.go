package commands

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.trai.ch/cleardep/internal/app"
	"go.trai.ch/cleardep/internal/engine/schedule"
)

var (
	headerColor = color.New(color.Bold)
	taskColor   = color.New(color.FgCyan)
	faintColor  = color.New(color.Faint)

	stateColors = map[app.UnitState]*color.Color{
		app.StateUpToDate: color.New(color.FgGreen),
		app.StateNew:      color.New(color.FgBlue),
		app.StateModified: color.New(color.FgYellow),
		app.StateStale:    color.New(color.FgMagenta),
	}
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [units...]",
		Short: "Print the build schedule without compiling",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := c.app.Plan(cmd.Context(), c.runOptions(cmd, args))
			if err != nil {
				return err
			}
			tasks, err := sched.Flatten()
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(c.out, "Nothing to build.")
				return nil
			}

			_, _ = headerColor.Fprintf(c.out, "%d tasks (%s)\n", len(tasks), sched.Mode())
			position := make(map[*schedule.Task]int, len(tasks))
			for i, t := range tasks {
				position[t] = i + 1
				names := make([]string, 0, len(t.Units()))
				for _, u := range t.Units() {
					names = append(names, u.Name())
				}
				_, _ = fmt.Fprintf(c.out, "%2d. %s", i+1, taskColor.Sprint(strings.Join(names, " + ")))
				if req := t.RequiredTasks(); len(req) > 0 {
					after := make([]int, 0, len(req))
					for _, r := range req {
						after = append(after, position[r])
					}
					slices.Sort(after)
					_, _ = faintColor.Fprintf(c.out, " (after %s)", joinInts(after))
				}
				_, _ = fmt.Fprintln(c.out)
			}
			return nil
		},
	}
	addScheduleFlags(cmd)
	cmd.Flags().BoolP("force", "f", false, "Plan every unit regardless of its state")
	return cmd
}

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [units...]",
		Short: "Print the consistency of every unit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Status(cmd.Context(), c.runOptions(cmd, args))
			if err != nil {
				return err
			}
			width := 0
			for _, s := range report {
				width = max(width, len(s.Name))
			}
			for _, s := range report {
				_, _ = fmt.Fprintf(c.out, "%-*s  %s\n", width, s.Name, stateColors[s.State].Sprint(string(s.State)))
			}
			return nil
		},
	}
	cmd.Flags().String("stamper", "", "Stamper kind: content or time")
	return cmd
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
