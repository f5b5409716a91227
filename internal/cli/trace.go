package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routetrace/pkg/route"
)

// traceCommand replays the exploration order of a search.
func (c *CLI) traceCommand() *cobra.Command {
	var from, to string
	var plain, asJSON bool

	cmd := &cobra.Command{
		Use:   "trace [start end]",
		Short: "Step through the stations a search explored",
		Long: `Replay a search one finalized station at a time, ending with the route.
Runs interactively by default; --plain prints every frame instead.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.planQuery(cmd.Context(), args, from, to)
			if err != nil {
				return err
			}
			frames := plan.Frames()
			switch {
			case asJSON:
				return writeJSON(cmd, frames)
			case plain:
				printFrames(frames)
				return nil
			}

			prog := tea.NewProgram(NewTraceModel(plan), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start coordinate as lat,lon")
	cmd.Flags().StringVar(&to, "to", "", "end coordinate as lat,lon")
	cmd.Flags().BoolVar(&plain, "plain", false, "print frames instead of the interactive view")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print frames as JSON")
	return cmd
}

// printFrames prints one line per frame: the station finalized in that
// step, or the path for the last frame.
func printFrames(frames []route.Frame) {
	for _, f := range frames {
		if f.Kind == route.FramePath {
			if len(f.Nodes) == 0 {
				printWarning("no route")
				continue
			}
			keys := make([]string, len(f.Nodes))
			for i, n := range f.Nodes {
				keys[i] = n.Key
			}
			printSuccess("path %s", strings.Join(keys, " "+iconArrow+" "))
			continue
		}
		newest := f.Nodes[len(f.Nodes)-1]
		fmt.Fprintf(stdout, "%4d  %s\n", f.Index+1, newest.Key)
	}
}
