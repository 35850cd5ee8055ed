package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx/internal/visualize"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Describe a machine's state table",
		Long: `List every state of a built-in machine with its accepted events and hooks.

Example:
  fsmx describe
  fsmx describe --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, _ := lookupMachine(rootOpts.Machine)
			m, _, err := def.New(fsmxLogger(rootOpts, cmd))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build machine", err)
			}

			v := &visualize.Visualizer{Catalog: def.Catalog}
			table := v.Describe(rootOpts.Machine, m.Describe())
			return rootOpts.formatter(cmd).Success(table, func(w io.Writer) error {
				return writeTable(w, table)
			})
		},
	}
}

func writeTable(w io.Writer, t visualize.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tACCEPTS\tENTER\tEXIT")
	for _, s := range t.States {
		accepts := strings.Join(s.Accepts, ", ")
		if accepts == "" {
			accepts = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, accepts, yesNo(s.HasEnter), yesNo(s.HasExit))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
