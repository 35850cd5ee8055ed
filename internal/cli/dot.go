package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/journal"
	"github.com/comalice/fsmx/internal/scenario"
	"github.com/comalice/fsmx/internal/visualize"
)

// DotOptions holds flags for the dot command.
type DotOptions struct {
	*RootOptions
	State   string
	Journal string
	Run     string
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render a machine as Graphviz DOT",
		Long: `Render a built-in machine's states as Graphviz DOT.

Transitions are decided at run time, so edges are only drawn from a journaled
run (--journal and --run). --state highlights a state by name.

Example:
  fsmx dot --state Running | dot -Tsvg > motor.svg
  fsmx dot --journal ./fsmx.db --run 0190f1c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderDot(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "state to highlight")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal database")
	cmd.Flags().StringVar(&opts.Run, "run", "", "journal run id to draw edges from")
	cmd.MarkFlagsRequiredTogether("journal", "run")

	return cmd
}

// dotReport is the structured output of dot.
type dotReport struct {
	Edges []visualize.Edge `json:"edges" yaml:"edges"`
	DOT   string           `json:"dot" yaml:"dot"`
}

func renderDot(opts *DotOptions, cmd *cobra.Command) error {
	def, _ := lookupMachine(opts.Machine)
	m, _, err := def.New(fsmxLogger(opts.RootOptions, cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build machine", err)
	}
	states := m.Describe()

	current := fsmx.NoState
	if opts.State != "" {
		if current, err = scenario.StateByName(states, opts.State); err != nil {
			return WrapExitError(ExitCommandError, "invalid --state", err)
		}
	}

	var edges []visualize.Edge
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal, opts.logger(cmd.ErrOrStderr()))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()

		entries, err := j.Records(cmd.Context(), opts.Run)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		if len(entries) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("no records for run %q", opts.Run))
		}
		recs := make([]fsmx.Record, len(entries))
		for i, e := range entries {
			recs[i] = e.Record
		}
		edges = visualize.EdgesFromRecords(recs)
	}

	v := &visualize.Visualizer{Catalog: def.Catalog}
	dot := v.ExportDOT(opts.Machine, states, current, edges)
	return opts.formatter(cmd).Success(dotReport{Edges: edges, DOT: dot}, func(w io.Writer) error {
		_, err := io.WriteString(w, dot)
		return err
	})
}

func fsmxLogger(opts *RootOptions, cmd *cobra.Command) fsmx.Option {
	return fsmx.WithLogger(opts.logger(cmd.ErrOrStderr()))
}
