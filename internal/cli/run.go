package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/journal"
	"github.com/comalice/fsmx/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string
}

// runReport is the structured output of run.
type runReport struct {
	RunID           string `json:"runId,omitempty" yaml:"runId,omitempty"`
	Passed          bool   `json:"passed" yaml:"passed"`
	scenario.Result `yaml:",inline"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a scenario against a machine",
		Long: `Play a YAML scenario against a built-in machine and report each delivery.

With --journal, every machine record is appended to an SQLite audit log
under a fresh run id.

Example:
  fsmx run scenarios/motor.yaml
  fsmx run --journal ./fsmx.db --format json scenarios/motor.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal database")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())
	def, _ := lookupMachine(opts.Machine)

	s, err := scenario.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	out.VerboseLog("scenario %s: %d steps", s.Name, len(s.Steps))

	mopts := []fsmx.Option{fsmx.WithLogger(log)}
	report := runReport{}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal, log)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				log.WithError(closeErr).Error("error closing journal")
			}
		}()

		run, err := j.Begin(cmd.Context(), s.Name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin journal run", err)
		}
		defer func() {
			if run.Err() != nil {
				log.WithError(run.Err()).Error("journal incomplete")
			}
		}()
		report.RunID = run.ID()
		mopts = append(mopts, fsmx.WithObserver(run))
		out.VerboseLog("journal run %s", run.ID())
	}

	m, drain, err := def.New(mopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build machine", err)
	}

	res, err := scenario.Run(s, m, def.Decode, drain)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario aborted", err)
	}
	report.Result = *res
	report.Passed = res.Passed()

	if err := out.Success(report, report.writeText); err != nil {
		return err
	}
	if !report.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s: %d expectation(s) failed", s.Name, len(res.Failures)))
	}
	return nil
}

func (r runReport) writeText(w io.Writer) error {
	fmt.Fprintf(w, "scenario: %s\n", r.Name)
	if r.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", r.RunID)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range r.Steps {
		fmt.Fprintf(tw, "  %d\t%s\t%s -> %s", s.Step, s.Event, s.From, s.To)
		switch {
		case s.Error != "":
			fmt.Fprintf(tw, "\terror: %s", s.Error)
		case s.Drained:
			fmt.Fprint(tw, "\t(drained)")
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "final: %s\n", r.Final)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "FAIL %s\n", f)
	}
	if r.Passed {
		fmt.Fprintln(w, "PASS")
	}
	return nil
}
