// Package cli implements the fsmx command-line tool.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	Machine string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the fsmx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fsmx",
		Short: "fsmx - table-driven state machines",
		Long: `Inspect and exercise fsmx state tables.

Scenarios are YAML scripts of events played against a built-in machine;
runs can be journaled to SQLite and rendered as Graphviz DOT.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, ok := lookupMachine(opts.Machine); !ok {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("unknown machine %q: must be one of %v", opts.Machine, machineNames()))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Machine, "machine", "m", "motor", "built-in machine to use")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewDotCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a logrus logger writing to w: debug level when verbose,
// warnings otherwise.
func (o *RootOptions) logger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	if o.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
