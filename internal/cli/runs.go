package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx/internal/journal"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled runs",
		Long: `List the runs recorded in an SQLite journal, oldest first.

Example:
  fsmx runs --journal ./fsmx.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(path, rootOpts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open journal", err)
			}
			defer j.Close()

			runs, err := j.Runs(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}
			if runs == nil {
				runs = []journal.RunInfo{}
			}
			return rootOpts.formatter(cmd).Success(runs, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tSCENARIO\tSTARTED")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.StartedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&path, "journal", "", "path to SQLite journal database (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}
