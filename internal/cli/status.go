// status.go implements the "memoria status" command.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/report"
	"github.com/memoria-dev/memoria/internal/session"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of the current project",
		Long: `Show the project name, session totals and the in-progress sessions an
assistant would pick up with continue_context.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := a.store()
			if err != nil {
				return err
			}

			r, err := report.GenerateReport(store)
			switch {
			case errors.Is(err, session.ErrNotInitialized):
				fmt.Fprintln(out, "Memoria is not initialized in this directory.")
				fmt.Fprintln(out, "Run `memoria init` to get started.")
				return nil
			case errors.Is(err, session.ErrConfig):
				fmt.Fprintln(out, "Error: Failed to load config.")
				return nil
			case err != nil:
				return err
			}
			if cfg, _ := store.Config(); cfg != nil {
				warnVersion(cfg)
			}

			fmt.Fprint(out, report.FormatReport(r))
			return nil
		},
	}
}
