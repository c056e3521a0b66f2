// export.go implements "memoria export".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all sessions as JSON, YAML or SQLite",
		Long: `Export every session in the store.

JSON and YAML go to stdout unless --out is given. SQLite needs --out and
refreshes an existing database in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}
			n, err := export.Run(store, export.Options{
				Format: f,
				Out:    out,
				Stdout: cmd.OutOrStdout(),
				Now:    a.now(),
			})
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d session(s) to %s\n", check(), n, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml|sqlite)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (required for sqlite)")
	return cmd
}
