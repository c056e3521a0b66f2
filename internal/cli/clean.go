// clean.go implements the "memoria clean" command for pruning completed
// sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/cleanup"
)

// defaultMaxAgeDays is the age cutoff when neither --older-than nor
// --keep is given.
const defaultMaxAgeDays = 30

func newCleanCmd(a *app) *cobra.Command {
	var (
		olderThan int
		keep      int
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old completed sessions",
		Long: `Remove completed sessions from .memoria/sessions/.

By default, removes completed sessions that finished more than 30 days ago.
Use --keep to keep only the N most recent completed sessions instead.
In-progress sessions are never removed.
Use --dry-run to preview what would be removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}

			var pruned []string
			if keep > 0 {
				pruned, err = cleanup.PruneKeepRecent(store, keep, dryRun)
			} else {
				pruned, err = cleanup.PruneByAge(store, olderThan, a.now(), dryRun)
			}
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			if len(pruned) == 0 {
				fmt.Fprintln(out, "No sessions to clean up.")
				return nil
			}

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, id := range pruned {
				fmt.Fprintf(out, "  %s %s\n", verb, id)
			}
			fmt.Fprintf(out, "%s %d session(s).\n", verb, len(pruned))
			return nil
		},
	}
	cmd.Flags().IntVar(&olderThan, "older-than", defaultMaxAgeDays, "Remove completed sessions older than this many days")
	cmd.Flags().IntVar(&keep, "keep", 0, "Keep only the last N completed sessions (0 = use age-based cleanup)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be removed without deleting")
	return cmd
}
