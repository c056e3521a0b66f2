// sessions.go implements the commands that read or remove individual
// sessions: list, show, delete and reindex.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/session"
	"github.com/memoria-dev/memoria/internal/tui"
)

func newListCmd(a *app) *cobra.Command {
	var (
		status  string
		project string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}
			entries, err := store.Index()
			if err != nil {
				return err
			}

			shown := 0
			for _, e := range entries {
				if status != "" && string(e.Status) != status {
					continue
				}
				if project != "" && e.Project != project {
					continue
				}
				if limit > 0 && shown == limit {
					break
				}
				fmt.Fprintf(out, "%s  %s  %s  %s\n",
					e.ID, statusLabel(e.Status), e.UpdatedAt.Local().Format("2006-01-02 15:04"), e.Title)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No sessions found.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only sessions with this status (in_progress|completed)")
	cmd.Flags().StringVar(&project, "project", "", "Only sessions for this project")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show (0 = all)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}
			sess, err := load(store, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sess)
			}
			md := tui.DetailMarkdown(sess)
			if tui.IsTTY() {
				md = tui.GlamourRenderer(md, 100)
			}
			fmt.Fprint(out, md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored JSON record")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its index entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}
			id := args[0]
			deleted, err := store.Delete(id)
			if errors.Is(err, session.ErrInvalidID) || (err == nil && !deleted) {
				return &session.NotFoundError{ID: id}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", check(), id)
			return nil
		},
	}
}

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild index.json from the session files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.initializedStore()
			if err != nil {
				return err
			}
			entries, err := store.Reindex()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Rebuilt index with %d session(s).\n", check(), len(entries))
			return nil
		},
	}
}

// load returns the session or a *session.NotFoundError.
func load(store *session.Store, id string) (*session.Session, error) {
	sess, err := store.Load(id)
	if err != nil && !errors.Is(err, session.ErrInvalidID) {
		return nil, err
	}
	if sess == nil {
		return nil, &session.NotFoundError{ID: id}
	}
	return sess, nil
}
