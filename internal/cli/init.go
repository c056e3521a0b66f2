// init.go implements "memoria init" and "memoria activate".
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [name]",
		Short: "Initialize .memoria/ in the current directory",
		Long: `Create .memoria/ with a config, an empty session index and a .gitignore.
The project name defaults to the one found in package.json, go.mod,
Cargo.toml, pyproject.toml or pubspec.yaml, then the directory name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			root, err := a.root()
			if err != nil {
				return err
			}
			if config.IsInitialized(root) {
				fmt.Fprintln(out, "Memoria is already initialized in this directory.")
				if cfg, _ := config.Load(root); cfg != nil {
					fmt.Fprintf(out, "Project: %s\n", cfg.Project)
					fmt.Fprintf(out, "Directory: %s\n", config.StoreDir(root))
				}
				return nil
			}

			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			fmt.Fprintln(out, "Initializing Memoria...")
			fmt.Fprintln(out)
			cfg, err := config.Initialize(dir, name, a.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Created %s/ directory\n", check(), config.DirName)
			fmt.Fprintf(out, "%s Project name: %s\n", check(), cfg.Project)
			fmt.Fprintf(out, "%s Config saved\n\n", check())

			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "1. Add the MCP server to your assistant:")
			fmt.Fprintln(out, "   claude mcp add memoria -- memoria serve")
			fmt.Fprintln(out, "2. Restart the assistant")
			fmt.Fprintln(out, "3. Start saving your coding sessions!")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Tip: .memoria/.gitignore keeps session data out of version control;")
			fmt.Fprintln(out, "     remove it if you want to commit your sessions.")
			return nil
		},
	}
}

func newActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <license-key>",
		Short: "Activate a license key for search features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, cfg, err := a.initializedStore()
			if err != nil {
				return err
			}
			cfg.LicenseKey = args[0]
			if err := config.Save(store.Root(), cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s License key saved for %s\n\n", check(), cfg.Project)
			fmt.Fprintln(out, "Search features coming soon:")
			fmt.Fprintln(out, "  - semantic_search: Natural language search")
			fmt.Fprintln(out, "  - find_related_sessions: Find similar past work")
			return nil
		},
	}
}
