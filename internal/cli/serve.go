// serve.go implements "memoria serve", the MCP server an assistant launches.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/logger"
	"github.com/memoria-dev/memoria/internal/mcp"
	"github.com/memoria-dev/memoria/internal/session"
	"github.com/memoria-dev/memoria/internal/tools"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Speak the Model Context Protocol over stdin/stdout, one JSON-RPC message
per line. Diagnostics go to stderr or --log-file, never stdout.

  claude mcp add memoria -- memoria serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			if cfg, _ := store.Config(); cfg != nil {
				warnVersion(cfg)
			}

			rec := session.NewRecorder(store, nil, a.now)
			rec.SetGitProbe(gitProbe)
			srv := mcp.NewServer(tools.NewHandler(rec), version, logger.Logger)

			logger.Info("mcp server started", "root", store.Root(), "version", version)
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
