// dashboard.go implements "memoria dashboard".
package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memoria-dev/memoria/internal/dashboard"
	"github.com/memoria-dev/memoria/internal/logger"
)

func newDashboardCmd(a *app) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the local web dashboard",
		Long: `Serve a read-only web view of the sessions in this project.
The port can also be set with MEMORIA_PORT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			if cfg, _ := store.Config(); cfg != nil {
				warnVersion(cfg)
			}

			srv, err := dashboard.New(store, logger.Logger)
			if err != nil {
				return err
			}
			addr := net.JoinHostPort(host, strconv.Itoa(a.v.GetInt("port")))
			if err := srv.Listen(addr); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveDashboard(ctx, cmd, srv)
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Interface to listen on")
	cmd.Flags().Int("port", dashboard.DefaultPort, "Port to listen on")
	if err := a.v.BindPFlag("port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	return cmd
}

// serveDashboard runs srv until ctx is done, then shuts it down.
func serveDashboard(ctx context.Context, cmd *cobra.Command, srv *dashboard.Server) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Memoria dashboard running at http://%s\n", srv.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("stopping dashboard")
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
