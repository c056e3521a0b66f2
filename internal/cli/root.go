// Package cli defines Cobra command definitions for the memoria CLI.
// This file contains the root command, global flags and shared wiring.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/git"
	"github.com/memoria-dev/memoria/internal/log"
	"github.com/memoria-dev/memoria/internal/logger"
	"github.com/memoria-dev/memoria/internal/session"
	"github.com/memoria-dev/memoria/internal/tui"
)

var version = "dev" // set via ldflags at build time

// app carries state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	closer io.Closer
	now    func() time.Time
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}
	a.v.SetEnvPrefix("MEMORIA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "memoria",
		Short: "Local-first session memory for AI coding assistants",
		Long: `Memoria keeps a durable record of AI coding sessions in .memoria/:
summaries, checkpoints, decisions, files touched and work left open.
Assistants write to it over MCP ("memoria serve"); people read it with
"memoria status", "memoria list", the terminal browser or the dashboard.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := logger.Configure(a.v.GetString("log-level"), a.v.GetString("log-file"))
			if err != nil {
				return fmt.Errorf("configuring logger: %w", err)
			}
			a.closer = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Browser on a terminal, help otherwise.
			if !tui.IsTTY() {
				return cmd.Help()
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			return tui.Run(store)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	for _, name := range []string{"log-level", "log-file"} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		newInitCmd(a),
		newStatusCmd(a),
		newActivateCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newReindexCmd(a),
		newExportCmd(a),
		newCleanCmd(a),
		newDashboardCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// root resolves the project root from the working directory.
func (a *app) root() (string, error) {
	root, err := config.FindRootFromCwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return root, nil
}

// store opens the session store for the current project with diagnostics
// and the event journal attached.
func (a *app) store() (*session.Store, error) {
	root, err := a.root()
	if err != nil {
		return nil, err
	}
	return session.NewStore(root,
		session.WithLogger(logger.Logger),
		session.WithJournal(log.NewLogger(config.StoreDir(root))),
	), nil
}

// initializedStore is store plus the not-initialized and config checks
// every read command starts with.
func (a *app) initializedStore() (*session.Store, *config.Config, error) {
	store, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	if !store.IsInitialized() {
		return nil, nil, errNotInitialized
	}
	cfg, err := store.Config()
	if err != nil || cfg == nil {
		return nil, nil, errConfig
	}
	warnVersion(cfg)
	return store, cfg, nil
}

var (
	errNotInitialized = errors.New("memoria is not initialized in this directory; run `memoria init` first")
	errConfig         = errors.New("failed to load config")
)

// warnVersion logs configs written by a newer major version.
func warnVersion(cfg *config.Config) {
	if err := config.CheckVersion(cfg); err != nil {
		logger.Warn("config version check failed", "err", err)
	}
}

// gitProbe stamps new sessions with the repository state, best-effort.
func gitProbe(root string) (string, string) {
	info, err := git.Describe(root)
	if err != nil {
		logger.Debug("no git info", "root", root, "err", err)
		return "", ""
	}
	return info.Branch, info.Commit
}
