// treeboardd is the sync relay: it owns the authoritative database for a
// set of workshop sessions and fans full snapshots out to every connected
// client over WebSocket.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"treeboard/internal/config"
	"treeboard/internal/database"
	"treeboard/internal/store"
	"treeboard/internal/syncserver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:          "treeboardd",
		Short:        "Sync relay for treeboard sessions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config server.listen)")
	return cmd
}

func run(listen string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cfg.Server.Listen
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hub := syncserver.New(store.NewLocal(db, logger), logger)

	mux := http.NewServeMux()
	mux.Handle("/sync", hub.Handler())

	logger.Info("treeboardd listening",
		zap.String("addr", listen),
		zap.String("db", cfg.Database.Path))
	return http.ListenAndServe(listen, mux)
}
