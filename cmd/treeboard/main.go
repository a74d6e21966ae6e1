// treeboard is the terminal client for a shared problem-tree workshop
// board. It renders one session and syncs either through a shared sqlite
// file (single machine) or a treeboardd relay (many machines).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"treeboard/internal/config"
	"treeboard/internal/database"
	"treeboard/internal/prefs"
	"treeboard/internal/store"
	"treeboard/internal/sync"
	"treeboard/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		session   string
		role      string
		name      string
		anonymous bool
		server    string
	)

	cmd := &cobra.Command{
		Use:          "treeboard",
		Short:        "Collaborative problem-tree board in the terminal",
		SilenceUsage: true,
		Example: `  # Start a fresh session as moderator
  treeboard

  # Join a running session as participant
  treeboard --session 4f6c1d2e --role participant --name "Riya"

  # Sync through a relay instead of a shared database file
  treeboard --server ws://boards.example.org:7357/sync --session 4f6c1d2e`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), session, role, name, anonymous, server)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id to join (empty starts a new one)")
	cmd.Flags().StringVar(&role, "role", string(tui.RoleModerator), "moderator or participant")
	cmd.Flags().StringVar(&name, "name", "", "display name written on your notes")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "post notes without a name")
	cmd.Flags().StringVar(&server, "server", "", "relay URL (overrides config server.url)")
	return cmd
}

func run(ctx context.Context, session, roleFlag, name string, anonymous bool, server string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// the TUI owns the terminal; logs go to a file
	logger, err := newFileLogger(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync()

	role := tui.Role(roleFlag)
	if role != tui.RoleModerator && role != tui.RoleParticipant {
		return fmt.Errorf("unknown role %q", roleFlag)
	}

	identity, err := prefs.LoadIdentity()
	if err != nil {
		logger.Warn("identity load failed", zap.Error(err))
	}
	if name != "" || anonymous {
		identity = prefs.Identity{DisplayName: name, Anonymous: anonymous}
		if err := prefs.SaveIdentity(identity); err != nil {
			logger.Warn("identity save failed", zap.Error(err))
		}
	}

	if session == "" {
		session = uuid.NewString()
	}

	if server == "" {
		server = cfg.Server.URL
	}
	st, err := openStore(ctx, cfg, server, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	gw := sync.NewGateway(st, session, logger)
	defer gw.Close()

	app := tui.New(ctx, cfg, gw, role, identity, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	fmt.Println("session:", session)
	fmt.Println("share:", tui.ShareURL(session))
	return nil
}

func openStore(ctx context.Context, cfg config.Config, server string, logger *zap.Logger) (store.Store, error) {
	if server != "" {
		r, err := store.DialRemote(ctx, server, logger)
		if err != nil {
			return nil, fmt.Errorf("dial relay %s: %w", server, err)
		}
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store.NewLocal(db, logger), nil
}

func newFileLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
