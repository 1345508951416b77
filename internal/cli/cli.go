package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panels/internal/config"
	"github.com/matzehuels/panels/pkg/buildinfo"
	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/store"
	"github.com/matzehuels/panels/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "panels"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the configuration loaded for the running command.
func (c *CLI) Config() config.Config { return c.config }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Panels arranges rectangular panels on a canvas",
		Long:         `Panels is a layout engine for rectangular panels: drag, resize, snap, undo and save workspaces from the terminal, over HTTP, or as rendered previews.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.workspaceCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and attaches the logger to the command
// context. The config may lower the log level but never raises one set by
// --verbose.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if lvl := cfg.LogLevel(); lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openWorkspaces opens the configured storage backend and reads its index.
// The returned close function releases the backend.
func (c *CLI) openWorkspaces(ctx context.Context) (*workspace.Manager, func(), error) {
	st, err := workspace.Open(ctx, c.config.StorageOptions(c.Logger))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close storage", "err", err)
		}
	}
	m := workspace.NewManager(st, c.Logger)
	if err := m.Refresh(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return m, closeFn, nil
}

// newStore creates an empty store configured from the grid, viewport and
// history sections.
func (c *CLI) newStore(m *workspace.Manager) *store.Store {
	grid := c.config.GridSettings()
	vp := c.config.InitialViewport()
	return store.New(store.Options{
		Grid:         &grid,
		Viewport:     &vp,
		HistoryLimit: c.config.History.Limit,
		Workspaces:   m,
		Logger:       c.Logger,
	})
}

// findWorkspace resolves an id or name.
func findWorkspace(m *workspace.Manager, idOrName string) (workspace.Config, error) {
	cfg, ok := m.Find(idOrName)
	if !ok {
		return workspace.Config{}, errors.New(errors.ErrCodeWorkspaceNotFound, "workspace %q not found", idOrName)
	}
	return cfg, nil
}

// openStore returns a store with the workspace idOrName loaded, or an empty
// store when idOrName is "".
func (c *CLI) openStore(ctx context.Context, m *workspace.Manager, idOrName string) (*store.Store, workspace.Config, error) {
	st := c.newStore(m)
	if idOrName == "" {
		return st, workspace.Config{}, nil
	}
	cfg, err := findWorkspace(m, idOrName)
	if err != nil {
		return nil, workspace.Config{}, err
	}
	if err := st.LoadWorkspace(ctx, cfg.ID); err != nil {
		return nil, workspace.Config{}, err
	}
	return st, cfg, nil
}
