package cli

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/panels/internal/config"
	"github.com/matzehuels/panels/pkg/api"
	"github.com/matzehuels/panels/pkg/buildinfo"
	"github.com/matzehuels/panels/pkg/frame"
	"github.com/matzehuels/panels/pkg/keyboard"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/resize"
	"github.com/matzehuels/panels/pkg/store"
)

const shutdownTimeout = 5 * time.Second

// serveCommand runs the HTTP API over a live store.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		open  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API over a live layout. The layout starts empty, or with
the workspace given by --workspace. Grid settings are reloaded when the
config file changes unless --watch=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, closeFn, err := c.openWorkspaces(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			st, _, err := c.openStore(ctx, m, open)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.config.Server.Addr
			}
			return c.serve(ctx, cmd.OutOrStdout(), st, addr, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	cmd.Flags().StringVarP(&open, "workspace", "w", "", "workspace to load at startup")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload grid settings when the config file changes")

	return cmd
}

func (c *CLI) serve(ctx context.Context, w io.Writer, st *store.Store, addr string, watch bool) error {
	logger := loggerFromContext(ctx)
	cfg := c.config

	timer := frame.NewTimer(cfg.Resize.FrameInterval)
	defer timer.Stop()
	queue := resize.NewQueue(st, resize.QueueOptions{
		MaxOperationsPerFrame: cfg.Resize.MaxOperationsPerFrame,
		Scheduler:             timer,
		Viewport:              true,
		Logger:                logger,
	})

	keys, err := c.newDispatcher(st)
	if err != nil {
		return err
	}

	vp := st.Viewport().Rect()
	srv := api.NewServer(st, api.Options{
		Keys:  keys,
		Queue: queue,
		Plan: resize.PlanOptions{
			Proportional: resize.ProportionalOptions{MinSize: cfg.Resize.MinPanelSize},
			Container:    &vp,
			Preserve:     cfg.Resize.PreserveLayout,
			Margin:       cfg.Resize.LayoutMargin,
			MinSize:      cfg.Resize.MinPanelSize,
		},
		Logger: logger,
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printSuccess(w, "Serving on %s", StyleLink.Render("http://"+ln.Addr().String()))
		logger.Info("api started", "version", buildinfo.Short(), "addr", ln.Addr().String())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	if watch {
		g.Go(func() error {
			err := config.Watch(gctx, c.configPath, logger, func(next config.Config, e fsnotify.Event) {
				applyGrid(st, next.GridSettings())
				logger.Info("config reloaded", "file", e.Name)
			})
			if err != nil {
				logger.Warn("config watch disabled", "err", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// newDispatcher builds a keyboard dispatcher from the keyboard section.
func (c *CLI) newDispatcher(st *store.Store) (*keyboard.Dispatcher, error) {
	reg, err := c.config.Registry()
	if err != nil {
		return nil, err
	}
	return keyboard.NewDispatcher(st, keyboard.Options{
		Registry:         reg,
		Disabled:         !c.config.Keyboard.Enabled,
		AllowInTextInput: !c.config.Keyboard.IgnoreInTextInput,
		Logger:           c.Logger,
	}), nil
}

// applyGrid replaces the live grid settings.
func applyGrid(st *store.Store, g layout.GridSettings) layout.GridSettings {
	return st.UpdateGridSettings(layout.GridPatch{
		Enabled:       &g.Enabled,
		Size:          &g.Size,
		Visible:       &g.Visible,
		Color:         &g.Color,
		Opacity:       &g.Opacity,
		SnapThreshold: &g.SnapThreshold,
	})
}
