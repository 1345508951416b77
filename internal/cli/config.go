package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panels/internal/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// path returns the config file in use.
func (c *CLI) path() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), c.path())
			return err
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.path()
			w := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				printWarning(w, "Config file already exists, use --force to overwrite")
				printFile(w, path)
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			printSuccess(w, "Wrote default config")
			printFile(w, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			cfg := c.config
			fmt.Fprintln(w, StyleTitle.Render("Configuration"))
			printKeyValue(w, "file", c.path())
			printKeyValue(w, "grid", fmt.Sprintf("%gpx enabled=%t snap=%gpx", cfg.Grid.Size, cfg.Grid.Enabled, cfg.Grid.SnapThreshold))
			printKeyValue(w, "history", strconv.Itoa(cfg.History.Limit))
			printKeyValue(w, "drag", fmt.Sprintf("throttle=%s magnetic=%gpx", cfg.Drag.Throttle, cfg.Drag.MagneticThreshold))
			printKeyValue(w, "resize", fmt.Sprintf("frame=%s ops=%d min=%gpx", cfg.Resize.FrameInterval, cfg.Resize.MaxOperationsPerFrame, cfg.Resize.MinPanelSize))
			printKeyValue(w, "storage", cfg.Storage.Backend)
			printKeyValue(w, "viewport", fmt.Sprintf("%gx%g", cfg.Viewport.Width, cfg.Viewport.Height))
			printKeyValue(w, "server", cfg.Server.Addr)
			printKeyValue(w, "log", cfg.Log.Level)
			if len(cfg.Keyboard.Bindings) > 0 {
				printKeyValue(w, "bindings", strconv.Itoa(len(cfg.Keyboard.Bindings))+" overrides")
			}
			return nil
		},
	}
}
