// Package config loads application settings for the panels binary.
//
// Settings are layered by viper: built-in defaults, then the TOML file at
// Path(), then PANELS_* environment variables (dots become underscores, so
// PANELS_GRID_SIZE sets grid.size).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	perrors "github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/keyboard"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/workspace"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PANELS"

// EnvConfig names the variable that overrides the config file path.
const EnvConfig = "PANELS_CONFIG"

// Config holds application configuration.
type Config struct {
	Grid     GridConfig     `mapstructure:"grid"`
	History  HistoryConfig  `mapstructure:"history"`
	Drag     DragConfig     `mapstructure:"drag"`
	Resize   ResizeConfig   `mapstructure:"resize"`
	Keyboard KeyboardConfig `mapstructure:"keyboard"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Server   ServerConfig   `mapstructure:"server"`
}

// GridConfig mirrors layout.GridSettings.
type GridConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Size          float64 `mapstructure:"size"`
	Visible       bool    `mapstructure:"visible"`
	Color         string  `mapstructure:"color"`
	Opacity       float64 `mapstructure:"opacity"`
	SnapThreshold float64 `mapstructure:"snap_threshold"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// DragConfig tunes the drag controller.
type DragConfig struct {
	Throttle          time.Duration `mapstructure:"throttle"`
	MagneticThreshold float64       `mapstructure:"magnetic_threshold"`
	ConstrainToParent bool          `mapstructure:"constrain_to_parent"`
}

// ResizeConfig tunes the resize controller and queue.
type ResizeConfig struct {
	MaxOperationsPerFrame int           `mapstructure:"max_operations_per_frame"`
	FrameInterval         time.Duration `mapstructure:"frame_interval"`
	MinPanelSize          float64       `mapstructure:"min_panel_size"`
	LayoutMargin          float64       `mapstructure:"layout_margin"`
	PreserveLayout        bool          `mapstructure:"preserve_layout"`
}

// KeyboardConfig controls the keyboard layer. Bindings maps action names
// to chords and replaces the defaults of the actions it names.
type KeyboardConfig struct {
	Enabled           bool                `mapstructure:"enabled"`
	IgnoreInTextInput bool                `mapstructure:"ignore_in_text_input"`
	Bindings          map[string][]string `mapstructure:"bindings"`
}

// StorageConfig selects the workspace backend.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"`
	Dir             string `mapstructure:"dir"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPrefix     string `mapstructure:"redis_prefix"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ViewportConfig sets the initial viewport.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// ServerConfig configures `panels serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Path returns the config file location: $PANELS_CONFIG, or
// $XDG_CONFIG_HOME/panels/config.toml.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "panels", "config.toml")
}

// DataDir returns the default directory for file-backed workspaces.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "panels", "workspaces")
}

func setDefaults(v *viper.Viper) {
	grid := layout.DefaultGridSettings()
	v.SetDefault("grid.enabled", grid.Enabled)
	v.SetDefault("grid.size", grid.Size)
	v.SetDefault("grid.visible", grid.Visible)
	v.SetDefault("grid.color", grid.Color)
	v.SetDefault("grid.opacity", grid.Opacity)
	v.SetDefault("grid.snap_threshold", grid.SnapThreshold)

	v.SetDefault("history.limit", 20)

	v.SetDefault("drag.throttle", 16*time.Millisecond)
	v.SetDefault("drag.magnetic_threshold", layout.MagneticThreshold)
	v.SetDefault("drag.constrain_to_parent", false)

	v.SetDefault("resize.max_operations_per_frame", 10)
	v.SetDefault("resize.frame_interval", 16*time.Millisecond)
	v.SetDefault("resize.min_panel_size", 50.0)
	v.SetDefault("resize.layout_margin", 10.0)
	v.SetDefault("resize.preserve_layout", false)

	v.SetDefault("keyboard.enabled", true)
	v.SetDefault("keyboard.ignore_in_text_input", true)
	v.SetDefault("keyboard.bindings", map[string][]string{})

	v.SetDefault("storage.backend", workspace.BackendFile)
	v.SetDefault("storage.dir", DataDir())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_prefix", "panels:")
	v.SetDefault("storage.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo_database", "panels")
	v.SetDefault("storage.mongo_collection", "workspaces")

	v.SetDefault("log.level", "info")

	vp := layout.DefaultViewport()
	v.SetDefault("viewport.width", vp.Width)
	v.SetDefault("viewport.height", vp.Height)

	v.SetDefault("server.addr", "127.0.0.1:7420")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration without reading the file or
// environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load reads the config file at path (Path() when empty) over the defaults
// and applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	return read(newViper(path))
}

func read(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", v.ConfigFileUsed())
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and that every key binding parses.
func (c Config) Validate() error {
	switch {
	case c.Grid.Size <= 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "grid.size must be positive")
	case c.Grid.SnapThreshold < 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "grid.snap_threshold must not be negative")
	case c.History.Limit < 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "history.limit must not be negative")
	case c.Resize.MaxOperationsPerFrame < 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "resize.max_operations_per_frame must not be negative")
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "viewport size must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "log.level")
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// GridSettings converts the grid section.
func (c Config) GridSettings() layout.GridSettings {
	return layout.GridSettings{
		Enabled:       c.Grid.Enabled,
		Size:          c.Grid.Size,
		Visible:       c.Grid.Visible,
		Color:         c.Grid.Color,
		Opacity:       c.Grid.Opacity,
		SnapThreshold: c.Grid.SnapThreshold,
	}
}

// InitialViewport converts the viewport section.
func (c Config) InitialViewport() layout.Viewport {
	return layout.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height, Zoom: 1}
}

// Registry returns the default key bindings with the configured overrides
// applied.
func (c Config) Registry() (*keyboard.Registry, error) {
	r := keyboard.DefaultRegistry()
	if err := r.Apply(c.Keyboard.Bindings); err != nil {
		return nil, err
	}
	return r, nil
}

// StorageOptions converts the storage section.
func (c Config) StorageOptions(logger *log.Logger) workspace.Options {
	return workspace.Options{
		Backend:         c.Storage.Backend,
		Dir:             c.Storage.Dir,
		RedisAddr:       c.Storage.RedisAddr,
		RedisPrefix:     c.Storage.RedisPrefix,
		MongoURI:        c.Storage.MongoURI,
		MongoDatabase:   c.Storage.MongoDatabase,
		MongoCollection: c.Storage.MongoCollection,
		Logger:          logger,
	}
}

// LogLevel parses the log section, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Save writes c to path (Path() when empty), creating the directory.
func Save(path string, c Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "create config dir")
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("grid.enabled", c.Grid.Enabled)
	v.Set("grid.size", c.Grid.Size)
	v.Set("grid.visible", c.Grid.Visible)
	v.Set("grid.color", c.Grid.Color)
	v.Set("grid.opacity", c.Grid.Opacity)
	v.Set("grid.snap_threshold", c.Grid.SnapThreshold)
	v.Set("history.limit", c.History.Limit)
	v.Set("drag.throttle", c.Drag.Throttle.String())
	v.Set("drag.magnetic_threshold", c.Drag.MagneticThreshold)
	v.Set("drag.constrain_to_parent", c.Drag.ConstrainToParent)
	v.Set("resize.max_operations_per_frame", c.Resize.MaxOperationsPerFrame)
	v.Set("resize.frame_interval", c.Resize.FrameInterval.String())
	v.Set("resize.min_panel_size", c.Resize.MinPanelSize)
	v.Set("resize.layout_margin", c.Resize.LayoutMargin)
	v.Set("resize.preserve_layout", c.Resize.PreserveLayout)
	v.Set("keyboard.enabled", c.Keyboard.Enabled)
	v.Set("keyboard.ignore_in_text_input", c.Keyboard.IgnoreInTextInput)
	if len(c.Keyboard.Bindings) > 0 {
		v.Set("keyboard.bindings", c.Keyboard.Bindings)
	}
	v.Set("storage.backend", c.Storage.Backend)
	v.Set("storage.dir", c.Storage.Dir)
	v.Set("storage.redis_addr", c.Storage.RedisAddr)
	v.Set("storage.redis_prefix", c.Storage.RedisPrefix)
	v.Set("storage.mongo_uri", c.Storage.MongoURI)
	v.Set("storage.mongo_database", c.Storage.MongoDatabase)
	v.Set("storage.mongo_collection", c.Storage.MongoCollection)
	v.Set("log.level", c.Log.Level)
	v.Set("viewport.width", c.Viewport.Width)
	v.Set("viewport.height", c.Viewport.Height)
	v.Set("server.addr", c.Server.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "write config %s", path)
	}
	return nil
}
