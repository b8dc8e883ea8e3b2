// Package cli implements the lookat command-line interface.
//
// Commands open a data file, draw histograms on an off-screen canvas and
// export the result:
//   - draw: Fill and draw one or more expressions, optionally with a ratio pad
//   - fields: List the fields of a data file
//   - cache: Manage the parsed-table cache
//
// All commands accept --verbose (-v) for debug logging and --config to
// point at a TOML file other than the default one.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nchiapol/lookat/pkg/buildinfo"
	"github.com/nchiapol/lookat/pkg/cache"
	"github.com/nchiapol/lookat/pkg/observability"
	"github.com/nchiapol/lookat/pkg/render"
	"github.com/nchiapol/lookat/pkg/session"
	"github.com/nchiapol/lookat/pkg/source"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lookat"

	// configFile is the config file name inside the config directory.
	configFile = "config.toml"
)

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
	Logger     *log.Logger
	Config     Config
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "lookat draws histograms and ratio plots from tabular data",
		Long:         `lookat fills histograms from CSV or XLSX files, lays them out on canvases with optional ratio pads, legends and labels, and exports them as PNG or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lookat/config.toml)")

	root.AddCommand(c.drawCommand())
	root.AddCommand(c.fieldsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and registers the logging hooks.
// A missing default file is not an error.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			c.Logger.Debug("no config directory", "error", err)
			return nil
		}
		path = filepath.Join(dir, configFile)
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.registerHooks()
	return nil
}

// registerHooks routes library events to the debug log.
func (c *CLI) registerHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetSessionHooks(h)
	observability.SetSourceHooks(h)
	observability.SetRenderHooks(h)
}

// =============================================================================
// Session Factory
// =============================================================================

// newSession starts a session on an off-screen toolkit. extra is applied
// after the configured options.
func (c *CLI) newSession(noCache bool, extra ...session.Option) (*session.Session, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	canvasOpts, err := c.Config.CanvasOptions()
	if err != nil {
		return nil, err
	}
	formats, err := c.Config.ExportFormats()
	if err != nil {
		return nil, err
	}
	loader := source.NewLoader(
		source.WithCache(store),
		source.WithTTL(c.Config.CacheTTL.Duration),
		source.WithLogger(c.Logger),
	)
	opts := []session.Option{
		session.WithLoader(loader),
		session.WithDefaultBins(c.Config.Bins),
		session.WithCanvasOptions(canvasOpts...),
		session.WithExportOptions(render.WithFormats(formats...)),
		session.WithLogger(c.Logger),
	}
	return session.New(toolkit.NewMemory(), append(opts, extra...)...), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lookat/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory using XDG standard (~/.config/lookat/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
