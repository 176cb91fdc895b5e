// Package cli implements the dlgtool command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/buildinfo"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	dlgio "github.com/LordOfMyatar/Radoub-sub018/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dlgtool"
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
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is read before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "dlgtool reads, checks and converts dialog files",
		Long:         `dlgtool is a developer tool for conversation (DLG) files: inspect their structure, dump them to JSON or YAML, check byte-exact round trips, render flowcharts and prune conversation branches.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dlgtool/config.toml)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.roundtripCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.pruneCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := configFile()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := readConfig(path, c.configPath != "")
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("config %s: log_level: %w", path, err)
		}
		c.SetLogLevel(level)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Codec Options
// =============================================================================

// codecOptions turns the configuration into dlg options. Codec events are
// logged at debug level.
func (c *CLI) codecOptions() ([]dlg.Option, error) {
	enc, policy, err := c.Config.codec()
	if err != nil {
		return nil, err
	}
	return []dlg.Option{
		dlg.WithLogger(c.Logger),
		dlg.WithEncoding(enc),
		dlg.WithDeletePolicy(policy),
		dlg.WithCompactPointers(c.Config.compactPointers()),
		dlg.WithHooks(&logHooks{logger: c.Logger}),
	}, nil
}

// documentFormat picks the document format from the flag, falling back to
// the configured default.
func (c *CLI) documentFormat(flag string) (dlgio.Format, error) {
	if flag == "" {
		flag = c.Config.OutputFormat
	}
	if flag == "" {
		return dlgio.FormatJSON, nil
	}
	return dlgio.ParseFormat(flag)
}
