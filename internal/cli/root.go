// Package cli provides the Cobra command structure for textcore, a
// read-only inspector for documents held by the text storage engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app carries state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool
	cfg        *config.Config
}

// open returns a read-only engine for path configured from the loaded
// configuration.
func (a *app) open(path string) (*engine.Engine, error) {
	opts := append(a.cfg.EngineOptions(), engine.WithReadOnly())
	e, err := engine.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return e, nil
}

// NewRootCommand creates the root textcore command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "textcore",
		Short: "Inspect text files through the textcore storage engine",
		Long: `textcore opens files with the same piece-tree storage engine the editor uses.

Files above the large-file threshold are opened lazily: only the chunks a
command touches are read, and line numbers beyond the scanned region are
reported as estimates. Positions are given either as a byte offset (1234) or
as a zero-based LINE:COL pair (10:4).`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = a.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Format = a.logFormat
			}
			logger := cfg.Logger()
			logging.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			a.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML or YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text, json, logfmt")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	// Add subcommands.
	rootCmd.AddCommand(newStatCommand(a))
	rootCmd.AddCommand(newReadCommand(a))
	rootCmd.AddCommand(newFindCommand(a))
	rootCmd.AddCommand(newPosCommand(a))
	rootCmd.AddCommand(newVersionCommand(a, info))

	return rootCmd
}
