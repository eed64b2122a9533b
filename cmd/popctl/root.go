// Package main provides the CLI entrypoint for popctl.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	cfgPath    string
	globalOpts struct {
		verbose    bool
		configPath string
		envFile    string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "popctl",
	Short: "Declarative animated popups",
	Long: `popctl wires trigger, close and backdrop controls to popup surfaces
and animates them open and closed.

Popups are declared in a TOML or YAML file. Without one, a demo
configuration with one popup per animation is used.

Running popctl without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(globalOpts.envFile); err != nil {
			return err
		}

		setupLogger()

		cfgPath = config.ResolvePath(globalOpts.configPath)
		if cmd.Annotations["config"] == "skip" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Debug("config loaded", "path", cfgPath, "popups", len(cfg.Popups))
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.configPath, "config", "c", "",
		"Path to config file (default: $POPCTL_CONFIG or ~/.config/popctl/popctl.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.envFile, "env-file", ".env",
		"Environment file to load before resolving the config")

	addTUIFlags(rootCmd)
}

// loadEnv applies variables from path without overriding the environment.
// A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
