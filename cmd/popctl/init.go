package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/config"
)

var initOpts struct {
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the demo config to the config path",
	Long: `Write the built-in demo configuration to the config path so it can be
edited. An existing file is only replaced with --force.`,
	Annotations: map[string]string{"config": "skip"},
	RunE:        runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initOpts.force, "force", "f", false,
		"Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		return errors.New("no config path: set --config or XDG_CONFIG_HOME")
	}

	if _, err := os.Stat(path); err == nil && !initOpts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data := config.DemoConfigData()
	if config.FormatForPath(path) == config.FormatYAML {
		if err := config.DemoConfig().Save(path); err != nil {
			return err
		}
	} else if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
