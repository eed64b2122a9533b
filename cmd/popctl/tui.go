package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/tui"
)

var tuiOpts struct {
	watch   bool
	noAudio bool
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive popup stage",
	Long: `Launch the terminal stage with every configured popup.

Press a trigger's key or click its button to open a popup. Popups close
with their [x] mark, a click outside the card (when a backdrop control is
configured) or esc.

Key bindings:
  <trigger key>  Open popup
  esc            Close the topmost popup
  ctrl+w         Close all popups
  ctrl+r         Reload config
  ctrl+l         Toggle event log
  ?              Show help
  q              Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	addTUIFlags(tuiCmd)
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tuiOpts.watch, "watch", true,
		"Reload when the config file changes")
	cmd.Flags().BoolVar(&tuiOpts.noAudio, "no-audio", false,
		"Disable sound cues")
	cmd.Flags().StringVar(&tuiOpts.logFile, "log-file", "",
		"Write logs to this file (logs are discarded otherwise)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the TUI; never log to it.
	tuiLogger := slog.New(slog.DiscardHandler)
	if tuiOpts.logFile != "" {
		f, err := os.OpenFile(tuiOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		level := slog.LevelInfo
		if globalOpts.verbose {
			level = slog.LevelDebug
		}
		tuiLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	var sounds *audio.Manager
	if !tuiOpts.noAudio {
		player := audio.NewPlayer(tuiLogger)
		player.SetVolume(float64(cfg.Audio.Volume) / 100)
		defer player.Close()
		sounds = audio.NewManager(player, cfg.Audio.Enabled, tuiLogger)
	}

	watchPath := ""
	if _, err := os.Stat(cfgPath); err == nil {
		watchPath = cfgPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, tui.Options{
		Config:     cfg,
		ConfigPath: watchPath,
		Watch:      tuiOpts.watch,
		Audio:      sounds,
		Logger:     tuiLogger,
	})
}
