// Package main is the entry point for the popctl GTK host.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/joho/godotenv"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/gtkhost"
	"github.com/jmylchreest/popctl/internal/theme"
)

const appID = "io.github.jmylchreest.popctl"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $POPCTL_CONFIG or ~/.config/popctl/popctl.toml)")
	layerShell := flag.Bool("layer-shell", false, "Show the stage as a layer-shell overlay")
	unit := flag.Float64("unit", gtkhost.DefaultUnit, "Pixels per scene unit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("popctl-gtk version", version)
		os.Exit(0)
	}

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := config.ResolvePath(*configPath)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	for _, p := range cfg.Problems() {
		logger.Warn("config problem", "problem", p)
	}

	themesDir, err := theme.ThemesDir()
	if err != nil {
		logger.Warn("failed to resolve themes directory", "error", err)
	}

	player := audio.NewPlayer(logger)
	player.SetVolume(float64(cfg.Audio.Volume) / 100)
	sounds := audio.NewManager(player, cfg.Audio.Enabled, logger)

	app := adw.NewApplication(appID, 0)

	var (
		host    *gtkhost.Host
		running atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
		case <-ctx.Done():
			return
		}
		cancel()
		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		host = gtkhost.New(&app.Application, gtkhost.Options{
			Logger:     logger,
			Audio:      sounds,
			Unit:       *unit,
			LayerShell: *layerShell,
			ThemesDir:  themesDir,
		})
		if err := host.Load(cfg); err != nil {
			logger.Warn("some popups were not loaded", "error", err)
		}
		host.Start()

		if themesDir != "" {
			if _, err := os.Stat(themesDir); err == nil {
				themes := theme.NewWatcher(themesDir, logger)
				go func() {
					err := themes.Run(ctx, func() {
						glib.IdleAdd(func() {
							if running.Load() {
								host.ReloadTheme()
							}
						})
					})
					if err != nil {
						logger.Warn("theme watcher stopped", "error", err)
					}
				}()
			}
		}

		if _, err := os.Stat(path); err != nil {
			logger.Info("no config file, using demo popups", "path", path)
			return
		}
		watcher := config.NewWatcher(path, logger)
		go func() {
			err := watcher.Run(ctx,
				func(next *config.Config) {
					glib.IdleAdd(func() {
						if !running.Load() {
							return
						}
						if err := host.Load(next); err != nil {
							logger.Warn("reloaded config has problems", "error", err)
						}
						logger.Info("config reloaded", "path", path)
					})
				},
				func(err error) {
					logger.Warn("config reload failed", "error", err)
				},
			)
			if err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if host != nil {
			host.Stop()
		}
		player.Close()
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}
}
