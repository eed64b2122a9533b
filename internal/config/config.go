// Package config handles configuration file loading and parsing.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popctl/internal/model"
)

// EnvConfigPath names the environment variable that overrides the config path.
const EnvConfigPath = "POPCTL_CONFIG"

// Default configuration values.
const (
	DefaultOverlap        = "restart"
	DefaultViewportWidth  = 100
	DefaultViewportHeight = 30
	DefaultVolume         = 80
	DefaultTheme          = "default"
	DefaultFPS            = 60
)

//go:embed demo.toml
var demoConfig []byte

// Config represents the popctl configuration.
type Config struct {
	Overlap  string          `toml:"overlap" yaml:"overlap"` // restart, ignore
	Viewport ViewportConfig  `toml:"viewport" yaml:"viewport"`
	Audio    AudioConfig     `toml:"audio" yaml:"audio"`
	Theme    ThemeConfig     `toml:"theme" yaml:"theme"`
	TUI      TUIConfig       `toml:"tui" yaml:"tui"`
	Controls []ControlConfig `toml:"control" yaml:"control"`
	Surfaces []SurfaceConfig `toml:"surface" yaml:"surface"`
	Popups   []PopupConfig   `toml:"popup" yaml:"popup"`
}

// ViewportConfig is the logical stage size, in scene units.
type ViewportConfig struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	Volume     int    `toml:"volume" yaml:"volume"`           // 0-100
	OpenSound  string `toml:"open_sound" yaml:"open_sound"`   // default for popups without one
	CloseSound string `toml:"close_sound" yaml:"close_sound"` // default for popups without one
}

// ThemeConfig contains GTK theme settings.
type ThemeConfig struct {
	Name        string `toml:"name" yaml:"name"`                 // Theme name without .css extension
	ColorScheme string `toml:"color_scheme" yaml:"color_scheme"` // "system", "light", or "dark"
}

// TUIConfig holds terminal host settings.
type TUIConfig struct {
	FPS      int  `toml:"fps" yaml:"fps"`
	ShowHelp bool `toml:"show_help" yaml:"show_help"`
	ShowLog  bool `toml:"show_log" yaml:"show_log"` // transition event log
}

// ControlConfig declares a clickable control.
type ControlConfig struct {
	Name  string `toml:"name" yaml:"name"`
	Label string `toml:"label" yaml:"label"`
	Key   string `toml:"key" yaml:"key"` // keyboard shortcut in the terminal host
}

// SurfaceConfig declares a popup surface.
type SurfaceConfig struct {
	Name   string  `toml:"name" yaml:"name"`
	Title  string  `toml:"title" yaml:"title"`
	Body   string  `toml:"body" yaml:"body"` // markdown
	X      float64 `toml:"x" yaml:"x"`
	Y      float64 `toml:"y" yaml:"y"`
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// PopupConfig binds controls to a surface by name.
type PopupConfig struct {
	Name            string    `toml:"name" yaml:"name"`
	Trigger         string    `toml:"trigger" yaml:"trigger"`
	Surface         string    `toml:"surface" yaml:"surface"`
	Close           string    `toml:"close,omitempty" yaml:"close,omitempty"`
	BackgroundClose string    `toml:"background_close,omitempty" yaml:"background_close,omitempty"`
	Animation       string    `toml:"animation" yaml:"animation"`                   // scale-bounce, fade-in, slide-from-top, rotate-in
	Duration        *Duration `toml:"duration,omitempty" yaml:"duration,omitempty"` // e.g. "0.5s", "500ms" or 0.5; nil means model.DefaultDuration
	OpenSound       string    `toml:"open_sound,omitempty" yaml:"open_sound,omitempty"`
	CloseSound      string    `toml:"close_sound,omitempty" yaml:"close_sound,omitempty"`
}

// AnimationDuration returns the configured duration, or
// model.DefaultDuration when it is unset. An explicit zero is kept and
// animates instantly.
func (p PopupConfig) AnimationDuration() time.Duration {
	if p.Duration == nil {
		return model.DefaultDuration
	}
	return p.Duration.Duration()
}

// AnimationType parses the configured animation. An empty value selects
// scale-bounce.
func (p PopupConfig) AnimationType() (model.AnimationType, error) {
	if p.Animation == "" {
		return model.AnimationScaleBounce, nil
	}
	return model.ParseAnimationType(p.Animation)
}

// Format is a configuration file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// DefaultConfig returns a Config with default values and no popups.
func DefaultConfig() *Config {
	return &Config{
		Overlap: DefaultOverlap,
		Viewport: ViewportConfig{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Theme: ThemeConfig{
			Name:        DefaultTheme,
			ColorScheme: "system",
		},
		TUI: TUIConfig{
			FPS:      DefaultFPS,
			ShowHelp: true,
			ShowLog:  true,
		},
	}
}

// DemoConfig returns the built-in demo configuration, one popup per
// animation type.
func DemoConfig() *Config {
	cfg, err := Parse(demoConfig, FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded demo config is invalid: %v", err))
	}
	return cfg
}

// DemoConfigData returns the raw built-in demo configuration.
func DemoConfigData() []byte {
	return demoConfig
}

// ConfigPath returns the default path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popctl", "popctl.toml")
}

// ResolvePath picks the config path: an explicit path wins, then
// POPCTL_CONFIG, then ConfigPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return ConfigPath()
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses ResolvePath.
// Returns the demo config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	path = ResolvePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DemoConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := DefaultConfig()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the specified path, in the encoding its
// extension selects. Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch FormatForPath(path) {
	case FormatYAML:
		data, err = yaml.Marshal(c)
	default:
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks settings and the structure of the scene declarations.
// References from popups to controls and surfaces are checked separately
// by Problems, since a popup with a bad reference is skipped rather than
// rejected.
func (c *Config) Validate() error {
	var errs []error

	switch c.Overlap {
	case "", "restart", "ignore":
	default:
		errs = append(errs, fmt.Errorf("invalid overlap policy %q, must be restart or ignore", c.Overlap))
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must have a positive size, got %gx%g", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume))
	}
	if c.TUI.FPS < 1 || c.TUI.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be between 1 and 240, got %d", c.TUI.FPS))
	}

	controls := make(map[string]bool)
	for i, ctl := range c.Controls {
		switch {
		case ctl.Name == "":
			errs = append(errs, fmt.Errorf("control %d: name is required", i))
		case controls[ctl.Name]:
			errs = append(errs, fmt.Errorf("control %q declared twice", ctl.Name))
		}
		controls[ctl.Name] = true
	}

	surfaces := make(map[string]bool)
	for i, s := range c.Surfaces {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("surface %d: name is required", i))
		case surfaces[s.Name]:
			errs = append(errs, fmt.Errorf("surface %q declared twice", s.Name))
		}
		surfaces[s.Name] = true
		if s.Width <= 0 || s.Height <= 0 {
			errs = append(errs, fmt.Errorf("surface %q must have a positive size", s.Name))
		}
	}

	for i, p := range c.Popups {
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if _, err := p.AnimationType(); err != nil {
			errs = append(errs, fmt.Errorf("popup %s: %w", label, err))
		}
		if p.Duration != nil && *p.Duration < 0 {
			errs = append(errs, fmt.Errorf("popup %s: %w", label, model.ErrInvalidDuration))
		}
	}

	return errors.Join(errs...)
}

// Problems lists popup references that do not resolve. Popups with a
// missing trigger or surface will be skipped when wired.
func (c *Config) Problems() []string {
	controls := make(map[string]bool, len(c.Controls))
	for _, ctl := range c.Controls {
		controls[ctl.Name] = true
	}
	surfaces := make(map[string]bool, len(c.Surfaces))
	for _, s := range c.Surfaces {
		surfaces[s.Name] = true
	}

	var problems []string
	for i, p := range c.Popups {
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		check := func(field, ref string, known map[string]bool, required bool) {
			if ref == "" {
				if required {
					problems = append(problems, fmt.Sprintf("popup %s: %s is not set", label, field))
				}
				return
			}
			if !known[ref] {
				problems = append(problems, fmt.Sprintf("popup %s: %s %q is not declared", label, field, ref))
			}
		}
		check("trigger", p.Trigger, controls, true)
		check("surface", p.Surface, surfaces, true)
		check("close", p.Close, controls, false)
		check("background_close", p.BackgroundClose, controls, false)
		if p.BackgroundClose != "" && p.Close == "" {
			problems = append(problems, fmt.Sprintf("popup %s: background_close has no effect without close", label))
		}
	}
	return problems
}

// SoundsFor returns the open and close sounds of p, falling back to the
// audio defaults. Paths starting with ~/ are expanded.
func (c *Config) SoundsFor(p PopupConfig) (openSound, closeSound string) {
	openSound, closeSound = p.OpenSound, p.CloseSound
	if openSound == "" {
		openSound = c.Audio.OpenSound
	}
	if closeSound == "" {
		closeSound = c.Audio.CloseSound
	}
	return expandPath(openSound), expandPath(closeSound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
