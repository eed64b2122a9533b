package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/config"
)

func setup(t *testing.T, c *config.Config) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfg = c
	cfgPath = filepath.Join(t.TempDir(), "popctl.toml")
	logger = slog.New(slog.DiscardHandler)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunValidate_Demo(t *testing.T) {
	cmd, out := setup(t, config.DemoConfig())

	require.NoError(t, runValidate(cmd, nil))
	assert.Contains(t, out.String(), "4 popups valid (overlap=restart)")
	assert.NotContains(t, out.String(), "warning")
}

func TestRunValidate_SkippedPopups(t *testing.T) {
	c := config.DemoConfig()
	c.Popups = append(c.Popups,
		config.PopupConfig{Name: "orphan", Surface: "news"},
		config.PopupConfig{Name: "settings", Trigger: "open-news", Surface: "news"},
	)
	cmd, out := setup(t, c)

	err := runValidate(cmd, nil)
	assert.ErrorIs(t, err, errInvalidConfig)
	assert.Contains(t, out.String(), "warning: ")
	assert.Contains(t, out.String(), "skipped: popup 4 (orphan)")
	assert.Contains(t, out.String(), "skipped: popup 5 (settings)")
	assert.Contains(t, out.String(), "4 of 6 popups valid")
}

func TestRunList(t *testing.T) {
	cmd, out := setup(t, config.DemoConfig())

	require.NoError(t, runList(cmd, nil))
	s := out.String()
	assert.Contains(t, s, "built-in demo  overlap=restart")
	assert.Contains(t, s, "ANIMATION")
	assert.Contains(t, s, "slide-from-top")
	assert.Contains(t, s, "backdrop-reward")
	assert.Contains(t, s, "800ms")
	assert.Contains(t, s, "4 popups")
}

func TestRunSimulate_JSON(t *testing.T) {
	cmd, out := setup(t, config.DemoConfig())
	simulateOpts.fps = 10
	simulateOpts.hold = 0
	simulateOpts.format = "json"
	simulateOpts.precision = 3

	require.NoError(t, runSimulate(cmd, []string{"set"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "settings", decoded["popup"])
	assert.NotEmpty(t, decoded["samples"])
}

func TestRunSimulate_Errors(t *testing.T) {
	cmd, _ := setup(t, config.DemoConfig())
	simulateOpts.fps = 10

	simulateOpts.format = "xml"
	assert.Error(t, runSimulate(cmd, []string{"settings"}))

	simulateOpts.format = "plain"
	assert.Error(t, runSimulate(cmd, []string{"missing"}))
}

func TestRunInit(t *testing.T) {
	cmd, out := setup(t, nil)
	initOpts.force = false

	require.NoError(t, runInit(cmd, nil))
	assert.Contains(t, out.String(), "wrote "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.DemoConfigData(), data)

	assert.Error(t, runInit(cmd, nil), "refuses to overwrite")

	initOpts.force = true
	defer func() { initOpts.force = false }()
	assert.NoError(t, runInit(cmd, nil))
}

func TestRunInit_YAML(t *testing.T) {
	cmd, _ := setup(t, nil)
	cfgPath = filepath.Join(t.TempDir(), "nested", "popctl.yaml")
	initOpts.force = false

	require.NoError(t, runInit(cmd, nil))

	loaded, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Len(t, loaded.Popups, 4)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("POPCTL_CONFIG=/tmp/from-env.toml\n"), 0644))
	t.Setenv(config.EnvConfigPath, "")
	require.NoError(t, os.Unsetenv(config.EnvConfigPath))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "/tmp/from-env.toml", config.ResolvePath(""))

	assert.NoError(t, loadEnv(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadEnv(""))
}
