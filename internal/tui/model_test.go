package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := New(Options{Config: config.DemoConfig()})
	require.NoError(t, err)
	m.color = false
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func stateOf(t *testing.T, m Model, popup string) model.PopupState {
	t.Helper()
	s, err := m.host.controller.State(popup)
	require.NoError(t, err)
	return s
}

func TestNew_DemoConfig(t *testing.T) {
	m := newTestModel(t)

	assert.Len(t, m.host.cards, 4)
	assert.Len(t, m.keys.Triggers, 4)
	assert.Equal(t, 60, m.fps)
	assert.Empty(t, m.statusMsg)

	for _, c := range m.host.cards {
		assert.False(t, c.node.Active(), "%s starts hidden", c.popup)
		assert.NotNil(t, c.trigger)
		assert.NotNil(t, c.close)
		assert.NotNil(t, c.background)
	}
}

func TestKeyOpensAndEscCloses(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, keyPress("s"))
	assert.Equal(t, model.StateEntering, stateOf(t, m, "settings"))

	m.host.tick(time.Second)
	assert.Equal(t, model.StateShown, stateOf(t, m, "settings"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.StateExiting, stateOf(t, m, "settings"))

	m.host.tick(time.Second)
	assert.Equal(t, model.StateHidden, stateOf(t, m, "settings"))
	assert.False(t, m.host.cards[0].node.Active())
}

func TestCloseAll(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyPress("s"))
	m = update(t, m, keyPress("n"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlW})
	assert.Equal(t, model.StateExiting, stateOf(t, m, "settings"))
	assert.Equal(t, model.StateExiting, stateOf(t, m, "news"))
}

func TestTickClampsLongFrames(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyPress("s"))

	t0 := time.Unix(1000, 0)
	m = update(t, m, tickMsg(t0))
	m = update(t, m, tickMsg(t0.Add(10*time.Second)))
	assert.Equal(t, model.StateEntering, stateOf(t, m, "settings"), "a single frame advances at most maxFrame")

	for i := 1; i <= 5; i++ {
		m = update(t, m, tickMsg(t0.Add(10*time.Second+time.Duration(i)*maxFrame)))
	}
	assert.Equal(t, model.StateShown, stateOf(t, m, "settings"))
}

func TestMouse_StageClicks(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	m = update(t, m, keyPress("s"))
	m.host.tick(time.Second)
	require.Equal(t, model.StateShown, stateOf(t, m, "settings"))

	// Inside the card: absorbed.
	m = update(t, m, click(40, 1+10))
	assert.Equal(t, model.StateShown, stateOf(t, m, "settings"))

	// Outside the card: background close.
	m = update(t, m, click(2, 1+2))
	assert.Equal(t, model.StateExiting, stateOf(t, m, "settings"))

	m.host.tick(time.Second)
	m = update(t, m, keyPress("s"))
	m.host.tick(time.Second)
	require.Equal(t, model.StateShown, stateOf(t, m, "settings"))

	// The close mark sits at the right end of the top border.
	m = update(t, m, click(30+40-1-3, 1+6))
	assert.Equal(t, model.StateExiting, stateOf(t, m, "settings"))
}

func TestMouse_TriggerBar(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	_, h := m.stageSize()
	require.Equal(t, 30, h)

	items := m.triggerBar()
	require.Len(t, items, 4)
	assert.Equal(t, "news", items[1].card.popup)

	m = update(t, m, click(items[1].x+1, 1+h))
	assert.Equal(t, model.StateEntering, stateOf(t, m, "news"))
	assert.Equal(t, model.StateHidden, stateOf(t, m, "settings"))
}

func TestStageSize_ClipsToTerminal(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})

	w, h := m.stageSize()
	assert.Equal(t, 40, w)
	assert.Equal(t, 20-m.chromeRows(), h)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	_, h2 := m.stageSize()
	assert.Equal(t, h+logRows, h2)
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "Initializing...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})
	m = update(t, m, keyPress("s"))
	m.host.tick(time.Second)

	view := m.View()
	assert.Contains(t, view, "popctl")
	assert.Contains(t, view, "overlap=restart")
	assert.Contains(t, view, "┌─ Settings ─")
	assert.Contains(t, view, "[x]┐")
	assert.Contains(t, view, "Audio")
	assert.Contains(t, view, "[s] Settings")
	assert.Contains(t, view, "hidden   → entering")
	assert.Contains(t, view, "entering → shown")
}

func TestApplyConfig(t *testing.T) {
	m := newTestModel(t)

	cfg := config.DemoConfig()
	cfg.Popups = cfg.Popups[:1]
	cfg.Popups = append(cfg.Popups, config.PopupConfig{Name: "broken", Surface: "news"})

	next, cmd := m.Update(configMsg{cfg: cfg})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Len(t, m.host.cards, 1)
	assert.Len(t, m.keys.Triggers, 1)
	require.Error(t, m.host.initErr)

	status, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, status.isErr)
	assert.Contains(t, status.text, "1 popup(s) skipped")
	assert.Contains(t, status.text, "broken")
}

func TestReload_WithoutPath(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)

	status, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, status.isErr)
}

func TestReload_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popctl.toml")
	cfg := config.DemoConfig()
	cfg.Popups = cfg.Popups[1:2]
	require.NoError(t, cfg.Save(path))

	m, err := New(Options{Config: config.DemoConfig(), ConfigPath: path})
	require.NoError(t, err)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	msg := cmd()
	loaded, ok := msg.(configMsg)
	require.True(t, ok, "got %T", msg)

	m = update(t, m, loaded)
	require.Len(t, m.host.cards, 1)
	assert.Equal(t, "news", m.host.cards[0].popup)
}

type recordingSink struct {
	played []string
}

func (s *recordingSink) Play(path string) error {
	s.played = append(s.played, path)
	return nil
}

func TestAudioCuesFollowTransitions(t *testing.T) {
	dir := t.TempDir()
	openPath := filepath.Join(dir, "open.wav")
	closePath := filepath.Join(dir, "close.wav")
	require.NoError(t, os.WriteFile(openPath, []byte("RIFF"), 0644))
	require.NoError(t, os.WriteFile(closePath, []byte("RIFF"), 0644))

	cfg := config.DemoConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.OpenSound = openPath
	cfg.Audio.CloseSound = closePath

	sink := &recordingSink{}
	m, err := New(Options{Config: cfg, Audio: audio.NewManager(sink, false, nil)})
	require.NoError(t, err)

	m = update(t, m, keyPress("r"))
	m.host.tick(time.Second)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, []string{openPath, closePath}, sink.played)
}

func TestFormatEvent(t *testing.T) {
	now := time.Unix(2000, 0)
	ev := model.Event{
		Popup: "settings",
		From:  model.StateHidden,
		To:    model.StateEntering,
		Cycle: "01HZX3K5Q8ABCDEFGH12345678",
		At:    now.Add(-3 * time.Second),
	}

	line := formatEvent(ev, now)
	assert.True(t, strings.HasPrefix(line, "settings"))
	assert.Contains(t, line, "hidden   → entering")
	assert.Contains(t, line, "12345678")
	assert.Contains(t, line, "3 seconds ago")
}
