// Package tui provides the BubbleTea-based terminal host: popups are drawn
// on a character stage, triggered by keys or mouse clicks, and animated by a
// frame tick that drives the tween engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/popup"
)

const (
	// maxFrame caps a single tick so a stalled terminal does not skip
	// whole transitions.
	maxFrame = 100 * time.Millisecond

	logRows = 5
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the main TUI model.
type Model struct {
	host *host
	md   *markdownRenderer

	configPath string
	fps        int
	color      bool
	now        func() time.Time

	// Components
	help help.Model
	keys KeyMap

	// State
	width    int
	height   int
	ready    bool
	lastTick time.Time
	showHelp bool
	showLog  bool

	// Status message
	statusMsg string
	statusErr bool
}

// Options configures the TUI.
type Options struct {
	Config     *config.Config
	ConfigPath string // reloaded on ctrl+r, watched when Watch is set
	Watch      bool
	Audio      *audio.Manager // may be nil
	Logger     *slog.Logger
}

// New creates a new TUI model.
func New(opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DemoConfig()
	}

	h := newHost(opts.Logger, opts.Audio)
	if err := h.load(cfg); err != nil {
		return Model{}, err
	}

	m := Model{
		host:       h,
		md:         newMarkdownRenderer(),
		configPath: opts.ConfigPath,
		fps:        cfg.TUI.FPS,
		color:      true,
		now:        time.Now,
		help:       help.New(),
		keys:       DefaultKeyMap(),
		showHelp:   cfg.TUI.ShowHelp,
		showLog:    cfg.TUI.ShowLog,
	}
	if m.fps <= 0 {
		m.fps = config.DefaultFPS
	}
	m.keys.Triggers = h.triggerBindings(m.keys)
	if h.initErr != nil {
		m.statusMsg, m.statusErr = initStatus(h.initErr), true
	}
	return m, nil
}

type tickMsg time.Time

type configMsg struct {
	cfg *config.Config
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		t := time.Time(msg)
		if !m.lastTick.IsZero() {
			m.host.tick(min(t.Sub(m.lastTick), maxFrame))
		}
		m.lastTick = t
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case configMsg:
		return m.applyConfig(msg.cfg)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		return m, nil
	case key.Matches(msg, m.keys.Close):
		m.host.closeTopmost()
		return m, nil
	case key.Matches(msg, m.keys.CloseAll):
		m.host.controller.HideAll()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	}

	m.host.press(msg.String())
	return m, nil
}

// handleMouse maps left clicks to stage and trigger bar controls.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	w, h := m.stageSize()
	const stageTop = 1
	switch {
	case msg.Y >= stageTop && msg.Y < stageTop+h && msg.X < w:
		m.host.clickStage(msg.X, msg.Y-stageTop)
	case msg.Y == stageTop+h:
		for _, item := range m.triggerBar() {
			if msg.X >= item.x && msg.X < item.x+item.width {
				item.card.trigger.Click()
				break
			}
		}
	}
	return m, nil
}

func (m Model) reload() tea.Cmd {
	path := m.configPath
	if path == "" {
		return func() tea.Msg {
			return statusMsg{text: "No config file to reload", isErr: true}
		}
	}
	return func() tea.Msg {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return statusMsg{text: "Reload failed: " + err.Error(), isErr: true}
		}
		return configMsg{cfg: cfg}
	}
}

func (m Model) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	if err := m.host.load(cfg); err != nil {
		m.host.logger.Warn("failed to apply config", "error", err)
		return m, func() tea.Msg {
			return statusMsg{text: "Reload failed: " + err.Error(), isErr: true}
		}
	}
	if cfg.TUI.FPS > 0 {
		m.fps = cfg.TUI.FPS
	}
	m.keys.Triggers = m.host.triggerBindings(m.keys)

	text, isErr := fmt.Sprintf("Loaded %d popups", len(m.host.cards)), false
	if m.host.initErr != nil {
		text, isErr = initStatus(m.host.initErr), true
	}
	return m, func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

func initStatus(err error) string {
	var verr *popup.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("%d popup(s) skipped: %s", len(verr.Definitions), verr.Definitions[0])
	}
	return err.Error()
}

// stageSize returns the stage size in cells, clipped to the terminal.
func (m Model) stageSize() (int, int) {
	w := int(m.host.scene.Width)
	h := int(m.host.scene.Height)
	if m.width > 0 {
		w = min(w, m.width)
	}
	if m.height > 0 {
		h = min(h, max(1, m.height-m.chromeRows()))
	}
	return w, h
}

// chromeRows is the number of rows used around the stage.
func (m Model) chromeRows() int {
	rows := 3 // header, trigger bar, help line
	if m.showLog {
		rows += logRows
	}
	if m.showHelp {
		rows += 4
	}
	return rows
}

type barItem struct {
	x, width int
	card     card
}

// triggerBar lays out one entry per trigger control.
func (m Model) triggerBar() []barItem {
	var items []barItem
	x := 0
	for _, c := range m.host.cards {
		if c.trigger == nil {
			continue
		}
		width := len([]rune(barLabel(c)))
		items = append(items, barItem{x: x, width: width, card: c})
		x += width + 2
	}
	return items
}

func barLabel(c card) string {
	if c.trigger.Key != "" {
		return fmt.Sprintf("[%s] %s", c.trigger.Key, c.trigger.Label)
	}
	return "[ " + c.trigger.Label + " ]"
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')

	w, h := m.stageSize()
	b.WriteString(drawStage(m.host, m.md, w, h).String(m.color))
	b.WriteByte('\n')

	b.WriteString(m.viewTriggerBar())
	if m.showLog {
		b.WriteByte('\n')
		b.WriteString(m.viewLog())
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewHeader() string {
	header := headerStyle.Render("popctl") + dimStyle.Render(fmt.Sprintf("  overlap=%s  popups=%d",
		m.host.controller.Policy(), len(m.host.cards)))
	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errStyle
		}
		header += "  " + style.Render(m.statusMsg)
	}
	return header
}

func (m Model) viewTriggerBar() string {
	parts := make([]string, 0, len(m.host.cards))
	for _, item := range m.triggerBar() {
		label := barLabel(item.card)
		if m.host.open(item.card) {
			parts = append(parts, keyStyle.Render(label))
		} else {
			parts = append(parts, label)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewLog() string {
	events := m.host.events
	if len(events) > logRows {
		events = events[len(events)-logRows:]
	}

	lines := make([]string, logRows)
	for i, ev := range events {
		lines[i] = formatEvent(ev, m.now())
	}
	return dimStyle.Render(strings.Join(lines, "\n"))
}

func formatEvent(ev model.Event, now time.Time) string {
	cycle := ev.Cycle
	if len(cycle) > 8 {
		cycle = cycle[len(cycle)-8:]
	}
	return fmt.Sprintf("%-12s %-8s → %-8s %-8s %s",
		ev.Popup, ev.From, ev.To, cycle, humanize.RelTime(ev.At, now, "ago", "from now"))
}

// Run starts the TUI and, when requested, watches the config file for
// changes until the program exits.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	})

	if opts.Watch && opts.ConfigPath != "" {
		w := config.NewWatcher(opts.ConfigPath, logger)
		g.Go(func() error {
			err := w.Run(ctx,
				func(cfg *config.Config) { p.Send(configMsg{cfg: cfg}) },
				func(err error) { p.Send(statusMsg{text: "Config error: " + err.Error(), isErr: true}) },
			)
			if err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
