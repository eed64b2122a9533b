package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/popup"
	"github.com/jmylchreest/popctl/internal/scene"
	"github.com/jmylchreest/popctl/internal/tween"
)

// maxEvents bounds the transition log.
const maxEvents = 50

// card is a wired popup as the terminal draws it.
type card struct {
	popup      string
	node       *scene.Node
	trigger    *scene.Button
	close      *scene.Button
	background *scene.Button
}

// host owns the scene, the tween engine and the controller. It is shared
// by every copy of the bubbletea Model and only touched from Update.
type host struct {
	logger *slog.Logger
	audio  *audio.Manager

	cfg        *config.Config
	engine     *tween.Engine
	scene      *scene.Scene
	controller *popup.Controller
	cards      []card
	events     []model.Event
	initErr    error
}

func newHost(logger *slog.Logger, sounds *audio.Manager) *host {
	if logger == nil {
		logger = slog.Default()
	}
	return &host{logger: logger, audio: sounds}
}

// load replaces the scene and controller with ones built from cfg. A
// config that cannot be built leaves the current scene running. Popups
// skipped by the controller are reported through initErr.
func (h *host) load(cfg *config.Config) error {
	sc, defs, err := scene.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	policy, err := popup.ParsePolicy(cfg.Overlap)
	if err != nil {
		return err
	}

	engine := tween.NewEngine(h.logger)
	ctrl := popup.NewController(engine, popup.Options{
		Logger:   h.logger,
		Policy:   policy,
		Viewport: sc,
	})
	ctrl.Subscribe(h.record)
	if h.audio != nil {
		ctrl.Subscribe(h.audio.HandleEvent)
	}
	initErr := ctrl.Init(defs)
	if initErr != nil {
		h.logger.Warn("some popups were not wired", "error", initErr)
	}
	if h.audio != nil {
		h.audio.SetEnabled(cfg.Audio.Enabled)
		h.audio.Load(defs)
	}

	var cards []card
	for _, name := range ctrl.Names() {
		def, _ := ctrl.Definition(name)
		node, ok := def.Surface.(*scene.Node)
		if !ok {
			continue
		}
		cards = append(cards, card{
			popup:      name,
			node:       node,
			trigger:    asButton(def.Trigger),
			close:      asButton(def.Close),
			background: asButton(def.BackgroundClose),
		})
	}

	h.cfg = cfg
	h.engine = engine
	h.scene = sc
	h.controller = ctrl
	h.cards = cards
	h.initErr = initErr
	h.logger.Info("scene loaded", "popups", len(cards), "overlap", policy)
	return nil
}

func asButton(c model.Control) *scene.Button {
	b, _ := c.(*scene.Button)
	return b
}

func (h *host) record(ev model.Event) {
	h.events = append(h.events, ev)
	if len(h.events) > maxEvents {
		h.events = h.events[len(h.events)-maxEvents:]
	}
}

// tick advances every running transition by dt.
func (h *host) tick(dt time.Duration) {
	if h.engine != nil && dt > 0 {
		h.engine.Tick(dt)
	}
}

func (h *host) state(c card) model.PopupState {
	s, _ := h.controller.State(c.popup)
	return s
}

// open reports whether c is shown or on its way in.
func (h *host) open(c card) bool {
	s := h.state(c)
	return s == model.StateShown || s == model.StateEntering
}

// topmost returns the last drawn open popup.
func (h *host) topmost() (card, bool) {
	for i := len(h.cards) - 1; i >= 0; i-- {
		if h.open(h.cards[i]) {
			return h.cards[i], true
		}
	}
	return card{}, false
}

// closeTopmost closes the topmost open popup through its close control,
// or directly when it has none.
func (h *host) closeTopmost() bool {
	c, ok := h.topmost()
	if !ok {
		return false
	}
	if c.close != nil {
		c.close.Click()
		return true
	}
	if err := h.controller.Hide(c.popup); err != nil {
		h.logger.Warn("failed to hide popup", "popup", c.popup, "error", err)
	}
	return true
}

// press clicks the control bound to keyName.
func (h *host) press(keyName string) bool {
	b, ok := h.scene.ButtonByKey(keyName)
	if !ok {
		return false
	}
	b.Click()
	return true
}

// clickStage handles a mouse click at stage cell (x, y). A click on a
// card's close mark clicks its close control, a click inside a card is
// absorbed, and a click outside every card clicks the background control
// of the topmost open popup.
func (h *host) clickStage(x, y int) bool {
	for i := len(h.cards) - 1; i >= 0; i-- {
		c := h.cards[i]
		if !c.node.Visible() {
			continue
		}
		l, ok := layoutCard(c.node, c.close != nil)
		if !ok || !l.rect.contains(x, y) {
			continue
		}
		if l.hasClose && l.closeMark.contains(x, y) {
			c.close.Click()
		}
		return true
	}

	c, ok := h.topmost()
	if !ok || c.background == nil {
		return false
	}
	c.background.Click()
	return true
}

// triggerBindings returns one help binding per trigger control that has a
// key, skipping keys the global map already uses.
func (h *host) triggerBindings(keys KeyMap) []key.Binding {
	var out []key.Binding
	for _, c := range h.cards {
		if c.trigger == nil || c.trigger.Key == "" || keys.reserved(c.trigger.Key) {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(c.trigger.Key),
			key.WithHelp(c.trigger.Key, c.trigger.Label),
		))
	}
	return out
}
