// Package gtkhost runs popups in a GTK4/libadwaita window. Each popup is a
// layer over a stage of trigger buttons; the tween engine is driven by a
// GLib timeout on the main loop.
//
// Every method must be called on the GTK main thread. Use glib.IdleAdd to
// get there from other goroutines.
package gtkhost

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popctl/internal/audio"
	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/popup"
	"github.com/jmylchreest/popctl/internal/scene"
	"github.com/jmylchreest/popctl/internal/theme"
	"github.com/jmylchreest/popctl/internal/tween"
)

const (
	// DefaultUnit is the size of one scene unit in pixels.
	DefaultUnit = 10

	maxFrame = 100 * time.Millisecond
)

// Options configures a Host.
type Options struct {
	Logger     *slog.Logger
	Audio      *audio.Manager // may be nil
	Unit       float64        // pixels per scene unit, DefaultUnit if zero
	LayerShell bool           // show as a wlr-layer-shell overlay instead of a normal window
	ThemesDir  string         // user themes, may be empty
}

// Host owns the window, the popup widgets and the controller.
type Host struct {
	app    *gtk.Application
	logger *slog.Logger
	audio  *audio.Manager
	opts   Options

	window       *gtk.Window
	theme        *gtk.CSSProvider
	themeApplied bool

	cfg        *config.Config
	controls   *scene.Scene
	surfaces   []*Surface
	engine     *tween.Engine
	controller *popup.Controller

	tick     glib.SourceHandle
	lastTick time.Time
}

// New creates a host for app. Nothing is shown until Load and Start.
func New(app *gtk.Application, opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Unit <= 0 {
		opts.Unit = DefaultUnit
	}
	return &Host{
		app:    app,
		logger: opts.Logger,
		audio:  opts.Audio,
		opts:   opts,
		theme:  gtk.NewCSSProvider(),
	}
}

// Load builds the stage for cfg, replacing any previous one. Popups the
// controller rejects are logged and returned in a *popup.ValidationError;
// the rest are wired and usable.
func (h *Host) Load(cfg *config.Config) error {
	sc, defs, err := scene.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	policy, err := popup.ParsePolicy(cfg.Overlap)
	if err != nil {
		return err
	}

	if h.window == nil {
		h.window = h.newWindow(cfg)
	}
	h.applyTheme(cfg)
	h.unload()

	unit := h.opts.Unit
	stage := gtk.NewOverlay()
	stage.SetSizeRequest(int(cfg.Viewport.Width*unit), int(cfg.Viewport.Height*unit))

	bar := gtk.NewBox(gtk.OrientationHorizontal, 0)
	bar.SetHAlign(gtk.AlignCenter)
	bar.SetVAlign(gtk.AlignEnd)
	stage.SetChild(bar)

	surfaces := make([]*Surface, 0, len(defs))
	for i := range defs {
		node, ok := defs[i].Surface.(*scene.Node)
		if !ok {
			continue
		}
		s := newSurface(node, unit, asButton(defs[i].Close), asButton(defs[i].BackgroundClose))
		surfaces = append(surfaces, s)
		stage.AddOverlay(s.Widget())
		// The controller drives the GTK surface, not the scene node.
		defs[i].Surface = s
	}

	for _, c := range cfg.Controls {
		b, ok := sc.Button(c.Name)
		if !ok || !isTrigger(cfg, c.Name) {
			continue
		}
		btn := gtk.NewButtonWithLabel(b.Label)
		btn.AddCSSClass("popup-trigger")
		btn.AddCSSClass("pill")
		btn.ConnectClicked(b.Click)
		bar.Append(btn)
	}

	engine := tween.NewEngine(h.logger)
	ctrl := popup.NewController(engine, popup.Options{
		Logger:   h.logger,
		Policy:   policy,
		Viewport: h,
	})
	if h.audio != nil {
		h.audio.SetEnabled(cfg.Audio.Enabled)
		h.audio.Load(defs)
		ctrl.Subscribe(h.audio.HandleEvent)
	}

	h.cfg = cfg
	h.controls = sc
	h.surfaces = surfaces
	h.engine = engine
	h.controller = ctrl

	initErr := ctrl.Init(defs)
	for _, s := range surfaces {
		s.flush()
	}

	h.window.SetChild(stage)
	h.logger.Info("stage loaded", "popups", len(ctrl.Names()), "overlap", policy)
	return initErr
}

// OffscreenTop implements model.Viewport. Surfaces slide in from just
// above the stage.
func (h *Host) OffscreenTop(s model.Surface) float64 {
	if gs, ok := s.(*Surface); ok {
		return -gs.height
	}
	return -h.cfg.Viewport.Height
}

func (h *Host) newWindow(cfg *config.Config) *gtk.Window {
	w := gtk.NewWindow()
	w.SetApplication(h.app)
	w.SetTitle("popctl")
	w.SetDefaultSize(int(cfg.Viewport.Width*h.opts.Unit), int(cfg.Viewport.Height*h.opts.Unit))

	if h.opts.LayerShell {
		w.SetDecorated(false)
		layershell.InitForWindow(w)
		layershell.SetLayer(w, layershell.LayerShellLayerOverlay)
		layershell.SetExclusiveZone(w, -1)
		layershell.SetKeyboardMode(w, layershell.LayerShellKeyboardModeOnDemand)
		layershell.SetNamespace(w, "popctl")
		for _, edge := range []layershell.LayerShellEdge{
			layershell.LayerShellEdgeTop,
			layershell.LayerShellEdgeBottom,
			layershell.LayerShellEdgeLeft,
			layershell.LayerShellEdgeRight,
		} {
			layershell.SetAnchor(w, edge, true)
		}
	}

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		return h.handleKey(keyval)
	})
	w.AddController(keys)
	return w
}

func (h *Host) handleKey(keyval uint) bool {
	if keyval == gdk.KEY_Escape {
		names := h.controller.Names()
		for i := len(names) - 1; i >= 0; i-- {
			name := names[i]
			if s, _ := h.controller.State(name); s == model.StateShown || s == model.StateEntering {
				if err := h.controller.Hide(name); err != nil {
					h.logger.Warn("failed to hide popup", "popup", name, "error", err)
				}
				return true
			}
		}
		return false
	}

	b, ok := h.controls.ButtonByKey(gdk.KeyvalName(keyval))
	if !ok {
		return false
	}
	b.Click()
	return true
}

// applyTheme loads the configured stylesheet and colour scheme.
func (h *Host) applyTheme(cfg *config.Config) {
	t := theme.Resolve(cfg.Theme.Name, h.opts.ThemesDir, h.logger)
	h.theme.LoadFromString(t.CSS)

	if !h.themeApplied {
		if display := gdk.DisplayGetDefault(); display != nil {
			gtk.StyleContextAddProviderForDisplay(display, h.theme, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
			h.themeApplied = true
		} else {
			h.logger.Warn("no display available, cannot apply theme")
		}
	}

	sm := adw.StyleManagerGetDefault()
	switch cfg.Theme.ColorScheme {
	case "light":
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	case "dark":
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
	h.logger.Debug("applied theme", "name", t.Name, "bundled", t.Bundled)
}

// ReloadTheme re-reads the configured theme, picking up edits to user
// stylesheets.
func (h *Host) ReloadTheme() {
	if h.cfg == nil {
		return
	}
	h.applyTheme(h.cfg)
}

// unload detaches the previous stage's stylesheets.
func (h *Host) unload() {
	for _, s := range h.surfaces {
		s.detach()
	}
	h.surfaces = nil
}

// Start presents the window and starts the frame clock.
func (h *Host) Start() {
	if h.window == nil {
		h.logger.Warn("nothing to show, no stage loaded")
		return
	}
	h.window.Present()

	fps := config.DefaultFPS
	if h.cfg != nil && h.cfg.TUI.FPS > 0 {
		fps = h.cfg.TUI.FPS
	}
	h.lastTick = time.Now()
	h.tick = glib.TimeoutAdd(uint(1000/fps), func() bool {
		h.frame(time.Now())
		return true
	})
}

func (h *Host) frame(now time.Time) {
	dt := min(now.Sub(h.lastTick), maxFrame)
	h.lastTick = now
	if h.engine == nil || h.engine.Active() == 0 {
		return
	}
	h.engine.Tick(dt)
	for _, s := range h.surfaces {
		s.flush()
	}
}

// Stop halts the frame clock and closes the window.
func (h *Host) Stop() {
	if h.tick != 0 {
		glib.SourceRemove(h.tick)
		h.tick = 0
	}
	h.unload()
	if h.window != nil {
		h.window.Close()
	}
}

// Controller returns the controller of the current stage.
func (h *Host) Controller() *popup.Controller {
	return h.controller
}

func asButton(c model.Control) *scene.Button {
	b, _ := c.(*scene.Button)
	return b
}

func isTrigger(cfg *config.Config, control string) bool {
	for _, p := range cfg.Popups {
		if p.Trigger == control {
			return true
		}
	}
	return false
}
