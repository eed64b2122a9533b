// Package popup binds trigger and close controls to popup surfaces and runs
// each popup through its show/hide lifecycle.
//
// A Controller is driven from the host's UI thread: click handlers call into
// it and the tween engine's Tick completes transitions. It performs no
// locking of its own.
package popup

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/popctl/internal/animation"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/tween"
)

// Listener receives every state transition of every popup.
type Listener func(model.Event)

// Options configures a Controller.
type Options struct {
	Logger   *slog.Logger
	Policy   Policy
	Viewport model.Viewport      // used by SlideFromTop, may be nil
	Registry *animation.Registry // defaults to the built-in strategies
	Now      func() time.Time    // event timestamps, defaults to time.Now
}

type entry struct {
	def      model.PopupDefinition
	strategy animation.Strategy
	state    model.PopupState
	cycle    string
}

// Controller manages a set of popups.
type Controller struct {
	engine   *tween.Engine
	registry *animation.Registry
	logger   *slog.Logger
	policy   Policy
	now      func() time.Time

	popups    map[string]*entry
	order     []string
	listeners []Listener
}

// NewController creates a controller that animates through engine.
func NewController(engine *tween.Engine, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.Policy
	if policy == "" {
		policy = DefaultPolicy
	}
	registry := opts.Registry
	if registry == nil {
		registry = animation.NewRegistry(engine, opts.Viewport)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		engine:   engine,
		registry: registry,
		logger:   logger,
		policy:   policy,
		now:      now,
		popups:   make(map[string]*entry),
	}
}

// Init wires every definition: the surface is forced hidden, the trigger
// opens it, and the close and background-close controls close it.
//
// Malformed definitions are skipped with a warning and reported together in
// a *ValidationError. Valid definitions are wired even when an error is
// returned.
func (c *Controller) Init(defs []model.PopupDefinition) error {
	var invalid []*DefinitionError

	for i, def := range defs {
		if def.Name == "" {
			def.Name = fmt.Sprintf("popup-%d", i)
		}

		err := def.Validate()
		if err == nil {
			if _, exists := c.popups[def.Name]; exists {
				err = ErrDuplicateName
			}
		}
		var strategy animation.Strategy
		if err == nil {
			strategy, err = c.registry.For(def.Animation)
		}
		if err != nil {
			c.logger.Warn("skipping malformed popup definition", "index", i, "popup", def.Name, "error", err)
			invalid = append(invalid, &DefinitionError{Index: i, Name: def.Name, Err: err})
			continue
		}

		c.wire(def, strategy)
	}

	if len(invalid) > 0 {
		return &ValidationError{Definitions: invalid}
	}
	return nil
}

func (c *Controller) wire(def model.PopupDefinition, strategy animation.Strategy) {
	e := &entry{def: def, strategy: strategy, state: model.StateHidden}
	c.popups[def.Name] = e
	c.order = append(c.order, def.Name)

	def.Surface.SetActive(false)
	c.registry.Prepare(def.Animation, def.Surface)

	def.Trigger.OnClick(func() { c.show(e) })

	switch {
	case def.Close != nil:
		def.Close.OnClick(func() { c.hide(e) })
		if def.BackgroundClose != nil {
			def.BackgroundClose.OnClick(func() { c.hide(e) })
		}
	case def.BackgroundClose != nil:
		c.logger.Warn("background close control ignored without a close control", "popup", def.Name)
	}

	c.logger.Debug("popup wired",
		"popup", def.Name,
		"animation", def.Animation,
		"duration", def.Duration,
		"close", def.Close != nil,
		"background_close", def.Close != nil && def.BackgroundClose != nil,
	)
}

// Show opens the named popup.
func (c *Controller) Show(name string) error {
	e, err := c.get(name)
	if err != nil {
		return err
	}
	c.show(e)
	return nil
}

// Hide closes the named popup.
func (c *Controller) Hide(name string) error {
	e, err := c.get(name)
	if err != nil {
		return err
	}
	c.hide(e)
	return nil
}

// Toggle opens the named popup if it is hidden or closing, and closes it
// otherwise.
func (c *Controller) Toggle(name string) error {
	e, err := c.get(name)
	if err != nil {
		return err
	}
	if e.state == model.StateHidden || e.state == model.StateExiting {
		c.show(e)
	} else {
		c.hide(e)
	}
	return nil
}

// HideAll closes every popup that is open or opening.
func (c *Controller) HideAll() {
	for _, name := range c.order {
		e := c.popups[name]
		if e.state == model.StateShown || e.state == model.StateEntering {
			c.hide(e)
		}
	}
}

func (c *Controller) show(e *entry) {
	s := e.def.Surface

	switch c.policy {
	case PolicyIgnore:
		if e.state != model.StateHidden {
			c.logger.Debug("show ignored", "popup", e.def.Name, "state", e.state)
			return
		}
	default:
		if n := c.engine.KillTarget(s); n > 0 {
			c.logger.Debug("show interrupted running transition", "popup", e.def.Name, "state", e.state, "tweens", n)
		}
	}

	if e.state == model.StateHidden {
		e.cycle = c.newCycle()
	}

	s.SetActive(true)
	tween.Set(s, tween.Scale, 1)
	s.SetOpacity(1)

	c.transition(e, model.StateEntering)
	e.strategy.Enter(s, e.def.Duration).OnComplete(func() {
		c.transition(e, model.StateShown)
	})
}

func (c *Controller) hide(e *entry) {
	s := e.def.Surface

	switch c.policy {
	case PolicyIgnore:
		if e.state != model.StateShown {
			c.logger.Debug("hide ignored", "popup", e.def.Name, "state", e.state)
			return
		}
	default:
		if e.state == model.StateHidden {
			return
		}
		if n := c.engine.KillTarget(s); n > 0 {
			c.logger.Debug("hide interrupted running transition", "popup", e.def.Name, "state", e.state, "tweens", n)
		}
	}

	c.transition(e, model.StateExiting)
	e.strategy.Exit(s, e.def.Duration).OnComplete(func() {
		s.SetActive(false)
		c.transition(e, model.StateHidden)
		e.cycle = ""
	})
}

func (c *Controller) newCycle() string {
	id, err := model.NewCycleID()
	if err != nil {
		c.logger.Warn("failed to create cycle id", "error", err)
		return ""
	}
	return id
}

func (c *Controller) transition(e *entry, to model.PopupState) {
	ev := model.Event{
		Popup: e.def.Name,
		From:  e.state,
		To:    to,
		Cycle: e.cycle,
		At:    c.now(),
	}
	e.state = to

	c.logger.Debug("popup transition", "popup", ev.Popup, "from", ev.From, "to", ev.To, "cycle", ev.Cycle)
	for _, l := range c.listeners {
		if l != nil {
			l(ev)
		}
	}
}

// Subscribe registers l for transition events. The returned function
// removes it again.
func (c *Controller) Subscribe(l Listener) func() {
	c.listeners = append(c.listeners, l)
	idx := len(c.listeners) - 1
	return func() {
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
	}
}

// State returns the lifecycle state of the named popup.
func (c *Controller) State(name string) (model.PopupState, error) {
	e, err := c.get(name)
	if err != nil {
		return model.StateHidden, err
	}
	return e.state, nil
}

// Cycle returns the id of the named popup's current open/close cycle, or
// the empty string while it is hidden.
func (c *Controller) Cycle(name string) string {
	if e, ok := c.popups[name]; ok {
		return e.cycle
	}
	return ""
}

// Definition returns the definition a popup was wired from.
func (c *Controller) Definition(name string) (model.PopupDefinition, bool) {
	e, ok := c.popups[name]
	if !ok {
		return model.PopupDefinition{}, false
	}
	return e.def, true
}

// Names returns the wired popup names in definition order.
func (c *Controller) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Policy returns the overlap policy in effect.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Animating reports whether any popup is mid-transition.
func (c *Controller) Animating() bool {
	for _, e := range c.popups {
		if e.state.Animating() {
			return true
		}
	}
	return false
}

// Lookup resolves query to a popup name: an exact match wins, otherwise
// query must be a prefix of exactly one name. Matching ignores case.
func (c *Controller) Lookup(query string) (string, error) {
	if _, ok := c.popups[query]; ok {
		return query, nil
	}

	q := strings.ToLower(query)
	var matches []string
	for _, name := range c.order {
		lower := strings.ToLower(name)
		if lower == q {
			return name, nil
		}
		if strings.HasPrefix(lower, q) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownPopup, query)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %s", ErrAmbiguousPopup, query, strings.Join(matches, ", "))
	}
}

func (c *Controller) get(name string) (*entry, error) {
	e, ok := c.popups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPopup, name)
	}
	return e, nil
}
