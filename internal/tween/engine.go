// Package tween drives time-bounded property transitions on surfaces.
//
// The engine is advanced explicitly with Tick from the host's frame clock.
// Starting a tween on a property that is already animating replaces the
// running tween; the replaced tween never fires its completion callbacks.
// An Engine is not safe for concurrent use and must be driven from the
// thread that owns the surfaces.
package tween

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/jmylchreest/popctl/internal/model"
)

// Property identifies an animatable surface property.
type Property int

// Animatable properties.
const (
	Scale     Property = iota // uniform scale, all three axes
	Opacity                   // 0 transparent, 1 opaque
	PositionY                 // vertical position
	RotationZ                 // rotation around the view axis, degrees
)

var propertyNames = map[Property]string{
	Scale:     "scale",
	Opacity:   "opacity",
	PositionY: "position.y",
	RotationZ: "rotation.z",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// Get reads the current value of p from s.
func Get(s model.Surface, p Property) float64 {
	switch p {
	case Scale:
		return s.Transform().Scale.X
	case Opacity:
		return s.Opacity()
	case PositionY:
		return s.Transform().Position.Y
	case RotationZ:
		return s.Transform().Rotation.Z
	default:
		return 0
	}
}

// Set writes v to property p of s.
func Set(s model.Surface, p Property, v float64) {
	switch p {
	case Scale:
		t := s.Transform()
		t.Scale = model.Uniform(v)
		s.SetTransform(t)
	case Opacity:
		s.SetOpacity(v)
	case PositionY:
		t := s.Transform()
		t.Position.Y = v
		s.SetTransform(t)
	case RotationZ:
		t := s.Transform()
		t.Rotation.Z = v
		s.SetTransform(t)
	}
}

// Tween is a single running property transition.
type Tween struct {
	target   model.Surface
	prop     Property
	from, to float64
	duration time.Duration
	elapsed  time.Duration
	tw       *gween.Tween // nil when duration is zero

	onComplete []func()
	done       bool
	killed     bool
	fired      bool
}

// OnComplete registers fn to run once the tween reaches its end value.
// Callbacks of killed tweens never run.
func (t *Tween) OnComplete(fn func()) *Tween {
	if fn != nil {
		t.onComplete = append(t.onComplete, fn)
	}
	return t
}

// Target returns the animated surface.
func (t *Tween) Target() model.Surface { return t.target }

// Property returns the animated property.
func (t *Tween) Property() Property { return t.prop }

// From returns the start value.
func (t *Tween) From() float64 { return t.from }

// To returns the end value.
func (t *Tween) To() float64 { return t.to }

// Duration returns the configured duration.
func (t *Tween) Duration() time.Duration { return t.duration }

// Done reports whether the tween reached its end value.
func (t *Tween) Done() bool { return t.done && !t.killed }

// Killed reports whether the tween was cancelled.
func (t *Tween) Killed() bool { return t.killed }

// step advances the tween by dt and applies the value. It reports whether
// the tween finished.
func (t *Tween) step(dt time.Duration) bool {
	t.elapsed += dt
	if t.tw == nil || t.elapsed >= t.duration {
		Set(t.target, t.prop, t.to)
		return true
	}
	// Elapsed time is kept in integer nanoseconds so that frame steps
	// summing to the duration always finish the tween.
	v, _ := t.tw.Set(float32(t.elapsed.Seconds()))
	Set(t.target, t.prop, float64(v))
	return false
}

// Engine owns all running tweens.
type Engine struct {
	logger *slog.Logger
	tweens []*Tween
}

// NewEngine creates a new tween engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// To animates p from its current value to the given value.
func (e *Engine) To(target model.Surface, p Property, to float64, d time.Duration, easing ease.TweenFunc) *Tween {
	return e.start(target, p, Get(target, p), to, d, easing)
}

// FromTo sets p to from immediately and animates it to the given value.
func (e *Engine) FromTo(target model.Surface, p Property, from, to float64, d time.Duration, easing ease.TweenFunc) *Tween {
	Set(target, p, from)
	return e.start(target, p, from, to, d, easing)
}

func (e *Engine) start(target model.Surface, p Property, from, to float64, d time.Duration, easing ease.TweenFunc) *Tween {
	if replaced := e.Kill(target, p); replaced > 0 {
		e.logger.Debug("replaced running tween", "property", p, "count", replaced)
	}
	if easing == nil {
		easing = ease.Linear
	}
	t := &Tween{
		target:   target,
		prop:     p,
		from:     from,
		to:       to,
		duration: d,
	}
	if d > 0 {
		t.tw = gween.New(float32(from), float32(to), float32(d.Seconds()), easing)
	}
	e.tweens = append(e.tweens, t)
	return t
}

// Kill cancels running tweens of p on target without firing their
// completion callbacks. It returns the number of tweens cancelled.
func (e *Engine) Kill(target model.Surface, p Property) int {
	n := 0
	for _, t := range e.tweens {
		if t.target == target && t.prop == p && !t.killed && !t.fired {
			t.killed = true
			n++
		}
	}
	return n
}

// KillTarget cancels every running tween on target.
func (e *Engine) KillTarget(target model.Surface) int {
	n := 0
	for _, t := range e.tweens {
		if t.target == target && !t.killed && !t.fired {
			t.killed = true
			n++
		}
	}
	return n
}

// IsTweening reports whether p of target is being animated.
func (e *Engine) IsTweening(target model.Surface, p Property) bool {
	for _, t := range e.tweens {
		if t.target == target && t.prop == p && !t.killed && !t.done {
			return true
		}
	}
	return false
}

// Active returns the number of running tweens.
func (e *Engine) Active() int {
	n := 0
	for _, t := range e.tweens {
		if !t.killed && !t.done {
			n++
		}
	}
	return n
}

// Tick advances every running tween by dt. Values are applied first; the
// completion callbacks of tweens that finished run afterwards, in start
// order. Tweens started from a callback begin advancing on the next Tick.
func (e *Engine) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}

	running := make([]*Tween, len(e.tweens))
	copy(running, e.tweens)

	var finished []*Tween
	for _, t := range running {
		if t.killed || t.done {
			continue
		}
		if t.step(dt) {
			t.done = true
			finished = append(finished, t)
		}
	}

	for _, t := range finished {
		if t.killed {
			continue
		}
		t.fired = true
		for _, fn := range t.onComplete {
			fn()
		}
	}

	kept := e.tweens[:0]
	for _, t := range e.tweens {
		if t.killed || t.done {
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(e.tweens); i++ {
		e.tweens[i] = nil
	}
	e.tweens = kept
}
