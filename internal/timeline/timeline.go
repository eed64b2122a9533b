// Package timeline runs popups headless on the in-memory scene and samples
// their animated properties frame by frame.
package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/popup"
	"github.com/jmylchreest/popctl/internal/scene"
	"github.com/jmylchreest/popctl/internal/tween"
)

// Defaults for Options.
const (
	DefaultFPS  = 30
	MaxFPS      = 1000
	DefaultHold = 250 * time.Millisecond

	// A transition that has not settled after this long is reported as stuck.
	maxPhase = 5 * time.Minute
)

var (
	// ErrStuck is returned when a transition never completes.
	ErrStuck = errors.New("transition did not complete")
	// ErrInvalidFPS is returned for frame rates above MaxFPS.
	ErrInvalidFPS = errors.New("frame rate out of range")
)

// Options configures a simulation.
type Options struct {
	FPS    int           // frames per second, DefaultFPS if zero
	Hold   time.Duration // time spent Shown between show and hide
	Logger *slog.Logger
}

// Sample is the observable state of a popup at one frame.
type Sample struct {
	Frame    int              `json:"frame" yaml:"frame"`
	Time     time.Duration    `json:"time_ns" yaml:"time_ns"`
	State    model.PopupState `json:"state" yaml:"state"`
	Active   bool             `json:"active" yaml:"active"`
	Scale    float64          `json:"scale" yaml:"scale"`
	Opacity  float64          `json:"opacity" yaml:"opacity"`
	Y        float64          `json:"y" yaml:"y"`
	Rotation float64          `json:"rotation" yaml:"rotation"`
}

// Timeline is the recorded show/hold/hide cycle of one popup.
type Timeline struct {
	Popup     string        `json:"popup" yaml:"popup"`
	Animation string        `json:"animation" yaml:"animation"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
	FPS       int           `json:"fps" yaml:"fps"`
	Samples   []Sample      `json:"samples" yaml:"samples"`
	Events    []model.Event `json:"events" yaml:"events"`
}

// Simulate builds the configured scene, opens the popup matching name
// (exact or unique prefix), waits until it is shown, holds, closes it and
// waits until it is hidden again.
func Simulate(cfg *config.Config, name string, opts Options) (*Timeline, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.FPS > MaxFPS {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidFPS, opts.FPS, MaxFPS)
	}
	if opts.Hold < 0 {
		opts.Hold = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sc, defs, err := scene.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := popup.ParsePolicy(cfg.Overlap)
	if err != nil {
		return nil, err
	}

	engine := tween.NewEngine(logger)
	ctrl := popup.NewController(engine, popup.Options{
		Logger:   logger,
		Policy:   policy,
		Viewport: sc,
	})
	if err := ctrl.Init(defs); err != nil {
		// Other popups being malformed does not stop this one.
		logger.Warn("some popups were skipped", "error", err)
	}

	resolved, err := ctrl.Lookup(name)
	if err != nil {
		return nil, err
	}
	def, _ := ctrl.Definition(resolved)

	tl := &Timeline{
		Popup:     resolved,
		Animation: def.Animation.String(),
		Duration:  def.Duration,
		FPS:       opts.FPS,
	}
	ctrl.Subscribe(func(ev model.Event) { tl.Events = append(tl.Events, ev) })

	r := &recorder{
		tl:     tl,
		engine: engine,
		ctrl:   ctrl,
		popup:  resolved,
		target: def.Surface,
		dt:     time.Second / time.Duration(opts.FPS),
	}

	if err := ctrl.Show(resolved); err != nil {
		return nil, err
	}
	r.sample()
	if err := r.until(model.StateShown, maxPhase); err != nil {
		return nil, err
	}
	r.run(opts.Hold)

	if err := ctrl.Hide(resolved); err != nil {
		return nil, err
	}
	r.sample()
	if err := r.until(model.StateHidden, maxPhase); err != nil {
		return nil, err
	}

	return tl, nil
}

type recorder struct {
	tl     *Timeline
	engine *tween.Engine
	ctrl   *popup.Controller
	popup  string
	target model.Surface
	dt     time.Duration

	frame int
	now   time.Duration
}

func (r *recorder) step() {
	r.engine.Tick(r.dt)
	r.frame++
	r.now += r.dt
	r.sample()
}

func (r *recorder) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += r.dt {
		r.step()
	}
}

func (r *recorder) until(want model.PopupState, limit time.Duration) error {
	for elapsed := time.Duration(0); ; elapsed += r.dt {
		state, err := r.ctrl.State(r.popup)
		if err != nil {
			return err
		}
		if state == want {
			return nil
		}
		if elapsed >= limit {
			return fmt.Errorf("%w: %s still %s after %s", ErrStuck, r.popup, state, limit)
		}
		r.step()
	}
}

func (r *recorder) sample() {
	state, _ := r.ctrl.State(r.popup)
	t := r.target.Transform()
	r.tl.Samples = append(r.tl.Samples, Sample{
		Frame:    r.frame,
		Time:     r.now,
		State:    state,
		Active:   r.target.Active(),
		Scale:    t.Scale.X,
		Opacity:  r.target.Opacity(),
		Y:        t.Position.Y,
		Rotation: t.Rotation.Z,
	})
}

// Last returns the final sample.
func (tl *Timeline) Last() Sample {
	if len(tl.Samples) == 0 {
		return Sample{}
	}
	return tl.Samples[len(tl.Samples)-1]
}

// VisibleFor returns how long the surface was active, measured in frames.
func (tl *Timeline) VisibleFor() time.Duration {
	var first, last time.Duration = -1, -1
	for _, s := range tl.Samples {
		if s.Active {
			if first < 0 {
				first = s.Time
			}
			last = s.Time
		}
	}
	if first < 0 {
		return 0
	}
	return last - first
}
