// Package animation implements the entrance and exit transitions a popup
// can be configured with.
//
// Each strategy starts its tweens on the shared engine and returns the one
// tween whose completion gates the end of the transition. Strategies that
// animate several properties may start tweens that do not gate anything.
package animation

import (
	"fmt"
	"time"

	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/tween"
)

// Strategy plays the entrance and exit transitions of one animation type.
type Strategy interface {
	// Enter starts the entrance transition and returns its gating tween.
	Enter(s model.Surface, d time.Duration) *tween.Tween
	// Exit starts the exit transition and returns its gating tween.
	Exit(s model.Surface, d time.Duration) *tween.Tween
}

// Preparer is implemented by strategies that need to record surface state
// before the first transition, while the surface is at rest.
type Preparer interface {
	Prepare(s model.Surface)
}

// Registry maps animation types to strategies.
type Registry struct {
	strategies map[model.AnimationType]Strategy
}

// NewRegistry creates a registry with the built-in strategies bound to engine.
// viewport may be nil, in which case slides use DefaultSlideDistance.
func NewRegistry(engine *tween.Engine, viewport model.Viewport) *Registry {
	return &Registry{
		strategies: map[model.AnimationType]Strategy{
			model.AnimationScaleBounce:  &ScaleBounce{engine: engine},
			model.AnimationFadeIn:       &FadeIn{engine: engine},
			model.AnimationSlideFromTop: NewSlideFromTop(engine, viewport),
			model.AnimationRotateIn:     &RotateIn{engine: engine},
		},
	}
}

// Register replaces the strategy used for t.
func (r *Registry) Register(t model.AnimationType, s Strategy) {
	r.strategies[t] = s
}

// For returns the strategy for t.
func (r *Registry) For(t model.AnimationType) (Strategy, error) {
	s, ok := r.strategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownAnimation, t)
	}
	return s, nil
}

// Prepare lets the strategy for t record the resting state of s.
// It is a no-op for strategies that do not implement Preparer.
func (r *Registry) Prepare(t model.AnimationType, s model.Surface) {
	if p, ok := r.strategies[t].(Preparer); ok {
		p.Prepare(s)
	}
}
