package animation

import (
	"time"

	"github.com/tanema/gween/ease"

	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/tween"
)

// DefaultSlideDistance is how far above its resting position a sliding
// surface starts when no viewport is available.
const DefaultSlideDistance = 1000.0

// Rotation, in degrees, a RotateIn surface enters from and exits to.
const rotateInAngle = 180.0

// ScaleBounce grows the surface from nothing with a bounce and shrinks it
// back with an anticipating ease-in.
type ScaleBounce struct {
	engine *tween.Engine
}

func (a *ScaleBounce) Enter(s model.Surface, d time.Duration) *tween.Tween {
	return a.engine.FromTo(s, tween.Scale, 0, 1, d, ease.OutBounce)
}

func (a *ScaleBounce) Exit(s model.Surface, d time.Duration) *tween.Tween {
	return a.engine.To(s, tween.Scale, 0, d, ease.InBack)
}

// FadeIn fades opacity in and out.
type FadeIn struct {
	engine *tween.Engine
}

func (a *FadeIn) Enter(s model.Surface, d time.Duration) *tween.Tween {
	return a.engine.FromTo(s, tween.Opacity, 0, 1, d, ease.OutQuad)
}

func (a *FadeIn) Exit(s model.Surface, d time.Duration) *tween.Tween {
	return a.engine.To(s, tween.Opacity, 0, d, ease.OutQuad)
}

// SlideFromTop moves the surface down from above the visible area to its
// resting position, and back up on exit.
//
// Resting positions are recorded per surface by Prepare. A surface that was
// never prepared is treated as resting wherever it is on its first Enter.
type SlideFromTop struct {
	engine   *tween.Engine
	viewport model.Viewport
	resting  map[model.Surface]float64
}

// NewSlideFromTop creates a SlideFromTop strategy.
func NewSlideFromTop(engine *tween.Engine, viewport model.Viewport) *SlideFromTop {
	return &SlideFromTop{
		engine:   engine,
		viewport: viewport,
		resting:  make(map[model.Surface]float64),
	}
}

// Prepare records the current Y of s as its resting position.
func (a *SlideFromTop) Prepare(s model.Surface) {
	a.resting[s] = s.Transform().Position.Y
}

// RestingY returns the recorded resting position of s.
func (a *SlideFromTop) RestingY(s model.Surface) (float64, bool) {
	y, ok := a.resting[s]
	return y, ok
}

func (a *SlideFromTop) restingY(s model.Surface) float64 {
	y, ok := a.resting[s]
	if !ok {
		y = s.Transform().Position.Y
		a.resting[s] = y
	}
	return y
}

func (a *SlideFromTop) offscreen(s model.Surface) float64 {
	if a.viewport != nil {
		return a.viewport.OffscreenTop(s)
	}
	return a.restingY(s) - DefaultSlideDistance
}

func (a *SlideFromTop) Enter(s model.Surface, d time.Duration) *tween.Tween {
	rest := a.restingY(s)
	return a.engine.FromTo(s, tween.PositionY, a.offscreen(s), rest, d, ease.OutCubic)
}

func (a *SlideFromTop) Exit(s model.Surface, d time.Duration) *tween.Tween {
	a.restingY(s)
	return a.engine.To(s, tween.PositionY, a.offscreen(s), d, ease.InCubic)
}

// RotateIn scales the surface in with an overshoot while unwinding it from
// half a turn. On exit only the scale tween gates completion; the rotation
// plays back alongside it independently.
type RotateIn struct {
	engine *tween.Engine
}

func (a *RotateIn) Enter(s model.Surface, d time.Duration) *tween.Tween {
	gate := a.engine.FromTo(s, tween.Scale, 0, 1, d, ease.OutBack)
	a.engine.FromTo(s, tween.RotationZ, rotateInAngle, 0, d, ease.OutQuad)
	return gate
}

func (a *RotateIn) Exit(s model.Surface, d time.Duration) *tween.Tween {
	gate := a.engine.To(s, tween.Scale, 0, d, ease.InBack)
	a.engine.To(s, tween.RotationZ, rotateInAngle, d, ease.OutQuad)
	return gate
}
