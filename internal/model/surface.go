package model

// Vec3 is a three component vector used for position, scale and rotation.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Common vectors.
var (
	Vec3Zero = Vec3{}
	Vec3One  = Vec3{X: 1, Y: 1, Z: 1}
)

// Uniform returns a vector with all components set to v.
func Uniform(v float64) Vec3 {
	return Vec3{X: v, Y: v, Z: v}
}

// Transform is the spatial state of a surface. Rotation is in degrees.
type Transform struct {
	Position Vec3 `json:"position" yaml:"position"`
	Scale    Vec3 `json:"scale" yaml:"scale"`
	Rotation Vec3 `json:"rotation" yaml:"rotation"`
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3One}
}

// Surface is the overlay element a popup shows and hides.
// Hosts implement it over their own widgets; the controller and the tween
// engine are the only writers during transitions.
type Surface interface {
	SetActive(active bool)
	Active() bool
	Opacity() float64
	SetOpacity(opacity float64)
	Transform() Transform
	SetTransform(t Transform)
}

// Control is an interactive element that reports clicks.
type Control interface {
	OnClick(fn func())
}

// Viewport reports host geometry the animations depend on.
type Viewport interface {
	// OffscreenTop returns the Y position at which the surface is
	// entirely above the visible area.
	OffscreenTop(s Surface) float64
}
