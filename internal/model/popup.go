// Package model defines the core data structures for popctl.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultDuration is the animation duration configs use when a popup leaves
// it unset.
const DefaultDuration = 500 * time.Millisecond

// AnimationType selects the entrance/exit transition of a popup.
type AnimationType int

// Animation types. The set is closed; configs refer to them by name.
const (
	AnimationScaleBounce AnimationType = iota
	AnimationFadeIn
	AnimationSlideFromTop
	AnimationRotateIn
)

// AnimationNames maps animation types to their configuration names.
var AnimationNames = map[AnimationType]string{
	AnimationScaleBounce:  "scale-bounce",
	AnimationFadeIn:       "fade-in",
	AnimationSlideFromTop: "slide-from-top",
	AnimationRotateIn:     "rotate-in",
}

// AllAnimationTypes returns every animation type in declaration order.
func AllAnimationTypes() []AnimationType {
	return []AnimationType{
		AnimationScaleBounce,
		AnimationFadeIn,
		AnimationSlideFromTop,
		AnimationRotateIn,
	}
}

// Validation errors.
var (
	ErrMissingTrigger   = errors.New("trigger control is required")
	ErrMissingSurface   = errors.New("popup surface is required")
	ErrUnknownAnimation = errors.New("unknown animation type")
	ErrInvalidDuration  = errors.New("animation duration must not be negative")
)

func (a AnimationType) String() string {
	if name, ok := AnimationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("animation(%d)", int(a))
}

// Valid reports whether a is one of the known animation types.
func (a AnimationType) Valid() bool {
	_, ok := AnimationNames[a]
	return ok
}

// ParseAnimationType parses an animation name. Matching ignores case and
// separators, so "scale-bounce", "ScaleBounce" and "scale_bounce" are equal.
func ParseAnimationType(s string) (AnimationType, error) {
	want := normalizeName(s)
	for _, a := range AllAnimationTypes() {
		if normalizeName(AnimationNames[a]) == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAnimation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a AnimationType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAnimation, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AnimationType) UnmarshalText(text []byte) error {
	parsed, err := ParseAnimationType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '-' || r == '_' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PopupDefinition binds a trigger control to a popup surface and the
// controls that close it. It is immutable once handed to a controller.
type PopupDefinition struct {
	Name            string
	Trigger         Control
	Surface         Surface
	Close           Control // optional
	BackgroundClose Control // optional, only wired together with Close
	Animation       AnimationType
	Duration        time.Duration // zero completes on the next frame

	// Optional sound cues, played by hosts that have audio enabled.
	OpenSound  string
	CloseSound string
}

// Validate checks the required references and settings.
// All problems are reported, joined into one error.
func (d PopupDefinition) Validate() error {
	var errs []error
	if d.Trigger == nil {
		errs = append(errs, ErrMissingTrigger)
	}
	if d.Surface == nil {
		errs = append(errs, ErrMissingSurface)
	}
	if !d.Animation.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownAnimation, int(d.Animation)))
	}
	if d.Duration < 0 {
		errs = append(errs, ErrInvalidDuration)
	}
	return errors.Join(errs...)
}
