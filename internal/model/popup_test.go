package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubControl struct{}

func (stubControl) OnClick(func()) {}

type stubSurface struct{}

func (stubSurface) SetActive(bool)         {}
func (stubSurface) Active() bool           { return false }
func (stubSurface) Opacity() float64       { return 1 }
func (stubSurface) SetOpacity(float64)     {}
func (stubSurface) Transform() Transform   { return IdentityTransform() }
func (stubSurface) SetTransform(Transform) {}

func TestParseAnimationType(t *testing.T) {
	tests := []struct {
		input string
		want  AnimationType
	}{
		{"scale-bounce", AnimationScaleBounce},
		{"ScaleBounce", AnimationScaleBounce},
		{"fade_in", AnimationFadeIn},
		{"FadeIn", AnimationFadeIn},
		{"slide-from-top", AnimationSlideFromTop},
		{"SLIDE FROM TOP", AnimationSlideFromTop},
		{"RotateIn", AnimationRotateIn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnimationType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnimationType_Unknown(t *testing.T) {
	_, err := ParseAnimationType("wobble")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAnimation)
}

func TestAnimationType_TextRoundTrip(t *testing.T) {
	for _, a := range AllAnimationTypes() {
		text, err := a.MarshalText()
		require.NoError(t, err)

		var parsed AnimationType
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, a, parsed)
	}

	_, err := AnimationType(42).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownAnimation)
	assert.Equal(t, "animation(42)", AnimationType(42).String())
}

func TestPopupDefinition_Validate(t *testing.T) {
	valid := PopupDefinition{
		Name:    "settings",
		Trigger: stubControl{},
		Surface: stubSurface{},
	}
	assert.NoError(t, valid.Validate())

	missing := PopupDefinition{Name: "broken"}
	err := missing.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTrigger))
	assert.True(t, errors.Is(err, ErrMissingSurface))

	negative := valid
	negative.Duration = -time.Second
	assert.ErrorIs(t, negative.Validate(), ErrInvalidDuration)

	unknown := valid
	unknown.Animation = AnimationType(9)
	assert.ErrorIs(t, unknown.Validate(), ErrUnknownAnimation)
}

func TestPopupDefinition_ZeroDurationIsValid(t *testing.T) {
	instant := PopupDefinition{Name: "p", Trigger: stubControl{}, Surface: stubSurface{}}
	assert.NoError(t, instant.Validate())
	assert.Zero(t, instant.Duration)
}

func TestPopupState(t *testing.T) {
	assert.Equal(t, "hidden", StateHidden.String())
	assert.Equal(t, "exiting", StateExiting.String())
	assert.True(t, StateEntering.Animating())
	assert.True(t, StateExiting.Animating())
	assert.False(t, StateShown.Animating())
	assert.False(t, StateHidden.Animating())
}

func TestNewCycleID(t *testing.T) {
	a, err := NewCycleID()
	require.NoError(t, err)
	b, err := NewCycleID()
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
