package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/popup"
)

func TestSimulate_ScaleBounce(t *testing.T) {
	tl, err := Simulate(config.DemoConfig(), "settings", Options{FPS: 10, Hold: 200 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, "settings", tl.Popup)
	assert.Equal(t, "scale-bounce", tl.Animation)
	assert.Equal(t, 500*time.Millisecond, tl.Duration)

	first := tl.Samples[0]
	assert.Equal(t, model.StateEntering, first.State)
	assert.True(t, first.Active)
	assert.Equal(t, 0.0, first.Scale)

	last := tl.Last()
	assert.Equal(t, model.StateHidden, last.State)
	assert.False(t, last.Active)
	assert.Equal(t, 0.0, last.Scale)

	// 5 entering frames, 2 held, 5 exiting, plus the two samples taken on
	// show and hide.
	assert.Len(t, tl.Samples, 14)

	var states []model.PopupState
	for _, ev := range tl.Events {
		states = append(states, ev.To)
	}
	assert.Equal(t, []model.PopupState{
		model.StateEntering, model.StateShown, model.StateExiting, model.StateHidden,
	}, states)
}

func TestSimulate_SurfaceActiveUntilExitCompletes(t *testing.T) {
	tl, err := Simulate(config.DemoConfig(), "news", Options{FPS: 20})
	require.NoError(t, err)

	for _, s := range tl.Samples[:len(tl.Samples)-1] {
		assert.True(t, s.Active, "frame %d", s.Frame)
	}
	assert.False(t, tl.Last().Active)
	assert.Equal(t, 0.0, tl.Last().Opacity)
}

func TestSimulate_SlideReturnsToRest(t *testing.T) {
	cfg := config.DemoConfig()
	tl, err := Simulate(cfg, "alert", Options{FPS: 30})
	require.NoError(t, err)

	var shown Sample
	for _, s := range tl.Samples {
		if s.State == model.StateShown {
			shown = s
			break
		}
	}
	assert.Equal(t, 4.0, shown.Y)
	assert.Equal(t, -9.0, tl.Samples[0].Y)
	assert.Equal(t, -9.0, tl.Last().Y)
}

func TestSimulate_PrefixLookup(t *testing.T) {
	tl, err := Simulate(config.DemoConfig(), "rew", Options{})
	require.NoError(t, err)
	assert.Equal(t, "reward", tl.Popup)
	assert.Equal(t, DefaultFPS, tl.FPS)
	assert.Equal(t, 180.0, tl.Samples[0].Rotation)
}

func TestSimulate_UnknownPopup(t *testing.T) {
	_, err := Simulate(config.DemoConfig(), "nope", Options{})
	assert.ErrorIs(t, err, popup.ErrUnknownPopup)
}

func TestVisibleFor(t *testing.T) {
	tl := &Timeline{Samples: []Sample{
		{Time: 0, Active: true},
		{Time: 100 * time.Millisecond, Active: true},
		{Time: 200 * time.Millisecond, Active: false},
	}}
	assert.Equal(t, 100*time.Millisecond, tl.VisibleFor())
	assert.Equal(t, time.Duration(0), (&Timeline{}).VisibleFor())
}

func TestSimulate_RejectsExcessiveFPS(t *testing.T) {
	_, err := Simulate(config.DemoConfig(), "settings", Options{FPS: 2_000_000_000})
	assert.ErrorIs(t, err, ErrInvalidFPS)

	tl, err := Simulate(config.DemoConfig(), "settings", Options{FPS: MaxFPS, Hold: 0})
	require.NoError(t, err)
	assert.Equal(t, model.StateHidden, tl.Last().State)
}
