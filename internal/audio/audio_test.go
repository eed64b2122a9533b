package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/model"
)

type fakeSink struct {
	played    []string
	preloaded []string
	err       error
}

func (s *fakeSink) Play(path string) error {
	s.played = append(s.played, path)
	return s.err
}

func (s *fakeSink) Preload(path string) error {
	s.preloaded = append(s.preloaded, path)
	return nil
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))
	return path
}

func TestManager_PlaysCuesOnTransitions(t *testing.T) {
	dir := t.TempDir()
	open := touch(t, dir, "open.wav")
	closeSound := touch(t, dir, "close.wav")

	sink := &fakeSink{}
	m := NewManager(sink, true, nil)
	m.Load([]model.PopupDefinition{
		{Name: "card", OpenSound: open, CloseSound: closeSound},
		{Name: "quiet"},
	})
	assert.Equal(t, []string{open, closeSound}, sink.preloaded)

	for _, to := range []model.PopupState{model.StateEntering, model.StateShown, model.StateExiting, model.StateHidden} {
		m.HandleEvent(model.Event{Popup: "card", To: to})
	}
	m.HandleEvent(model.Event{Popup: "quiet", To: model.StateEntering})

	assert.Equal(t, []string{open, closeSound}, sink.played)

	_, ok := m.Cues("quiet")
	assert.False(t, ok)
}

func TestManager_Disabled(t *testing.T) {
	dir := t.TempDir()
	open := touch(t, dir, "open.wav")

	sink := &fakeSink{}
	m := NewManager(sink, false, nil)
	m.Load([]model.PopupDefinition{{Name: "card", OpenSound: open}})
	assert.Empty(t, sink.preloaded)

	m.HandleEvent(model.Event{Popup: "card", To: model.StateEntering})
	assert.Empty(t, sink.played)

	m.SetEnabled(true)
	m.HandleEvent(model.Event{Popup: "card", To: model.StateEntering})
	assert.Equal(t, []string{open}, sink.played)
}

func TestManager_MissingFilesSkipped(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(sink, true, nil)
	m.Load([]model.PopupDefinition{{Name: "card", OpenSound: "/nonexistent/open.wav"}})

	_, ok := m.Cues("card")
	assert.False(t, ok)
	m.HandleEvent(model.Event{Popup: "card", To: model.StateEntering})
	assert.Empty(t, sink.played)
}

func TestManager_PlayErrorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	open := touch(t, dir, "open.wav")

	sink := &fakeSink{err: errors.New("no device")}
	m := NewManager(sink, true, nil)
	m.Load([]model.PopupDefinition{{Name: "card", OpenSound: open}})

	assert.NotPanics(t, func() {
		m.HandleEvent(model.Event{Popup: "card", To: model.StateEntering})
	})
	assert.Len(t, sink.played, 1)
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(nil)
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
	p.SetVolume(0.5)
	assert.Equal(t, 0.5, p.Volume())
}

func TestPlayer_RejectsUnknownFormat(t *testing.T) {
	p := NewPlayer(nil)
	path := touch(t, t.TempDir(), "cue.flac")

	err := p.Play(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
	assert.False(t, p.Cached(path))
	assert.NoError(t, p.Play(""))
}

func TestVolumeToDecibels(t *testing.T) {
	assert.Equal(t, -100.0, volumeToDecibels(0))
	assert.InDelta(t, 0, volumeToDecibels(1), 1e-9)
	assert.InDelta(t, -6.0206, volumeToDecibels(0.5), 1e-3)
}
