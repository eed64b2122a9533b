package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/popctl/internal/model"
)

// Sink plays a sound file.
type Sink interface {
	Play(path string) error
}

// Preloader is implemented by sinks that can decode sounds ahead of use.
type Preloader interface {
	Preload(path string) error
}

// Cues are the sounds of one popup.
type Cues struct {
	Open  string
	Close string
}

// Manager plays popup sound cues in response to controller transitions.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sink    Sink
	enabled bool
	cues    map[string]Cues
}

// NewManager creates a manager that plays through sink.
func NewManager(sink Sink, enabled bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger,
		sink:    sink,
		enabled: enabled,
		cues:    make(map[string]Cues),
	}
}

// Load replaces the cue table with the sounds of defs. Missing files are
// logged and skipped; existing ones are preloaded when the sink supports it.
func (m *Manager) Load(defs []model.PopupDefinition) {
	cues := make(map[string]Cues, len(defs))
	for _, d := range defs {
		c := Cues{
			Open:  m.checkSound(d.Name, d.OpenSound),
			Close: m.checkSound(d.Name, d.CloseSound),
		}
		if c.Open != "" || c.Close != "" {
			cues[d.Name] = c
		}
	}

	m.mu.Lock()
	m.cues = cues
	m.mu.Unlock()

	m.logger.Debug("sound cues loaded", "popups", len(cues))
}

func (m *Manager) checkSound(popup, path string) string {
	if path == "" {
		return ""
	}
	path = expandPath(path)
	if _, err := os.Stat(path); err != nil {
		m.logger.Warn("sound file not found", "popup", popup, "path", path)
		return ""
	}
	if p, ok := m.sink.(Preloader); ok && m.enabled {
		if err := p.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "popup", popup, "path", path, "error", err)
		}
	}
	return path
}

// Cues returns the sounds configured for popup.
func (m *Manager) Cues(popup string) (Cues, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cues[popup]
	return c, ok
}

// SetEnabled turns playback on or off.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// HandleEvent plays the open cue when a popup starts entering and the
// close cue when it starts exiting. It has the signature of a controller
// listener.
func (m *Manager) HandleEvent(ev model.Event) {
	m.mu.RLock()
	enabled := m.enabled
	c, ok := m.cues[ev.Popup]
	m.mu.RUnlock()

	if !enabled || !ok {
		return
	}

	var path string
	switch ev.To {
	case model.StateEntering:
		path = c.Open
	case model.StateExiting:
		path = c.Close
	}
	if path == "" {
		return
	}

	if err := m.sink.Play(path); err != nil {
		m.logger.Warn("failed to play sound", "popup", ev.Popup, "path", path, "error", err)
	}
}
