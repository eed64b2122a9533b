package scene

import (
	"fmt"

	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
)

// FromConfig builds the scene the configuration declares and resolves its
// popups into definitions. References that do not resolve are left nil, so
// the controller reports and skips popups missing a trigger or surface.
func FromConfig(cfg *config.Config) (*Scene, []model.PopupDefinition, error) {
	s := New(cfg.Viewport.Width, cfg.Viewport.Height)

	for _, c := range cfg.Controls {
		if err := s.AddButton(NewButton(c.Name, c.Label, c.Key)); err != nil {
			return nil, nil, err
		}
	}
	for _, sc := range cfg.Surfaces {
		n := NewNode(sc.Name, sc.X, sc.Y, sc.Width, sc.Height)
		n.Title = sc.Title
		n.Body = sc.Body
		if err := s.AddNode(n); err != nil {
			return nil, nil, err
		}
	}

	defs := make([]model.PopupDefinition, 0, len(cfg.Popups))
	for i, p := range cfg.Popups {
		anim, err := p.AnimationType()
		if err != nil {
			return nil, nil, fmt.Errorf("popup %d: %w", i, err)
		}
		openSound, closeSound := cfg.SoundsFor(p)
		defs = append(defs, model.PopupDefinition{
			Name:            p.Name,
			Trigger:         s.control(p.Trigger),
			Surface:         s.surface(p.Surface),
			Close:           s.control(p.Close),
			BackgroundClose: s.control(p.BackgroundClose),
			Animation:       anim,
			Duration:        p.AnimationDuration(),
			OpenSound:       openSound,
			CloseSound:      closeSound,
		})
	}

	return s, defs, nil
}

// control returns the named button as a model.Control, or a nil interface.
func (s *Scene) control(name string) model.Control {
	if b, ok := s.buttons[name]; ok {
		return b
	}
	return nil
}

// surface returns the named node as a model.Surface, or a nil interface.
func (s *Scene) surface(name string) model.Surface {
	if n, ok := s.nodes[name]; ok {
		return n
	}
	return nil
}
