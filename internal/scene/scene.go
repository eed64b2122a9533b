// Package scene provides an in-memory implementation of popup surfaces and
// controls, addressed by name.
//
// Hosts that draw the scene themselves (the terminal UI, the headless
// simulator) read node state every frame; the popup controller and tween
// engine write it.
package scene

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/popctl/internal/model"
)

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("duplicate scene element")

// Node is a rectangular surface. Position is the top-left corner in scene
// units; Y grows downwards.
type Node struct {
	Name   string
	Title  string
	Body   string // markdown
	Width  float64
	Height float64

	active    bool
	opacity   float64
	transform model.Transform
}

// NewNode creates an active, opaque node at (x, y).
func NewNode(name string, x, y, width, height float64) *Node {
	t := model.IdentityTransform()
	t.Position = model.Vec3{X: x, Y: y}
	return &Node{
		Name:      name,
		Width:     width,
		Height:    height,
		active:    true,
		opacity:   1,
		transform: t,
	}
}

func (n *Node) SetActive(active bool)          { n.active = active }
func (n *Node) Active() bool                   { return n.active }
func (n *Node) Opacity() float64               { return n.opacity }
func (n *Node) SetOpacity(v float64)           { n.opacity = v }
func (n *Node) Transform() model.Transform     { return n.transform }
func (n *Node) SetTransform(t model.Transform) { n.transform = t }

// Visible reports whether the node would draw anything.
func (n *Node) Visible() bool {
	return n.active && n.opacity > 0 && n.transform.Scale.X > 0
}

// Contains reports whether the point (x, y) lies within the node's
// unscaled bounds.
func (n *Node) Contains(x, y float64) bool {
	p := n.transform.Position
	return x >= p.X && x < p.X+n.Width && y >= p.Y && y < p.Y+n.Height
}

// Button is a clickable control.
type Button struct {
	Name  string
	Label string
	Key   string // keyboard shortcut, may be empty

	handlers []func()
}

// NewButton creates a button.
func NewButton(name, label, key string) *Button {
	if label == "" {
		label = name
	}
	return &Button{Name: name, Label: label, Key: key}
}

// OnClick registers fn to run on every click.
func (b *Button) OnClick(fn func()) {
	if fn != nil {
		b.handlers = append(b.handlers, fn)
	}
}

// Click runs the registered handlers in registration order.
func (b *Button) Click() {
	for _, fn := range b.handlers {
		fn()
	}
}

// Wired reports whether any handler is registered.
func (b *Button) Wired() bool {
	return len(b.handlers) > 0
}

// Scene is a named collection of nodes and buttons on a stage of a fixed
// size.
type Scene struct {
	Width  float64
	Height float64

	nodes       map[string]*Node
	buttons     map[string]*Button
	nodeOrder   []string
	buttonOrder []string
}

// New creates an empty scene.
func New(width, height float64) *Scene {
	return &Scene{
		Width:   width,
		Height:  height,
		nodes:   make(map[string]*Node),
		buttons: make(map[string]*Button),
	}
}

// AddNode registers n.
func (s *Scene) AddNode(n *Node) error {
	if _, exists := s.nodes[n.Name]; exists {
		return fmt.Errorf("%w: surface %q", ErrDuplicate, n.Name)
	}
	s.nodes[n.Name] = n
	s.nodeOrder = append(s.nodeOrder, n.Name)
	return nil
}

// AddButton registers b.
func (s *Scene) AddButton(b *Button) error {
	if _, exists := s.buttons[b.Name]; exists {
		return fmt.Errorf("%w: control %q", ErrDuplicate, b.Name)
	}
	s.buttons[b.Name] = b
	s.buttonOrder = append(s.buttonOrder, b.Name)
	return nil
}

// Node returns the named node.
func (s *Scene) Node(name string) (*Node, bool) {
	n, ok := s.nodes[name]
	return n, ok
}

// Button returns the named button.
func (s *Scene) Button(name string) (*Button, bool) {
	b, ok := s.buttons[name]
	return b, ok
}

// ButtonByKey returns the first button bound to key.
func (s *Scene) ButtonByKey(key string) (*Button, bool) {
	if key == "" {
		return nil, false
	}
	for _, name := range s.buttonOrder {
		if b := s.buttons[name]; b.Key == key {
			return b, true
		}
	}
	return nil, false
}

// Nodes returns every node in registration order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, name := range s.nodeOrder {
		out = append(out, s.nodes[name])
	}
	return out
}

// Buttons returns every button in registration order.
func (s *Scene) Buttons() []*Button {
	out := make([]*Button, 0, len(s.buttonOrder))
	for _, name := range s.buttonOrder {
		out = append(out, s.buttons[name])
	}
	return out
}

// OffscreenTop implements model.Viewport. A node is off screen once its
// bottom edge is at the top of the stage.
func (s *Scene) OffscreenTop(surface model.Surface) float64 {
	if n, ok := surface.(*Node); ok {
		return -n.Height
	}
	return -s.Height
}
