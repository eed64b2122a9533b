package gtkhost

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/scene"
	"github.com/jmylchreest/popctl/internal/theme"
)

// Surface is a popup layer on the stage: a full-size scrim with the card
// overlaid at its configured position. Opacity and visibility apply to the
// whole layer; the transform applies to the card through a per-surface CSS
// provider.
type Surface struct {
	id     string
	height float64 // scene units

	layer    *gtk.Overlay
	scrim    *gtk.Button
	card     *gtk.Box
	provider *gtk.CSSProvider

	rest model.Vec3
	unit float64

	active    bool
	opacity   float64
	transform model.Transform
	applied   model.Transform
	dirty     bool
}

// newSurface builds the widgets for sc. closeBtn and background are the
// controls the card's close button and the scrim report clicks to; either
// may be nil.
func newSurface(sc *scene.Node, unit float64, closeBtn, background *scene.Button) *Surface {
	s := &Surface{
		id:        theme.SurfaceID(sc.Name),
		height:    sc.Height,
		rest:      sc.Transform().Position,
		unit:      unit,
		active:    true,
		opacity:   1,
		transform: sc.Transform(),
		provider:  gtk.NewCSSProvider(),
		dirty:     true,
	}

	s.scrim = gtk.NewButton()
	s.scrim.AddCSSClass("popup-scrim")
	s.scrim.SetHExpand(true)
	s.scrim.SetVExpand(true)
	if background != nil {
		s.scrim.ConnectClicked(background.Click)
	} else {
		s.scrim.SetCanTarget(false)
	}

	s.card = gtk.NewBox(gtk.OrientationVertical, 0)
	s.card.SetName(s.id)
	s.card.AddCSSClass("popup-card")
	s.card.SetHAlign(gtk.AlignStart)
	s.card.SetVAlign(gtk.AlignStart)
	s.card.SetMarginStart(int(sc.Transform().Position.X * unit))
	s.card.SetMarginTop(int(sc.Transform().Position.Y * unit))
	s.card.SetSizeRequest(int(sc.Width*unit), int(sc.Height*unit))

	header := gtk.NewBox(gtk.OrientationHorizontal, 8)
	title := gtk.NewLabel(sc.Title)
	title.AddCSSClass("popup-title")
	title.SetXAlign(0)
	title.SetHExpand(true)
	header.Append(title)
	if closeBtn != nil {
		btn := gtk.NewButtonWithLabel("✕")
		btn.AddCSSClass("popup-close")
		btn.AddCSSClass("flat")
		btn.ConnectClicked(closeBtn.Click)
		header.Append(btn)
	}
	s.card.Append(header)

	body := gtk.NewLabel(sc.Body)
	body.AddCSSClass("popup-body")
	body.SetWrap(true)
	body.SetXAlign(0)
	body.SetVAlign(gtk.AlignStart)
	s.card.Append(body)

	s.layer = gtk.NewOverlay()
	s.layer.SetChild(s.scrim)
	s.layer.AddOverlay(s.card)

	if display := gdk.DisplayGetDefault(); display != nil {
		gtk.StyleContextAddProviderForDisplay(display, s.provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
	}
	return s
}

// Widget returns the layer to add to the stage overlay.
func (s *Surface) Widget() gtk.Widgetter { return s.layer }

func (s *Surface) SetActive(active bool) {
	s.active = active
	s.layer.SetVisible(active)
}

func (s *Surface) Active() bool { return s.active }

func (s *Surface) Opacity() float64 { return s.opacity }

func (s *Surface) SetOpacity(v float64) {
	s.opacity = v
	s.layer.SetOpacity(v)
}

func (s *Surface) Transform() model.Transform { return s.transform }

// SetTransform records t; the CSS is regenerated on the next flush.
func (s *Surface) SetTransform(t model.Transform) {
	s.transform = t
	s.dirty = t != s.applied
}

// flush pushes a changed transform to the card's stylesheet. It runs once
// per frame so several property writes cost one CSS parse.
func (s *Surface) flush() {
	if !s.dirty {
		return
	}
	s.provider.LoadFromString(theme.TransformCSS(s.id, s.transform, s.rest, s.unit))
	s.applied = s.transform
	s.dirty = false
}

// detach removes the surface's stylesheet from the display.
func (s *Surface) detach() {
	if display := gdk.DisplayGetDefault(); display != nil {
		gtk.StyleContextRemoveProviderForDisplay(display, s.provider)
	}
}
