package tui

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/popctl/internal/scene"
)

// Palette used to fade cards in and out.
var (
	stageColor  = colorful.MustParseHex("#1e1e2e")
	textColor   = colorful.MustParseHex("#cdd6f4")
	borderColor = colorful.MustParseHex("#89b4fa")
	scrimColor  = colorful.MustParseHex("#45475a")
)

const closeMark = "[x]"

// rect is a cell rectangle on the stage.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// cardLayout is where a card lands on the stage this frame.
type cardLayout struct {
	rect      rect
	closeMark rect
	hasClose  bool
	flipped   bool // rotated past a quarter turn, drawn upside down
}

// layoutCard places n on the stage. The card scales about its centre and
// follows the node's animated position. It returns false when the card has
// shrunk below one cell.
func layoutCard(n *scene.Node, withClose bool) (cardLayout, bool) {
	t := n.Transform()
	w := int(math.Round(n.Width * t.Scale.X))
	h := int(math.Round(n.Height * t.Scale.Y))
	if w < 1 || h < 1 {
		return cardLayout{}, false
	}

	cx := t.Position.X + n.Width/2
	cy := t.Position.Y + n.Height/2
	l := cardLayout{
		rect: rect{
			x: int(math.Round(cx - float64(w)/2)),
			y: int(math.Round(cy - float64(h)/2)),
			w: w,
			h: h,
		},
		flipped: math.Cos(t.Rotation.Z*math.Pi/180) < 0,
	}

	if withClose && w >= len(closeMark)+2 && h >= 3 {
		l.hasClose = true
		mark := rect{x: l.rect.x + w - 1 - len(closeMark), y: l.rect.y, w: len(closeMark), h: 1}
		if l.flipped {
			mark = rect{x: l.rect.x + 1, y: l.rect.y + h - 1, w: len(closeMark), h: 1}
		}
		l.closeMark = mark
	}
	return l, true
}

// cardLines renders the card's box: a titled top border with an optional
// close mark, the body and a bottom border. Every line is exactly w cells.
func cardLines(l cardLayout, title string, body []string) []string {
	w, h := l.rect.w, l.rect.h
	if w < 4 || h < 3 {
		lines := make([]string, h)
		for i := range lines {
			lines[i] = strings.Repeat("▒", w)
		}
		return lines
	}

	inner := w - 2
	top := []rune(strings.Repeat("─", inner))
	avail := inner - 3
	if l.hasClose {
		avail -= len(closeMark)
	}
	if title != "" && avail > 0 {
		copy(top[1:], []rune(" "+runewidth.Truncate(title, avail, "…")+" "))
	}
	if l.hasClose {
		copy(top[inner-len(closeMark):], []rune(closeMark))
	}

	lines := make([]string, 0, h)
	lines = append(lines, "┌"+string(top)+"┐")
	for i := 0; i < h-2; i++ {
		var text string
		if i < len(body) {
			text = body[i]
		}
		lines = append(lines, "│ "+fit(text, inner-2)+" │")
	}
	lines = append(lines, "└"+strings.Repeat("─", inner)+"┘")

	if l.flipped {
		lines = rotate180(lines)
	}
	return lines
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

var rotatedGlyphs = map[rune]rune{
	'┌': '┘', '┘': '┌',
	'┐': '└', '└': '┐',
	'[': ']', ']': '[',
	'(': ')', ')': '(',
}

// rotate180 turns a block of lines upside down.
func rotate180(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		runes := []rune(line)
		for a, b := 0, len(runes)-1; a < b; a, b = a+1, b-1 {
			runes[a], runes[b] = runes[b], runes[a]
		}
		for j, r := range runes {
			if m, ok := rotatedGlyphs[r]; ok {
				runes[j] = m
			}
		}
		out[len(lines)-1-i] = string(runes)
	}
	return out
}

// fade blends c towards the stage colour; opacity 0 is invisible.
func fade(c colorful.Color, opacity float64) string {
	opacity = math.Max(0, math.Min(1, opacity))
	return stageColor.BlendLab(c, opacity).Clamped().Hex()
}

// cell is one terminal cell. A zero rune marks the second half of a wide
// character.
type cell struct {
	r  rune
	fg string
}

// canvas is the stage as a grid of cells.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

// put writes s starting at (x, y), clipping to the canvas.
func (c *canvas) put(x, y int, s, fg string) {
	if y < 0 || y >= c.h {
		return
	}
	row := c.cells[y]
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x >= 0 && x+rw <= c.w {
			row[x] = cell{r: r, fg: fg}
			for i := 1; i < rw; i++ {
				row[x+i] = cell{fg: fg}
			}
		}
		x += rw
	}
}

// fill sets every cell to r.
func (c *canvas) fill(r rune, fg string) {
	for _, row := range c.cells {
		for x := range row {
			row[x] = cell{r: r, fg: fg}
		}
	}
}

// String renders the canvas, colouring runs of cells that share a
// foreground when color is set.
func (c *canvas) String(color bool) string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runFg := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if color && runFg != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runFg)).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, cl := range row {
			if cl.r == 0 {
				continue
			}
			if cl.fg != runFg {
				flush()
				runFg = cl.fg
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

// drawStage paints the popups of h onto a w×h canvas.
func drawStage(h *host, md *markdownRenderer, w, ht int) *canvas {
	cv := newCanvas(w, ht)

	for _, c := range h.cards {
		if c.background != nil && c.node.Visible() && h.open(c) {
			cv.fill('·', fade(scrimColor, c.node.Opacity()*0.6))
			break
		}
	}

	for _, c := range h.cards {
		n := c.node
		if !n.Visible() {
			continue
		}
		l, ok := layoutCard(n, c.close != nil)
		if !ok {
			continue
		}
		body := md.Lines(n.Body, l.rect.w-4)
		lines := cardLines(l, n.Title, body)
		textFg := fade(textColor, n.Opacity())
		edgeFg := fade(borderColor, n.Opacity())
		for i, line := range lines {
			fg := textFg
			if i == 0 || i == len(lines)-1 {
				fg = edgeFg
			}
			cv.put(l.rect.x, l.rect.y+i, line, fg)
		}
	}
	return cv
}

// markdownRenderer renders popup bodies to plain wrapped lines, caching by
// content and width.
type markdownRenderer struct {
	cache map[string][]string
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{cache: make(map[string][]string)}
}

// Lines returns md rendered at width cells, one entry per line.
func (r *markdownRenderer) Lines(md string, width int) []string {
	if md == "" || width < 1 {
		return nil
	}

	key := cacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	lines := r.render(md, width)
	r.cache[key] = lines
	return lines
}

func (r *markdownRenderer) render(md string, width int) []string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	var out string
	if err == nil {
		out, err = renderer.Render(md)
	}
	if err != nil {
		out = md
	}

	var lines []string
	for _, line := range strings.Split(strings.Trim(out, "\n"), "\n") {
		line = strings.TrimRight(line, " ")
		if len(lines) == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimPrefix(line, "  "))
	}
	return lines
}

func cacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}
