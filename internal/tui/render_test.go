package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/scene"
)

func TestLayoutCard(t *testing.T) {
	n := scene.NewNode("a", 10, 4, 40, 14)

	l, ok := layoutCard(n, true)
	require.True(t, ok)
	assert.Equal(t, rect{x: 10, y: 4, w: 40, h: 14}, l.rect)
	assert.True(t, l.hasClose)
	assert.Equal(t, rect{x: 46, y: 4, w: 3, h: 1}, l.closeMark)
	assert.False(t, l.flipped)

	tr := n.Transform()
	tr.Scale.X, tr.Scale.Y = 0.5, 0.5
	n.SetTransform(tr)
	l, ok = layoutCard(n, false)
	require.True(t, ok)
	assert.Equal(t, rect{x: 20, y: 8, w: 20, h: 7}, l.rect, "scales about the centre")
	assert.False(t, l.hasClose)

	tr.Scale.X, tr.Scale.Y = 0.01, 0.01
	n.SetTransform(tr)
	_, ok = layoutCard(n, true)
	assert.False(t, ok)
}

func TestLayoutCard_Flipped(t *testing.T) {
	n := scene.NewNode("a", 0, 0, 8, 3)
	tr := n.Transform()
	tr.Rotation.Z = 180
	n.SetTransform(tr)

	l, ok := layoutCard(n, true)
	require.True(t, ok)
	assert.True(t, l.flipped)
	assert.Equal(t, rect{x: 1, y: 2, w: 3, h: 1}, l.closeMark)

	tr.Rotation.Z = 60
	n.SetTransform(tr)
	l, _ = layoutCard(n, true)
	assert.False(t, l.flipped)
}

func TestCardLines(t *testing.T) {
	l := cardLayout{rect: rect{w: 16, h: 4}, hasClose: true}
	lines := cardLines(l, "Title", []string{"hello"})

	assert.Equal(t, []string{
		"┌─ Title " + strings.Repeat("─", 3) + "[x]┐",
		"│ hello" + strings.Repeat(" ", 8) + "│",
		"│" + strings.Repeat(" ", 14) + "│",
		"└" + strings.Repeat("─", 14) + "┘",
	}, lines)
}

func TestCardLines_Flipped(t *testing.T) {
	l := cardLayout{rect: rect{w: 8, h: 3}, hasClose: true, flipped: true}
	lines := cardLines(l, "", []string{"ab"})

	assert.Equal(t, []string{
		"┌" + strings.Repeat("─", 6) + "┐",
		"│   ba │",
		"└[x]" + strings.Repeat("─", 3) + "┘",
	}, lines)
}

func TestCardLines_Tiny(t *testing.T) {
	lines := cardLines(cardLayout{rect: rect{w: 3, h: 2}}, "Title", nil)
	assert.Equal(t, []string{"▒▒▒", "▒▒▒"}, lines)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, "", fit("abc", 0))
}

func TestCanvas(t *testing.T) {
	cv := newCanvas(6, 2)
	cv.put(-1, 0, "xabc", "")
	cv.put(4, 1, "日本", "")
	cv.put(0, 5, "ignored", "")

	assert.Equal(t, "abc   \n    日", cv.String(false))
}

func TestFade(t *testing.T) {
	assert.Equal(t, stageColor.Hex(), fade(textColor, 0))
	assert.Equal(t, textColor.Hex(), fade(textColor, 1))
	assert.Equal(t, textColor.Hex(), fade(textColor, 2), "clamped")
	assert.NotEqual(t, fade(textColor, 0.3), fade(textColor, 0.7))
}

func TestMarkdownRenderer(t *testing.T) {
	r := newMarkdownRenderer()

	lines := r.Lines("You earned **250 coins**.", 30)
	require.NotEmpty(t, lines)
	assert.Contains(t, strings.Join(lines, " "), "250 coins")

	again := r.Lines("You earned **250 coins**.", 30)
	assert.Equal(t, lines, again)
	assert.Len(t, r.cache, 1)

	long := r.Lines("one two three four five six seven eight nine ten", 12)
	assert.Greater(t, len(long), 1)

	assert.Nil(t, r.Lines("", 10))
	assert.Nil(t, r.Lines("text", 0))
}

func TestRotate180(t *testing.T) {
	assert.Equal(t, []string{"]b", "a["}, rotate180([]string{"]a", "b["}))
}
