package theme

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popctl/internal/model"
)

func TestGetEmbeddedTheme(t *testing.T) {
	css, found := GetEmbeddedTheme("default")
	require.True(t, found)
	assert.Contains(t, css, ".popup-card")
	assert.Contains(t, css, "@window_bg_color")

	_, found = GetEmbeddedTheme("nonexistent")
	assert.False(t, found)
}

func TestListEmbeddedThemes(t *testing.T) {
	assert.Equal(t, []string{"default", "minimal"}, ListEmbeddedThemes())
}

func TestResolve_BundledWithPartial(t *testing.T) {
	th := Resolve("minimal", "", nil)
	assert.Equal(t, "minimal", th.Name)
	assert.True(t, th.Bundled)
	assert.Contains(t, th.CSS, "/* imported (bundled): _base.css */")
	assert.NotContains(t, th.CSS, "@import")
}

func TestResolve_UserOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.css"), []byte(`.popup-card { color: red; }`), 0644))

	th := Resolve("default", dir, nil)
	assert.False(t, th.Bundled)
	assert.Equal(t, filepath.Join(dir, "default.css"), th.Path)
	assert.Contains(t, th.CSS, "color: red")
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	th := Resolve("nope", t.TempDir(), nil)
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.Contains(t, th.CSS, ".popup-scrim")

	th = Resolve("_base", "", nil)
	assert.Equal(t, DefaultThemeName, th.Name, "partials are not themes")
}

func TestProcessImports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_a.css"), []byte(`@import "_b.css"; .a {}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_b.css"), []byte(`@import "_a.css"; .b {}`), 0644))

	out := ProcessImports(`@import "_a.css"; .main {}`, dir, nil)
	assert.Contains(t, out, ".a {}")
	assert.Contains(t, out, ".b {}")
	assert.Contains(t, out, "circular import skipped")

	out = ProcessImports(`@import url("missing.css");`, dir, nil)
	assert.Contains(t, out, "import not found: missing.css")
}

func TestSurfaceID(t *testing.T) {
	assert.Equal(t, "popup-settings", SurfaceID("settings"))
	assert.Equal(t, "popup-my-popup-1", SurfaceID("My Popup.1"))
}

func TestTransformCSS(t *testing.T) {
	tr := model.IdentityTransform()
	tr.Position = model.Vec3{X: 10, Y: -2}
	tr.Scale = model.Uniform(0.5)
	tr.Rotation.Z = 90

	css := TransformCSS("popup-a", tr, model.Vec3{X: 10, Y: 4}, 8)
	assert.Equal(t,
		"#popup-a { transform: translate(0.00px, -48.00px) scale(0.5000, 0.5000) rotate(90.00deg); }\n",
		css)
}

func TestWatcher_ReportsStylesheetChanges(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "default.css")
	require.NoError(t, os.WriteFile(css, []byte(".popup-card { color: red; }"), 0644))

	w := NewWatcher(dir, nil)
	w.SetDebounce(10 * time.Millisecond)
	assert.Equal(t, dir, w.Dir())

	var changes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes.Add(1) })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(css, []byte(".popup-card { color: blue; }"), 0644)
		return changes.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	// Non-stylesheet files are ignored.
	time.Sleep(100 * time.Millisecond)
	before := changes.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, changes.Load())

	// The reload picks up the edited user theme.
	th := Resolve("default", dir, nil)
	assert.False(t, th.Bundled)
	assert.Contains(t, th.CSS, "blue")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, w.Run(context.Background(), nil))
}
