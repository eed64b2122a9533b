package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmylchreest/popctl/internal/model"
)

// importRegex matches @import "file.css"; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string
	Bundled bool
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "popctl", "themes"), nil
}

// Resolve finds a theme by name: userDir (may be empty) wins over the
// bundled themes, and an unknown name falls back to the default theme.
func Resolve(name, userDir string, logger *slog.Logger) *Theme {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultThemeName
	}

	if userDir != "" {
		path := filepath.Join(userDir, name+".css")
		if data, err := os.ReadFile(path); err == nil {
			logger.Debug("loaded user theme", "name", name, "path", path)
			return &Theme{
				Name: name,
				Path: path,
				CSS:  ProcessImports(string(data), userDir, nil),
			}
		}
	}

	if css, ok := GetEmbeddedTheme(name); ok && !strings.HasPrefix(name, "_") {
		return &Theme{Name: name, CSS: ProcessImports(css, "", nil), Bundled: true}
	}

	logger.Warn("theme not found, using default", "theme", name)
	css, _ := GetEmbeddedTheme(DefaultThemeName)
	return &Theme{Name: DefaultThemeName, CSS: css, Bundled: true}
}

// ProcessImports inlines @import statements. Relative imports resolve
// against baseDir, then against the bundled themes and partials. seen
// guards against import cycles.
func ProcessImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		sub := importRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		importPath := sub[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) && baseDir != "" {
			fullPath = filepath.Join(baseDir, importPath)
		}
		if seen[fullPath] {
			return "/* circular import skipped: " + importPath + " */"
		}
		seen[fullPath] = true

		if data, err := os.ReadFile(fullPath); err == nil {
			return "/* imported: " + importPath + " */\n" + ProcessImports(string(data), filepath.Dir(fullPath), seen)
		}
		if embedded, ok := GetEmbeddedTheme(filepath.Base(importPath)); ok {
			return "/* imported (bundled): " + importPath + " */\n" + ProcessImports(embedded, "", seen)
		}
		return "/* import not found: " + importPath + " */"
	})
}

// SurfaceID returns the CSS id used for a popup's card widget.
func SurfaceID(popup string) string {
	var b strings.Builder
	b.WriteString("popup-")
	for _, r := range strings.ToLower(popup) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// TransformCSS renders the CSS rule that places a popup card according to
// t. offset is the card's resting position; the rule translates by the
// difference so the layout position stays untouched. unit is the pixel size
// of one scene unit.
func TransformCSS(id string, t model.Transform, offset model.Vec3, unit float64) string {
	dx := (t.Position.X - offset.X) * unit
	dy := (t.Position.Y - offset.Y) * unit
	return fmt.Sprintf("#%s { transform: translate(%.2fpx, %.2fpx) scale(%.4f, %.4f) rotate(%.2fdeg); }\n",
		id, dx, dy, t.Scale.X, t.Scale.Y, t.Rotation.Z)
}
