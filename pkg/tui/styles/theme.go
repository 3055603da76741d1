package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/quillhq/quill/pkg/paths"
)

// ThemeColors is the palette a theme provides. Every field is a hex color.
type ThemeColors struct {
	Background    string `yaml:"background"`
	BackgroundAlt string `yaml:"background_alt"`
	TextPrimary   string `yaml:"text_primary"`
	TextSecondary string `yaml:"text_secondary"`
	Muted         string `yaml:"muted"`
	Accent        string `yaml:"accent"`
	Border        string `yaml:"border"`
	Selection     string `yaml:"selection"`
	Link          string `yaml:"link"`
	Success       string `yaml:"success"`
	Error         string `yaml:"error"`
	Warning       string `yaml:"warning"`
}

// Theme is a named palette plus a dark-mode flag, which is passed down to
// the markdown image resolver.
type Theme struct {
	Name   string      `yaml:"name"`
	Dark   bool        `yaml:"dark"`
	Colors ThemeColors `yaml:"colors"`
}

// DefaultThemeRef is the theme used when the user config names none.
const DefaultThemeRef = "dark"

// DarkTheme is the built-in default palette.
func DarkTheme() *Theme {
	return &Theme{
		Name: "dark",
		Dark: true,
		Colors: ThemeColors{
			Background:    "#1A1B26",
			BackgroundAlt: "#24283B",
			TextPrimary:   "#C0CAF5",
			TextSecondary: "#9AA5CE",
			Muted:         "#565F89",
			Accent:        "#7AA2F7",
			Border:        "#414868",
			Selection:     "#364A82",
			Link:          "#7DCFFF",
			Success:       "#9ECE6A",
			Error:         "#F7768E",
			Warning:       "#E0AF68",
		},
	}
}

// LightTheme is the built-in light palette.
func LightTheme() *Theme {
	return &Theme{
		Name: "light",
		Dark: false,
		Colors: ThemeColors{
			Background:    "#FAFAFA",
			BackgroundAlt: "#ECECEC",
			TextPrimary:   "#343B58",
			TextSecondary: "#565A6E",
			Muted:         "#9699A3",
			Accent:        "#34548A",
			Border:        "#C4C8DA",
			Selection:     "#B6BFE2",
			Link:          "#166775",
			Success:       "#485E30",
			Error:         "#8C4351",
			Warning:       "#8F5E15",
		},
	}
}

// ThemesDir returns the directory user theme files live in.
func ThemesDir() string {
	return filepath.Join(paths.GetConfigDir(), "themes")
}

// ThemePath returns the file a user theme ref resolves to.
func ThemePath(ref string) string {
	return filepath.Join(ThemesDir(), ref+".yaml")
}

// LoadTheme resolves a theme reference: the built-in "dark" and "light"
// refs, or a user theme file under ThemesDir. User themes overlay the dark
// palette, so a partial file is fine.
func LoadTheme(ref string) (*Theme, error) {
	switch ref {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	}

	data, err := os.ReadFile(ThemePath(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %q: %w", ref, err)
	}

	theme := DarkTheme()
	if err := yaml.Unmarshal(data, theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme %q: %w", ref, err)
	}
	theme.Name = ref
	return theme, nil
}

var (
	themeMu sync.Mutex
	current *Theme
)

// CurrentTheme returns the active theme.
func CurrentTheme() *Theme {
	themeMu.Lock()
	defer themeMu.Unlock()
	return current
}

// ApplyTheme makes theme the active one and rebuilds the derived lipgloss
// styles. Call from the TUI goroutine; the derived styles are read without
// locking during rendering.
func ApplyTheme(theme *Theme) {
	themeMu.Lock()
	current = theme
	themeMu.Unlock()
	rebuildStyles(theme)
}

func init() {
	ApplyTheme(DarkTheme())
}
