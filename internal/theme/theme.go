// Package theme holds the dark and light palettes of the browser.
package theme

import "github.com/charmbracelet/lipgloss"

const (
	Dark  = "dark"
	Light = "light"
)

// Palette names the colors a theme is built from.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Foreground lipgloss.Color
	Dim        lipgloss.Color
	Accent     lipgloss.Color
	Green      lipgloss.Color
	Orange     lipgloss.Color
	Red        lipgloss.Color
	Border     lipgloss.Color
	Selected   lipgloss.Color
	Cursor     lipgloss.Color
}

var (
	darkPalette = Palette{
		Background: "#0E121B",
		Surface:    "#1D2535",
		Foreground: "#E6EDF7",
		Dim:        "#8A93A6",
		Accent:     "#329AF0",
		Green:      "#37B24D",
		Orange:     "#F59F00",
		Red:        "#F03E3E",
		Border:     "#2B3750",
		Selected:   "#1C3A5E",
		Cursor:     "#2E323F",
	}
	lightPalette = Palette{
		Background: "#FFFFFF",
		Surface:    "#F5F5F5",
		Foreground: "#0E121B",
		Dim:        "#6B7280",
		Accent:     "#1862AB",
		Green:      "#2B8A3E",
		Orange:     "#E67700",
		Red:        "#C92A2A",
		Border:     "#DEE2E6",
		Selected:   "#D0E4F7",
		Cursor:     "#E9ECEF",
	}
)

// Styles are the rendered styles of one theme.
type Styles struct {
	Name    string
	Palette Palette

	Title        lipgloss.Style
	Dim          lipgloss.Style
	Header       lipgloss.Style
	HeaderSorted lipgloss.Style
	HeaderFocus  lipgloss.Style
	Row          lipgloss.Style
	Cursor       lipgloss.Style
	Selected     lipgloss.Style
	Deprecated   lipgloss.Style
	Yes          lipgloss.Style
	Pill         lipgloss.Style
	Suggestion   lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	ScrollTrack  lipgloss.Style
	ScrollThumb  lipgloss.Style

	Overlay   lipgloss.Style
	CardTitle lipgloss.Style
	Card      lipgloss.Style
	Best      lipgloss.Style
	BadgeOK   lipgloss.Style
	BadgeWarn lipgloss.Style
	BadgeBad  lipgloss.Style
	BadgeDim  lipgloss.Style
}

// For returns the styles of the named theme; unknown names get dark.
func For(name string) Styles {
	p := darkPalette
	if name == Light {
		p = lightPalette
	} else {
		name = Dark
	}
	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return Styles{
		Name:         name,
		Palette:      p,
		Title:        lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Dim:          lipgloss.NewStyle().Foreground(p.Dim),
		Header:       lipgloss.NewStyle().Foreground(p.Dim).Bold(true),
		HeaderSorted: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		HeaderFocus:  lipgloss.NewStyle().Foreground(p.Foreground).Bold(true).Underline(true),
		Row:          lipgloss.NewStyle().Foreground(p.Foreground),
		Cursor:       lipgloss.NewStyle().Foreground(p.Foreground).Background(p.Cursor),
		Selected:     lipgloss.NewStyle().Foreground(p.Foreground).Background(p.Selected),
		Deprecated:   lipgloss.NewStyle().Foreground(p.Dim).Strikethrough(true),
		Yes:          lipgloss.NewStyle().Foreground(p.Green),
		Pill:         lipgloss.NewStyle().Foreground(p.Background).Background(p.Accent).Padding(0, 1),
		Suggestion:   lipgloss.NewStyle().Foreground(p.Accent),
		Status:       lipgloss.NewStyle().Foreground(p.Dim).Background(p.Surface).Padding(0, 1),
		Error:        lipgloss.NewStyle().Foreground(p.Red).Bold(true).Padding(1, 2),
		ScrollTrack:  lipgloss.NewStyle().Foreground(p.Border),
		ScrollThumb:  lipgloss.NewStyle().Foreground(p.Accent),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),
		CardTitle: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Best:      lipgloss.NewStyle().Foreground(p.Green).Bold(true),
		BadgeOK:   badge.Foreground(p.Background).Background(p.Green),
		BadgeWarn: badge.Foreground(p.Background).Background(p.Orange),
		BadgeBad:  badge.Foreground(p.Background).Background(p.Red),
		BadgeDim:  badge.Foreground(p.Foreground).Background(p.Border),
	}
}

// Resolve picks the stored preference when valid and otherwise follows the
// terminal background.
func Resolve(pref string, darkBackground func() bool) string {
	switch pref {
	case Dark, Light:
		return pref
	}
	if darkBackground == nil {
		darkBackground = lipgloss.HasDarkBackground
	}
	if darkBackground() {
		return Dark
	}
	return Light
}

// Toggle returns the other theme.
func Toggle(name string) string {
	if name == Dark {
		return Light
	}
	return Dark
}

// Glyph is the toggle icon: a sun offers light while dark is active.
func Glyph(name string) string {
	if name == Light {
		return "◑"
	}
	return "☀"
}
