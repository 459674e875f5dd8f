// Package ui provides the visual styling for the kitman console.
// Amber-on-dark by default, with a light variant for pale terminals.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Dark mode colors (default)
	DarkBackground = lipgloss.Color("#14181E")
	DarkForeground = lipgloss.Color("#E8E4D9")
	DarkPrimary    = lipgloss.Color("#FFB454") // Amber
	DarkAccent     = lipgloss.Color("#5CCFE6") // Cyan
	DarkSecondary  = lipgloss.Color("#1F2630")
	DarkMuted      = lipgloss.Color("#5C6773")
	DarkBorder     = lipgloss.Color("#2D3640")
	DarkCard       = lipgloss.Color("#1A2028")

	// Light mode colors
	LightBackground = lipgloss.Color("#FAFAF7")
	LightForeground = lipgloss.Color("#2A2F38")
	LightPrimary    = lipgloss.Color("#B36B00") // Amber, darkened for contrast
	LightAccent     = lipgloss.Color("#007A99") // Teal
	LightSecondary  = lipgloss.Color("#ECEDE8")
	LightMuted      = lipgloss.Color("#8A9199")
	LightBorder     = lipgloss.Color("#D9DBD5")
	LightCard       = lipgloss.Color("#FFFFFF")

	// Semantic colors (same in both modes)
	Success     = lipgloss.Color("#7FD962")
	Destructive = lipgloss.Color("#F07178")
	Warning     = lipgloss.Color("#FFCC66")
	Info        = lipgloss.Color("#59C2FF")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// ThemeFromName maps a configured theme name to a Theme. Unknown names get
// the dark theme; config validation rejects them before this is reached.
func ThemeFromName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header    lipgloss.Style
	Footer    lipgloss.Style
	StatusBar lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// List
	Selected lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Panes
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style

	// Components
	Badge   lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		// Layout styles
		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Padding(0, 2),

		// Text styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		// List styles
		Selected: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Primary).
			Bold(true),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		// Pane styles
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		// Component styles
		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the default (dark) theme
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
