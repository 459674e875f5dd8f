package preview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Black text above this Lab lightness, white below.
const swatchLightnessCutoff = 0.65

// Swatch renders value as a colored chip with the value printed inside it.
// Non-hex values still get a chip; the terminal decides what to do with the
// background color.
func Swatch(value string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(value)).
		Foreground(lipgloss.Color(contrastFg(value))).
		Render(" " + value + " ")
}

// contrastFg picks a readable text color for a chip with the given
// background. Values go-colorful cannot parse fall back to white.
func contrastFg(value string) string {
	c, err := colorful.Hex(value)
	if err != nil {
		return "#FFFFFF"
	}
	l, _, _ := c.Lab()
	if l > swatchLightnessCutoff {
		return "#000000"
	}
	return "#FFFFFF"
}
