// Package preview turns parsed announcement markup into styled terminal
// output. It has two consumers: the list surface, which clamps a render down
// to a row budget, and the live surface beside the editor, which shows the
// full render. Both reuse the same flattened runs; clamping happens here,
// never inside the renderer.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kitman/internal/markup"
)

// Styled renders runs with terminal styling. Hex colors pass straight
// through to lipgloss; named tokens the palette does not know are handed to
// the terminal layer as-is, best effort.
func Styled(runs []markup.Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if r.Plain() {
			b.WriteString(r.Text)
			continue
		}
		st := lipgloss.NewStyle()
		if r.Color != "" {
			st = st.Foreground(lipgloss.Color(r.Color))
		}
		if r.Bold {
			st = st.Bold(true)
		}
		if r.Italic {
			st = st.Italic(true)
		}
		b.WriteString(st.Render(r.Text))
	}
	return b.String()
}

// Plain renders runs without any styling, content only. Used for non-ANSI
// output targets.
func Plain(runs []markup.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Live renders the full, unclamped preview shown beside the editor.
func Live(nodes []markup.Node) string {
	return Styled(markup.Flatten(nodes))
}

// Snippet renders the list-row form of a parse: clamped to a line and width
// budget, then styled.
func Snippet(nodes []markup.Node, lines, width int) string {
	clamped := Clamp(markup.Flatten(nodes), lines, width)
	parts := make([]string, len(clamped))
	for i, line := range clamped {
		parts[i] = Styled(line)
	}
	return strings.Join(parts, "\n")
}
