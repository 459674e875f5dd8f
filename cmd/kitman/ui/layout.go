package ui

// Layout constants shared by the console pages.
const (
	// HeaderHeight is the number of rows the title bar consumes.
	HeaderHeight = 1

	// FooterHeight covers the status line and the key help line.
	FooterHeight = 2

	// MinimumTerminalWidth is the narrowest terminal the console lays out for.
	MinimumTerminalWidth = 60

	// SplitPaneLeftRatio is the editor's share of the edit page width.
	SplitPaneLeftRatio = 0.55
)

// SplitPaneWidths returns the left and right pane widths for a split layout.
func SplitPaneWidths(totalWidth int) (left, right int) {
	left = int(float64(totalWidth) * SplitPaneLeftRatio)
	right = totalWidth - left
	return left, right
}

// PageHeight returns the rows left for page content after chrome.
func PageHeight(totalHeight int) int {
	h := totalHeight - HeaderHeight - FooterHeight
	if h < 0 {
		return 0
	}
	return h
}
