package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"kitman/internal/config"
	"kitman/internal/preview"
	"kitman/internal/types"
)

// ListPageModel is the announcement roster: one row per announcement with a
// styled single-line preview, scrollable, with mutation keys that resolve
// against the store through the app.
type ListPageModel struct {
	width  int
	height int

	announcements []types.Announcement
	cursor        int
	offset        int

	// pendingDelete holds the id awaiting y/n confirmation, or "".
	pendingDelete string

	cfg    *config.Config
	cache  *PreviewCache
	styles Styles
}

// NewListPageModel creates a new list page model.
func NewListPageModel(cfg *config.Config, cache *PreviewCache, styles Styles) ListPageModel {
	return ListPageModel{
		cfg:    cfg,
		cache:  cache,
		styles: styles,
	}
}

// Init initializes the list page model.
func (m ListPageModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the list page.
func (m ListPageModel) Update(msg tea.Msg) (ListPageModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// A pending delete swallows the next key: y confirms, anything else
	// cancels.
	if m.pendingDelete != "" {
		id := m.pendingDelete
		m.pendingDelete = ""
		if keyMsg.String() == "y" {
			return m, func() tea.Msg { return deleteRequestMsg{id: id} }
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case "down", "j":
		if m.cursor < len(m.announcements)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case "g", "home":
		m.cursor = 0
		m.ensureVisible()
	case "G", "end":
		if len(m.announcements) > 0 {
			m.cursor = len(m.announcements) - 1
			m.ensureVisible()
		}
	case "enter":
		if a, ok := m.Selected(); ok {
			return m, func() tea.Msg { return openEditMsg{announcement: a} }
		}
	case "n":
		return m, func() tea.Msg {
			return openEditMsg{announcement: types.NewAnnouncement("", types.DefaultCategory, nil), isNew: true}
		}
	case "e":
		if a, ok := m.Selected(); ok {
			return m, func() tea.Msg {
				return toggleRequestMsg{id: a.ID, enabled: !a.Enabled}
			}
		}
	case "d":
		if a, ok := m.Selected(); ok {
			m.pendingDelete = a.ID
		}
	case "r":
		return m, func() tea.Msg { return reloadRequestMsg{} }
	}

	return m, nil
}

// SetSize updates the page dimensions.
func (m *ListPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureVisible()
}

// UpdateContent replaces the announcement list.
func (m *ListPageModel) UpdateContent(announcements []types.Announcement) {
	m.announcements = announcements
	if m.cursor >= len(announcements) {
		m.cursor = len(announcements) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.pendingDelete = ""
	m.ensureVisible()
}

// Selected returns the announcement under the cursor.
func (m *ListPageModel) Selected() (types.Announcement, bool) {
	if m.cursor < 0 || m.cursor >= len(m.announcements) {
		return types.Announcement{}, false
	}
	return m.announcements[m.cursor], true
}

// Count returns how many announcements the page shows.
func (m *ListPageModel) Count() int {
	return len(m.announcements)
}

// visibleRows is the number of announcement rows that fit on screen.
func (m *ListPageModel) visibleRows() int {
	rows := m.height - 3 // title, column header, divider
	if m.pendingDelete != "" {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *ListPageModel) ensureVisible() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the list page.
func (m *ListPageModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf(" Announcements (%d)", len(m.announcements))))
	b.WriteString("\n")

	if len(m.announcements) == 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("  No announcements yet. Press n to create one."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("    %-10s %-10s %-8s %s", "ID", "CATEGORY", "SERVERS", "PREVIEW")))
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.contentWidth()))
	b.WriteString("\n")

	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.announcements) {
		end = len(m.announcements)
	}

	for i := m.offset; i < end; i++ {
		b.WriteString(m.rowLine(m.announcements[i], i == m.cursor))
		b.WriteString("\n")
	}

	if m.pendingDelete != "" {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("  Delete %s? (y/n)", shortID(m.pendingDelete))))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *ListPageModel) rowLine(a types.Announcement, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.styles.Title.Render("▸ ")
	}

	marker := m.styles.Muted.Render("○")
	if a.Enabled {
		marker = m.styles.Success.Render("●")
	}

	servers := "all"
	if len(a.Servers) == 1 {
		servers = a.Servers[0]
	} else if len(a.Servers) > 1 {
		servers = fmt.Sprintf("%d srv", len(a.Servers))
	}

	// Pad plain cells first; styling afterwards keeps the columns aligned.
	idCell := fmt.Sprintf("%-10s", shortID(a.ID))
	if selected {
		idCell = m.styles.Bold.Render(idCell)
	} else {
		idCell = m.styles.Body.Render(idCell)
	}
	catCell := fmt.Sprintf("%-10s", truncate(a.Category, 10))
	srvCell := fmt.Sprintf("%-8s", truncate(servers, 8))

	meta := fmt.Sprintf("%s%s %s %s %s ", cursor, marker, idCell, catCell, srvCell)

	prevWidth := m.contentWidth() - 34
	if prevWidth < 10 {
		prevWidth = 10
	}
	snippet := m.cache.GetOrCompute("row-"+a.ID, func() string {
		return preview.Snippet(parseAnnouncement(m.cfg, a.Body), 1, prevWidth)
	}, a.Body, prevWidth)

	return meta + snippet
}

func (m *ListPageModel) contentWidth() int {
	if m.width <= 0 {
		return MinimumTerminalWidth
	}
	return m.width
}

// shortID truncates an announcement id for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncate caps a plain cell at width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
