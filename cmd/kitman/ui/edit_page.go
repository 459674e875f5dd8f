package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kitman/internal/config"
	"kitman/internal/markup"
	"kitman/internal/preview"
	"kitman/internal/types"
)

// previewDebounce is how long typing has to pause before the preview pane
// re-renders. Short enough to feel live, long enough to skip keystrokes.
const previewDebounce = 150 * time.Millisecond

const (
	focusBody = iota
	focusCategory
)

// previewTickMsg asks the edit page to re-render its preview pane. The seq
// field drops ticks that were scheduled before a newer keystroke.
type previewTickMsg struct {
	seq int
}

// EditPageModel is the split edit view: markup on the left, the rendered
// announcement on the right, updating as the operator types.
type EditPageModel struct {
	width  int
	height int

	body     textarea.Model
	category textinput.Model
	// preview scrolls when the rendered announcement outgrows the pane.
	preview viewport.Model
	focus   int

	original types.Announcement
	isNew    bool

	previewSeq  int
	previewPane string
	plainCount  int
	previewer   *CachedPreview

	cfg    *config.Config
	styles Styles
}

// NewEditPageModel creates a new edit page model.
func NewEditPageModel(cfg *config.Config, cache *PreviewCache, styles Styles) EditPageModel {
	ta := textarea.New()
	ta.Placeholder = `<color=yellow>Server restart</color> in 5 minutes\nGrab your loot!`
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	ci := textinput.New()
	ci.Placeholder = types.DefaultCategory
	ci.CharLimit = 40
	ci.Prompt = ""

	return EditPageModel{
		body:      ta,
		category:  ci,
		preview:   viewport.New(0, 0),
		previewer: NewCachedPreview(cache),
		cfg:       cfg,
		styles:    styles,
	}
}

// Init initializes the edit page model.
func (m EditPageModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the edit page.
func (m EditPageModel) Update(msg tea.Msg) (EditPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return closeEditMsg{} }
		case "tab":
			m.cycleFocus()
			return m, nil
		case "ctrl+s":
			return m, m.saveCmd()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case previewTickMsg:
		if msg.seq == m.previewSeq {
			m.renderPreview()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.focus == focusBody {
		before := m.body.Value()
		m.body, cmd = m.body.Update(msg)
		cmds = append(cmds, cmd)
		if m.body.Value() != before {
			m.previewSeq++
			seq := m.previewSeq
			cmds = append(cmds, tea.Tick(previewDebounce, func(time.Time) tea.Msg {
				return previewTickMsg{seq: seq}
			}))
		}
	} else {
		m.category, cmd = m.category.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// SetSize updates the page dimensions.
func (m *EditPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	left, right := SplitPaneWidths(m.contentWidth())
	editorHeight := height - 6 // title, category row, pane chrome
	if editorHeight < 3 {
		editorHeight = 3
	}
	m.body.SetWidth(left - 4)
	m.body.SetHeight(editorHeight)
	m.category.Width = left - 14
	m.preview.Width = right - 4
	m.preview.Height = editorHeight - 2

	m.renderPreview()
}

// Load points the page at an announcement and resets the preview.
func (m *EditPageModel) Load(a types.Announcement, isNew bool) {
	m.original = a
	m.isNew = isNew
	m.body.SetValue(a.Body)
	m.category.SetValue(a.Category)
	m.focus = focusBody
	m.body.Focus()
	m.category.Blur()
	m.previewSeq++
	m.previewer.Invalidate()
	m.renderPreview()
}

func (m *EditPageModel) cycleFocus() {
	if m.focus == focusBody {
		m.focus = focusCategory
		m.body.Blur()
		m.category.Focus()
	} else {
		m.focus = focusBody
		m.category.Blur()
		m.body.Focus()
	}
}

func (m *EditPageModel) saveCmd() tea.Cmd {
	if strings.TrimSpace(m.body.Value()) == "" {
		return func() tea.Msg {
			return statusMsg{text: "Body is empty; nothing to save", isError: true}
		}
	}

	a := m.original
	a.Body = m.body.Value()
	a.Category = strings.TrimSpace(m.category.Value())
	if a.Category == "" {
		a.Category = types.DefaultCategory
	}
	isNew := m.isNew
	return func() tea.Msg { return saveRequestMsg{announcement: a, isNew: isNew} }
}

// renderPreview re-renders the right pane from the current body text.
func (m *EditPageModel) renderPreview() {
	body := m.body.Value()
	_, right := SplitPaneWidths(m.contentWidth())
	paneWidth := right - 4
	if paneWidth < 10 {
		paneWidth = 10
	}

	m.previewPane = m.previewer.Render("edit", []interface{}{body, paneWidth}, func() string {
		return preview.Live(parseAnnouncement(m.cfg, body))
	})
	m.plainCount = utf8.RuneCountInString(markup.PlainText(parseAnnouncement(m.cfg, body)))
	m.preview.SetContent(m.previewPane)
}

func (m *EditPageModel) contentWidth() int {
	if m.width <= 0 {
		return MinimumTerminalWidth
	}
	return m.width
}

// View renders the edit page.
func (m *EditPageModel) View() string {
	var b strings.Builder

	title := "New announcement"
	if !m.isNew {
		title = "Edit " + shortID(m.original.ID)
	}
	b.WriteString(m.styles.Title.Render(" " + title))
	b.WriteString("\n")

	catLabel := m.styles.Muted.Render(" Category:")
	if m.focus == focusCategory {
		catLabel = m.styles.Bold.Render(" Category:")
	}
	b.WriteString(catLabel + " " + m.category.View())
	b.WriteString("\n")

	left, rightWidth := SplitPaneWidths(m.contentWidth())

	editorStyle := m.styles.Pane
	if m.focus == focusBody {
		editorStyle = m.styles.PaneFocused
	}
	editor := editorStyle.Width(left - 2).Render(
		m.styles.Subtitle.Render("Markup") + "\n" + m.body.View(),
	)

	counter := m.styles.Muted.Render(fmt.Sprintf("%d plain chars", m.plainCount))
	previewPane := m.styles.Pane.Width(rightWidth - 2).Render(
		m.styles.Subtitle.Render("Preview") + "\n" + m.preview.View() + "\n" + counter,
	)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, editor, previewPane))
	b.WriteString("\n")

	return b.String()
}
