package ui

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"kitman/internal/config"
	"kitman/internal/logging"
	"kitman/internal/markup"
	"kitman/internal/store"
	"kitman/internal/types"
)

// =============================================================================
// MESSAGES
// =============================================================================

// announcementsLoadedMsg carries a fresh roster from the store.
type announcementsLoadedMsg struct {
	announcements []types.Announcement
}

// openEditMsg switches to the edit page for the given announcement.
type openEditMsg struct {
	announcement types.Announcement
	isNew        bool
}

// closeEditMsg returns to the list page without saving.
type closeEditMsg struct{}

// saveRequestMsg asks the app to persist an edited announcement.
type saveRequestMsg struct {
	announcement types.Announcement
	isNew        bool
}

// savedMsg reports a completed save.
type savedMsg struct {
	id    string
	isNew bool
}

// deleteRequestMsg asks the app to delete an announcement.
type deleteRequestMsg struct {
	id string
}

// toggleRequestMsg asks the app to flip an announcement's enabled state.
type toggleRequestMsg struct {
	id      string
	enabled bool
}

// mutatedMsg reports a completed delete or toggle.
type mutatedMsg struct {
	status string
}

// reloadRequestMsg asks the app to re-read the roster.
type reloadRequestMsg struct{}

// statusMsg puts a line in the status bar.
type statusMsg struct {
	text    string
	isError bool
}

// =============================================================================
// APP MODEL
// =============================================================================

type page int

const (
	pageList page = iota
	pageEdit
)

// App is the root console model. It owns the store, routes input to the
// active page, and runs all store mutations through commands so the UI
// never blocks on SQLite.
type App struct {
	cfg   *config.Config
	store *store.AnnouncementStore

	list ListPageModel
	edit EditPageModel

	active page

	width  int
	height int

	// loading is true until the first roster read lands.
	loading bool
	spinner spinner.Model

	status    string
	statusErr bool

	styles Styles
}

// NewApp creates the console root model.
func NewApp(cfg *config.Config, st *store.AnnouncementStore) App {
	styles := NewStyles(ThemeFromName(cfg.UI.Theme))
	cache := NewPreviewCache(cfg.GetCacheSize())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Info

	return App{
		cfg:     cfg,
		store:   st,
		list:    NewListPageModel(cfg, cache, styles),
		edit:    NewEditPageModel(cfg, cache, styles),
		active:  pageList,
		loading: true,
		spinner: sp,
		styles:  styles,
	}
}

// Init loads the roster.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.loadAnnouncements(), a.spinner.Tick)
}

// Update routes messages to the app or the active page.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		pageHeight := PageHeight(msg.Height)
		a.list.SetSize(msg.Width, pageHeight)
		a.edit.SetSize(msg.Width, pageHeight)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			// Plain q only quits from the list; the editor needs the letter.
			if a.active == pageList && a.list.pendingDelete == "" {
				return a, tea.Quit
			}
		}

	case announcementsLoadedMsg:
		a.loading = false
		a.list.UpdateContent(msg.announcements)
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case openEditMsg:
		a.edit.Load(msg.announcement, msg.isNew)
		a.active = pageEdit
		a.status = ""
		return a, a.edit.Init()

	case closeEditMsg:
		a.active = pageList
		return a, a.loadAnnouncements()

	case saveRequestMsg:
		return a, a.saveAnnouncement(msg.announcement, msg.isNew)

	case savedMsg:
		a.active = pageList
		verb := "Updated"
		if msg.isNew {
			verb = "Created"
		}
		a.setStatus(fmt.Sprintf("%s %s", verb, shortID(msg.id)), false)
		return a, a.loadAnnouncements()

	case deleteRequestMsg:
		return a, a.deleteAnnouncement(msg.id)

	case toggleRequestMsg:
		return a, a.toggleAnnouncement(msg.id, msg.enabled)

	case mutatedMsg:
		a.setStatus(msg.status, false)
		return a, a.loadAnnouncements()

	case reloadRequestMsg:
		a.setStatus("Reloaded", false)
		return a, a.loadAnnouncements()

	case statusMsg:
		a.loading = false
		a.setStatus(msg.text, msg.isError)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.active {
	case pageList:
		a.list, cmd = a.list.Update(msg)
	case pageEdit:
		a.edit, cmd = a.edit.Update(msg)
	}
	return a, cmd
}

// View renders the full console frame.
func (a App) View() string {
	if a.width > 0 && a.width < MinimumTerminalWidth {
		return a.styles.Warning.Render(
			fmt.Sprintf("Terminal too narrow (%d cols, need %d)", a.width, MinimumTerminalWidth))
	}

	var b strings.Builder
	b.WriteString(a.headerView())
	b.WriteString("\n")

	switch a.active {
	case pageList:
		b.WriteString(a.list.View())
	case pageEdit:
		b.WriteString(a.edit.View())
	}

	b.WriteString(a.footerView())
	return b.String()
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
	if isError {
		logging.Get(logging.CategoryUI).Warnf("Console status: %s", text)
	}
}

func (a App) headerView() string {
	title := "kitman"
	if a.cfg.Name != "" && a.cfg.Name != "kitman" {
		title = "kitman · " + a.cfg.Name
	}
	pageName := "announcements"
	if a.active == pageEdit {
		pageName = "edit"
	}
	return a.styles.Header.Render(" "+title+" ") + " " + a.styles.Badge.Render(pageName)
}

func (a App) footerView() string {
	statusLine := a.styles.StatusBar.Render(a.status)
	if a.statusErr {
		statusLine = a.styles.Error.Render(" " + a.status)
	}
	if a.loading {
		statusLine = a.styles.StatusBar.Render(a.spinner.View() + " Loading announcements")
	}

	help := "↑/↓ move · enter edit · n new · e on/off · d delete · r reload · q quit"
	if a.active == pageEdit {
		help = "tab switch field · ctrl+s save · esc back"
	}

	return statusLine + "\n" + a.styles.Footer.Render(help)
}

// =============================================================================
// STORE COMMANDS
// =============================================================================

func (a App) loadAnnouncements() tea.Cmd {
	st := a.store
	return func() tea.Msg {
		announcements, err := st.List(store.Filter{})
		if err != nil {
			return statusMsg{text: "Load failed: " + err.Error(), isError: true}
		}
		return announcementsLoadedMsg{announcements: announcements}
	}
}

func (a App) saveAnnouncement(ann types.Announcement, isNew bool) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		var err error
		if isNew {
			err = st.Create(ann)
		} else {
			err = st.Update(ann)
		}
		if err != nil {
			return statusMsg{text: "Save failed: " + err.Error(), isError: true}
		}

		action, detail := types.AuditUpdate, "edited in console"
		if isNew {
			action, detail = types.AuditCreate, "created in console"
		}
		writeAudit(st, ann.ID, action, detail)
		return savedMsg{id: ann.ID, isNew: isNew}
	}
}

func (a App) deleteAnnouncement(id string) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		if err := st.Delete(id); err != nil {
			return statusMsg{text: "Delete failed: " + err.Error(), isError: true}
		}
		writeAudit(st, id, types.AuditDelete, "deleted in console")
		return mutatedMsg{status: "Deleted " + shortID(id)}
	}
}

func (a App) toggleAnnouncement(id string, enabled bool) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		if err := st.SetEnabled(id, enabled); err != nil {
			return statusMsg{text: "Toggle failed: " + err.Error(), isError: true}
		}
		action, verb := types.AuditDisable, "Disabled"
		if enabled {
			action, verb = types.AuditEnable, "Enabled"
		}
		writeAudit(st, id, action, strings.ToLower(verb)+" in console")
		return mutatedMsg{status: verb + " " + shortID(id)}
	}
}

// writeAudit records a console mutation. Failure is logged, not surfaced;
// the mutation itself already happened.
func writeAudit(st *store.AnnouncementStore, id, action, detail string) {
	err := st.AppendAudit(types.AuditEntry{
		AnnouncementID: id,
		Action:         action,
		Detail:         detail,
		Actor:          consoleActor(),
	})
	if err != nil {
		logging.Get(logging.CategoryUI).Warnf("Audit write failed for %s: %v", shortID(id), err)
	}
}

func consoleActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// parseAnnouncement runs the shared parse pipeline with the configured
// nesting bound.
func parseAnnouncement(cfg *config.Config, body string) []markup.Node {
	return markup.ParseWithLimit(markup.Preprocess(body), cfg.GetMaxNesting())
}
