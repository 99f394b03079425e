package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/history"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// Screen is the history screen controller the model drives.
type Screen interface {
	State() history.State
	Changes(ctx context.Context) <-chan history.State
	Events() <-chan history.Event

	SetSearchQuery(query string)
	ToggleExternalEntries()
	SetDialog(d history.Dialog)
	SelectSection(id int64) error
	DeleteEntry(entry domain.HistoryEntry) error
	DeleteAllForManga(mangaID int64) error
	ClearHistory(scope domain.DeletionScope) error
	AddFavorite(entry domain.HistoryEntry) (bool, error)
	MoveToCategoriesAndAddToLibrary(entry domain.HistoryEntry, categoryIDs []int64) error
}

// Options configures presentation details
type Options struct {
	DateFormat string
	Location   *time.Location
	Now        func() time.Time
}

// Vertical chrome: title, section bar, search line, footer
const ChromeHeight = 4

// Model is the Bubble Tea model for the history screen
type Model struct {
	screen  Screen
	sources domain.SourceResolver
	changes <-chan history.State

	// Current screen state
	state history.State

	// UI Components
	keys   KeyMap
	help   help.Model
	search textinput.Model
	picker SectionPicker

	// Dimensions
	Width  int
	Height int

	// UI state
	cursor      int // index into state.Items, always on an Item once loaded
	catCursor   int // row in the change category dialog
	offset      int // first visible row
	searching   bool
	showHelp    bool
	StatusMsg   string
	StatusIsErr bool

	dateFormat string
	loc        *time.Location
	now        func() time.Time
}

// NewModel creates the history model. The state subscription lives as long as ctx.
func NewModel(ctx context.Context, screen Screen, sources domain.SourceResolver, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search history..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	if opts.DateFormat == "" {
		opts.DateFormat = "Monday, Jan 2 2006"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := help.New()
	h.Styles.ShortKey = styles.AccentStyle
	h.Styles.FullKey = styles.AccentStyle
	h.Styles.ShortDesc = styles.DimStyle
	h.Styles.FullDesc = styles.DimStyle

	return Model{
		screen:     screen,
		sources:    sources,
		changes:    screen.Changes(ctx),
		state:      screen.State(),
		keys:       Keys,
		help:       h,
		search:     ti,
		picker:     NewSectionPicker(),
		dateFormat: opts.DateFormat,
		loc:        opts.Location,
		now:        opts.Now,
	}
}

// Init starts listening for state changes and events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForStateCmd(m.changes),
		WaitForEventCmd(m.screen.Events()),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		m.scrollToCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case StateMsg:
		m.setState(msg.State)
		return m, WaitForStateCmd(m.changes)

	case EventMsg:
		switch msg.Event {
		case history.EventHistoryCleared:
			m.StatusMsg = "History cleared"
			m.StatusIsErr = false
		case history.EventInternalError:
			m.StatusMsg = "Something went wrong loading history"
			m.StatusIsErr = true
		}
		return m, tea.Batch(WaitForEventCmd(m.screen.Events()), ClearStatusCmd(3*time.Second))

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case dialogOpenedMsg:
		m.refresh()
		return m, nil

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case streamClosedMsg:
		return m, nil
	}

	return m, nil
}

// setState replaces the rendered state and keeps the cursor on an item
func (m *Model) setState(st history.State) {
	m.state = st
	if m.cursor >= len(st.Items) {
		m.cursor = len(st.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if _, ok := m.selectedItem(); !ok {
		if !m.step(1) {
			m.step(-1)
		}
	}
	m.scrollToCursor()
}

// handleKeyMsg routes a key press to the topmost layer
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.IsVisible() {
		var cmd tea.Cmd
		var chosen *domain.Section
		m.picker, cmd, chosen = m.picker.Update(msg)
		if chosen != nil {
			return m, SelectSectionCmd(m.screen, chosen.ID)
		}
		return m, cmd
	}

	if m.state.Dialog != nil {
		return m.handleDialogKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.state.SearchQuery != "" {
			m.search.SetValue("")
			m.screen.SetSearchQuery("")
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.step(-1)
	case key.Matches(msg, m.keys.Down):
		m.step(1)
	case key.Matches(msg, m.keys.HalfUp):
		m.jump(-m.listHeight() / 2)
	case key.Matches(msg, m.keys.HalfDown):
		m.jump(m.listHeight() / 2)
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		if _, ok := m.selectedItem(); !ok {
			m.step(1)
		}
	case key.Matches(msg, m.keys.End):
		m.cursor = max(len(m.state.Items)-1, 0)
		if _, ok := m.selectedItem(); !ok {
			m.step(-1)
		}

	case key.Matches(msg, m.keys.Filter):
		m.searching = true
		m.search.SetValue(m.state.SearchQuery)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.NextSection):
		return m, m.cycleSection(1)
	case key.Matches(msg, m.keys.PrevSection):
		return m, m.cycleSection(-1)
	case key.Matches(msg, m.keys.PickSection):
		if m.state.ScopeEnabled && len(m.state.Sections) > 0 {
			m.picker.Show(m.state.Sections, m.state.ActiveSectionID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleExternal):
		m.screen.ToggleExternalEntries()
		m.refresh()
		if m.state.ShowExternal {
			return m, statusCmd("Showing manga outside the library")
		}
		return m, statusCmd("Hiding manga outside the library")

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selectedItem(); ok {
			m.screen.SetDialog(history.DeleteDialog{Entry: item.Entry})
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.AddFavorite):
		if item, ok := m.selectedItem(); ok && !item.Entry.InLibrary {
			m.catCursor = 0
			return m, AddFavoriteCmd(m.screen, item.Entry)
		}
		return m, nil
	case key.Matches(msg, m.keys.ClearScope):
		// Unscoped, the active scope is empty and clearing it removes nothing.
		m.screen.SetDialog(history.DeleteAllDialog{Scope: domain.DeleteActiveScope})
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.ClearAll):
		m.screen.SetDialog(history.DeleteAllDialog{Scope: domain.DeleteEverything})
		m.refresh()
		return m, nil
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dialog := m.state.Dialog
	if d, ok := dialog.(history.ChangeCategoryDialog); ok {
		return m.handleCategoryKey(d, msg)
	}
	switch {
	case key.Matches(msg, m.keys.Deny):
		m.screen.SetDialog(nil)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.screen.SetDialog(nil)
		m.refresh()
		switch d := dialog.(type) {
		case history.DeleteDialog:
			return m, DeleteEntryCmd(m.screen, d.Entry)
		case history.DeleteAllDialog:
			return m, ClearHistoryCmd(m.screen, d.Scope)
		}

	case key.Matches(msg, m.keys.ConfirmAllRead):
		if d, ok := dialog.(history.DeleteDialog); ok {
			m.screen.SetDialog(nil)
			m.refresh()
			return m, DeleteAllForMangaCmd(m.screen, d.Entry)
		}
	}
	return m, nil
}

func (m Model) handleCategoryKey(d history.ChangeCategoryDialog, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Deny):
		m.screen.SetDialog(nil)
		m.refresh()
	case key.Matches(msg, m.keys.Up):
		m.catCursor = max(m.catCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.catCursor = min(m.catCursor+1, max(len(d.Categories)-1, 0))
	case key.Matches(msg, m.keys.Toggle):
		if m.catCursor < len(d.Categories) {
			m.screen.SetDialog(d.Toggle(d.Categories[m.catCursor].ID))
			m.refresh()
		}
	case key.Matches(msg, m.keys.Confirm):
		m.screen.SetDialog(nil)
		m.refresh()
		return m, MoveToCategoriesCmd(m.screen, d.Entry, d.Selected)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.screen.SetSearchQuery("")
		m.refresh()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.state.SearchQuery {
		m.screen.SetSearchQuery(q)
		m.refresh()
	}
	return m, cmd
}

// refresh pulls the latest snapshot after a synchronous intent
func (m *Model) refresh() {
	m.setState(m.screen.State())
}

// cycleSection selects the neighbouring section, wrapping at the ends
func (m *Model) cycleSection(delta int) tea.Cmd {
	sections := m.state.Sections
	if !m.state.ScopeEnabled || len(sections) == 0 {
		return nil
	}
	idx := 0
	for i, s := range sections {
		if s.ID == m.state.ActiveSectionID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(sections)) % len(sections)
	return SelectSectionCmd(m.screen, sections[idx].ID)
}

// selectedItem returns the item under the cursor
func (m Model) selectedItem() (history.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return history.Item{}, false
	}
	item, ok := m.state.Items[m.cursor].(history.Item)
	return item, ok
}

// step moves the cursor to the next item in direction dir, skipping headers.
// It reports false and leaves the cursor alone when there is none.
func (m *Model) step(dir int) bool {
	for i := m.cursor + dir; i >= 0 && i < len(m.state.Items); i += dir {
		if _, ok := m.state.Items[i].(history.Item); ok {
			m.cursor = i
			return true
		}
	}
	return false
}

// jump moves the cursor by n rows and settles on the nearest item
func (m *Model) jump(n int) {
	if n == 0 || len(m.state.Items) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.state.Items)-1, m.cursor+n))
	if _, ok := m.selectedItem(); !ok {
		dir := 1
		if n < 0 {
			dir = -1
		}
		if !m.step(dir) {
			m.step(-dir)
		}
	}
}

func (m Model) listHeight() int {
	return max(m.Height-ChromeHeight, 1)
}

// scrollToCursor keeps the cursor row inside the visible window and shows
// the day header above the first item when scrolled to the top.
func (m *Model) scrollToCursor() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
		if m.offset > 0 {
			if _, ok := m.state.Items[m.offset-1].(history.Header); ok {
				m.offset--
			}
		}
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(0, min(m.offset, len(m.state.Items)-1))
}

func statusCmd(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: msg}
	}
}
