// Package history derives the scoped, day-grouped history list and owns the
// history screen state.
//
// # Pipeline
//
// Preference, category and library streams are merged by Combine into
// Inputs snapshots. The history list is re-subscribed whenever the search
// query changes. Each new (history, inputs) pair runs through Derive and
// replaces the screen State in a single atomic update.
//
// # Thread Safety
//
// Screen is safe for concurrent use. State reads return a snapshot; intents
// may be called from any goroutine.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/prefs"
	"github.com/mmcdole/shelf/internal/stream"
)

// Event is a one-shot notification for the UI.
type Event int

const (
	EventInternalError Event = iota
	EventHistoryCleared
)

func (e Event) String() string {
	switch e {
	case EventInternalError:
		return "internal error"
	case EventHistoryCleared:
		return "history cleared"
	default:
		return "unknown"
	}
}

// Dialog is the dialog currently shown over the history list.
type Dialog interface {
	isDialog()
}

// DeleteDialog confirms removing one entry, or all of its manga's history.
type DeleteDialog struct {
	Entry domain.HistoryEntry
}

// DeleteAllDialog confirms clearing history.
type DeleteAllDialog struct {
	Scope domain.DeletionScope
}

// ChangeCategoryDialog picks the categories a manga joins the library with.
type ChangeCategoryDialog struct {
	Entry      domain.HistoryEntry
	Categories []domain.Category
	Selected   []int64
}

func (DeleteDialog) isDialog()         {}
func (DeleteAllDialog) isDialog()      {}
func (ChangeCategoryDialog) isDialog() {}

// IsSelected reports whether category id is checked.
func (d ChangeCategoryDialog) IsSelected(id int64) bool {
	return slices.Contains(d.Selected, id)
}

// Toggle returns a copy of d with category id flipped. Selected stays in
// category order.
func (d ChangeCategoryDialog) Toggle(id int64) ChangeCategoryDialog {
	selected := make([]int64, 0, len(d.Categories))
	for _, c := range d.Categories {
		if d.IsSelected(c.ID) != (c.ID == id) {
			selected = append(selected, c.ID)
		}
	}
	d.Selected = selected
	return d
}

// State is everything the history screen renders.
type State struct {
	SearchQuery       string
	Items             []UIModel
	Loaded            bool
	Dialog            Dialog
	ScopeEnabled      bool
	ActiveSection     *domain.Section
	ActiveSectionID   int64
	Sections          []domain.Section
	SectionNavigation bool
	NavigationMode    domain.NavigationMode
	ShowExternal      bool
	HasExternal       bool
	SectionHistories  map[int64][]domain.HistoryEntry
	ScopeMode         domain.ScopeMode
}

// HistorySource streams history filtered by a search query.
type HistorySource interface {
	SubscribeHistory(ctx context.Context, query string) <-chan stream.Result[[]domain.HistoryEntry]
}

// HistoryRemover deletes history.
type HistoryRemover interface {
	RemoveHistory(id int64) error
	RemoveAllForManga(mangaID int64) error
	RemoveAll() error
}

// Favoriter adds manga to the library.
type Favoriter interface {
	UpdateFavorite(mangaID int64, favorite bool) error
}

// CategoryAssigner lists user categories and assigns them to manga.
type CategoryAssigner interface {
	UserCategories() ([]domain.Category, error)
	MangaCategories(mangaID int64) []int64
	SetMangaCategories(mangaID int64, categoryIDs []int64) error
}

// Upstream carries the library data streams the screen scopes against.
type Upstream struct {
	Categories <-chan []domain.Category
	Library    <-chan []domain.LibraryManga
}

// Screen owns the history screen state and handles its intents.
type Screen struct {
	history    HistorySource
	remover    HistoryRemover
	favorites  Favoriter
	categories CategoryAssigner
	sources    domain.SourceResolver
	prefs      *prefs.Library
	lastUsed   *LastUsedCategory
	loc        *time.Location
	logger     *slog.Logger

	state        *stream.Value[State]
	query        *stream.Value[string]
	showExternal *stream.Value[bool]
	events       chan Event
}

// Config wires a Screen.
type Config struct {
	History    HistorySource
	Remover    HistoryRemover
	Favorites  Favoriter
	Categories CategoryAssigner
	Sources    domain.SourceResolver
	Prefs      *prefs.Library
	LastUsed   *LastUsedCategory
	Location   *time.Location
	Logger     *slog.Logger
}

func NewScreen(cfg Config) *Screen {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Screen{
		history:      cfg.History,
		remover:      cfg.Remover,
		favorites:    cfg.Favorites,
		categories:   cfg.Categories,
		sources:      cfg.Sources,
		prefs:        cfg.Prefs,
		lastUsed:     cfg.LastUsed,
		loc:          loc,
		logger:       logger,
		state:        stream.NewValue(State{ActiveSectionID: NoSection, NavigationMode: domain.NavigationDropdown}),
		query:        stream.NewValue(""),
		showExternal: stream.NewValue(false),
		events:       make(chan Event, 16),
	}
}

// State returns the current state snapshot.
func (s *Screen) State() State {
	st, _ := s.state.Get()
	return st
}

// Changes emits the current state and every later state.
func (s *Screen) Changes(ctx context.Context) <-chan State {
	return s.state.Subscribe(ctx)
}

// Events delivers one-shot notifications. Events are dropped when nobody
// drains the channel.
func (s *Screen) Events() <-chan Event {
	return s.events
}

func (s *Screen) send(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("dropped history event", "event", e.String())
	}
}

// update atomically replaces the state and returns the new snapshot.
func (s *Screen) update(fn func(State) State) State {
	return s.state.Update(fn)
}

// Run drives the pipeline until ctx is done.
func (s *Screen) Run(ctx context.Context, up Upstream) {
	inputs := Combine(ctx, Sources{
		Query:             s.query.Subscribe(ctx),
		IncludeExternal:   s.showExternal.Subscribe(ctx),
		ScopeMode:         s.prefs.ScopeModeChanges(ctx),
		HistorySectionID:  s.prefs.LastUsedHistorySectionID.Changes(ctx),
		LastCategoryID:    s.lastUsed.Changes(ctx),
		Categories:        up.Categories,
		Library:           up.Library,
		NavigationEnabled: s.prefs.HistorySectionNavigation.Changes(ctx),
		NavigationMode:    s.prefs.CategoryNavigationMode.Changes(ctx),
		ShowHidden:        s.prefs.ShowHiddenCategories.Changes(ctx),
	})

	var (
		cur         Inputs
		haveInputs  bool
		entries     []domain.HistoryEntry
		haveEntries bool

		histories   <-chan stream.Result[[]domain.HistoryEntry]
		cancelQuery context.CancelFunc
		query       string
	)
	defer func() {
		if cancelQuery != nil {
			cancelQuery()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case in, ok := <-inputs:
			if !ok {
				return
			}
			if !haveInputs || in.Query != query {
				if cancelQuery != nil {
					cancelQuery()
				}
				var qctx context.Context
				qctx, cancelQuery = context.WithCancel(ctx)
				query = in.Query
				histories = s.history.SubscribeHistory(qctx, query)
			}
			cur, haveInputs = in, true

		case r, ok := <-histories:
			if !ok {
				histories = nil
				continue
			}
			if r.Err != nil {
				s.logger.Error("failed to load history", "error", r.Err, "query", query)
				s.send(EventInternalError)
				entries = nil
			} else {
				entries = r.Value
			}
			haveEntries = true
		}

		if haveInputs && haveEntries {
			s.apply(Derive(entries, cur, s.sources, s.loc))
		}
	}
}

func (s *Screen) apply(r Result) {
	s.update(func(st State) State {
		st.Items = r.Items
		st.Loaded = true
		st.ScopeEnabled = r.ScopeEnabled
		st.ActiveSection = r.ActiveSection
		st.ActiveSectionID = r.ActiveSectionID
		st.Sections = r.Sections
		st.SectionNavigation = r.NavigationOn
		st.NavigationMode = r.NavigationMode
		st.HasExternal = r.HasExternal
		st.SectionHistories = r.SectionHistories
		st.ScopeMode = r.ScopeMode
		return st
	})
}

// === Intents ===

// SetSearchQuery filters history by title.
func (s *Screen) SetSearchQuery(query string) {
	s.update(func(st State) State {
		st.SearchQuery = query
		s.query.Set(query)
		return st
	})
}

// ToggleExternalEntries shows or hides entries outside the library in scoped
// views. The pipeline input is set while the state lock is held, so
// concurrent toggles leave both in agreement.
func (s *Screen) ToggleExternalEntries() {
	s.update(func(st State) State {
		st.ShowExternal = !st.ShowExternal
		s.showExternal.Set(st.ShowExternal)
		return st
	})
}

// SetDialog opens a dialog, or closes it when d is nil.
func (s *Screen) SetDialog(d Dialog) {
	s.update(func(st State) State {
		st.Dialog = d
		return st
	})
}

// SelectSection makes id the active section and remembers it. Under
// category scoping the choice is shared with the library screen.
func (s *Screen) SelectSection(id int64) error {
	st := s.update(func(st State) State {
		st.ActiveSectionID = id
		st.ActiveSection = nil
		if sec, ok := FindSection(st.Sections, id); ok {
			st.ActiveSection = &sec
		}
		return st
	})

	if err := s.prefs.LastUsedHistorySectionID.Set(id); err != nil {
		return fmt.Errorf("save history section: %w", err)
	}
	if st.ScopeMode != domain.ScopeByCategory {
		return nil
	}

	if err := s.lastUsed.Set(id); err != nil {
		return fmt.Errorf("save last used category: %w", err)
	}
	index := 0
	for i, sec := range st.Sections {
		if sec.ID == id {
			index = i
			break
		}
	}
	if err := s.prefs.LastUsedCategory.Set(index); err != nil {
		return fmt.Errorf("save last used category index: %w", err)
	}
	return nil
}

// DeleteEntry removes a single read event.
func (s *Screen) DeleteEntry(entry domain.HistoryEntry) error {
	return s.remover.RemoveHistory(entry.ID)
}

// DeleteAllForManga removes every read event of a manga.
func (s *Screen) DeleteAllForManga(mangaID int64) error {
	return s.remover.RemoveAllForManga(mangaID)
}

// AddFavorite adds the entry's manga to the library. The default category
// preference decides where it goes: an existing user category is applied,
// 0 (or having no user categories) leaves it uncategorized, anything else
// opens a ChangeCategoryDialog. It reports whether the manga was added.
func (s *Screen) AddFavorite(entry domain.HistoryEntry) (bool, error) {
	if entry.InLibrary {
		return false, nil
	}
	cats, err := s.categories.UserCategories()
	if err != nil {
		return false, fmt.Errorf("load categories: %w", err)
	}

	def := s.prefs.DefaultCategory.Get()
	switch {
	case slices.ContainsFunc(cats, func(c domain.Category) bool { return c.ID == def }):
		return true, s.addToLibrary(entry.MangaID, []int64{def})
	case def == domain.UncategorizedID || len(cats) == 0:
		return true, s.addToLibrary(entry.MangaID, nil)
	}

	s.SetDialog(ChangeCategoryDialog{
		Entry:      entry,
		Categories: cats,
		Selected:   s.categories.MangaCategories(entry.MangaID),
	})
	return false, nil
}

func (s *Screen) addToLibrary(mangaID int64, categoryIDs []int64) error {
	if err := s.favorites.UpdateFavorite(mangaID, true); err != nil {
		return fmt.Errorf("add manga %d to library: %w", mangaID, err)
	}
	if err := s.categories.SetMangaCategories(mangaID, categoryIDs); err != nil {
		return fmt.Errorf("set categories of manga %d: %w", mangaID, err)
	}
	s.logger.Info("added manga to library", "mangaID", mangaID, "categories", categoryIDs)
	return nil
}

// MoveToCategoriesAndAddToLibrary assigns categoryIDs to the entry's manga
// and adds it to the library if it is not there yet.
func (s *Screen) MoveToCategoriesAndAddToLibrary(entry domain.HistoryEntry, categoryIDs []int64) error {
	if err := s.categories.SetMangaCategories(entry.MangaID, categoryIDs); err != nil {
		return fmt.Errorf("set categories of manga %d: %w", entry.MangaID, err)
	}
	if entry.InLibrary {
		return nil
	}
	if err := s.favorites.UpdateFavorite(entry.MangaID, true); err != nil {
		return fmt.Errorf("add manga %d to library: %w", entry.MangaID, err)
	}
	return nil
}

// ClearHistory removes everything, or every manga in the active section.
// EventHistoryCleared is sent when something was removed.
func (s *Screen) ClearHistory(scope domain.DeletionScope) error {
	switch scope {
	case domain.DeleteEverything:
		if err := s.remover.RemoveAll(); err != nil {
			return err
		}
	case domain.DeleteActiveScope:
		ids := s.activeScopeMangaIDs()
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			if err := s.remover.RemoveAllForManga(id); err != nil {
				return fmt.Errorf("clear history for manga %d: %w", id, err)
			}
		}
	default:
		return fmt.Errorf("unknown deletion scope %d", scope)
	}
	s.send(EventHistoryCleared)
	return nil
}

// activeScopeMangaIDs lists the distinct manga in the active section bucket.
func (s *Screen) activeScopeMangaIDs() []int64 {
	st := s.State()
	if !st.ScopeEnabled || st.ActiveSectionID == NoSection {
		return nil
	}
	seen := make(map[int64]bool)
	var ids []int64
	for _, e := range st.SectionHistories[st.ActiveSectionID] {
		if !seen[e.MangaID] {
			seen[e.MangaID] = true
			ids = append(ids, e.MangaID)
		}
	}
	return ids
}
