package history

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/prefs"
	"github.com/mmcdole/shelf/internal/stream"
)

// fakeHistory serves entries filtered by title and records removals.
type fakeHistory struct {
	entries *stream.Value[[]domain.HistoryEntry]

	mu      sync.Mutex
	fail    bool
	removed []int64
	cleared bool
}

func newFakeHistory(entries ...domain.HistoryEntry) *fakeHistory {
	return &fakeHistory{entries: stream.NewValue(entries)}
}

func (f *fakeHistory) SubscribeHistory(ctx context.Context, query string) <-chan stream.Result[[]domain.HistoryEntry] {
	return stream.Map(ctx, f.entries.Subscribe(ctx), func(all []domain.HistoryEntry) stream.Result[[]domain.HistoryEntry] {
		f.mu.Lock()
		fail := f.fail
		f.mu.Unlock()
		if fail {
			return stream.Result[[]domain.HistoryEntry]{Err: errors.New("database locked")}
		}
		var out []domain.HistoryEntry
		for _, e := range all {
			if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
				out = append(out, e)
			}
		}
		return stream.Result[[]domain.HistoryEntry]{Value: out}
	})
}

func (f *fakeHistory) RemoveHistory(id int64) error {
	f.entries.Update(func(all []domain.HistoryEntry) []domain.HistoryEntry {
		return slices.DeleteFunc(slices.Clone(all), func(e domain.HistoryEntry) bool { return e.ID == id })
	})
	return nil
}

func (f *fakeHistory) RemoveAllForManga(mangaID int64) error {
	f.mu.Lock()
	f.removed = append(f.removed, mangaID)
	f.mu.Unlock()
	f.entries.Update(func(all []domain.HistoryEntry) []domain.HistoryEntry {
		return slices.DeleteFunc(slices.Clone(all), func(e domain.HistoryEntry) bool { return e.MangaID == mangaID })
	})
	return nil
}

func (f *fakeHistory) RemoveAll() error {
	f.mu.Lock()
	f.cleared = true
	f.mu.Unlock()
	f.entries.Set(nil)
	return nil
}

func (f *fakeHistory) removedManga() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.removed)
}

// fakeLibrary records favorites and category assignments.
type fakeLibrary struct {
	mu         sync.Mutex
	categories []domain.Category
	assigned   map[int64][]int64
	favorites  []int64
}

func newFakeLibrary(categories ...domain.Category) *fakeLibrary {
	return &fakeLibrary{categories: categories, assigned: make(map[int64][]int64)}
}

func (f *fakeLibrary) UpdateFavorite(mangaID int64, favorite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if favorite {
		f.favorites = append(f.favorites, mangaID)
	}
	return nil
}

func (f *fakeLibrary) UserCategories() ([]domain.Category, error) {
	return slices.Clone(f.categories), nil
}

func (f *fakeLibrary) MangaCategories(mangaID int64) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.assigned[mangaID])
}

func (f *fakeLibrary) SetMangaCategories(mangaID int64, categoryIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned[mangaID] = slices.Clone(categoryIDs)
	return nil
}

func (f *fakeLibrary) favorited() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.favorites)
}

type screenFixture struct {
	screen  *Screen
	history *fakeHistory
	library *fakeLibrary
	prefs   *prefs.Library
}

const (
	actionID = 2
	dramaID  = 3
)

// startScreen runs a screen over two categories until the test ends.
func startScreen(t *testing.T, mode domain.ScopeMode, h *fakeHistory) screenFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	lib := prefs.NewLibrary(newMemoryPrefs(), prefs.Defaults{
		ScopeMode:         mode,
		NavigationMode:    domain.NavigationTabs,
		SectionNavigation: true,
	}, nil)

	categories := stream.NewValue([]domain.Category{
		{ID: 0},
		{ID: actionID, Name: "Action", Order: 1},
		{ID: dramaID, Name: "Drama", Order: 2},
	})
	library := stream.NewValue([]domain.LibraryManga{
		libManga(10, 100, domain.StatusOngoing, actionID),
		libManga(20, 200, domain.StatusCompleted, dramaID),
		libManga(30, 100, domain.StatusOngoing, actionID),
	})

	favorites := newFakeLibrary(
		domain.Category{ID: actionID, Name: "Action", Order: 1},
		domain.Category{ID: dramaID, Name: "Drama", Order: 2},
	)

	s := NewScreen(Config{
		History:    h,
		Remover:    h,
		Favorites:  favorites,
		Categories: favorites,
		Sources:    sourceNames{100: "Alpha", 200: "Beta"},
		Prefs:      lib,
		LastUsed:   NewLastUsedCategory(lib.LastUsedCategoryID),
		Location:   time.UTC,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, Upstream{Categories: categories.Subscribe(ctx), Library: library.Subscribe(ctx)})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitFor(t, "initial state", func() bool { return s.State().Loaded })
	return screenFixture{screen: s, history: h, library: favorites, prefs: lib}
}

func sampleHistory() *fakeHistory {
	a := entry(1, 0, 9, actionID)
	b := entry(2, 0, 8, dramaID)
	c := entry(3, -1, 7, actionID)
	a.SourceID, b.SourceID, c.SourceID = 100, 200, 100
	a.Status, b.Status, c.Status = domain.StatusOngoing, domain.StatusCompleted, domain.StatusOngoing
	return newFakeHistory(a, b, c)
}

func visibleIDs(s *Screen) []int64 {
	return itemIDs(s.State().Items)
}

func TestScreen_ScopesToFirstSectionByDefault(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	st := f.screen.State()
	if !st.ScopeEnabled || st.ActiveSectionID != actionID {
		t.Fatalf("active section = %d (scoped %v), want Action", st.ActiveSectionID, st.ScopeEnabled)
	}
	if diff := cmp.Diff([]int64{actionID, dramaID}, sectionIDs(st.Sections)); diff != "" {
		t.Errorf("sections (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 3}, visibleIDs(f.screen)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	if st.NavigationMode != domain.NavigationTabs || !st.SectionNavigation {
		t.Errorf("navigation = %q %v", st.NavigationMode, st.SectionNavigation)
	}
}

func TestScreen_SelectSectionPersistsCategory(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	if err := f.screen.SelectSection(dramaID); err != nil {
		t.Fatalf("SelectSection: %v", err)
	}
	waitFor(t, "drama items", func() bool {
		return slices.Equal(visibleIDs(f.screen), []int64{2})
	})

	if got := f.prefs.LastUsedHistorySectionID.Get(); got != dramaID {
		t.Errorf("history section pref = %d, want %d", got, dramaID)
	}
	if got := f.prefs.LastUsedCategoryID.Get(); got != dramaID {
		t.Errorf("last category = %d, want %d", got, dramaID)
	}
	if got := f.prefs.LastUsedCategory.Get(); got != 1 {
		t.Errorf("last category index = %d, want 1", got)
	}
	if st := f.screen.State(); st.ActiveSection == nil || st.ActiveSection.Name != "Drama" {
		t.Errorf("active section = %+v, want Drama", st.ActiveSection)
	}
}

func TestScreen_SelectSectionBySourceLeavesCategory(t *testing.T) {
	f := startScreen(t, domain.ScopeBySource, sampleHistory())

	if err := f.screen.SelectSection(200); err != nil {
		t.Fatalf("SelectSection: %v", err)
	}
	waitFor(t, "source items", func() bool {
		return slices.Equal(visibleIDs(f.screen), []int64{2})
	})
	if got := f.prefs.LastUsedCategoryID.Get(); got != domain.UncategorizedID {
		t.Errorf("last category changed to %d", got)
	}
	if got := f.prefs.LastUsedHistorySectionID.Get(); got != 200 {
		t.Errorf("history section pref = %d, want 200", got)
	}
}

func TestScreen_SearchQuery(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	f.screen.SetSearchQuery("manga c")
	waitFor(t, "filtered items", func() bool {
		return slices.Equal(visibleIDs(f.screen), []int64{3})
	})
	if got := f.screen.State().SearchQuery; got != "manga c" {
		t.Errorf("query = %q", got)
	}

	f.screen.SetSearchQuery("")
	waitFor(t, "unfiltered items", func() bool {
		return slices.Equal(visibleIDs(f.screen), []int64{1, 3})
	})
}

func TestScreen_ToggleExternalEntries(t *testing.T) {
	h := sampleHistory()
	h.entries.Update(func(all []domain.HistoryEntry) []domain.HistoryEntry {
		return append(slices.Clone(all), external(4))
	})
	f := startScreen(t, domain.ScopeByCategory, h)

	waitFor(t, "external flag", func() bool { return f.screen.State().HasExternal })
	if slices.Contains(visibleIDs(f.screen), 4) {
		t.Fatal("external entry visible before toggle")
	}

	f.screen.ToggleExternalEntries()
	waitFor(t, "external entry", func() bool {
		return slices.Contains(visibleIDs(f.screen), 4)
	})
	if !f.screen.State().ShowExternal {
		t.Error("ShowExternal not set")
	}
}

func TestScreen_ConcurrentTogglesStayInSync(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.screen.ToggleExternalEntries()
		}()
	}
	wg.Wait()

	piped, _ := f.screen.showExternal.Get()
	if got := f.screen.State().ShowExternal; got || piped {
		t.Errorf("after an even number of toggles: state = %v, pipeline = %v, want both false", got, piped)
	}

	f.screen.ToggleExternalEntries()
	piped, _ = f.screen.showExternal.Get()
	if got := f.screen.State().ShowExternal; !got || !piped {
		t.Errorf("after one more toggle: state = %v, pipeline = %v, want both true", got, piped)
	}
}

func TestScreen_ClearActiveScope(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	if err := f.screen.ClearHistory(domain.DeleteActiveScope); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if diff := cmp.Diff([]int64{10, 30}, f.history.removedManga()); diff != "" {
		t.Errorf("removed manga (-want +got):\n%s", diff)
	}

	select {
	case e := <-f.screen.Events():
		if e != EventHistoryCleared {
			t.Errorf("event = %v, want %v", e, EventHistoryCleared)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}

	if err := f.screen.SelectSection(dramaID); err != nil {
		t.Fatalf("SelectSection: %v", err)
	}
	waitFor(t, "drama untouched", func() bool {
		return slices.Equal(visibleIDs(f.screen), []int64{2})
	})
}

func TestScreen_ClearEverything(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	if err := f.screen.ClearHistory(domain.DeleteEverything); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	waitFor(t, "empty list", func() bool { return len(f.screen.State().Items) == 0 })

	f.history.mu.Lock()
	cleared := f.history.cleared
	f.history.mu.Unlock()
	if !cleared {
		t.Error("RemoveAll not called")
	}
}

func TestScreen_ClearActiveScopeWhenUnscoped(t *testing.T) {
	f := startScreen(t, domain.ScopeUngrouped, sampleHistory())

	if err := f.screen.ClearHistory(domain.DeleteActiveScope); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if got := f.history.removedManga(); len(got) != 0 {
		t.Errorf("removed %v without an active section", got)
	}
	select {
	case e := <-f.screen.Events():
		t.Errorf("unexpected event %v", e)
	default:
	}
}

func TestScreen_HistoryErrorReportsEvent(t *testing.T) {
	h := sampleHistory()
	f := startScreen(t, domain.ScopeByCategory, h)

	h.mu.Lock()
	h.fail = true
	h.mu.Unlock()
	h.entries.Update(func(all []domain.HistoryEntry) []domain.HistoryEntry { return slices.Clone(all) })

	select {
	case e := <-f.screen.Events():
		if e != EventInternalError {
			t.Errorf("event = %v, want %v", e, EventInternalError)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error event")
	}
	waitFor(t, "empty list", func() bool { return len(f.screen.State().Items) == 0 })
	if !f.screen.State().Loaded {
		t.Error("state not loaded after error")
	}
}

func TestScreen_DeleteEntryAndDialog(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	target := f.screen.State().Items[1].(Item).Entry
	f.screen.SetDialog(DeleteDialog{Entry: target})
	if _, ok := f.screen.State().Dialog.(DeleteDialog); !ok {
		t.Fatalf("dialog = %T, want DeleteDialog", f.screen.State().Dialog)
	}

	if err := f.screen.DeleteEntry(target); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	f.screen.SetDialog(nil)
	waitFor(t, "entry removed", func() bool {
		return !slices.Contains(visibleIDs(f.screen), target.ID)
	})
	if f.screen.State().Dialog != nil {
		t.Error("dialog still open")
	}
}
