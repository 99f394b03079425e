package history

import (
	"context"
	"slices"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/stream"
)

// Inputs is a snapshot of everything the history screen derives its state from.
type Inputs struct {
	Query             string
	IncludeExternal   bool
	ScopeMode         domain.ScopeMode
	HistorySectionID  int64
	LastCategoryID    int64
	Categories        []domain.Category
	Library           []domain.LibraryManga
	NavigationEnabled bool
	NavigationMode    domain.NavigationMode
	ShowHidden        bool
}

// RequestedSectionID is the section the user last picked for the current
// mode. Category mode shares its selection with the library screen.
func (in Inputs) RequestedSectionID() int64 {
	if in.ScopeMode == domain.ScopeByCategory {
		return in.LastCategoryID
	}
	if in.HistorySectionID >= 0 {
		return in.HistorySectionID
	}
	return 0
}

// ShowDefaultCategory reports whether the default category gets a section.
func (in Inputs) ShowDefaultCategory() bool {
	return ShowDefaultCategory(in.Categories, in.Library, in.ShowHidden)
}

// Sources are the upstream value streams combined into Inputs.
type Sources struct {
	Query             <-chan string
	IncludeExternal   <-chan bool
	ScopeMode         <-chan domain.ScopeMode
	HistorySectionID  <-chan int64
	LastCategoryID    <-chan int64
	Categories        <-chan []domain.Category
	Library           <-chan []domain.LibraryManga
	NavigationEnabled <-chan bool
	NavigationMode    <-chan domain.NavigationMode
	ShowHidden        <-chan bool
}

const (
	hasQuery uint16 = 1 << iota
	hasIncludeExternal
	hasScopeMode
	hasHistorySectionID
	hasLastCategoryID
	hasCategories
	hasLibrary
	hasNavigationEnabled
	hasNavigationMode
	hasShowHidden

	hasAll = hasQuery | hasIncludeExternal | hasScopeMode | hasHistorySectionID | hasLastCategoryID |
		hasCategories | hasLibrary | hasNavigationEnabled | hasNavigationMode | hasShowHidden
)

// Combine merges sources into a stream of Inputs snapshots. Nothing is
// emitted until every source has produced a value; after that a snapshot is
// emitted whenever any source produces a value different from its previous
// one. The output closes when ctx is done.
func Combine(ctx context.Context, src Sources) <-chan Inputs {
	out := make(chan Inputs, 1)

	go func() {
		defer close(out)

		var in Inputs
		var have uint16

		// mark records that a source delivered a value and emits when the
		// snapshot is complete and something changed.
		mark := func(bit uint16, changed bool) {
			first := have&bit == 0
			have |= bit
			if have == hasAll && (changed || first) {
				stream.Offer(out, in)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case v, ok := <-src.Query:
				if !ok {
					src.Query = nil
					continue
				}
				changed := v != in.Query
				in.Query = v
				mark(hasQuery, changed)

			case v, ok := <-src.IncludeExternal:
				if !ok {
					src.IncludeExternal = nil
					continue
				}
				changed := v != in.IncludeExternal
				in.IncludeExternal = v
				mark(hasIncludeExternal, changed)

			case v, ok := <-src.ScopeMode:
				if !ok {
					src.ScopeMode = nil
					continue
				}
				changed := v != in.ScopeMode
				in.ScopeMode = v
				mark(hasScopeMode, changed)

			case v, ok := <-src.HistorySectionID:
				if !ok {
					src.HistorySectionID = nil
					continue
				}
				changed := v != in.HistorySectionID
				in.HistorySectionID = v
				mark(hasHistorySectionID, changed)

			case v, ok := <-src.LastCategoryID:
				if !ok {
					src.LastCategoryID = nil
					continue
				}
				changed := v != in.LastCategoryID
				in.LastCategoryID = v
				mark(hasLastCategoryID, changed)

			case v, ok := <-src.Categories:
				if !ok {
					src.Categories = nil
					continue
				}
				changed := !slices.Equal(v, in.Categories)
				in.Categories = v
				mark(hasCategories, changed)

			case v, ok := <-src.Library:
				if !ok {
					src.Library = nil
					continue
				}
				changed := !slices.EqualFunc(v, in.Library, libraryMangaEqual)
				in.Library = v
				mark(hasLibrary, changed)

			case v, ok := <-src.NavigationEnabled:
				if !ok {
					src.NavigationEnabled = nil
					continue
				}
				changed := v != in.NavigationEnabled
				in.NavigationEnabled = v
				mark(hasNavigationEnabled, changed)

			case v, ok := <-src.NavigationMode:
				if !ok {
					src.NavigationMode = nil
					continue
				}
				changed := v != in.NavigationMode
				in.NavigationMode = v
				mark(hasNavigationMode, changed)

			case v, ok := <-src.ShowHidden:
				if !ok {
					src.ShowHidden = nil
					continue
				}
				changed := v != in.ShowHidden
				in.ShowHidden = v
				mark(hasShowHidden, changed)
			}
		}
	}()

	return out
}

func libraryMangaEqual(a, b domain.LibraryManga) bool {
	return a.Manga.ID == b.Manga.ID &&
		a.Manga.Source == b.Manga.Source &&
		a.Manga.Title == b.Manga.Title &&
		a.Manga.Status == b.Manga.Status &&
		a.Manga.Favorite == b.Manga.Favorite &&
		slices.Equal(a.Categories, b.Categories)
}
