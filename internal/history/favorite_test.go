package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
)

func TestScreen_AddFavoriteUsesDefaultCategory(t *testing.T) {
	tests := []struct {
		name    string
		def     int64
		wantCat []int64
	}{
		{name: "existing category", def: dramaID, wantCat: []int64{dramaID}},
		{name: "uncategorized", def: domain.UncategorizedID, wantCat: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := startScreen(t, domain.ScopeByCategory, sampleHistory())
			if err := f.prefs.DefaultCategory.Set(tt.def); err != nil {
				t.Fatalf("set default category: %v", err)
			}

			added, err := f.screen.AddFavorite(external(4))
			if err != nil {
				t.Fatalf("AddFavorite: %v", err)
			}
			if !added {
				t.Fatal("AddFavorite reported not added")
			}
			if d := f.screen.State().Dialog; d != nil {
				t.Errorf("dialog = %#v, want none", d)
			}
			if diff := cmp.Diff([]int64{40}, f.library.favorited()); diff != "" {
				t.Errorf("favorites (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCat, f.library.MangaCategories(40)); diff != "" {
				t.Errorf("categories (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScreen_AddFavoriteWithoutCategoriesSkipsDialog(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())
	f.library.categories = nil

	added, err := f.screen.AddFavorite(external(4))
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if !added {
		t.Fatal("AddFavorite reported not added")
	}
	if diff := cmp.Diff([]int64{40}, f.library.favorited()); diff != "" {
		t.Errorf("favorites (-want +got):\n%s", diff)
	}
}

func TestScreen_AddFavoriteAsksForCategories(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())
	ext := external(4)

	added, err := f.screen.AddFavorite(ext)
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if added {
		t.Fatal("AddFavorite added without asking")
	}
	if got := f.library.favorited(); len(got) != 0 {
		t.Fatalf("favorites = %v before confirming", got)
	}

	d, ok := f.screen.State().Dialog.(ChangeCategoryDialog)
	if !ok {
		t.Fatalf("dialog = %#v, want ChangeCategoryDialog", f.screen.State().Dialog)
	}
	if d.Entry.ID != ext.ID {
		t.Errorf("dialog entry = %d, want %d", d.Entry.ID, ext.ID)
	}
	if got := len(d.Categories); got != 2 {
		t.Errorf("dialog lists %d categories, want 2", got)
	}

	d = d.Toggle(dramaID)
	if err := f.screen.MoveToCategoriesAndAddToLibrary(d.Entry, d.Selected); err != nil {
		t.Fatalf("MoveToCategoriesAndAddToLibrary: %v", err)
	}
	if diff := cmp.Diff([]int64{40}, f.library.favorited()); diff != "" {
		t.Errorf("favorites (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{dramaID}, f.library.MangaCategories(40)); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestScreen_AddFavoriteIgnoresLibraryEntries(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	added, err := f.screen.AddFavorite(entry(1, 0, 9, actionID))
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if added || f.screen.State().Dialog != nil {
		t.Errorf("added = %v, dialog = %#v; want no change", added, f.screen.State().Dialog)
	}
}

func TestScreen_MoveToCategoriesKeepsLibraryManga(t *testing.T) {
	f := startScreen(t, domain.ScopeByCategory, sampleHistory())

	if err := f.screen.MoveToCategoriesAndAddToLibrary(entry(1, 0, 9, actionID), []int64{actionID, dramaID}); err != nil {
		t.Fatalf("MoveToCategoriesAndAddToLibrary: %v", err)
	}
	if got := f.library.favorited(); len(got) != 0 {
		t.Errorf("favorites = %v, want none for a library manga", got)
	}
	if diff := cmp.Diff([]int64{actionID, dramaID}, f.library.MangaCategories(10)); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestChangeCategoryDialog_Toggle(t *testing.T) {
	d := ChangeCategoryDialog{
		Categories: []domain.Category{{ID: 1}, {ID: 2}, {ID: 3}},
		Selected:   []int64{3},
	}

	got := d.Toggle(1)
	if diff := cmp.Diff([]int64{1, 3}, got.Selected); diff != "" {
		t.Errorf("after selecting 1 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3}, d.Selected); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}

	got = got.Toggle(3)
	if diff := cmp.Diff([]int64{1}, got.Selected); diff != "" {
		t.Errorf("after clearing 3 (-want +got):\n%s", diff)
	}
	if !got.IsSelected(1) || got.IsSelected(3) {
		t.Errorf("IsSelected disagrees with %v", got.Selected)
	}
}
