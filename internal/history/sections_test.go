package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
)

func libManga(id, source, status int64, categories ...int64) domain.LibraryManga {
	return domain.LibraryManga{
		Manga:      domain.Manga{ID: id, Source: source, Status: status, Favorite: true},
		Categories: categories,
	}
}

func TestBuildSections_Category(t *testing.T) {
	categories := []domain.Category{
		{ID: 3, Name: "Drama", Order: 2},
		{ID: 0, Name: "", Order: 0},
		{ID: 2, Name: "Action", Order: 1},
		{ID: 4, Name: "Secret", Order: 3, Hidden: true},
	}

	tests := []struct {
		name        string
		showHidden  bool
		showDefault bool
		want        []domain.Section
	}{
		{
			name: "visible user categories only",
			want: []domain.Section{
				{ID: 2, Name: "Action", Order: 1},
				{ID: 3, Name: "Drama", Order: 2},
			},
		},
		{
			name:        "default first when shown",
			showDefault: true,
			want: []domain.Section{
				{ID: 0, Name: domain.DefaultCategoryLabel, Order: 0},
				{ID: 2, Name: "Action", Order: 1},
				{ID: 3, Name: "Drama", Order: 2},
			},
		},
		{
			name:       "hidden categories when requested",
			showHidden: true,
			want: []domain.Section{
				{ID: 2, Name: "Action", Order: 1},
				{ID: 3, Name: "Drama", Order: 2},
				{ID: 4, Name: "Secret", Order: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSections(domain.ScopeByCategory, categories, nil, tt.showHidden, tt.showDefault, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildSections_Source(t *testing.T) {
	library := []domain.LibraryManga{
		libManga(1, 200, domain.StatusOngoing),
		libManga(2, 0, domain.StatusOngoing),
		libManga(3, 100, domain.StatusOngoing),
		libManga(4, 200, domain.StatusOngoing),
		libManga(5, 300, domain.StatusOngoing),
	}
	names := sourceNames{100: "mangadex", 200: "Bato", 300: ""}

	got := BuildSections(domain.ScopeBySource, nil, library, false, false, names)
	want := []domain.Section{
		{ID: 300, Name: "300", Order: 0},
		{ID: 200, Name: "Bato", Order: 1},
		{ID: 0, Name: LocalSourceLabel, Order: 2},
		{ID: 100, Name: "mangadex", Order: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSections_Status(t *testing.T) {
	library := []domain.LibraryManga{
		libManga(1, 1, domain.StatusUnknown),
		libManga(2, 1, domain.StatusCompleted),
		libManga(3, 1, domain.StatusOnHiatus),
		libManga(4, 1, 42),
		libManga(5, 1, domain.StatusCompleted),
		libManga(6, 1, domain.StatusOngoing),
	}

	got := BuildSections(domain.ScopeByStatus, nil, library, false, false, nil)
	want := []domain.Section{
		{ID: domain.StatusOngoing, Name: "Ongoing", Order: 1},
		{ID: domain.StatusCompleted, Name: "Completed", Order: 2},
		{ID: domain.StatusOnHiatus, Name: "On hiatus", Order: 5},
		{ID: domain.StatusUnknown, Name: "Unknown", Order: 7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSections_UngroupedIsEmpty(t *testing.T) {
	library := []domain.LibraryManga{libManga(1, 1, domain.StatusOngoing)}
	if got := BuildSections(domain.ScopeUngrouped, nil, library, true, true, nil); len(got) != 0 {
		t.Errorf("got %d sections, want none", len(got))
	}
}

func TestBuildSections_OrderNonDecreasing(t *testing.T) {
	categories := []domain.Category{
		{ID: 0, Order: 0},
		{ID: 9, Name: "z", Order: 5},
		{ID: 7, Name: "y", Order: 1},
		{ID: 8, Name: "x", Order: 1},
	}
	library := []domain.LibraryManga{
		libManga(1, 5, domain.StatusCancelled),
		libManga(2, 0, domain.StatusOngoing),
		libManga(3, 7, domain.StatusLicensed),
		libManga(4, 6, domain.StatusUnknown),
	}
	names := sourceNames{5: "beta", 6: "Alpha", 7: "gamma"}

	for _, mode := range []domain.ScopeMode{domain.ScopeByCategory, domain.ScopeBySource, domain.ScopeByStatus} {
		t.Run(mode.String(), func(t *testing.T) {
			sections := BuildSections(mode, categories, library, true, true, names)
			if len(sections) == 0 {
				t.Fatal("expected sections")
			}
			for i := 1; i < len(sections); i++ {
				if sections[i].Order < sections[i-1].Order {
					t.Errorf("order decreases at %d: %+v", i, sections)
				}
			}
		})
	}
}

func TestShowDefaultCategory(t *testing.T) {
	uncategorized := []domain.LibraryManga{libManga(1, 1, 1)}
	categorized := []domain.LibraryManga{libManga(1, 1, 1, 5)}

	tests := []struct {
		name       string
		categories []domain.Category
		library    []domain.LibraryManga
		showHidden bool
		want       bool
	}{
		{"missing default", []domain.Category{{ID: 5, Name: "A"}}, uncategorized, false, false},
		{"empty default", []domain.Category{{ID: 0}}, categorized, false, false},
		{"uncategorized manga", []domain.Category{{ID: 0}}, uncategorized, false, true},
		{"custom name", []domain.Category{{ID: 0, Name: "Inbox"}}, categorized, false, true},
		{"hidden", []domain.Category{{ID: 0, Hidden: true}}, uncategorized, false, false},
		{"hidden but shown", []domain.Category{{ID: 0, Hidden: true}}, uncategorized, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShowDefaultCategory(tt.categories, tt.library, tt.showHidden); got != tt.want {
				t.Errorf("ShowDefaultCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}
