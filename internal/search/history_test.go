package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
)

func titles(entries []domain.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestFilterHistory(t *testing.T) {
	entries := []domain.HistoryEntry{
		{ID: 1, Title: "One Piece"},
		{ID: 2, Title: "Vinland Saga"},
		{ID: 3, Title: "Piece of Cake"},
		{ID: 4, Title: "Berserk"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank returns all", query: "  ", want: []string{"One Piece", "Vinland Saga", "Piece of Cake", "Berserk"}},
		{name: "case insensitive", query: "piece", want: []string{"One Piece", "Piece of Cake"}},
		{name: "subsequence", query: "vsg", want: []string{"Vinland Saga"}},
		{name: "tokens in any order", query: "piece one", want: []string{"One Piece"}},
		{name: "every token must match", query: "berserk saga", want: []string{}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(FilterHistory(tt.query, entries))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterHistory(%q) (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestRankSections(t *testing.T) {
	sections := []domain.Section{
		{ID: 1, Name: "Action"},
		{ID: 2, Name: "Drama"},
		{ID: 3, Name: "Reading"},
	}

	t.Run("blank keeps order", func(t *testing.T) {
		got := RankSections("", sections)
		if len(got) != 3 {
			t.Fatalf("got %d matches, want 3", len(got))
		}
		for i, m := range got {
			if m.Section.ID != sections[i].ID || m.MatchedIndexes != nil {
				t.Errorf("match %d = %+v", i, m)
			}
		}
	})

	t.Run("filters and reports offsets", func(t *testing.T) {
		got := RankSections("dr", sections)
		if len(got) != 1 || got[0].Section.ID != 2 {
			t.Fatalf("got %+v, want only Drama", got)
		}
		if diff := cmp.Diff([]int{0, 1}, got[0].MatchedIndexes); diff != "" {
			t.Errorf("indexes (-want +got):\n%s", diff)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if got := RankSections("xyz", sections); len(got) != 0 {
			t.Errorf("got %+v, want none", got)
		}
	})
}
