package search

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/shelf/internal/domain"
)

// FilterHistory keeps the entries whose title fuzzily matches query,
// preserving input order. A blank query returns entries unchanged.
func FilterHistory(query string, entries []domain.HistoryEntry) []domain.HistoryEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if matchTitle(query, e.Title) {
			out = append(out, e)
		}
	}
	return out
}

// matchTitle requires every whitespace-separated query token to match, so
// word order in the query does not matter.
func matchTitle(query, title string) bool {
	for _, token := range strings.Fields(query) {
		if !fuzzy.MatchNormalizedFold(token, title) {
			return false
		}
	}
	return true
}
