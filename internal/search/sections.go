package search

import (
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/sahilm/fuzzy"
)

// sectionIndex implements sahilm/fuzzy.Source over section names
type sectionIndex []domain.Section

func (idx sectionIndex) String(i int) string { return idx[i].Name }
func (idx sectionIndex) Len() int            { return len(idx) }

// SectionMatch is a ranked section with the byte offsets of the matched runes.
type SectionMatch struct {
	Section        domain.Section
	MatchedIndexes []int
}

// RankSections orders sections by how well their name matches query.
// A blank query returns every section in its original order.
func RankSections(query string, sections []domain.Section) []SectionMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]SectionMatch, len(sections))
		for i, s := range sections {
			out[i] = SectionMatch{Section: s}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, sectionIndex(sections))
	out := make([]SectionMatch, len(matches))
	for i, m := range matches {
		out[i] = SectionMatch{Section: sections[m.Index], MatchedIndexes: m.MatchedIndexes}
	}
	return out
}
