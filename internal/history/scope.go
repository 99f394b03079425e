package history

import "github.com/mmcdole/shelf/internal/domain"

// NoSection marks the absence of an active section.
const NoSection int64 = -1

// ResolveSection picks the active section for a possibly stale requested id.
//
// Ungrouped mode, a negative request and an empty section list resolve to no
// section. A request that is not in the list falls back to the first section,
// so a deleted or hidden category never leaves the screen without a scope.
func ResolveSection(mode domain.ScopeMode, requested int64, sections []domain.Section) (int64, bool) {
	if mode == domain.ScopeUngrouped || requested < 0 || len(sections) == 0 {
		return NoSection, false
	}
	for _, s := range sections {
		if s.ID == requested {
			return requested, true
		}
	}
	return sections[0].ID, true
}

// FindSection returns the section with id.
func FindSection(sections []domain.Section, id int64) (domain.Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Section{}, false
}
