package history

import (
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

// Result is the derived portion of the screen state.
type Result struct {
	Items            []UIModel
	Sections         []domain.Section
	ActiveSection    *domain.Section
	ActiveSectionID  int64
	ScopeEnabled     bool
	HasExternal      bool
	SectionHistories map[int64][]domain.HistoryEntry
	ScopeMode        domain.ScopeMode
	NavigationOn     bool
	NavigationMode   domain.NavigationMode
}

// Derive computes the screen state for a history list and an input snapshot.
// Scoping applies only when the mode groups entries and section navigation
// is enabled; otherwise the full list is shown.
func Derive(entries []domain.HistoryEntry, in Inputs, sources domain.SourceResolver, loc *time.Location) Result {
	mode := in.ScopeMode
	scoped := mode != domain.ScopeUngrouped && in.NavigationEnabled

	sections := BuildSections(mode, in.Categories, in.Library, in.ShowHidden, in.ShowDefaultCategory(), sources)

	histories := map[int64][]domain.HistoryEntry{}
	if scoped && len(sections) > 0 {
		histories = Bucketize(entries, sections, mode, in.IncludeExternal)
	}

	activeID, ok := ResolveSection(mode, in.RequestedSectionID(), sections)

	visible := entries
	if scoped && ok {
		visible = histories[activeID]
	}

	var active *domain.Section
	if ok {
		if s, found := FindSection(sections, activeID); found {
			active = &s
		}
	}

	hasExternal := false
	for _, e := range entries {
		if e.IsExternal() {
			hasExternal = true
			break
		}
	}

	return Result{
		Items:            ToUIModels(visible, loc),
		Sections:         sections,
		ActiveSection:    active,
		ActiveSectionID:  activeID,
		ScopeEnabled:     scoped && ok,
		HasExternal:      hasExternal,
		SectionHistories: histories,
		ScopeMode:        mode,
		NavigationOn:     in.NavigationEnabled,
		NavigationMode:   in.NavigationMode,
	}
}
