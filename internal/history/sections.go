package history

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
)

// LocalSourceLabel names the local filesystem source.
const LocalSourceLabel = "Local source"

type statusInfo struct {
	name  string
	order int64
}

// statusTable maps manga status codes to section names and display order.
// Codes missing from the table never produce a section.
var statusTable = map[int64]statusInfo{
	domain.StatusOngoing:            {"Ongoing", 1},
	domain.StatusCompleted:          {"Completed", 2},
	domain.StatusPublishingFinished: {"Publishing finished", 3},
	domain.StatusLicensed:           {"Licensed", 4},
	domain.StatusOnHiatus:           {"On hiatus", 5},
	domain.StatusCancelled:          {"Cancelled", 6},
	domain.StatusUnknown:            {"Unknown", 7},
}

// BuildSections derives the navigable sections for mode.
//
// Category sections list the default category first (only when showDefault
// is set) followed by user categories, skipping hidden ones unless showHidden
// is set. Source sections are sorted case-insensitively by name. Status
// sections follow the fixed status order. Ungrouped mode has no sections.
func BuildSections(
	mode domain.ScopeMode,
	categories []domain.Category,
	library []domain.LibraryManga,
	showHidden bool,
	showDefault bool,
	sources domain.SourceResolver,
) []domain.Section {
	switch mode {
	case domain.ScopeByCategory:
		return categorySections(categories, showHidden, showDefault)
	case domain.ScopeBySource:
		return sourceSections(library, sources)
	case domain.ScopeByStatus:
		return statusSections(library)
	default:
		return nil
	}
}

func categorySections(categories []domain.Category, showHidden, showDefault bool) []domain.Section {
	var system *domain.Category
	user := make([]domain.Category, 0, len(categories))
	for i := range categories {
		c := categories[i]
		if c.IsSystem() {
			if system == nil {
				system = &categories[i]
			}
			continue
		}
		if showHidden || !c.Hidden {
			user = append(user, c)
		}
	}
	sort.SliceStable(user, func(i, j int) bool { return user[i].Order < user[j].Order })

	sections := make([]domain.Section, 0, len(user)+1)
	if system != nil && showDefault {
		sections = append(sections, domain.Section{ID: system.ID, Name: system.VisualName(), Order: system.Order})
	}
	for _, c := range user {
		sections = append(sections, domain.Section{ID: c.ID, Name: c.VisualName(), Order: c.Order})
	}
	return sections
}

func sourceSections(library []domain.LibraryManga, sources domain.SourceResolver) []domain.Section {
	type named struct {
		id   int64
		name string
	}

	seen := make(map[int64]bool)
	var list []named
	for _, m := range library {
		id := m.Manga.Source
		if seen[id] {
			continue
		}
		seen[id] = true
		list = append(list, named{id: id, name: sourceLabel(id, sources)})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].name) < strings.ToLower(list[j].name)
	})

	sections := make([]domain.Section, len(list))
	for i, s := range list {
		sections[i] = domain.Section{ID: s.id, Name: s.name, Order: int64(i)}
	}
	return sections
}

// sourceLabel resolves a display name, falling back to the numeric id.
func sourceLabel(id int64, sources domain.SourceResolver) string {
	if id == domain.LocalSourceID {
		return LocalSourceLabel
	}
	var name string
	if sources != nil {
		name = sources.SourceName(id)
	}
	if strings.TrimSpace(name) == "" {
		return strconv.FormatInt(id, 10)
	}
	return name
}

func statusSections(library []domain.LibraryManga) []domain.Section {
	seen := make(map[int64]bool)
	var sections []domain.Section
	for _, m := range library {
		status := m.Manga.Status
		if seen[status] {
			continue
		}
		seen[status] = true
		info, ok := statusTable[status]
		if !ok {
			continue
		}
		sections = append(sections, domain.Section{ID: status, Name: info.name, Order: info.order})
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	return sections
}

// ShowDefaultCategory reports whether the default category deserves a
// section: it must exist, have content (a custom name or uncategorized
// library manga) and not be hidden unless hidden categories are shown.
func ShowDefaultCategory(categories []domain.Category, library []domain.LibraryManga, showHidden bool) bool {
	var system *domain.Category
	for i := range categories {
		if categories[i].IsSystem() {
			system = &categories[i]
			break
		}
	}
	if system == nil {
		return false
	}

	hasContent := strings.TrimSpace(system.Name) != ""
	if !hasContent {
		for _, m := range library {
			if m.IsUncategorized() {
				hasContent = true
				break
			}
		}
	}
	return hasContent && (showHidden || !system.Hidden)
}
