package domain

import (
	"strings"
	"time"
)

// HistoryRecord is a single persisted read event.
type HistoryRecord struct {
	ID            int64         `json:"id"`
	MangaID       int64         `json:"manga_id"`
	ChapterID     int64         `json:"chapter_id"`
	ChapterNumber float64       `json:"chapter_number"`
	ReadAt        time.Time     `json:"read_at"`
	ReadDuration  time.Duration `json:"read_duration"`
}

// HistoryEntry is a read event joined with the manga it belongs to.
type HistoryEntry struct {
	ID            int64
	MangaID       int64
	ChapterID     int64
	ChapterNumber float64
	Title         string
	Genre         []string
	ReadAt        time.Time
	ReadDuration  time.Duration
	CategoryIDs   []int64
	SourceID      int64
	Status        int64
	InLibrary     bool
}

// IsExternal reports whether the entry's manga is not in the library.
func (h HistoryEntry) IsExternal() bool {
	return !h.InLibrary
}

// ScopeMode selects how history sections are derived.
type ScopeMode int

const (
	ScopeByCategory ScopeMode = iota
	ScopeBySource
	ScopeByStatus
	ScopeUngrouped
)

// Library grouping preference values.
const (
	LibraryGroupByDefault = 0
	LibraryGroupBySource  = 1
	LibraryGroupByStatus  = 2
	LibraryGroupUngrouped = 3
)

// ScopeModeFromLibraryGroup maps the library grouping preference to a scope mode.
// Unknown values fall back to category scoping.
func ScopeModeFromLibraryGroup(group int) ScopeMode {
	switch group {
	case LibraryGroupBySource:
		return ScopeBySource
	case LibraryGroupByStatus:
		return ScopeByStatus
	case LibraryGroupUngrouped:
		return ScopeUngrouped
	default:
		return ScopeByCategory
	}
}

// LibraryGroup is the inverse of ScopeModeFromLibraryGroup.
func (m ScopeMode) LibraryGroup() int {
	switch m {
	case ScopeBySource:
		return LibraryGroupBySource
	case ScopeByStatus:
		return LibraryGroupByStatus
	case ScopeUngrouped:
		return LibraryGroupUngrouped
	default:
		return LibraryGroupByDefault
	}
}

func (m ScopeMode) String() string {
	switch m {
	case ScopeByCategory:
		return "category"
	case ScopeBySource:
		return "source"
	case ScopeByStatus:
		return "status"
	case ScopeUngrouped:
		return "ungrouped"
	default:
		return "unknown"
	}
}

// ParseScopeMode parses the String form of a scope mode.
func ParseScopeMode(s string) (ScopeMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category", "":
		return ScopeByCategory, true
	case "source":
		return ScopeBySource, true
	case "status":
		return ScopeByStatus, true
	case "ungrouped", "none":
		return ScopeUngrouped, true
	}
	return ScopeByCategory, false
}

// NavigationMode controls how sections are presented.
type NavigationMode string

const (
	NavigationDropdown NavigationMode = "dropdown"
	NavigationTabs     NavigationMode = "tabs"
)

// Section is a navigable history grouping: a category, a source or a status bucket.
type Section struct {
	ID    int64
	Name  string
	Order int64
}

// DeletionScope selects what ClearHistory removes.
type DeletionScope int

const (
	DeleteActiveScope DeletionScope = iota
	DeleteEverything
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
