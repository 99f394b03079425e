package domain

import "time"

// Manga status codes as reported by sources.
const (
	StatusUnknown            int64 = 0
	StatusOngoing            int64 = 1
	StatusCompleted          int64 = 2
	StatusLicensed           int64 = 3
	StatusPublishingFinished int64 = 4
	StatusCancelled          int64 = 5
	StatusOnHiatus           int64 = 6
)

// LocalSourceID identifies manga imported from the local filesystem.
const LocalSourceID int64 = 0

// Manga is a series known to the app, whether or not it is in the library.
type Manga struct {
	ID       int64     `json:"id"`
	Source   int64     `json:"source"`
	Title    string    `json:"title"`
	Author   string    `json:"author,omitempty"`
	Genre    []string  `json:"genre,omitempty"`
	Status   int64     `json:"status"`
	Favorite bool      `json:"favorite"`
	AddedAt  time.Time `json:"added_at"`
}

// LibraryManga is a favorited manga together with the categories it belongs to.
// An empty Categories slice means the manga is uncategorized.
type LibraryManga struct {
	Manga      Manga
	Categories []int64
}

// IsUncategorized reports whether the manga belongs in the default category.
func (l LibraryManga) IsUncategorized() bool {
	if len(l.Categories) == 0 {
		return true
	}
	for _, id := range l.Categories {
		if id == UncategorizedID {
			return true
		}
	}
	return false
}

// Source is a catalogue the manga was added from.
type Source struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang,omitempty"`
}

// SourceResolver maps numeric source ids to display names.
// Unknown ids resolve to an empty name.
type SourceResolver interface {
	SourceName(id int64) string
}
