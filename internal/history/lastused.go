package history

import (
	"context"

	"github.com/mmcdole/shelf/internal/prefs"
)

// LastUsedCategory is the category selection shared by every screen that
// scopes by category. The value lives in memory and is persisted through the
// backing preference; all observers see a change as soon as it is set.
type LastUsedCategory struct {
	pref *prefs.Preference[int64]
}

func NewLastUsedCategory(pref *prefs.Preference[int64]) *LastUsedCategory {
	return &LastUsedCategory{pref: pref}
}

func (l *LastUsedCategory) Current() int64 {
	return l.pref.Get()
}

// Set updates the selection. Setting the current value does nothing.
func (l *LastUsedCategory) Set(categoryID int64) error {
	return l.pref.Set(categoryID)
}

func (l *LastUsedCategory) Changes(ctx context.Context) <-chan int64 {
	return l.pref.Changes(ctx)
}
