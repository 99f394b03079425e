package history

import (
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

// UIModel is a row of the history list: a day Header or an Item.
type UIModel interface {
	isUIModel()
}

// Header opens the group of entries read on Date.
type Header struct {
	Date time.Time
}

// Item wraps a single history entry.
type Item struct {
	Entry domain.HistoryEntry
}

func (Header) isUIModel() {}
func (Item) isUIModel()   {}

// ToUIModels wraps entries as items and inserts a Header before the first
// item of every calendar day in loc. Entries are expected newest first; no
// sorting happens here. Entries without a read time get no header.
func ToUIModels(entries []domain.HistoryEntry, loc *time.Location) []UIModel {
	if loc == nil {
		loc = time.Local
	}
	out := make([]UIModel, 0, len(entries)+len(entries)/4)

	var prev time.Time
	for _, e := range entries {
		day := dayOf(e.ReadAt, loc)
		if !day.IsZero() && !day.Equal(prev) {
			out = append(out, Header{Date: day})
		}
		out = append(out, Item{Entry: e})
		prev = day
	}
	return out
}

// dayOf truncates t to midnight in loc. The zero time has no day.
func dayOf(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
