package history

import "github.com/mmcdole/shelf/internal/domain"

// Bucketize partitions entries into one bucket per section.
//
// External entries are dropped unless includeExternal is set, in which case
// they are added to every bucket. Library entries go to the buckets of their
// categories, source or status depending on mode. Under category mode an
// entry with no categories, the uncategorized sentinel, or only unknown
// categories lands in the default bucket when that bucket exists. Under
// source and status mode entries without a matching bucket are dropped.
// Relative entry order is preserved within each bucket.
func Bucketize(
	entries []domain.HistoryEntry,
	sections []domain.Section,
	mode domain.ScopeMode,
	includeExternal bool,
) map[int64][]domain.HistoryEntry {
	if len(sections) == 0 || mode == domain.ScopeUngrouped {
		return map[int64][]domain.HistoryEntry{}
	}

	buckets := make(map[int64][]domain.HistoryEntry, len(sections))
	for _, s := range sections {
		buckets[s.ID] = []domain.HistoryEntry{}
	}

	add := func(id int64, e domain.HistoryEntry) bool {
		bucket, ok := buckets[id]
		if !ok {
			return false
		}
		buckets[id] = append(bucket, e)
		return true
	}

	for _, e := range entries {
		if e.IsExternal() {
			if includeExternal {
				for _, s := range sections {
					add(s.ID, e)
				}
			}
			continue
		}

		switch mode {
		case domain.ScopeByCategory:
			uncategorized := len(e.CategoryIDs) == 0
			matched := false
			seen := make(map[int64]bool, len(e.CategoryIDs))
			for _, id := range e.CategoryIDs {
				if id == domain.UncategorizedID {
					uncategorized = true
					continue
				}
				if seen[id] {
					continue
				}
				seen[id] = true
				if add(id, e) {
					matched = true
				}
			}
			if uncategorized || !matched {
				add(domain.UncategorizedID, e)
			}
		case domain.ScopeBySource:
			add(e.SourceID, e)
		case domain.ScopeByStatus:
			add(e.Status, e)
		}
	}
	return buckets
}
