package history

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

// sourceNames resolves source ids from a map.
type sourceNames map[int64]string

func (s sourceNames) SourceName(id int64) string { return s[id] }

// memoryPrefs is an in-memory prefs.Backend.
type memoryPrefs struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string][]byte)}
}

func (m *memoryPrefs) GetPref(key string, dest interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (m *memoryPrefs) SetPref(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	return nil
}

var day0 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// entry builds a library history entry read at hour h of day0 shifted by days.
func entry(id int64, days, h int, categories ...int64) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          id,
		MangaID:     id * 10,
		Title:       "Manga " + string(rune('A'+id-1)),
		ReadAt:      day0.AddDate(0, 0, days).Add(time.Duration(h) * time.Hour),
		CategoryIDs: categories,
		InLibrary:   true,
	}
}

func external(id int64) domain.HistoryEntry {
	e := entry(id, 0, 1)
	e.InLibrary = false
	return e
}

func ids(entries []domain.HistoryEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func sectionIDs(sections []domain.Section) []int64 {
	out := make([]int64, len(sections))
	for i, s := range sections {
		out[i] = s.ID
	}
	return out
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
