package library

import (
	"context"
	"log/slog"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/search"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/stream"
)

// Reader is the read side of the store used by Queries.
type Reader interface {
	Watch(ctx context.Context, tables ...store.Table) <-chan struct{}
	LibraryManga() ([]domain.LibraryManga, error)
	History() ([]domain.HistoryEntry, error)
	Manga(id int64) (domain.Manga, error)
	SourceName(id int64) string
}

// Queries provides reads and change subscriptions over library data.
type Queries struct {
	store  Reader
	logger *slog.Logger
}

// NewQueries creates a new Queries instance.
func NewQueries(store Reader, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queries{store: store, logger: logger}
}

func (q *Queries) LibraryManga() ([]domain.LibraryManga, error) {
	return q.store.LibraryManga()
}

func (q *Queries) Manga(id int64) (domain.Manga, error) {
	return q.store.Manga(id)
}

// SourceName implements domain.SourceResolver.
func (q *Queries) SourceName(id int64) string {
	return q.store.SourceName(id)
}

// SubscribeLibraryManga emits the library on subscribe and after every change.
// Read failures are logged and skipped.
func (q *Queries) SubscribeLibraryManga(ctx context.Context) <-chan []domain.LibraryManga {
	results := stream.Query(ctx, q.store.Watch(ctx, store.TableManga), q.store.LibraryManga)
	return stream.Values(ctx, results, func(err error) {
		q.logger.Error("failed to load library", "error", err)
	})
}

// History returns the latest read event per manga filtered by query.
func (q *Queries) History(query string) ([]domain.HistoryEntry, error) {
	entries, err := q.store.History()
	if err != nil {
		return nil, err
	}
	return search.FilterHistory(query, entries), nil
}

// SubscribeHistory emits the filtered history on subscribe and after every
// change to history or manga data. Errors are delivered to the caller.
func (q *Queries) SubscribeHistory(ctx context.Context, query string) <-chan stream.Result[[]domain.HistoryEntry] {
	trigger := q.store.Watch(ctx, store.TableHistory, store.TableManga)
	return stream.Query(ctx, trigger, func() ([]domain.HistoryEntry, error) {
		return q.History(query)
	})
}
