package library

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

// Writer is the write side of the store used by Commands.
type Writer interface {
	PutManga(m domain.Manga) (int64, error)
	SetFavorite(id int64, favorite bool) error
	PutSource(src domain.Source) error
	AddHistory(rec domain.HistoryRecord) (int64, error)
	DeleteHistory(id int64) error
	DeleteHistoryForManga(mangaID int64) error
	DeleteAllHistory() (int, error)
}

// Commands performs library and history mutations.
type Commands struct {
	store  Writer
	logger *slog.Logger
}

// NewCommands creates a new Commands instance.
func NewCommands(store Writer, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{store: store, logger: logger}
}

// AddManga stores a manga and returns its id.
func (c *Commands) AddManga(m domain.Manga) (int64, error) {
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now()
	}
	id, err := c.store.PutManga(m)
	if err != nil {
		c.logger.Error("failed to save manga", "error", err, "title", m.Title)
		return 0, fmt.Errorf("save manga: %w", err)
	}
	c.logger.Debug("saved manga", "mangaID", id, "title", m.Title)
	return id, nil
}

func (c *Commands) RegisterSource(src domain.Source) error {
	return c.store.PutSource(src)
}

// UpdateFavorite adds a manga to, or removes it from, the library.
func (c *Commands) UpdateFavorite(mangaID int64, favorite bool) error {
	if err := c.store.SetFavorite(mangaID, favorite); err != nil {
		c.logger.Error("failed to update favorite", "error", err, "mangaID", mangaID)
		return err
	}
	return nil
}

// RecordRead appends a read event for a chapter.
func (c *Commands) RecordRead(mangaID, chapterID int64, chapterNumber float64, readAt time.Time, duration time.Duration) (int64, error) {
	id, err := c.store.AddHistory(domain.HistoryRecord{
		MangaID:       mangaID,
		ChapterID:     chapterID,
		ChapterNumber: chapterNumber,
		ReadAt:        readAt,
		ReadDuration:  duration,
	})
	if err != nil {
		c.logger.Error("failed to record read", "error", err, "mangaID", mangaID, "chapterID", chapterID)
		return 0, err
	}
	return id, nil
}

// RemoveHistory deletes a single read event.
func (c *Commands) RemoveHistory(id int64) error {
	if err := c.store.DeleteHistory(id); err != nil {
		c.logger.Error("failed to remove history", "error", err, "historyID", id)
		return err
	}
	return nil
}

// RemoveAllForManga deletes every read event of a manga.
func (c *Commands) RemoveAllForManga(mangaID int64) error {
	if err := c.store.DeleteHistoryForManga(mangaID); err != nil {
		c.logger.Error("failed to remove manga history", "error", err, "mangaID", mangaID)
		return err
	}
	return nil
}

// RemoveAll wipes the whole history.
func (c *Commands) RemoveAll() error {
	n, err := c.store.DeleteAllHistory()
	if err != nil {
		c.logger.Error("failed to clear history", "error", err)
		return err
	}
	c.logger.Info("cleared history", "removed", n)
	return nil
}
