// Package collection manages user collections: ordered, badge-annotated
// groups of manga that can be linked to categories.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/stream"
)

// Store is the persistence surface the service needs.
type Store interface {
	Watch(ctx context.Context, tables ...store.Table) <-chan struct{}
	Collections() ([]domain.Collection, error)
	Collection(id int64) (domain.Collection, error)
	InsertCollection(c domain.Collection) (int64, error)
	UpdateCollection(u domain.CollectionUpdate) error
	DeleteCollection(id int64) error
	CollectionItems(collectionID int64) ([]domain.CollectionItem, error)
	InsertCollectionItem(it domain.CollectionItem) (int64, error)
	UpdateCollectionItem(u domain.CollectionItemUpdate) error
	UpdateCollectionItems(updates []domain.CollectionItemUpdate) error
	DeleteCollectionItem(collectionID, mangaID int64) error
	CollectionsContaining(mangaID int64) ([]domain.Collection, error)
	CollectionCategories(collectionID int64) []int64
	SetCollectionCategories(collectionID int64, categoryIDs []int64) error
	Manga(id int64) (domain.Manga, error)
}

// Service implements collection interactors.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) List() ([]domain.Collection, error) {
	return s.store.Collections()
}

func (s *Service) Get(id int64) (domain.Collection, error) {
	return s.store.Collection(id)
}

// Subscribe emits the collection list on subscribe and after every change.
func (s *Service) Subscribe(ctx context.Context) <-chan []domain.Collection {
	results := stream.Query(ctx, s.store.Watch(ctx, store.TableCollections), s.store.Collections)
	return stream.Values(ctx, results, func(err error) {
		s.logger.Error("failed to load collections", "error", err)
	})
}

// Create adds a collection and returns its id.
func (s *Service) Create(name, description string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.ErrInvalidName
	}
	now := s.now()
	id, err := s.store.InsertCollection(domain.Collection{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, fmt.Errorf("insert collection: %w", err)
	}
	s.logger.Info("created collection", "collectionID", id, "name", name)
	return id, nil
}

// Update edits the name and description of a collection.
func (s *Service) Update(id int64, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}
	description = strings.TrimSpace(description)
	return s.store.UpdateCollection(domain.CollectionUpdate{ID: id, Name: &name, Description: &description})
}

// SetCover picks the manga whose cover represents the collection.
func (s *Service) SetCover(id, mangaID int64) error {
	return s.store.UpdateCollection(domain.CollectionUpdate{ID: id, CoverMangaID: &mangaID})
}

// Delete removes a collection with all its items.
func (s *Service) Delete(id int64) error {
	if err := s.store.DeleteCollection(id); err != nil {
		return err
	}
	s.logger.Info("deleted collection", "collectionID", id)
	return nil
}

// AddManga appends a manga to a collection with an optional badge.
func (s *Service) AddManga(collectionID, mangaID int64, badge string) (int64, error) {
	id, err := s.store.InsertCollectionItem(domain.CollectionItem{
		CollectionID: collectionID,
		MangaID:      mangaID,
		Badge:        strings.TrimSpace(badge),
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("added manga to collection", "collectionID", collectionID, "mangaID", mangaID)
	return id, nil
}

func (s *Service) RemoveManga(collectionID, mangaID int64) error {
	return s.store.DeleteCollectionItem(collectionID, mangaID)
}

// Reorder assigns sort order 0..n-1 following itemIDs.
func (s *Service) Reorder(itemIDs []int64) error {
	updates := make([]domain.CollectionItemUpdate, len(itemIDs))
	for i, id := range itemIDs {
		order := i
		updates[i] = domain.CollectionItemUpdate{ID: id, SortOrder: &order}
	}
	return s.store.UpdateCollectionItems(updates)
}

// MoveItem sets the sort order of a single item.
func (s *Service) MoveItem(itemID int64, sortOrder int) error {
	return s.store.UpdateCollectionItem(domain.CollectionItemUpdate{ID: itemID, SortOrder: &sortOrder})
}

// SetBadge labels an item. A blank badge clears the label.
func (s *Service) SetBadge(itemID int64, badge string) error {
	badge = strings.TrimSpace(badge)
	return s.store.UpdateCollectionItem(domain.CollectionItemUpdate{ID: itemID, Badge: &badge})
}

func (s *Service) Categories(collectionID int64) []int64 {
	return s.store.CollectionCategories(collectionID)
}

func (s *Service) SetCategories(collectionID int64, categoryIDs []int64) error {
	return s.store.SetCollectionCategories(collectionID, categoryIDs)
}

// ForManga returns the collections that contain mangaID.
func (s *Service) ForManga(mangaID int64) ([]domain.Collection, error) {
	return s.store.CollectionsContaining(mangaID)
}

// WithItems loads a collection with its items joined to manga. Items whose
// manga no longer exists are skipped.
func (s *Service) WithItems(id int64) (domain.CollectionWithItems, error) {
	c, err := s.store.Collection(id)
	if err != nil {
		return domain.CollectionWithItems{}, err
	}
	items, err := s.store.CollectionItems(id)
	if err != nil {
		return domain.CollectionWithItems{}, err
	}
	out := domain.CollectionWithItems{Collection: c, Items: make([]domain.CollectionItemWithManga, 0, len(items))}
	for _, it := range items {
		m, err := s.store.Manga(it.MangaID)
		if err != nil {
			s.logger.Warn("collection item references missing manga", "itemID", it.ID, "mangaID", it.MangaID)
			continue
		}
		out.Items = append(out.Items, domain.CollectionItemWithManga{Item: it, Manga: m})
	}
	return out, nil
}
