// Package category manages user categories and their assignment to manga.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/stream"
)

// Store is the persistence surface the service needs.
type Store interface {
	Watch(ctx context.Context, tables ...store.Table) <-chan struct{}
	Categories() ([]domain.Category, error)
	Category(id int64) (domain.Category, error)
	EnsureSystemCategory() error
	InsertCategory(c domain.Category) (int64, error)
	UpdateCategory(u domain.CategoryUpdate) error
	DeleteCategory(id int64) error
	MangaCategories(mangaID int64) []int64
	SetMangaCategories(mangaID int64, categoryIDs []int64) error
	LibraryManga() ([]domain.LibraryManga, error)
}

// Service implements category interactors.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// All returns every category, the system category first.
func (s *Service) All() ([]domain.Category, error) {
	return s.store.Categories()
}

// UserCategories returns every category except the system one.
func (s *Service) UserCategories() ([]domain.Category, error) {
	all, err := s.store.Categories()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if !c.IsSystem() {
			out = append(out, c)
		}
	}
	return out, nil
}

// Subscribe emits the category list on subscribe and after every change.
func (s *Service) Subscribe(ctx context.Context) <-chan []domain.Category {
	results := stream.Query(ctx, s.store.Watch(ctx, store.TableCategories), s.store.Categories)
	return stream.Values(ctx, results, func(err error) {
		s.logger.Error("failed to load categories", "error", err)
	})
}

// Create adds a category at the end of the list.
func (s *Service) Create(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.ErrInvalidName
	}
	all, err := s.store.Categories()
	if err != nil {
		return 0, err
	}
	var maxOrder int64
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			return 0, fmt.Errorf("category %q: %w", name, domain.ErrDuplicateName)
		}
		if c.Order > maxOrder {
			maxOrder = c.Order
		}
	}
	id, err := s.store.InsertCategory(domain.Category{Name: name, Order: maxOrder + 1})
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	s.logger.Info("created category", "categoryID", id, "name", name)
	return id, nil
}

// Rename changes a category name. The system category may be renamed; a
// blank name restores its default label.
func (s *Service) Rename(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" && id != domain.UncategorizedID {
		return domain.ErrInvalidName
	}
	all, err := s.store.Categories()
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ID != id && name != "" && strings.EqualFold(c.Name, name) {
			return fmt.Errorf("category %q: %w", name, domain.ErrDuplicateName)
		}
	}
	return s.store.UpdateCategory(domain.CategoryUpdate{ID: id, Name: &name})
}

// SetHidden hides or shows a category.
func (s *Service) SetHidden(id int64, hidden bool) error {
	return s.store.UpdateCategory(domain.CategoryUpdate{ID: id, Hidden: &hidden})
}

// Reorder assigns order 1..n following ids. The system category keeps order 0.
func (s *Service) Reorder(ids []int64) error {
	for i, id := range ids {
		if id == domain.UncategorizedID {
			continue
		}
		order := int64(i + 1)
		if err := s.store.UpdateCategory(domain.CategoryUpdate{ID: id, Order: &order}); err != nil {
			return fmt.Errorf("reorder category %d: %w", id, err)
		}
	}
	return nil
}

// Delete removes a user category. Manga keep their other categories.
func (s *Service) Delete(id int64) error {
	if id == domain.UncategorizedID {
		return domain.ErrSystemCategory
	}
	if err := s.store.DeleteCategory(id); err != nil {
		return err
	}
	s.logger.Info("deleted category", "categoryID", id)
	return nil
}

// SetMangaCategories replaces the categories of a manga. The uncategorized
// sentinel is dropped; an empty list places the manga in the default category.
func (s *Service) SetMangaCategories(mangaID int64, categoryIDs []int64) error {
	ids := make([]int64, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if id != domain.UncategorizedID {
			ids = append(ids, id)
		}
	}
	return s.store.SetMangaCategories(mangaID, ids)
}

// MangaCategories returns the user categories assigned to a manga.
func (s *Service) MangaCategories(mangaID int64) []int64 {
	return s.store.MangaCategories(mangaID)
}
