package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// === Categories ===

// Categories returns all categories ordered by their order field, system category first.
func (s *Store) Categories() ([]domain.Category, error) {
	var cats []domain.Category
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		cats, err = scan[domain.Category](tx, bucketCategories)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortCategories(cats)
	return cats, nil
}

func sortCategories(cats []domain.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].IsSystem() != cats[j].IsSystem() {
			return cats[i].IsSystem()
		}
		return cats[i].Order < cats[j].Order
	})
}

func (s *Store) Category(id int64) (domain.Category, error) {
	var c domain.Category
	if !s.get(bucketCategories, itob(id), &c) {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
	}
	return c, nil
}

// EnsureSystemCategory creates the uncategorized category if it is missing.
func (s *Store) EnsureSystemCategory() error {
	if _, err := s.Category(domain.UncategorizedID); err == nil {
		return nil
	}
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCategories).Get(itob(domain.UncategorizedID)) != nil {
			return nil
		}
		return s.put(tx, bucketCategories, itob(domain.UncategorizedID), domain.Category{ID: domain.UncategorizedID})
	}, TableCategories)
}

// InsertCategory stores a new category and returns its id. The id field of c is ignored.
func (s *Store) InsertCategory(c domain.Category) (int64, error) {
	var id int64
	err := s.update(func(tx *bolt.Tx) error {
		seq, err := tx.Bucket(bucketCategories).NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		c.ID = id
		return s.put(tx, bucketCategories, itob(id), c)
	}, TableCategories)
	return id, err
}

// UpdateCategory applies a partial update.
func (s *Store) UpdateCategory(u domain.CategoryUpdate) error {
	return s.update(func(tx *bolt.Tx) error {
		var c domain.Category
		if !getTx(tx, bucketCategories, itob(u.ID), &c) {
			return fmt.Errorf("category %d: %w", u.ID, domain.ErrCategoryNotFound)
		}
		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.Order != nil {
			c.Order = *u.Order
		}
		if u.Hidden != nil {
			c.Hidden = *u.Hidden
		}
		return s.put(tx, bucketCategories, itob(c.ID), c)
	}, TableCategories)
}

// DeleteCategory removes a category and strips it from every manga.
func (s *Store) DeleteCategory(id int64) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCategories).Get(itob(id)) == nil {
			return fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
		}
		if err := s.del(tx, bucketCategories, itob(id)); err != nil {
			return err
		}
		b := tx.Bucket(bucketMangaCats)
		type link struct {
			key []byte
			ids []int64
		}
		var changed []link
		err := b.ForEach(func(k, v []byte) error {
			var ids []int64
			if err := json.Unmarshal(v, &ids); err != nil {
				return err
			}
			kept := ids[:0]
			for _, cid := range ids {
				if cid != id {
					kept = append(kept, cid)
				}
			}
			if len(kept) != len(ids) {
				changed = append(changed, link{key: append([]byte(nil), k...), ids: kept})
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, l := range changed {
			if err := s.put(tx, bucketMangaCats, l.key, l.ids); err != nil {
				return err
			}
		}
		return nil
	}, TableCategories, TableManga)
}

// MangaCategories returns the category ids assigned to a manga.
func (s *Store) MangaCategories(mangaID int64) []int64 {
	var ids []int64
	s.get(bucketMangaCats, itob(mangaID), &ids)
	return ids
}

// SetMangaCategories replaces the categories of a manga.
func (s *Store) SetMangaCategories(mangaID int64, categoryIDs []int64) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketManga).Get(itob(mangaID)) == nil {
			return fmt.Errorf("manga %d: %w", mangaID, domain.ErrMangaNotFound)
		}
		ids := append([]int64{}, categoryIDs...)
		return s.put(tx, bucketMangaCats, itob(mangaID), ids)
	}, TableManga)
}

// getTx decodes key from bucket within an open transaction, bypassing the cache.
func getTx(tx *bolt.Tx, bucket, key []byte, dest interface{}) bool {
	v := tx.Bucket(bucket).Get(key)
	if v == nil {
		return false
	}
	return json.Unmarshal(v, dest) == nil
}
