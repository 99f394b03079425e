package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// === Collections ===

// Collections returns all collections ordered by sort order, then id.
func (s *Store) Collections() ([]domain.Collection, error) {
	var out []domain.Collection
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		out, err = scan[domain.Collection](tx, bucketCollections)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) Collection(id int64) (domain.Collection, error) {
	var c domain.Collection
	if !s.get(bucketCollections, itob(id), &c) {
		return domain.Collection{}, fmt.Errorf("collection %d: %w", id, domain.ErrCollectionNotFound)
	}
	return c, nil
}

// InsertCollection stores a new collection and returns its id.
func (s *Store) InsertCollection(c domain.Collection) (int64, error) {
	err := s.update(func(tx *bolt.Tx) error {
		seq, err := tx.Bucket(bucketCollections).NextSequence()
		if err != nil {
			return err
		}
		c.ID = int64(seq)
		return s.put(tx, bucketCollections, itob(c.ID), c)
	}, TableCollections)
	return c.ID, err
}

// UpdateCollection applies a partial update and bumps UpdatedAt.
func (s *Store) UpdateCollection(u domain.CollectionUpdate) error {
	return s.update(func(tx *bolt.Tx) error {
		var c domain.Collection
		if !getTx(tx, bucketCollections, itob(u.ID), &c) {
			return fmt.Errorf("collection %d: %w", u.ID, domain.ErrCollectionNotFound)
		}
		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.Description != nil {
			c.Description = *u.Description
		}
		if u.CoverMangaID != nil {
			id := *u.CoverMangaID
			c.CoverMangaID = &id
		}
		if u.SortOrder != nil {
			c.SortOrder = *u.SortOrder
		}
		c.UpdatedAt = time.Now()
		return s.put(tx, bucketCollections, itob(c.ID), c)
	}, TableCollections)
}

// DeleteCollection removes a collection with its items and category links.
func (s *Store) DeleteCollection(id int64) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCollections).Get(itob(id)) == nil {
			return fmt.Errorf("collection %d: %w", id, domain.ErrCollectionNotFound)
		}
		if err := s.del(tx, bucketCollections, itob(id)); err != nil {
			return err
		}
		if err := s.del(tx, bucketCollCats, itob(id)); err != nil {
			return err
		}
		return s.deleteWhere(tx, bucketCollItems, itemIn(id))
	}, TableCollections)
}

func itemIn(collectionID int64) func(v []byte) (bool, error) {
	return func(v []byte) (bool, error) {
		var it domain.CollectionItem
		if err := json.Unmarshal(v, &it); err != nil {
			return false, err
		}
		return it.CollectionID == collectionID, nil
	}
}

// === Collection items ===

// CollectionItems returns the items of a collection ordered by sort order.
func (s *Store) CollectionItems(collectionID int64) ([]domain.CollectionItem, error) {
	var out []domain.CollectionItem
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		out, err = itemsOf(tx, collectionID)
		return err
	})
	return out, err
}

func itemsOf(tx *bolt.Tx, collectionID int64) ([]domain.CollectionItem, error) {
	all, err := scan[domain.CollectionItem](tx, bucketCollItems)
	if err != nil {
		return nil, err
	}
	var out []domain.CollectionItem
	for _, it := range all {
		if it.CollectionID == collectionID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// CollectionItem returns a single item by id.
func (s *Store) CollectionItem(id int64) (domain.CollectionItem, error) {
	var it domain.CollectionItem
	if !s.get(bucketCollItems, itob(id), &it) {
		return domain.CollectionItem{}, fmt.Errorf("collection item %d: %w", id, domain.ErrCollectionItemNotFound)
	}
	return it, nil
}

// InsertCollectionItem adds a manga to a collection. The item is placed after
// the current last item; adding a manga twice fails with ErrDuplicateItem.
func (s *Store) InsertCollectionItem(it domain.CollectionItem) (int64, error) {
	err := s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCollections).Get(itob(it.CollectionID)) == nil {
			return fmt.Errorf("collection %d: %w", it.CollectionID, domain.ErrCollectionNotFound)
		}
		if tx.Bucket(bucketManga).Get(itob(it.MangaID)) == nil {
			return fmt.Errorf("manga %d: %w", it.MangaID, domain.ErrMangaNotFound)
		}
		existing, err := itemsOf(tx, it.CollectionID)
		if err != nil {
			return err
		}
		maxOrder := -1
		for _, e := range existing {
			if e.MangaID == it.MangaID {
				return domain.ErrDuplicateItem
			}
			if e.SortOrder > maxOrder {
				maxOrder = e.SortOrder
			}
		}
		it.SortOrder = maxOrder + 1

		seq, err := tx.Bucket(bucketCollItems).NextSequence()
		if err != nil {
			return err
		}
		it.ID = int64(seq)
		return s.put(tx, bucketCollItems, itob(it.ID), it)
	}, TableCollections)
	return it.ID, err
}

// UpdateCollectionItem applies a partial update. An empty badge clears it.
func (s *Store) UpdateCollectionItem(u domain.CollectionItemUpdate) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.applyItemUpdate(tx, u)
	}, TableCollections)
}

// UpdateCollectionItems applies several partial updates in one transaction.
func (s *Store) UpdateCollectionItems(updates []domain.CollectionItemUpdate) error {
	return s.update(func(tx *bolt.Tx) error {
		for _, u := range updates {
			if err := s.applyItemUpdate(tx, u); err != nil {
				return err
			}
		}
		return nil
	}, TableCollections)
}

func (s *Store) applyItemUpdate(tx *bolt.Tx, u domain.CollectionItemUpdate) error {
	var it domain.CollectionItem
	if !getTx(tx, bucketCollItems, itob(u.ID), &it) {
		return fmt.Errorf("collection item %d: %w", u.ID, domain.ErrCollectionItemNotFound)
	}
	if u.SortOrder != nil {
		it.SortOrder = *u.SortOrder
	}
	if u.Badge != nil {
		it.Badge = *u.Badge
	}
	return s.put(tx, bucketCollItems, itob(it.ID), it)
}

// DeleteCollectionItem removes a manga from a collection.
func (s *Store) DeleteCollectionItem(collectionID, mangaID int64) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.deleteWhere(tx, bucketCollItems, func(v []byte) (bool, error) {
			var it domain.CollectionItem
			if err := json.Unmarshal(v, &it); err != nil {
				return false, err
			}
			return it.CollectionID == collectionID && it.MangaID == mangaID, nil
		})
	}, TableCollections)
}

// CollectionsContaining returns the collections that include mangaID.
func (s *Store) CollectionsContaining(mangaID int64) ([]domain.Collection, error) {
	var out []domain.Collection
	err := s.view(func(tx *bolt.Tx) error {
		items, err := scan[domain.CollectionItem](tx, bucketCollItems)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool)
		for _, it := range items {
			if it.MangaID != mangaID || seen[it.CollectionID] {
				continue
			}
			seen[it.CollectionID] = true
			var c domain.Collection
			if getTx(tx, bucketCollections, itob(it.CollectionID), &c) {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// === Collection categories ===

func (s *Store) CollectionCategories(collectionID int64) []int64 {
	var ids []int64
	s.get(bucketCollCats, itob(collectionID), &ids)
	return ids
}

// SetCollectionCategories replaces the categories linked to a collection.
func (s *Store) SetCollectionCategories(collectionID int64, categoryIDs []int64) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketCollections).Get(itob(collectionID)) == nil {
			return fmt.Errorf("collection %d: %w", collectionID, domain.ErrCollectionNotFound)
		}
		ids := append([]int64{}, categoryIDs...)
		return s.put(tx, bucketCollCats, itob(collectionID), ids)
	}, TableCollections)
}
