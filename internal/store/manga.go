package store

import (
	"fmt"

	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// === Manga ===

// PutManga inserts m when its id is zero, otherwise replaces the stored record.
// It returns the manga id.
func (s *Store) PutManga(m domain.Manga) (int64, error) {
	err := s.update(func(tx *bolt.Tx) error {
		if m.ID == 0 {
			seq, err := tx.Bucket(bucketManga).NextSequence()
			if err != nil {
				return err
			}
			m.ID = int64(seq)
		}
		return s.put(tx, bucketManga, itob(m.ID), m)
	}, TableManga)
	return m.ID, err
}

func (s *Store) Manga(id int64) (domain.Manga, error) {
	var m domain.Manga
	if !s.get(bucketManga, itob(id), &m) {
		return domain.Manga{}, fmt.Errorf("manga %d: %w", id, domain.ErrMangaNotFound)
	}
	return m, nil
}

// SetFavorite adds or removes a manga from the library.
func (s *Store) SetFavorite(id int64, favorite bool) error {
	return s.update(func(tx *bolt.Tx) error {
		var m domain.Manga
		if !getTx(tx, bucketManga, itob(id), &m) {
			return fmt.Errorf("manga %d: %w", id, domain.ErrMangaNotFound)
		}
		m.Favorite = favorite
		return s.put(tx, bucketManga, itob(id), m)
	}, TableManga)
}

// LibraryManga returns every favorited manga joined with its categories, in id order.
func (s *Store) LibraryManga() ([]domain.LibraryManga, error) {
	var out []domain.LibraryManga
	err := s.view(func(tx *bolt.Tx) error {
		all, err := scan[domain.Manga](tx, bucketManga)
		if err != nil {
			return err
		}
		for _, m := range all {
			if !m.Favorite {
				continue
			}
			var cats []int64
			getTx(tx, bucketMangaCats, itob(m.ID), &cats)
			out = append(out, domain.LibraryManga{Manga: m, Categories: cats})
		}
		return nil
	})
	return out, err
}

// === Sources ===

func (s *Store) PutSource(src domain.Source) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketSources, itob(src.ID), src)
	}, TableSources)
}

func (s *Store) Sources() ([]domain.Source, error) {
	var out []domain.Source
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		out, err = scan[domain.Source](tx, bucketSources)
		return err
	})
	return out, err
}

// SourceName implements domain.SourceResolver. Unknown sources resolve to "".
func (s *Store) SourceName(id int64) string {
	var src domain.Source
	if !s.get(bucketSources, itob(id), &src) {
		return ""
	}
	return src.Name
}
