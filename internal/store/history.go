package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// === History ===

// AddHistory appends a read event and returns its id.
func (s *Store) AddHistory(rec domain.HistoryRecord) (int64, error) {
	err := s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketManga).Get(itob(rec.MangaID)) == nil {
			return fmt.Errorf("manga %d: %w", rec.MangaID, domain.ErrMangaNotFound)
		}
		seq, err := tx.Bucket(bucketHistory).NextSequence()
		if err != nil {
			return err
		}
		rec.ID = int64(seq)
		return s.put(tx, bucketHistory, itob(rec.ID), rec)
	}, TableHistory)
	return rec.ID, err
}

// History returns the latest read event of every manga, joined with manga
// data and sorted by read time, most recent first.
func (s *Store) History() ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := s.view(func(tx *bolt.Tx) error {
		records, err := scan[domain.HistoryRecord](tx, bucketHistory)
		if err != nil {
			return err
		}

		latest := make(map[int64]domain.HistoryRecord)
		for _, r := range records {
			if cur, ok := latest[r.MangaID]; !ok || r.ReadAt.After(cur.ReadAt) ||
				(r.ReadAt.Equal(cur.ReadAt) && r.ID > cur.ID) {
				latest[r.MangaID] = r
			}
		}

		for _, r := range latest {
			var m domain.Manga
			if !getTx(tx, bucketManga, itob(r.MangaID), &m) {
				continue
			}
			var cats []int64
			getTx(tx, bucketMangaCats, itob(m.ID), &cats)
			out = append(out, domain.HistoryEntry{
				ID:            r.ID,
				MangaID:       m.ID,
				ChapterID:     r.ChapterID,
				ChapterNumber: r.ChapterNumber,
				Title:         m.Title,
				Genre:         m.Genre,
				ReadAt:        r.ReadAt,
				ReadDuration:  r.ReadDuration,
				CategoryIDs:   cats,
				SourceID:      m.Source,
				Status:        m.Status,
				InLibrary:     m.Favorite,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReadAt.Equal(out[j].ReadAt) {
			return out[i].ReadAt.After(out[j].ReadAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeleteHistory removes a single read event.
func (s *Store) DeleteHistory(id int64) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketHistory).Get(itob(id)) == nil {
			return fmt.Errorf("history %d: %w", id, domain.ErrHistoryNotFound)
		}
		return s.del(tx, bucketHistory, itob(id))
	}, TableHistory)
}

// DeleteHistoryForManga removes every read event of a manga.
func (s *Store) DeleteHistoryForManga(mangaID int64) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.deleteWhere(tx, bucketHistory, func(v []byte) (bool, error) {
			var r domain.HistoryRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return false, err
			}
			return r.MangaID == mangaID, nil
		})
	}, TableHistory)
}

// DeleteAllHistory wipes the history and reports how many events were removed.
func (s *Store) DeleteAllHistory() (int, error) {
	var n int
	err := s.update(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketHistory).Stats().KeyN
		if err := tx.DeleteBucket(bucketHistory); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	}, TableHistory)
	s.evictBucket(bucketHistory)
	return n, err
}

// deleteWhere removes every entry of bucket whose value matches.
func (s *Store) deleteWhere(tx *bolt.Tx, bucket []byte, match func(v []byte) (bool, error)) error {
	b := tx.Bucket(bucket)
	var keys [][]byte
	err := b.ForEach(func(k, v []byte) error {
		ok, err := match(v)
		if err != nil {
			return err
		}
		if ok {
			keys = append(keys, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.del(tx, bucket, k); err != nil {
			return err
		}
	}
	return nil
}
