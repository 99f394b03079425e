package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/shelf/internal/stream"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCategories  = []byte("categories")
	bucketManga       = []byte("manga")
	bucketMangaCats   = []byte("manga_categories")
	bucketSources     = []byte("sources")
	bucketHistory     = []byte("history")
	bucketPrefs       = []byte("prefs")
	bucketCollections = []byte("collections")
	bucketCollItems   = []byte("collection_items")
	bucketCollCats    = []byte("collection_categories")

	allBuckets = [][]byte{
		bucketCategories, bucketManga, bucketMangaCats, bucketSources, bucketHistory,
		bucketPrefs, bucketCollections, bucketCollItems, bucketCollCats,
	}
)

// Table identifies a group of buckets whose changes can be watched.
type Table int

const (
	TableCategories Table = iota
	TableManga
	TableSources
	TableHistory
	TablePrefs
	TableCollections
	numTables
)

// Store is the bbolt-backed local database.
// Values are JSON encoded; numeric ids are big-endian uint64 keys.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for point reads (promoted on access)
	cache map[string][]byte

	versions [numTables]*stream.Value[uint64]
}

// Open opens (or creates) the database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "shelf.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, cache: make(map[string][]byte)}
	for i := range s.versions {
		s.versions[i] = stream.NewValue[uint64](0)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Watch returns a signal channel that fires once immediately and again after
// every committed write to any of the given tables.
func (s *Store) Watch(ctx context.Context, tables ...Table) <-chan struct{} {
	ins := make([]<-chan struct{}, 0, len(tables)+1)
	primed := make(chan struct{}, 1)
	primed <- struct{}{}
	close(primed)
	ins = append(ins, primed)
	for _, t := range tables {
		versions := s.versions[t].Subscribe(ctx)
		ins = append(ins, skipFirst(ctx, versions))
	}
	return stream.Merge(ctx, ins...)
}

func skipFirst(ctx context.Context, in <-chan uint64) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		first := true
		for range in {
			if first {
				first = false
				continue
			}
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Store) touch(tables ...Table) {
	for _, t := range tables {
		s.versions[t].Update(func(v uint64) uint64 { return v + 1 })
	}
}

// === Generic helpers ===

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func (s *Store) get(bucket []byte, key []byte, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + string(key)

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

// put writes value inside an open transaction and updates the cache.
func (s *Store) put(tx *bolt.Tx, bucket []byte, key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := tx.Bucket(bucket).Put(key, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[string(bucket)+":"+string(key)] = data
	s.mu.Unlock()
	return nil
}

// del removes key inside an open transaction and evicts it from the cache.
func (s *Store) del(tx *bolt.Tx, bucket []byte, key []byte) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+string(key))
	s.mu.Unlock()
	return tx.Bucket(bucket).Delete(key)
}

// evictBucket drops every cached entry of bucket. Used after writes that
// delete through a cursor.
func (s *Store) evictBucket(bucket []byte) {
	prefix := string(bucket) + ":"
	s.mu.Lock()
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()
}

// scan decodes every value of bucket in key order.
func scan[T any](tx *bolt.Tx, bucket []byte) ([]T, error) {
	var out []T
	err := tx.Bucket(bucket).ForEach(func(_, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		out = append(out, item)
		return nil
	})
	return out, err
}

// update runs fn in a write transaction and signals the touched tables on commit.
func (s *Store) update(fn func(tx *bolt.Tx) error, tables ...Table) error {
	if err := s.db.Update(fn); err != nil {
		// Cache may hold values written by the rolled back transaction.
		s.mu.Lock()
		s.cache = make(map[string][]byte)
		s.mu.Unlock()
		return err
	}
	s.touch(tables...)
	return nil
}

func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	return s.db.View(fn)
}
