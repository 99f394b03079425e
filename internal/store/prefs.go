package store

import bolt "go.etcd.io/bbolt"

// === Preferences ===

// GetPref decodes the preference stored under key into dest.
func (s *Store) GetPref(key string, dest interface{}) bool {
	return s.get(bucketPrefs, []byte(key), dest)
}

// SetPref stores value under key.
func (s *Store) SetPref(key string, value interface{}) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketPrefs, []byte(key), value)
	}, TablePrefs)
}
