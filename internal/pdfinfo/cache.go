// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// Cache remembers page counts keyed by absolute path. An entry is only used
// while the file's size and modification time are unchanged. A nil *Cache
// is valid and never hits.
type Cache struct {
	db *bolt.DB
}

type cacheEntry struct {
	Size    int64 `json:"size"`
	ModTime int64 `json:"mod_time"`
	Pages   int   `json:"pages"`
}

// OpenCache opens (creating if needed) the bbolt file at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached page count for path if size and modTime match.
func (c *Cache) Get(path string, size int64, modTime time.Time) (int, bool) {
	if c == nil {
		return 0, false
	}
	var e cacheEntry
	found := false
	c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(pagesBucket).Get([]byte(path))
		if v == nil {
			return nil
		}
		if json.Unmarshal(v, &e) == nil {
			found = e.Size == size && e.ModTime == modTime.UnixNano()
		}
		return nil
	})
	if !found {
		return 0, false
	}
	return e.Pages, true
}

// Put stores the page count for path.
func (c *Cache) Put(path string, size int64, modTime time.Time, pages int) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(cacheEntry{Size: size, ModTime: modTime.UnixNano(), Pages: pages})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put([]byte(path), data)
	})
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pagesBucket).Stats().KeyN
		return nil
	})
	return n
}

// Close releases the cache file.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
