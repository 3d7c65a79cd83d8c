// Package cache keeps search pages and translations between runs.
package cache

import (
	"bytes"
	"encoding/gob"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTTL is how long a search page or translation stays valid.
	DefaultTTL = 4 * time.Hour

	cleanupInterval = 6 * time.Hour
)

// Cache wraps go-cache with GOB persistence.
type Cache struct {
	inner *gocache.Cache
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{inner: gocache.New(DefaultTTL, cleanupInterval)}
}

// LoadFromFile loads a cache from a GOB file. A missing or unreadable file
// yields a fresh cache; only I/O errors other than "not exist" are returned.
func LoadFromFile(filename string) (*Cache, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	items := map[string]gocache.Item{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("Cache decode error, starting fresh")
		return New(), nil
	}
	return &Cache{inner: gocache.NewFrom(DefaultTTL, cleanupInterval, items)}, nil
}

// SaveToFile writes the unexpired entries to a GOB file.
func (c *Cache) SaveToFile(filename string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.inner.Items()); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0600)
}

// Key joins parts into a cache key, e.g. Key("page", "q", "2") = "page:q:2".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get retrieves a value by key.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// GetBytes retrieves a []byte value. Entries of another type count as misses.
func (c *Cache) GetBytes(key string) ([]byte, bool) {
	val, found := c.inner.Get(key)
	if !found {
		return nil, false
	}
	b, ok := val.([]byte)
	return b, ok
}

// GetString retrieves a string value. Entries of another type count as misses.
func (c *Cache) GetString(key string) (string, bool) {
	val, found := c.inner.Get(key)
	if !found {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// Set stores a value with the default expiration.
func (c *Cache) Set(key string, val any) {
	c.inner.Set(key, val, gocache.DefaultExpiration)
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}

// Flush clears all cached items.
func (c *Cache) Flush() {
	c.inner.Flush()
}
