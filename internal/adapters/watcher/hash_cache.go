package watcher

import (
	"io"
	"os"
	"sync"
	"unique"

	"github.com/cespare/xxhash/v2"
)

// HashCache remembers a content hash per observed file so the watch loop can
// drop events that did not actually change anything. A save without an edit,
// or an editor writing identical bytes, produces filesystem events but must
// not wake the scheduler.
type HashCache struct {
	mu      sync.Mutex
	entries map[unique.Handle[string]]uint64
}

// NewHashCache creates an empty content hash cache.
func NewHashCache() *HashCache {
	return &HashCache{
		entries: make(map[unique.Handle[string]]uint64),
	}
}

// Changed reports whether the file at path has different content than last
// observed, updating the cache. Unreadable or missing paths always report
// changed; directories report changed without being cached.
func (c *HashCache) Changed(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		c.forget(path)
		return true
	}
	if info.IsDir() {
		return true
	}

	sum, err := hashContent(path)
	if err != nil {
		c.forget(path)
		return true
	}

	key := unique.Make(path)
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, seen := c.entries[key]
	c.entries[key] = sum
	return !seen || prev != sum
}

// Seed records the current content of a file without reporting a change.
func (c *HashCache) Seed(path string) {
	sum, err := hashContent(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[unique.Make(path)] = sum
}

func (c *HashCache) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, unique.Make(path))
}

func hashContent(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from watch events
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
