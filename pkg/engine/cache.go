package engine

import (
	"hash/fnv"
	"sync"

	"github.com/taraforge/attacktree/pkg/graph"
)

// CacheKey identifies one evaluation outcome. A memoized result depends on
// the root, the mode, the active configuration set, and the graph version, so
// the key carries all four; keying by node ID alone is only valid inside a
// single Evaluate call.
type CacheKey struct {
	RootID          string
	IncludeReusable bool
	ConfigHash      uint64
	GraphVersion    uint64
}

// Key builds a cache key for the given evaluation inputs.
func Key(rootID string, includeReusable bool, configs graph.ConfigSet, graphVersion uint64) CacheKey {
	h := fnv.New64a()
	for _, id := range configs.SortedIDs() {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return CacheKey{
		RootID:          rootID,
		IncludeReusable: includeReusable,
		ConfigHash:      h.Sum64(),
		GraphVersion:    graphVersion,
	}
}

type cacheEntry struct {
	result *Result
}

// Cache is a cross-call evaluation cache. Entries for stale graph versions
// are dropped lazily; "no result" outcomes are cached too, since they are
// valid states.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey]cacheEntry
}

// NewCache creates an empty evaluation cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]cacheEntry)}
}

// Get returns the cached result for the key. The bool reports presence; the
// result itself may be nil ("no attack path").
func (c *Cache) Get(key CacheKey) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry.result, ok
}

// Put stores an evaluation outcome and evicts entries from older graph
// versions.
func (c *Cache) Put(key CacheKey, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.GraphVersion != key.GraphVersion {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{result: result}
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
