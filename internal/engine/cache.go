package engine

import (
	"container/list"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"inferd/pkg/types"
)

// Fingerprint derives the cache key for (model id, input). It hashes the raw
// input bytes, so two inputs that differ in anything result-relevant must
// differ in bytes: callers deriving inputs from a coarser identity (e.g. a
// truncated hash) can get stale hits, since entries never expire by age.
func Fingerprint(modelID string, input []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(modelID)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(input)
	return d.Sum64()
}

type cacheEntry struct {
	key        uint64
	val        types.Result
	insertedAt time.Time
}

// resultCache is a fixed-capacity cache evicting the least-recently-used
// entry, where both get and put refresh recency. A single coarse lock is
// fine: every operation is O(1).
type resultCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

// get returns the cached value and marks it most-recently-used, or records a
// miss.
func (c *resultCache) get(key uint64) (types.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return types.Result{}, false
	}
	c.hits++
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).val, true
}

// put inserts or refreshes key, evicting the least-recently-used entry when
// the cache is at capacity and the key is new.
func (c *resultCache) put(key uint64, val types.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).val = val
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).key)
			c.evictions++
		}
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, val: val, insertedAt: time.Now()})
}

func (c *resultCache) stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.CacheStats{
		Size:      c.ll.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *resultCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}
