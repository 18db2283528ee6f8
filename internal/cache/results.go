// Package cache memoizes analysis reports in memory so the same page capture
// is never sent to the analysis service twice while its result is fresh.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/metrics"
	"github.com/hyperifyio/biaslens/internal/report"
)

// Defaults used when New receives non-positive limits.
const (
	DefaultMaxEntries = 100
	DefaultMaxAge     = 30 * time.Minute
)

// Key identifies one page capture: the same URL at a different timestamp is
// a different key.
type Key string

// KeyFor builds the key for a page URL captured at ts.
func KeyFor(url string, ts time.Time) Key {
	h := sha256.Sum256([]byte(url + "\n" + strconv.FormatInt(ts.UnixMilli(), 10)))
	return Key(hex.EncodeToString(h[:]))
}

func (k Key) short() string {
	if len(k) > 12 {
		return string(k[:12])
	}
	return string(k)
}

type entry struct {
	key      Key
	report   report.Report
	storedAt time.Time
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries    int           `json:"entries"`
	MaxEntries int           `json:"maxEntries"`
	MaxAge     time.Duration `json:"maxAge"`
	Hits       uint64        `json:"hits"`
	Misses     uint64        `json:"misses"`
	Evictions  uint64        `json:"evictions"`
}

// ResultCache holds reports in insertion order. Eviction runs after every Put:
// entries older than MaxAge go first, then at most one oldest-inserted entry
// if the cache is still over MaxEntries. Get never evicts.
type ResultCache struct {
	mu         sync.Mutex
	maxEntries int
	maxAge     time.Duration
	order      *list.List // of *entry, front is oldest
	index      map[Key]*list.Element
	now        func() time.Time

	hits, misses, evictions uint64
}

// New returns an empty cache. Non-positive limits take the defaults.
func New(maxEntries int, maxAge time.Duration) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &ResultCache{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		order:      list.New(),
		index:      make(map[Key]*list.Element),
		now:        time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *ResultCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns a copy of the cached report for key.
func (c *ResultCache) Get(key Key) (report.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		c.misses++
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return report.Report{}, false
	}
	c.hits++
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return el.Value.(*entry).report.Clone(), true
}

// Put stores r under key, replacing any previous value and moving the key to
// the newest insertion position, then evicts.
func (c *ResultCache) Put(key Key, r report.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
	}
	e := &entry{key: key, report: r.Clone(), storedAt: c.now()}
	c.index[key] = c.order.PushBack(e)
	c.evict()
	metrics.CacheEntries.Set(float64(c.order.Len()))
}

// evict must be called with mu held.
func (c *ResultCache) evict() {
	now := c.now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if now.Sub(e.storedAt) > c.maxAge {
			c.remove(el, "age")
		}
		el = next
	}
	if c.order.Len() > c.maxEntries {
		c.remove(c.order.Front(), "capacity")
	}
}

func (c *ResultCache) remove(el *list.Element, reason string) {
	e := c.order.Remove(el).(*entry)
	delete(c.index, e.key)
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(reason).Inc()
	log.Debug().Str("key", e.key.short()).Str("reason", reason).Msg("cache eviction")
}

// Clear drops every entry. Counters are kept.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[Key]*list.Element)
	metrics.CacheEntries.Set(0)
}

// Len reports the number of stored entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns current size, limits and counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:    c.order.Len(),
		MaxEntries: c.maxEntries,
		MaxAge:     c.maxAge,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}
