// Package fpcache stores document trees keyed by the fingerprint of their
// source text.
//
// Entries expire after a TTL and are evicted least recently used first,
// with ties going to the entry accessed fewer times. Eviction runs when the
// entry count or the summed size estimate exceeds its bound, and half of the
// cache is dropped at once when process memory passes a ceiling. Expired
// entries are dropped lazily on lookup and by a sweep that runs at most once
// per sweep interval.
//
// A Cache is safe for concurrent use. Housekeeping is best effort: a caller
// that finds another goroutine already sweeping or evicting skips it.
package fpcache

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/mdast"
)

type entry struct {
	key        Key
	tree       *mdast.Node
	source     string
	size       int64
	expires    time.Time
	lastAccess time.Time
	accesses   uint64
	seq        uint64
}

// Cache is a fingerprint-keyed tree store. The zero value is not usable;
// call New.
type Cache struct {
	opts Options

	mu      sync.Mutex
	entries map[Key]*entry
	bytes   int64
	seq     uint64
	closed  bool

	housekeeping sync.Mutex
	lastSweep    atomic.Int64

	hits            atomic.Uint64
	misses          atomic.Uint64
	evictions       atomic.Uint64
	expirations     atomic.Uint64
	inconsistencies atomic.Uint64
}

// New creates an empty cache.
func New(opts Options) *Cache {
	opts = opts.withDefaults()
	c := &Cache{
		opts:    opts,
		entries: make(map[Key]*entry),
	}
	c.lastSweep.Store(opts.Now().UnixNano())
	return c
}

// Get returns the tree stored under key.
func (c *Cache) Get(key Key) (*mdast.Node, bool) {
	return c.get(key, nil)
}

// Lookup fingerprints source and returns the tree stored for it. An entry
// whose stored source differs from source is treated as corrupt: it is
// removed and the lookup misses.
func (c *Cache) Lookup(source string) (*mdast.Node, bool) {
	return c.get(Fingerprint(source), &source)
}

func (c *Cache) get(key Key, source *string) (*mdast.Node, bool) {
	now := c.opts.Now()
	defer c.housekeep(now, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	switch {
	case !ok:
		c.misses.Add(1)
		return nil, false
	case !now.Before(e.expires):
		c.removeLocked(e)
		c.expirations.Add(1)
		c.misses.Add(1)
		return nil, false
	case source != nil && e.source != *source:
		c.removeLocked(e)
		c.inconsistencies.Add(1)
		c.misses.Add(1)
		return nil, false
	}

	c.seq++
	e.seq = c.seq
	e.lastAccess = now
	e.accesses++
	c.hits.Add(1)
	return e.tree, true
}

// Put stores tree for key. A ttl of zero selects the configured TTL.
// Storing into a closed cache is a no-op.
func (c *Cache) Put(key Key, tree *mdast.Node, source string, ttl time.Duration) {
	if tree == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.opts.TTL
	}
	now := c.opts.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if old, ok := c.entries[key]; ok {
		c.bytes -= old.size
	}
	c.seq++
	e := &entry{
		key:        key,
		tree:       tree,
		source:     source,
		size:       EstimateSize(source),
		expires:    now.Add(ttl),
		lastAccess: now,
		seq:        c.seq,
	}
	c.entries[key] = e
	c.bytes += e.size
	c.mu.Unlock()

	c.housekeep(now, &key)
}

// Remove deletes the entry for key and reports whether one existed.
func (c *Cache) Remove(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		c.removeLocked(e)
	}
	return ok
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.bytes = 0
}

// Close clears the cache and rejects later stores.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	clear(c.entries)
	c.bytes = 0
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored keys, least recently used first.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	ordered := c.byRecencyLocked()
	keys := make([]Key, len(ordered))
	for i, e := range ordered {
		keys[i] = e.key
	}
	return keys
}

// Sweep drops expired entries now, regardless of the sweep interval. It
// returns the number dropped.
func (c *Cache) Sweep() int {
	c.housekeeping.Lock()
	defer c.housekeeping.Unlock()
	return c.sweep(c.opts.Now())
}

func (c *Cache) removeLocked(e *entry) {
	delete(c.entries, e.key)
	c.bytes -= e.size
}

// byRecencyLocked orders entries by last access, then access count, then
// access sequence.
func (c *Cache) byRecencyLocked() []*entry {
	ordered := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		ordered = append(ordered, e)
	}
	slices.SortFunc(ordered, func(a, b *entry) int {
		return cmp.Or(
			a.lastAccess.Compare(b.lastAccess),
			cmp.Compare(a.accesses, b.accesses),
			cmp.Compare(a.seq, b.seq),
		)
	})
	return ordered
}

// housekeep sweeps when the interval has passed and, after a store,
// enforces the size bounds without evicting the stored key. It gives up at
// once if another caller holds the housekeeping lock.
func (c *Cache) housekeep(now time.Time, stored *Key) {
	if !c.housekeeping.TryLock() {
		return
	}
	defer c.housekeeping.Unlock()

	if now.UnixNano()-c.lastSweep.Load() >= int64(c.opts.SweepInterval) {
		c.sweep(now)
	}
	if stored != nil {
		c.evictOverflow(*stored)
		c.enforceCeiling(*stored)
	}
}

func (c *Cache) sweep(now time.Time) int {
	c.lastSweep.Store(now.UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for _, e := range c.entries {
		if !now.Before(e.expires) {
			c.removeLocked(e)
			dropped++
		}
	}
	if dropped > 0 {
		c.expirations.Add(uint64(dropped))
		c.opts.Logger.Debug("cache sweep", logging.FieldExpired, dropped, logging.FieldEntries, len(c.entries))
	}
	return dropped
}

func (c *Cache) evictOverflow(keep Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.withinBoundsLocked() {
		return
	}

	evicted := 0
	for _, e := range c.byRecencyLocked() {
		if c.withinBoundsLocked() {
			break
		}
		if e.key == keep && len(c.entries) > 1 {
			continue
		}
		c.removeLocked(e)
		evicted++
	}
	c.evictions.Add(uint64(evicted))
	c.opts.Logger.Debug("cache eviction",
		logging.FieldEvicted, evicted,
		logging.FieldEntries, len(c.entries),
		logging.FieldBytes, humanize.IBytes(uint64(max(c.bytes, 0))))
}

func (c *Cache) withinBoundsLocked() bool {
	return len(c.entries) <= c.opts.MaxEntries && c.bytes <= c.opts.MaxMemoryBytes
}

// enforceCeiling evicts the least recently used half of the cache when
// process memory exceeds the ceiling.
func (c *Cache) enforceCeiling(keep Key) {
	if c.opts.MemoryCeiling < 0 {
		return
	}
	used := c.opts.Memory()
	if used <= uint64(c.opts.MemoryCeiling) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ordered := c.byRecencyLocked()
	half := (len(ordered) + 1) / 2
	evicted := 0
	for _, e := range ordered {
		if evicted == half {
			break
		}
		if e.key == keep && len(ordered) > 1 {
			continue
		}
		c.removeLocked(e)
		evicted++
	}
	c.evictions.Add(uint64(evicted))
	c.opts.Logger.Debug("cache memory ceiling exceeded",
		logging.FieldMemory, humanize.IBytes(used),
		logging.FieldCeiling, humanize.IBytes(uint64(c.opts.MemoryCeiling)),
		logging.FieldEvicted, evicted)
}
