package cache

import (
	"sync"
	"time"
)

const (
	DefaultMaxEntries = 1000
	DefaultTTL        = 5 * time.Minute
)

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Cache is a bounded in-memory key-value store with per-entry expiry.
// It is process-local: state is rebuilt empty on restart and never shared
// across instances. Expired entries are lazily deleted on the read that
// discovers them; on overflow a cleanup pass removes everything expired
// and, if the table is still full, the oldest-inserted entry is evicted.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	order      []string
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time
}

// Option tweaks cache construction.
type Option func(*Cache)

// WithClock overrides the time source. Tests use this to advance time
// past entry TTLs without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a cache bounded at maxEntries with the given default TTL.
// Non-positive arguments fall back to the package defaults.
func New(maxEntries int, defaultTTL time.Duration, opts ...Option) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	c := &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set inserts or overwrites the entry for key. The optional ttlOverride
// replaces the default TTL for this entry only. Eviction on overflow is
// silent and unconditional.
func (c *Cache) Set(key string, value any, ttlOverride ...time.Duration) {
	ttl := c.defaultTTL
	if len(ttlOverride) > 0 && ttlOverride[0] > 0 {
		ttl = ttlOverride[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.cleanupLocked()
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
}

// Get returns the stored value if present and not expired. Reading an
// expired entry deletes it and reports a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.deleteLocked(key)
		return nil, false
	}
	return e.value, true
}

// Has reports presence with the same expiry semantics as Get.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes the entry unconditionally. It is idempotent.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(key)
}

// Clear removes all entries regardless of expiry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = c.order[:0]
}

// Stats describes the current table occupancy.
type Stats struct {
	Size       int `json:"size"`
	MaxEntries int `json:"maxSize"`
}

// Stats returns current size and the configured maximum.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries), MaxEntries: c.maxEntries}
}

func (c *Cache) cleanupLocked() {
	now := c.now()
	kept := c.order[:0]
	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok {
			continue
		}
		if e.expired(now) {
			delete(c.entries, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
}

func (c *Cache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *Cache) deleteLocked(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Value retrieves a namespaced entry and asserts it to T. A stored value
// of a different concrete type counts as a miss.
func Value[T any](n Namespace, key string) (T, bool) {
	var zero T
	raw, ok := n.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
