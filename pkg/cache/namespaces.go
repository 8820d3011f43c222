package cache

import "time"

// Default TTLs per logical domain. Product listings change slowly,
// inventory changes frequently, checkout sessions are security-sensitive
// and short-lived, event listings sit in between.
const (
	ProductsTTL  = 10 * time.Minute
	InventoryTTL = 2 * time.Minute
	CheckoutTTL  = 30 * time.Second
	EventsTTL    = 5 * time.Minute
)

// Namespace scopes keys under a string prefix and applies that domain's
// default TTL on writes. All namespaces share the owning cache's bound.
type Namespace struct {
	cache  *Cache
	prefix string
	ttl    time.Duration
}

// Namespace returns a view of the cache scoped to prefix with the given
// default TTL. A non-positive TTL inherits the cache default.
func (c *Cache) Namespace(prefix string, ttl time.Duration) Namespace {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return Namespace{cache: c, prefix: prefix, ttl: ttl}
}

// Key derives a namespaced key from the given parameter parts.
func (n Namespace) Key(parts ...any) string {
	return Key(n.prefix, parts...)
}

func (n Namespace) Get(key string) (any, bool) {
	return n.cache.Get(key)
}

func (n Namespace) Set(key string, value any) {
	n.cache.Set(key, value, n.ttl)
}

func (n Namespace) Has(key string) bool {
	return n.cache.Has(key)
}

func (n Namespace) Delete(key string) {
	n.cache.Delete(key)
}
