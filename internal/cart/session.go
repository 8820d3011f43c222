package cart

import (
	"context"
	stdErrors "errors"
	"sync"
	"time"

	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/redis"
)

// storageKey is the per-session slot the serialized cart lives under.
const storageKey = "dataran-cart-items"

// SessionStore persists a session's cart blob. Persistence is
// best-effort: a missing blob means an empty cart, never an error.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID string, blob []byte) error
	Remove(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps blobs in process memory. State is lost on
// restart, matching the session-scoped lifetime of the original storage.
type MemorySessionStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{blobs: make(map[string][]byte)}
}

func (m *MemorySessionStore) Get(_ context.Context, sessionID string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[sessionID]
	return blob, ok, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sessionID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[sessionID] = blob
	return nil
}

func (m *MemorySessionStore) Remove(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, sessionID)
	return nil
}

// RedisSessionStore persists blobs in Redis so carts survive process
// restarts and load-balanced instances. Keys expire at the session idle
// limit; every write refreshes the TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "redis client required")
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (r *RedisSessionStore) key(sessionID string) string {
	return r.client.SessionKey(sessionID, storageKey)
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID))
	if err != nil {
		if stdErrors.Is(err, redis.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (r *RedisSessionStore) Set(ctx context.Context, sessionID string, blob []byte) error {
	return r.client.Set(ctx, r.key(sessionID), string(blob), r.ttl)
}

func (r *RedisSessionStore) Remove(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID))
}
