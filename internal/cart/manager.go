package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/dataranlabs/storefront-backend/pkg/errors"
)

// Manager owns one Store per session id. Stores are created lazily on
// first access and disposed by a background sweep once the session has
// been idle past the configured limit.
type Manager struct {
	deps       StoreDeps
	idleTTL    time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu     sync.Mutex
	stores map[string]*managedStore
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type managedStore struct {
	store    *Store
	lastSeen time.Time
}

// NewManager builds the manager and starts its sweep loop.
func NewManager(deps StoreDeps, idleTTL time.Duration) *Manager {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	sweepEvery := idleTTL / 2
	if sweepEvery < time.Second {
		sweepEvery = time.Second
	}
	m := &Manager{
		deps:       deps,
		idleTTL:    idleTTL,
		sweepEvery: sweepEvery,
		now:        deps.Clock,
		stores:     make(map[string]*managedStore),
		done:       make(chan struct{}),
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
	return m
}

// Get returns the session's store, creating it on first access. Every
// access refreshes the idle deadline.
func (m *Manager) Get(_ context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, errors.New(errors.CodeValidation, "session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New(errors.CodeUnavailable, "cart manager is shutting down")
	}

	managed, ok := m.stores[sessionID]
	if !ok {
		managed = &managedStore{store: NewStore(sessionID, m.deps)}
		m.stores[sessionID] = managed
	}
	managed.lastSeen = m.now()
	return managed.store, nil
}

// Size reports the number of live stores.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// sweep disposes stores idle past the limit. Persisted cart state
// survives in the session store; the next access rebuilds the Store and
// rehydrates it.
func (m *Manager) sweep() {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	expired := make([]*managedStore, 0)
	for sessionID, managed := range m.stores {
		if managed.lastSeen.Before(cutoff) {
			expired = append(expired, managed)
			delete(m.stores, sessionID)
		}
	}
	m.mu.Unlock()

	for _, managed := range expired {
		if err := managed.store.Close(); err != nil {
			m.deps.Logger.Error(context.Background(), "close idle cart store", err)
		}
	}
}

// Close stops the sweep loop and tears down every store, aggregating
// any close errors.
func (m *Manager) Close() error {
	var errs error
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		stores := make([]*managedStore, 0, len(m.stores))
		for _, managed := range m.stores {
			stores = append(stores, managed)
		}
		m.stores = make(map[string]*managedStore)
		m.mu.Unlock()

		close(m.done)
		m.wg.Wait()

		for _, managed := range stores {
			errs = multierr.Append(errs, managed.store.Close())
		}
	})
	return errs
}
