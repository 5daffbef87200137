package companion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CacheConfig configures CachedStore.
type CacheConfig struct {
	// MaxEntries bounds the number of cached companions.
	MaxEntries int64

	// TTL bounds how long an entry is served without reading the store.
	// Default is 5 minutes.
	TTL time.Duration
}

// CachedStore caches companion lookups in front of another Store.
// Every turn of the chat flow reads the companion, so Get is the hot path.
//
// A lookup that overlaps an Update or Delete is returned to its caller but
// not cached, so a value read before the write can never outlive it.
type CachedStore struct {
	Store
	cache *ristretto.Cache
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64
}

// NewCachedStore wraps store with a ristretto cache.
func NewCachedStore(store Store, cfg CacheConfig) (*CachedStore, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create companion cache: %w", err)
	}

	return &CachedStore{Store: store, cache: cache, ttl: cfg.TTL}, nil
}

// Get returns a companion by ID, consulting the cache first.
func (s *CachedStore) Get(ctx context.Context, id string) (*Companion, error) {
	if v, ok := s.cache.Get(id); ok {
		c := *v.(*Companion)
		return &c, nil
	}

	gen := s.generation()
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cached := *c
	s.mu.Lock()
	if s.gen == gen {
		s.cache.SetWithTTL(id, &cached, 1, s.ttl)
	}
	s.mu.Unlock()
	return c, nil
}

// Update updates the companion and drops its cache entry.
func (s *CachedStore) Update(ctx context.Context, c *Companion) (*Companion, error) {
	updated, err := s.Store.Update(ctx, c)
	s.invalidate(c.ID)
	return updated, err
}

// Delete deletes the companion and drops its cache entry.
func (s *CachedStore) Delete(ctx context.Context, id, userID string) error {
	err := s.Store.Delete(ctx, id, userID)
	s.invalidate(id)
	return err
}

func (s *CachedStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// invalidate drops id and marks every in-flight lookup as stale.
func (s *CachedStore) invalidate(id string) {
	s.mu.Lock()
	s.gen++
	s.cache.Del(id)
	s.mu.Unlock()
}

// Wait blocks until pending cache writes are applied.
func (s *CachedStore) Wait() {
	s.cache.Wait()
}

// Close closes the cache and the wrapped store.
func (s *CachedStore) Close() error {
	s.cache.Close()
	return s.Store.Close()
}

var _ Store = (*CachedStore)(nil)
