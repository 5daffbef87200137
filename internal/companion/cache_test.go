package companion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingStore counts Get calls reaching the wrapped store.
type countingStore struct {
	Store
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (*Companion, error) {
	s.gets++
	return s.Store.Get(ctx, id)
}

// pausingStore holds its next Get after the read until released.
type pausingStore struct {
	Store
	pause   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) Get(ctx context.Context, id string) (*Companion, error) {
	c, err := s.Store.Get(ctx, id)
	if s.pause.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return c, err
}

func newTestCachedStore(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()
	inner := &countingStore{Store: newTestStore(t)}
	cached, err := NewCachedStore(inner, CacheConfig{MaxEntries: 100})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	return cached, inner
}

func TestCachedStore_Get(t *testing.T) {
	ctx := context.Background()
	s, inner := newTestCachedStore(t)
	c := newTestCompanion(t, s, "user-1", "Elon")

	if _, err := s.Get(ctx, c.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	s.Wait()

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Elon" {
		t.Errorf("unexpected name %q", got.Name)
	}
	if inner.gets != 1 {
		t.Errorf("expected 1 backend get, got %d", inner.gets)
	}

	// Callers must not be able to corrupt the cached value.
	got.Name = "mutated"
	again, _ := s.Get(ctx, c.ID)
	if again.Name != "Elon" {
		t.Errorf("cached companion was mutated: %q", again.Name)
	}
}

func TestCachedStore_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestCachedStore(t)
	c := newTestCompanion(t, s, "user-1", "Elon")

	s.Get(ctx, c.ID)
	s.Wait()

	edit := *c
	edit.Name = "Elon Musk"
	if _, err := s.Update(ctx, &edit); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Elon Musk" {
		t.Errorf("expected fresh name after update, got %q", got.Name)
	}
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestCachedStore(t)
	c := newTestCompanion(t, s, "user-1", "Elon")

	s.Get(ctx, c.ID)
	s.Wait()

	if err := s.Delete(ctx, c.ID, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCachedStore_UpdateDuringGet(t *testing.T) {
	ctx := context.Background()
	inner := &pausingStore{
		Store:   newTestStore(t),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
	s, err := NewCachedStore(inner, CacheConfig{MaxEntries: 100})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	c := newTestCompanion(t, s, "user-1", "Elon")

	inner.pause.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx, c.ID)
		done <- err
	}()
	<-inner.read

	edit := *c
	edit.Instructions = "NEW"
	if _, err := s.Update(ctx, &edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	close(inner.release)
	if err := <-done; err != nil {
		t.Fatalf("get: %v", err)
	}
	s.Wait()

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Instructions != "NEW" {
		t.Errorf("expected updated instructions, got %q", got.Instructions)
	}
}

func TestCachedStore_TTL(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: newTestStore(t)}
	s, err := NewCachedStore(inner, CacheConfig{MaxEntries: 100, TTL: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	c := newTestCompanion(t, s, "user-1", "Elon")

	s.Get(ctx, c.ID)
	s.Wait()
	time.Sleep(100 * time.Millisecond)

	if _, err := s.Get(ctx, c.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if inner.gets != 2 {
		t.Errorf("expected expired entry to be reloaded, got %d backend gets", inner.gets)
	}
}
