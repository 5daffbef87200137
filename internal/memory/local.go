package memory

import (
	"context"
	"sort"
	"sync"
)

// entry is one scored member of a sorted log.
type entry struct {
	score  float64
	member string
}

// sortedLog keeps the entries of one key ordered by score.
// Entries with equal scores keep their insertion order.
type sortedLog struct {
	entries []entry
	mu      sync.RWMutex
}

func (l *sortedLog) add(score float64, member string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].score > score
	})
	l.entries = append(l.entries, entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = entry{score: score, member: member}
}

func (l *sortedLog) last(limit int) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}

	start := len(l.entries) - limit
	result := make([]string, 0, limit)
	for _, e := range l.entries[start:] {
		result = append(result, e.member)
	}
	return result
}

func (l *sortedLog) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// LocalStore is an in-process SortedSet.
// Suitable for tests and single-instance development setups; nothing is
// persisted across restarts. Unlike Redis, duplicate members are kept as
// separate entries.
type LocalStore struct {
	logs map[string]*sortedLog
	mu   sync.RWMutex
}

// NewLocalStore creates an empty in-process store.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		logs: make(map[string]*sortedLog),
	}
}

// getOrCreate returns the log for key, creating it if needed.
func (s *LocalStore) getOrCreate(key string) *sortedLog {
	s.mu.RLock()
	l, exists := s.logs[key]
	s.mu.RUnlock()

	if exists {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, exists := s.logs[key]; exists {
		return l
	}
	l = &sortedLog{}
	s.logs[key] = l
	return l
}

// Add inserts member under key.
func (s *LocalStore) Add(_ context.Context, key string, score float64, member string) error {
	s.getOrCreate(key).add(score, member)
	return nil
}

// Range returns the members under key in ascending score order.
func (s *LocalStore) Range(_ context.Context, key string, limit int) ([]string, error) {
	s.mu.RLock()
	l, exists := s.logs[key]
	s.mu.RUnlock()

	if !exists {
		return []string{}, nil
	}
	return l.last(limit), nil
}

// Exists reports whether key holds any member.
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	l, exists := s.logs[key]
	s.mu.RUnlock()

	return exists && l.len() > 0, nil
}

// Len returns the number of members under key.
func (s *LocalStore) Len(key string) int {
	s.mu.RLock()
	l, exists := s.logs[key]
	s.mu.RUnlock()

	if !exists {
		return 0
	}
	return l.len()
}

// Ensure LocalStore implements SortedSet interface.
var _ SortedSet = (*LocalStore)(nil)
