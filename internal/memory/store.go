package memory

import (
	"context"
)

// SortedSet is the key-value backend behind History.
// Entries under a key are ordered by score; members are arbitrary strings.
type SortedSet interface {
	// Add inserts member under key with the given score.
	Add(ctx context.Context, key string, score float64, member string) error

	// Range returns members under key in ascending score order.
	// A positive limit keeps only the last limit members.
	Range(ctx context.Context, key string, limit int) ([]string, error)

	// Exists reports whether key holds at least one member.
	Exists(ctx context.Context, key string) (bool, error)
}
