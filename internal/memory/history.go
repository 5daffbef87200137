package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultWindowSize is the number of most recent turns surfaced to a prompt.
const DefaultWindowSize = 30

// DefaultSeedDelimiter separates seed lines when none is given.
const DefaultSeedDelimiter = "\n"

// History reads and writes the ordered turn log of a conversation.
type History struct {
	store  SortedSet
	clock  *ScoreClock
	logger *slog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithClock replaces the score clock.
func WithClock(clock *ScoreClock) HistoryOption {
	return func(h *History) {
		h.clock = clock
	}
}

// WithHistoryLogger sets the logger used for swallowed errors.
func WithHistoryLogger(logger *slog.Logger) HistoryOption {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHistory creates a History over the given store.
func NewHistory(store SortedSet, opts ...HistoryOption) *History {
	h := &History{
		store:  store,
		clock:  NewScoreClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append adds text as the newest turn of the conversation.
// A malformed key is logged and reported as (false, nil).
func (h *History) Append(ctx context.Context, key CompanionKey, text string) (bool, error) {
	if err := key.Validate(); err != nil {
		h.logger.Warn("skipping history append", "error", err)
		return false, nil
	}

	if err := h.store.Add(ctx, key.StorageKey(), h.clock.Next(), text); err != nil {
		return false, storeError("append", err)
	}
	return true, nil
}

// ReadWindow returns the last limit turns in chronological order joined by
// newlines. An empty conversation or a malformed key yields "".
func (h *History) ReadWindow(ctx context.Context, key CompanionKey, limit int) (string, error) {
	if err := key.Validate(); err != nil {
		h.logger.Warn("skipping history read", "error", err)
		return "", nil
	}
	if limit <= 0 {
		limit = DefaultWindowSize
	}

	members, err := h.store.Range(ctx, key.StorageKey(), limit)
	if err != nil {
		return "", storeError("read window", err)
	}
	return strings.Join(members, "\n"), nil
}

// Exists reports whether the conversation has any turn.
func (h *History) Exists(ctx context.Context, key CompanionKey) (bool, error) {
	exists, err := h.store.Exists(ctx, key.StorageKey())
	if err != nil {
		return false, storeError("exists", err)
	}
	return exists, nil
}

// SeedIfEmpty initializes an empty conversation with the lines of seedText.
// Line i is stored at score i, ahead of any clock-scored turn. It returns
// the number of lines written, which is zero when the conversation already
// has history.
func (h *History) SeedIfEmpty(ctx context.Context, key CompanionKey, seedText, delimiter string) (int, error) {
	if err := key.Validate(); err != nil {
		h.logger.Warn("skipping history seed", "error", err)
		return 0, nil
	}
	if seedText == "" {
		return 0, nil
	}
	if delimiter == "" {
		delimiter = DefaultSeedDelimiter
	}

	exists, err := h.Exists(ctx, key)
	if err != nil {
		return 0, err
	}
	if exists {
		h.logger.Info("user already has chat history", "key", key.StorageKey())
		return 0, nil
	}

	storageKey := key.StorageKey()
	lines := strings.Split(seedText, delimiter)
	for i, line := range lines {
		if err := h.store.Add(ctx, storageKey, float64(i), line); err != nil {
			return i, storeError("seed", err)
		}
	}
	return len(lines), nil
}

func storeError(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
