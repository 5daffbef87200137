package memory

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// UserTurnPrefix marks user turns in the history log.
const UserTurnPrefix = "User: "

// ManagerConfig tunes the Manager.
type ManagerConfig struct {
	// WindowSize is the number of recent turns surfaced per prompt.
	// Default is DefaultWindowSize.
	WindowSize int

	// TopK is the number of similar snippets recalled per turn.
	// Default is DefaultTopK.
	TopK int

	// SeedDelimiter splits persona seed text into turns. Default is "\n\n".
	SeedDelimiter string
}

// TurnContext is the memory assembled for one prompt.
type TurnContext struct {
	// RecentHistory is the recall window, oldest turn first, including
	// the user turn just appended.
	RecentHistory string

	// RelevantHistory holds the recalled persona snippets, one per line.
	RelevantHistory string

	// Seeded is the number of seed lines written during this turn.
	Seeded int
}

// Manager is the entry point the chat flow uses to read and write memory.
// It is built once at startup and shared; it keeps no per-call state.
type Manager struct {
	history  *History
	recaller *Recaller
	config   ManagerConfig
	logger   *slog.Logger
}

// NewManager creates a Manager.
func NewManager(history *History, recaller *Recaller, cfg ManagerConfig, logger *slog.Logger) *Manager {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.SeedDelimiter == "" {
		cfg.SeedDelimiter = "\n\n"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		history:  history,
		recaller: recaller,
		config:   cfg,
		logger:   logger,
	}
}

// PrepareTurn records the user's message and assembles prompt memory.
//
// An empty conversation is first seeded with personaSeed. The user turn is
// then appended, the window re-read so it includes that turn, and the
// window used as the similarity query against the persona's documents.
// Only history store failures are returned.
func (m *Manager) PrepareTurn(ctx context.Context, key CompanionKey, userText, personaSeed string) (*TurnContext, error) {
	turn := &TurnContext{}

	records, err := m.history.ReadWindow(ctx, key, m.config.WindowSize)
	if err != nil {
		return nil, err
	}
	if records == "" {
		turn.Seeded, err = m.history.SeedIfEmpty(ctx, key, personaSeed, m.config.SeedDelimiter)
		if err != nil {
			return nil, err
		}
	}

	if _, err := m.history.Append(ctx, key, UserTurnPrefix+userText+"\n"); err != nil {
		return nil, err
	}

	turn.RecentHistory, err = m.history.ReadWindow(ctx, key, m.config.WindowSize)
	if err != nil {
		return nil, err
	}

	matches := m.recaller.Recall(ctx, turn.RecentHistory, PersonaNamespace(key.CompanionID), m.config.TopK)
	if len(matches) > 0 {
		contents := make([]string, 0, len(matches))
		for _, match := range matches {
			contents = append(contents, match.Content)
		}
		turn.RelevantHistory = strings.Join(contents, "\n")
	}

	m.logger.Debug("prepared turn",
		"key", key.StorageKey(),
		"seeded", turn.Seeded,
		"matches", len(matches),
	)

	return turn, nil
}

// CommitReply appends the model's reply to the conversation. Replies that
// are one character or less after trimming are dropped; the returned bool
// reports whether the reply was written.
func (m *Manager) CommitReply(ctx context.Context, key CompanionKey, reply string) (bool, error) {
	trimmed := strings.TrimSpace(reply)
	if utf8.RuneCountInString(trimmed) <= 1 {
		m.logger.Debug("dropping degenerate reply", "key", key.StorageKey())
		return false, nil
	}
	return m.history.Append(ctx, key, trimmed)
}
