// Package chat runs one conversation turn between a user and a companion.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hassan123789/go-companion/internal/companion"
	"github.com/hassan123789/go-companion/internal/llm"
	"github.com/hassan123789/go-companion/internal/memory"
)

// ErrGeneration is returned when the text-generation provider fails.
var ErrGeneration = errors.New("generation failed")

// DefaultModelName identifies the conversation log a companion keeps per model.
const DefaultModelName = "llama2-13b"

// CompanionStore is the part of companion.Store the chat flow needs.
type CompanionStore interface {
	Get(ctx context.Context, id string) (*companion.Companion, error)
	AddMessage(ctx context.Context, companionID, userID string, role companion.Role, content string) (*companion.Message, error)
}

// Config configures the Service.
type Config struct {
	// ModelName is recorded in every CompanionKey. Default is DefaultModelName.
	ModelName string

	// MaxTokens bounds the completion length; 0 leaves it to the provider.
	MaxTokens int

	// Temperature is passed through to the provider.
	Temperature float32
}

// Service runs chat turns.
type Service struct {
	companions CompanionStore
	memory     *memory.Manager
	client     llm.Client
	config     Config
	logger     *slog.Logger
}

// NewService creates a chat Service.
func NewService(companions CompanionStore, manager *memory.Manager, client llm.Client, cfg Config, logger *slog.Logger) *Service {
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		companions: companions,
		memory:     manager,
		client:     client,
		config:     cfg,
		logger:     logger,
	}
}

// Turn handles one user message and returns the companion's completion.
//
// The user message is stored before generation. The reply is written to
// memory and stored as a system message only when it has more than one
// character after trimming; the untrimmed completion is always returned.
func (s *Service) Turn(ctx context.Context, companionID, userID, prompt string) (string, error) {
	c, err := s.companions.Get(ctx, companionID)
	if err != nil {
		return "", err
	}

	if _, err := s.companions.AddMessage(ctx, c.ID, userID, companion.RoleUser, prompt); err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}

	key := memory.CompanionKey{
		CompanionID: c.ID,
		ModelName:   s.config.ModelName,
		UserID:      userID,
	}

	turn, err := s.memory.PrepareTurn(ctx, key, prompt, c.Seed)
	if err != nil {
		return "", fmt.Errorf("prepare turn: %w", err)
	}

	resp, err := s.client.Chat(ctx, &llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: BuildPrompt(c, turn)}},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	completion := resp.Content

	committed, err := s.memory.CommitReply(ctx, key, completion)
	if err != nil {
		return "", fmt.Errorf("commit reply: %w", err)
	}
	if committed {
		if _, err := s.companions.AddMessage(ctx, c.ID, userID, companion.RoleSystem, strings.TrimSpace(completion)); err != nil {
			return "", fmt.Errorf("store reply message: %w", err)
		}
	}

	s.logger.Info("chat turn completed",
		"companion_id", c.ID,
		"user_id", userID,
		"seeded", turn.Seeded,
		"committed", committed,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return completion, nil
}
