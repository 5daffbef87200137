package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Provider represents the type of LLM provider.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderClaude Provider = "claude"
	ProviderOllama Provider = "ollama"
)

// ProviderConfig contains configuration for creating an LLM client.
type ProviderConfig struct {
	// Provider specifies which LLM provider to use
	Provider Provider

	// APIKey is the API key for cloud providers
	APIKey string

	// Model is the model name to use
	Model string

	// MaxTokens is the default max tokens for completions
	MaxTokens int

	// BaseURL is the custom base URL (useful for Ollama or proxies)
	BaseURL string
}

// NewClient creates a new LLM client based on the provider configuration.
func NewClient(cfg ProviderConfig) (Client, error) {
	compat := OpenAIConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		BaseURL:   cfg.BaseURL,
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(compat)

	case ProviderGroq:
		return NewGroqClient(compat)

	case ProviderOllama:
		return NewOllamaClient(compat)

	case ProviderClaude:
		return NewClaudeClient(ClaudeConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})

	case "":
		return nil, errors.New("provider is required")

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// FallbackClient sends requests to a primary client and retries once on a
// fallback client when the primary fails.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
}

// NewFallbackClient combines two clients. A nil fallback disables retrying.
func NewFallbackClient(primary, fallback Client, logger *slog.Logger) (*FallbackClient, error) {
	if primary == nil {
		return nil, errors.New("primary client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Chat tries the primary client, then the fallback.
func (f *FallbackClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := f.primary.Chat(ctx, req)
	if err == nil || f.fallback == nil || ctx.Err() != nil {
		return resp, err
	}

	f.logger.Warn("primary LLM failed, using fallback", "error", err)

	resp, fbErr := f.fallback.Chat(ctx, req)
	if fbErr != nil {
		return nil, errors.Join(err, fmt.Errorf("fallback: %w", fbErr))
	}
	return resp, nil
}

// Close closes both clients.
func (f *FallbackClient) Close() error {
	var errs []error
	if err := f.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if f.fallback != nil {
		if err := f.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ensure the clients implement the Client interface.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*ClaudeClient)(nil)
	_ Client = (*FallbackClient)(nil)
)
