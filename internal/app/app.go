// Package app wires the service's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hassan123789/go-companion/internal/chat"
	"github.com/hassan123789/go-companion/internal/companion"
	"github.com/hassan123789/go-companion/internal/config"
	"github.com/hassan123789/go-companion/internal/embedding"
	"github.com/hassan123789/go-companion/internal/handler"
	"github.com/hassan123789/go-companion/internal/ingest"
	"github.com/hassan123789/go-companion/internal/llm"
	"github.com/hassan123789/go-companion/internal/memory"
	"github.com/hassan123789/go-companion/internal/vectorstore"
)

// ErrRecallDisabled is returned by Ingester when no embedding provider is configured.
var ErrRecallDisabled = errors.New("similarity recall is disabled")

// App holds the long-lived components of the service.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Companions companion.Store
	History    memory.SortedSet
	Index      vectorstore.VectorStore
	Embedder   embedding.Embedder
	LLM        llm.Client
	Memory     *memory.Manager
	Chat       *chat.Service

	closers []func() error
}

// New builds every component described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	// Relational store
	db, err := companion.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open companion store: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	cached, err := companion.NewCachedStore(db, companion.CacheConfig{MaxEntries: int64(cfg.CacheSize)})
	if err != nil {
		return err
	}
	a.closers[len(a.closers)-1] = cached.Close
	a.Companions = cached

	// Conversation history
	switch cfg.HistoryBackend {
	case "redis":
		rs, err := memory.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect history store: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		a.History = rs
	default:
		a.History = memory.NewLocalStore()
	}

	// Vector index
	switch cfg.VectorBackend {
	case "chromem":
		index, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Path:     cfg.VectorPath,
			Compress: cfg.VectorCompress,
		})
		if err != nil {
			return fmt.Errorf("open vector index: %w", err)
		}
		a.Index = index
	default:
		a.Index = vectorstore.NewMemoryStore()
	}

	// Embeddings
	if cfg.RecallEnabled() {
		a.Embedder, err = embedding.NewEmbedder(embedding.ProviderConfig{
			Provider:  embedding.Provider(cfg.Embedding.Provider),
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		})
		if err != nil {
			return fmt.Errorf("create embedder: %w", err)
		}
	}

	// Text generation
	a.LLM, err = newLLMClient(cfg, a.Logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.LLM.Close)

	// Memory and chat
	var recaller *memory.Recaller
	if a.Embedder != nil {
		recaller = memory.NewRecaller(a.Embedder, a.Index, a.Logger)
	}
	history := memory.NewHistory(a.History, memory.WithHistoryLogger(a.Logger))
	a.Memory = memory.NewManager(history, recaller, memory.ManagerConfig{
		WindowSize: cfg.WindowSize,
		TopK:       cfg.RecallTopK,
	}, a.Logger)

	a.Chat = chat.NewService(a.Companions, a.Memory, a.LLM, chat.Config{
		ModelName:   cfg.ModelName,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, a.Logger)

	a.Logger.Info("components initialized",
		"history_backend", cfg.HistoryBackend,
		"vector_backend", cfg.VectorBackend,
		"llm_provider", cfg.LLM.Provider,
		"embedding_provider", cfg.Embedding.Provider,
	)
	return nil
}

func newLLMClient(cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	primary, err := llm.NewClient(providerConfig(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	if cfg.FallbackLLM.Provider == "" {
		return primary, nil
	}

	fallback, err := llm.NewClient(providerConfig(cfg.FallbackLLM))
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("create fallback LLM client: %w", err)
	}
	client, err := llm.NewFallbackClient(primary, fallback, logger)
	if err != nil {
		_ = primary.Close()
		_ = fallback.Close()
		return nil, err
	}
	return client, nil
}

func providerConfig(c config.LLMConfig) llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider:  llm.Provider(c.Provider),
		APIKey:    c.APIKey,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		BaseURL:   c.BaseURL,
	}
}

// Ingester returns a persona ingester writing to the app's vector index.
func (a *App) Ingester() (*ingest.Ingester, error) {
	if a.Embedder == nil {
		return nil, ErrRecallDisabled
	}
	return ingest.New(a.Embedder, a.Index, ingest.Options{}, a.Logger), nil
}

// Server builds the HTTP server.
func (a *App) Server() *echo.Echo {
	return handler.NewServer(handler.Handlers{
		Chat:      handler.NewChatHandler(a.Chat),
		Companion: handler.NewCompanionHandler(a.Companions),
	}, handler.RateLimitConfig{
		Rate:  a.Config.RateLimit,
		Burst: a.Config.RateBurst,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
