package embedding

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Provider names an embedding backend.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderHuggingFace Provider = "huggingface"
	ProviderHash        Provider = "hash"
)

// ProviderConfig selects and configures an embedding backend.
type ProviderConfig struct {
	Provider  Provider
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// NewEmbedder creates an Embedder for the configured provider.
func NewEmbedder(cfg ProviderConfig) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     openai.EmbeddingModel(cfg.Model),
			Dimension: cfg.Dimension,
		})

	case ProviderHuggingFace:
		return NewHuggingFaceEmbedder(HuggingFaceConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})

	case ProviderHash:
		return NewHashEmbedder(cfg.Dimension), nil

	case "":
		return nil, errors.New("embedding provider is required")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
