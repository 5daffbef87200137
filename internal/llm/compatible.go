package llm

import "errors"

// Groq and Ollama expose OpenAI-compatible chat endpoints.
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OllamaBaseURL = "http://localhost:11434/v1"
)

// Common model names
const (
	GroqLlama3_1_8B = "llama-3.1-8b-instant"
	OllamaLlama3_2  = "llama3.2"
)

// NewGroqClient creates a client for Groq's hosted models.
func NewGroqClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	return newOpenAICompatible(cfg, GroqLlama3_1_8B), nil
}

// NewOllamaClient creates a client for a local Ollama server.
// Ollama needs no API key.
func NewOllamaClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OllamaBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return newOpenAICompatible(cfg, OllamaLlama3_2), nil
}
