// Package config loads service configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort int    `yaml:"server_port"`
	ServerHost string `yaml:"server_host"`

	// LLM settings
	LLM         LLMConfig `yaml:"llm"`
	FallbackLLM LLMConfig `yaml:"fallback_llm"`

	// Embedding settings
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Storage settings
	HistoryBackend string `yaml:"history_backend"` // redis or memory
	RedisURL       string `yaml:"redis_url"`
	VectorBackend  string `yaml:"vector_backend"` // chromem or memory
	VectorPath     string `yaml:"vector_path"`
	VectorCompress bool   `yaml:"vector_compress"`
	DatabasePath   string `yaml:"database_path"`
	CacheSize      int    `yaml:"cache_size"`

	// Memory settings
	ModelName  string `yaml:"model_name"`
	WindowSize int    `yaml:"window_size"`
	RecallTopK int    `yaml:"recall_top_k"`

	// Rate limiting
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// Application settings
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// LLMConfig configures a text-generation provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, groq, claude or ollama
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"` // zero leaves the provider default
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // huggingface, openai or hash
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerPort: 8080,
		ServerHost: "0.0.0.0",
		LLM: LLMConfig{
			Provider:  "groq",
			Model:     "llama-3.1-8b-instant",
			MaxTokens: 2048,
		},
		Embedding: EmbeddingConfig{
			Provider: "huggingface",
		},
		HistoryBackend: "redis",
		RedisURL:       "redis://localhost:6379/0",
		VectorBackend:  "chromem",
		VectorPath:     "data/vectors",
		DatabasePath:   "data/companion.db",
		CacheSize:      1000,
		ModelName:      "llama2-13b",
		WindowSize:     30,
		RecallTopK:     3,
		RateLimit:      1,
		RateBurst:      10,
		Environment:    "development",
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (if path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnvInt("SERVER_PORT", c.ServerPort)
	c.ServerHost = getEnv("SERVER_HOST", c.ServerHost)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Temperature = float32(getEnvFloat("LLM_TEMPERATURE", float64(c.LLM.Temperature)))
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = providerKey(c.LLM.Provider)
	}

	c.FallbackLLM.Provider = getEnv("FALLBACK_LLM_PROVIDER", c.FallbackLLM.Provider)
	c.FallbackLLM.Model = getEnv("FALLBACK_LLM_MODEL", c.FallbackLLM.Model)
	c.FallbackLLM.BaseURL = getEnv("FALLBACK_LLM_BASE_URL", c.FallbackLLM.BaseURL)
	c.FallbackLLM.MaxTokens = getEnvInt("FALLBACK_LLM_MAX_TOKENS", c.FallbackLLM.MaxTokens)
	c.FallbackLLM.APIKey = getEnv("FALLBACK_LLM_API_KEY", c.FallbackLLM.APIKey)
	if c.FallbackLLM.APIKey == "" && c.FallbackLLM.Provider != "" {
		c.FallbackLLM.APIKey = providerKey(c.FallbackLLM.Provider)
	}

	c.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", c.Embedding.Provider)
	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.BaseURL = getEnv("EMBEDDING_BASE_URL", c.Embedding.BaseURL)
	c.Embedding.APIKey = getEnv("EMBEDDING_API_KEY", c.Embedding.APIKey)
	if c.Embedding.APIKey == "" {
		switch c.Embedding.Provider {
		case "huggingface":
			c.Embedding.APIKey = os.Getenv("HUGGINGFACE_API_KEY")
		case "openai":
			c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	c.HistoryBackend = getEnv("HISTORY_BACKEND", c.HistoryBackend)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.VectorBackend = getEnv("VECTOR_BACKEND", c.VectorBackend)
	c.VectorPath = getEnv("VECTOR_PATH", c.VectorPath)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)

	c.ModelName = getEnv("MODEL_NAME", c.ModelName)
	c.WindowSize = getEnvInt("HISTORY_WINDOW", c.WindowSize)
	c.RecallTopK = getEnvInt("RECALL_TOP_K", c.RecallTopK)

	c.RateLimit = getEnvFloat("RATE_LIMIT", c.RateLimit)
	c.RateBurst = getEnvInt("RATE_BURST", c.RateBurst)

	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// providerKey returns the conventional API key variable for an LLM provider.
func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

func (c *Config) validate() error {
	var errs []error

	if err := c.LLM.validate("llm"); err != nil {
		errs = append(errs, err)
	}
	if c.FallbackLLM.Provider != "" {
		if err := c.FallbackLLM.validate("fallback_llm"); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Embedding.Provider {
	case "huggingface", "openai":
		if c.Embedding.APIKey == "" {
			errs = append(errs, fmt.Errorf("embedding: API key is required for %s", c.Embedding.Provider))
		}
	case "hash", "none":
	default:
		errs = append(errs, fmt.Errorf("embedding: unsupported provider %q", c.Embedding.Provider))
	}

	switch c.HistoryBackend {
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis history backend"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported history backend %q", c.HistoryBackend))
	}

	switch c.VectorBackend {
	case "chromem", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported vector backend %q", c.VectorBackend))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}
	if c.ModelName == "" {
		errs = append(errs, errors.New("MODEL_NAME is required"))
	}
	if c.WindowSize <= 0 {
		errs = append(errs, errors.New("HISTORY_WINDOW must be positive"))
	}
	if c.RecallTopK <= 0 {
		errs = append(errs, errors.New("RECALL_TOP_K must be positive"))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT and RATE_BURST must be positive"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (l LLMConfig) validate(name string) error {
	switch l.Provider {
	case "openai", "groq", "claude":
		if l.APIKey == "" {
			return fmt.Errorf("%s: API key is required for %s", name, l.Provider)
		}
	case "ollama":
	default:
		return fmt.Errorf("%s: unsupported provider %q", name, l.Provider)
	}
	return nil
}

// RecallEnabled reports whether similarity recall is configured.
func (c *Config) RecallEnabled() bool {
	return c.Embedding.Provider != "none"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
