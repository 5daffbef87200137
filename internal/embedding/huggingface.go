package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFace inference defaults.
const (
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultHuggingFaceModel   = "sentence-transformers/paraphrase-MiniLM-L6-v2"
)

// HuggingFaceEmbedder calls the Hugging Face feature-extraction endpoint.
// The endpoint embeds one input per request.
type HuggingFaceEmbedder struct {
	apiKey    string
	url       string
	model     string
	dimension int
	client    *http.Client
}

// HuggingFaceConfig contains configuration for HuggingFaceEmbedder.
type HuggingFaceConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int // 384 for MiniLM-L6
	Timeout   time.Duration
}

// NewHuggingFaceEmbedder creates a Hugging Face embedder.
func NewHuggingFaceEmbedder(cfg HuggingFaceConfig) (*HuggingFaceEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHuggingFaceModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 384
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &HuggingFaceEmbedder{
		apiKey:    cfg.APIKey,
		url:       strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type featureRequest struct {
	Inputs string `json:"inputs"`
}

// Embed converts a single text into a vector.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	body, err := json.Marshal(featureRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hugging face API error: status %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	return decodeFeatures(raw)
}

// decodeFeatures accepts a sentence vector or a token matrix, which is
// mean-pooled.
func decodeFeatures(raw []byte) (Vector, error) {
	var flat Vector
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("empty embedding returned")
		}
		return flat, nil
	}

	var tokens []Vector
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(tokens) == 0 || len(tokens[0]) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	pooled := make(Vector, len(tokens[0]))
	for _, tok := range tokens {
		if len(tok) != len(pooled) {
			return nil, fmt.Errorf("ragged token embeddings: %d != %d", len(tok), len(pooled))
		}
		for i, v := range tok {
			pooled[i] += v
		}
	}
	for i := range pooled {
		pooled[i] /= float32(len(tokens))
	}
	return pooled, nil
}

// EmbedBatch embeds each text with its own request.
func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	return embedEach(ctx, e, texts)
}

// Dimension returns the dimension of the embedding vectors.
func (e *HuggingFaceEmbedder) Dimension() int {
	return e.dimension
}

// Model returns the name of the embedding model.
func (e *HuggingFaceEmbedder) Model() string {
	return e.model
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Embedder = (*HuggingFaceEmbedder)(nil)
