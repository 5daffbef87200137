package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// HashEmbedder generates deterministic embeddings from a text hash.
// It needs no network access and is meant for tests and local runs;
// equal texts map to equal vectors, anything else is unrelated.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a hash embedder. Non-positive dimension means 384.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{dimension: dimension}
}

// Embed creates a unit vector seeded by the FNV-1a hash of text.
func (h *HashEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(text))
	seed := f.Sum64()

	v := make(Vector, h.dimension)
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return Normalize(v), nil
}

// EmbedBatch embeds each text in turn.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	return embedEach(ctx, h, texts)
}

// Dimension returns the dimension of the embedding vectors.
func (h *HashEmbedder) Dimension() int {
	return h.dimension
}

// Model returns the name of the embedding model.
func (h *HashEmbedder) Model() string {
	return "fnv-hash"
}

var _ Embedder = (*HashEmbedder)(nil)
