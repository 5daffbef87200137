// Package embedding converts text into vectors for similarity recall.
package embedding

import (
	"context"
	"math"
)

// Vector represents an embedding vector.
type Vector []float32

// Embedder is the interface for text embedding providers.
type Embedder interface {
	// Embed converts a single text into a vector.
	Embed(ctx context.Context, text string) (Vector, error)

	// EmbedBatch converts multiple texts into vectors, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)

	// Dimension returns the dimension of the embedding vectors.
	Dimension() int

	// Model returns the name of the embedding model.
	Model() string
}

// Document is a piece of text stored in a vector index.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// Content is the text content.
	Content string `json:"content"`

	// Embedding is the vector representation.
	Embedding Vector `json:"embedding,omitempty"`

	// Metadata contains additional information, such as the persona file
	// the document belongs to.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewDocumentWithMetadata creates a new document with metadata.
func NewDocumentWithMetadata(id, content string, metadata map[string]any) Document {
	return Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	}
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical.
func CosineSimilarity(a, b Vector) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Normalize returns a unit-length copy of v.
func Normalize(v Vector) Vector {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make(Vector, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}

// embedEach implements EmbedBatch for providers without a batch endpoint.
func embedEach(ctx context.Context, e Embedder, texts []string) ([]Vector, error) {
	vectors := make([]Vector, 0, len(texts))
	for _, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
