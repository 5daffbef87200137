// Package vectorstore provides vector storage and filtered similarity search.
package vectorstore

import (
	"context"
	"errors"

	"github.com/hassan123789/go-companion/internal/embedding"
)

// SearchResult represents a document with its similarity score.
type SearchResult struct {
	// Document is the matched document.
	Document embedding.Document

	// Score is the similarity score (higher is more similar).
	Score float32
}

// Filter restricts a search to documents whose metadata matches every
// key/value pair. A nil or empty Filter matches everything.
type Filter map[string]string

// Match reports whether doc satisfies the filter.
func (f Filter) Match(doc embedding.Document) bool {
	for key, want := range f {
		if doc.Metadata == nil {
			return false
		}
		got, ok := doc.Metadata[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// MetadataEquals returns a filter that matches documents where metadata[key] equals value.
func MetadataEquals(key, value string) Filter {
	return Filter{key: value}
}

// And merges filters; all conditions must hold.
func And(filters ...Filter) Filter {
	merged := Filter{}
	for _, f := range filters {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// VectorStore is the interface for vector storage backends.
type VectorStore interface {
	// Add stores documents with their embeddings.
	Add(ctx context.Context, docs []embedding.Document) error

	// SearchWithFilter finds documents matching the filter that are most
	// similar to the query vector. Returns up to limit results, sorted by
	// similarity (highest first).
	SearchWithFilter(ctx context.Context, query embedding.Vector, limit int, filter Filter) ([]SearchResult, error)

	// Delete removes every document matching the filter. An empty filter
	// is rejected with ErrEmptyFilter.
	Delete(ctx context.Context, filter Filter) error

	// Count returns the number of documents in the store.
	Count(ctx context.Context) (int, error)
}

// ErrEmptyFilter is returned by Delete when no filter is given.
var ErrEmptyFilter = errors.New("delete requires a non-empty filter")
