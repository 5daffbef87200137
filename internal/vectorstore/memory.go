package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hassan123789/go-companion/internal/embedding"
)

// MemoryStore is an in-memory implementation of VectorStore.
// Suitable for testing and small datasets.
type MemoryStore struct {
	documents map[string]embedding.Document
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]embedding.Document),
	}
}

// Add stores documents with their embeddings. A document with an existing
// ID replaces the stored one.
func (m *MemoryStore) Add(_ context.Context, docs []embedding.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document ID is required")
		}
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		m.documents[doc.ID] = doc
	}

	return nil
}

// SearchWithFilter finds documents matching both similarity and filter criteria.
func (m *MemoryStore) SearchWithFilter(_ context.Context, query embedding.Vector, limit int, filter Filter) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	results := make([]SearchResult, 0, len(m.documents))

	for _, doc := range m.documents {
		if !filter.Match(doc) {
			continue
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    embedding.CosineSimilarity(query, doc.Embedding),
		})
	}

	// Sort by score (highest first), ID breaks ties
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Document.ID < results[j].Document.ID
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Delete removes every document matching the filter.
func (m *MemoryStore) Delete(_ context.Context, filter Filter) error {
	if len(filter) == 0 {
		return ErrEmptyFilter
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.documents {
		if filter.Match(doc) {
			delete(m.documents, id)
		}
	}
	return nil
}

// Count returns the number of documents in the store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.documents), nil
}

// Ensure MemoryStore implements the interface.
var _ VectorStore = (*MemoryStore)(nil)
