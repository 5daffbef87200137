package vectorstore

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/hassan123789/go-companion/internal/embedding"
)

// DefaultCollection is the chromem collection holding persona documents.
const DefaultCollection = "companions"

// ChromemStore wraps chromem-go, a pure Go embedded vector database.
// All personas share one collection; searches are scoped with metadata
// filters.
type ChromemStore struct {
	db  *chromem.DB
	col *chromem.Collection
}

// ChromemConfig configures a ChromemStore.
type ChromemConfig struct {
	// Path enables persistence to a directory. Empty keeps data in memory.
	Path string

	// Compress gzips persisted documents.
	Compress bool

	// Collection name. Default is DefaultCollection.
	Collection string
}

// NewChromemStore opens (or creates) the chromem database.
func NewChromemStore(cfg ChromemConfig) (*ChromemStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	db := chromem.NewDB()
	if cfg.Path != "" {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	col, err := db.GetOrCreateCollection(cfg.Collection, nil, precomputedOnly)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, col: col}, nil
}

// precomputedOnly keeps chromem from calling its default OpenAI embedding
// function; callers always supply vectors.
func precomputedOnly(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be computed by the caller")
}

// Add stores documents with their embeddings. Metadata values are stored
// as strings.
func (s *ChromemStore) Add(ctx context.Context, docs []embedding.Document) error {
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document ID is required")
		}
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}

		metadata := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = fmt.Sprint(v)
		}

		err := s.col.AddDocument(ctx, chromem.Document{
			ID:        doc.ID,
			Metadata:  metadata,
			Embedding: doc.Embedding,
			Content:   doc.Content,
		})
		if err != nil {
			return fmt.Errorf("add document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// SearchWithFilter runs a filtered nearest-neighbour query.
func (s *ChromemStore) SearchWithFilter(ctx context.Context, query embedding.Vector, limit int, filter Filter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go rejects nResults larger than the collection
	if n := s.col.Count(); n < limit {
		limit = n
	}
	if limit == 0 {
		return []SearchResult{}, nil
	}

	var where map[string]string
	if len(filter) > 0 {
		where = filter
	}

	found, err := s.col.QueryEmbedding(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]SearchResult, 0, len(found))
	for _, r := range found {
		metadata := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		results = append(results, SearchResult{
			Document: embedding.Document{
				ID:        r.ID,
				Content:   r.Content,
				Embedding: r.Embedding,
				Metadata:  metadata,
			},
			Score: r.Similarity,
		})
	}
	return results, nil
}

// Delete removes every document whose metadata matches the filter.
func (s *ChromemStore) Delete(ctx context.Context, filter Filter) error {
	if len(filter) == 0 {
		return ErrEmptyFilter
	}
	if err := s.col.Delete(ctx, filter, nil); err != nil {
		return fmt.Errorf("chromem delete: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *ChromemStore) Count(_ context.Context) (int, error) {
	return s.col.Count(), nil
}

// Ensure ChromemStore implements the interface.
var _ VectorStore = (*ChromemStore)(nil)
