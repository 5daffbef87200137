package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hassan123789/go-companion/internal/embedding"
	"github.com/hassan123789/go-companion/internal/vectorstore"
)

// DefaultTopK is the number of similar snippets recalled per turn.
const DefaultTopK = 3

// NamespaceField is the metadata key scoping documents to a persona.
const NamespaceField = "fileName"

// Match is one snippet returned by similarity recall.
type Match struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// TextEmbedder embeds one text into a vector.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) (embedding.Vector, error)
}

// VectorIndex runs filtered nearest-neighbour queries.
type VectorIndex interface {
	SearchWithFilter(ctx context.Context, query embedding.Vector, limit int, filter vectorstore.Filter) ([]vectorstore.SearchResult, error)
}

// Recaller retrieves persona snippets related to the recent conversation.
// Recall is best-effort: failures degrade to no snippets.
type Recaller struct {
	embedder TextEmbedder
	index    VectorIndex
	logger   *slog.Logger
}

// NewRecaller creates a Recaller. A nil embedder or index disables recall.
func NewRecaller(embedder TextEmbedder, index VectorIndex, logger *slog.Logger) *Recaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recaller{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Recall embeds windowText and returns up to topK snippets from namespace.
// It never fails; errors are logged and yield an empty slice.
func (r *Recaller) Recall(ctx context.Context, windowText, namespace string, topK int) []Match {
	matches, err := r.recall(ctx, windowText, namespace, topK)
	if err != nil {
		r.logger.Warn("failed to get vector search results", "namespace", namespace, "error", err)
		return []Match{}
	}
	return matches
}

func (r *Recaller) recall(ctx context.Context, windowText, namespace string, topK int) ([]Match, error) {
	if r == nil || r.embedder == nil || r.index == nil {
		return []Match{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := r.embedder.Embed(ctx, windowText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", ErrRecallUnavailable, err)
	}

	results, err := r.index.SearchWithFilter(ctx, vector, topK, vectorstore.MetadataEquals(NamespaceField, namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrRecallUnavailable, err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		metadata := res.Document.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		matches = append(matches, Match{
			Content:  snippetText(metadata),
			Metadata: metadata,
		})
	}
	return matches, nil
}

// snippetText reads the "text" metadata field, falling back to "content".
func snippetText(metadata map[string]any) string {
	for _, field := range []string{"text", "content"} {
		if s, ok := metadata[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
