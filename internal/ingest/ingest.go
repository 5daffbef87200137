// Package ingest loads persona backstories into the vector index used by
// similarity recall.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/hassan123789/go-companion/internal/embedding"
	"github.com/hassan123789/go-companion/internal/memory"
	"github.com/hassan123789/go-companion/internal/vectorstore"
)

// Index stores embedded documents. Documents with an existing ID replace
// the stored ones.
type Index interface {
	Add(ctx context.Context, docs []embedding.Document) error
	Delete(ctx context.Context, filter vectorstore.Filter) error
}

// Options configures an Ingester.
type Options struct {
	// MaxChunkSize bounds chunk length in runes. Default is DefaultMaxChunkSize.
	MaxChunkSize int

	// BatchSize is the number of chunks embedded per request. Default is 32.
	BatchSize int
}

// Ingester embeds persona backstories and writes them to an Index.
type Ingester struct {
	embedder embedding.Embedder
	index    Index
	opts     Options
	logger   *slog.Logger
}

// New creates an Ingester.
func New(embedder embedding.Embedder, index Index, opts Options, logger *slog.Logger) *Ingester {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		embedder: embedder,
		index:    index,
		opts:     opts,
		logger:   logger,
	}
}

// IngestFile reads the backstory at path and ingests it for companionID.
func (i *Ingester) IngestFile(ctx context.Context, companionID, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read backstory: %w", err)
	}
	return i.Ingest(ctx, companionID, string(data))
}

// Ingest chunks text and stores each chunk under the companion's persona
// namespace, returning the number of chunks written. The namespace is
// replaced as a whole: chunks from an earlier ingestion are removed once
// the new ones are embedded.
func (i *Ingester) Ingest(ctx context.Context, companionID, text string) (int, error) {
	if companionID == "" {
		return 0, fmt.Errorf("companion id is required")
	}

	namespace := memory.PersonaNamespace(companionID)
	chunks := Chunk(text, i.opts.MaxChunkSize)

	docs := make([]embedding.Document, 0, len(chunks))
	for start := 0; start < len(chunks); start += i.opts.BatchSize {
		end := min(start+i.opts.BatchSize, len(chunks))
		batch := chunks[start:end]

		vectors, err := i.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embed chunks: expected %d vectors, got %d", len(batch), len(vectors))
		}

		for j, chunk := range batch {
			doc := embedding.NewDocumentWithMetadata(
				namespace+"#"+strconv.Itoa(start+j),
				chunk,
				map[string]any{
					memory.NamespaceField: namespace,
					"text":                chunk,
				},
			)
			doc.Embedding = vectors[j]
			docs = append(docs, doc)
		}
	}

	if err := i.index.Delete(ctx, vectorstore.MetadataEquals(memory.NamespaceField, namespace)); err != nil {
		return 0, fmt.Errorf("clear previous chunks: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := i.index.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	i.logger.Info("ingested backstory",
		"companion_id", companionID,
		"namespace", namespace,
		"chunks", len(docs),
		"model", i.embedder.Model(),
	)

	return len(docs), nil
}
