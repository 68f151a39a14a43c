package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/reembed"
	"github.com/poiesic/educaia/storage"
)

// embeddingProcessor stores vectors for passages that do not have one yet.
type embeddingProcessor struct {
	batch  *reembed.BatchProcessor
	logger *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(vectors storage.VectorRepository, embedder ai.Embedder, model string,
	maxAttempts int, retryDelay time.Duration, logger *slog.Logger) (processor, error) {
	if vectors == nil {
		return nil, fmt.Errorf("vector repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		batch:  reembed.NewBatchProcessor(vectors, embedder, model, maxAttempts, retryDelay),
		logger: logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the passages missing from the vector store.
func (ep *embeddingProcessor) process(ctx context.Context, texts []string) (int, error) {
	ep.logger.Debug("processing passages for embeddings", "passages", len(texts))

	n, err := ep.batch.ProcessMissing(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return 0, err
	}
	return n, nil
}
