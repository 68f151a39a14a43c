package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/storage"
)

// BatchProcessor embeds batches of passages and stores the vectors for one model.
type BatchProcessor struct {
	vectors        storage.VectorRepository
	embedder       ai.Embedder
	model          string
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(vectors storage.VectorRepository, embedder ai.Embedder, model string, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		vectors:        vectors,
		embedder:       embedder,
		model:          model,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Model returns the model name vectors are stored under.
func (bp *BatchProcessor) Model() string {
	return bp.model
}

// Process embeds texts and stores the normalized vectors.
func (bp *BatchProcessor) Process(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		out, err := bp.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(out) != len(texts) {
			return Permanent(fmt.Errorf("%w: expected %d, got %d", ai.ErrEmbeddingMismatch, len(texts), len(out)))
		}
		embeddings = out
		return nil
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	for i := range embeddings {
		embeddings[i] = ai.NormalizeVector(embeddings[i])
	}

	if err := bp.vectors.PutVectors(ctx, bp.model, texts, embeddings); err != nil {
		return fmt.Errorf("failed to store vectors: %w", err)
	}
	return nil
}

// ProcessMissing embeds only the texts without a stored vector and returns how
// many were embedded.
func (bp *BatchProcessor) ProcessMissing(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	stored, err := bp.vectors.GetVectors(ctx, bp.model, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to read vectors: %w", err)
	}

	var missing []string
	seen := make(map[string]struct{})
	for i, vec := range stored {
		if vec != nil {
			continue
		}
		if _, dup := seen[texts[i]]; dup {
			continue
		}
		seen[texts[i]] = struct{}{}
		missing = append(missing, texts[i])
	}
	if err := bp.Process(ctx, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}
