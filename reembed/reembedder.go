// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of passages embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of passages)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Purge deletes every stored vector of the model before embedding
	Purge bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary describes a finished run.
type Summary struct {
	KnowledgeBases int
	Passages       int
	Purged         int
	Elapsed        time.Duration
}

// Reembedder recomputes the vectors of every stored knowledge base for one model.
type Reembedder struct {
	knowledge storage.KnowledgeRepository
	vectors   storage.VectorRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *PassageIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(knowledge storage.KnowledgeRepository, vectors storage.VectorRepository,
	embedder ai.Embedder, model string, config *Config, progress io.Writer) (*Reembedder, error) {
	if knowledge == nil || vectors == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if strings.TrimSpace(model) == "" {
		return nil, ErrModelRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		knowledge: knowledge,
		vectors:   vectors,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(vectors, embedder, model, config.MaxRetries, config.RetryDelay),
		iterator:  NewPassageIterator(knowledge, config.BatchSize),
		logger:    slog.Default().With("component", "reembed", "model", model),
	}, nil
}

// Run embeds every passage of every stored knowledge base and marks each base
// as embedded with the model once all its batches succeed.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	bases, total, err := r.iterator.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}

	summary := &Summary{KnowledgeBases: bases}
	if total == 0 {
		fmt.Fprintf(r.progress, "No passages found in database (%d knowledge bases)\n", bases)
		return summary, nil
	}

	model := r.processor.Model()
	if r.config.Purge {
		purged, err := r.vectors.DeleteVectors(ctx, model)
		if err != nil {
			return nil, fmt.Errorf("failed to purge vectors: %w", err)
		}
		summary.Purged = purged
		r.logger.Info("purged stored vectors", "count", purged)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d passages from %d knowledge bases (batch size: %d)\n",
		total, bases, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(kb *core.KnowledgeBase, batch []string, last bool) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("knowledge base %q: %w", kb.Name, err)
		}

		processed += len(batch)
		tracker.Update(processed)

		if last {
			if err := r.knowledge.SetEmbeddedModel(ctx, kb.Name, model); err != nil {
				return fmt.Errorf("knowledge base %q: %w", kb.Name, err)
			}
			r.logger.Debug("knowledge base embedded", "name", kb.Name, "passages", len(kb.Passages))
		}
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding failed", "processed", processed, "err", err)
		return nil, err
	}

	tracker.Finish()

	summary.Passages = total
	summary.Elapsed = tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d passages in %v (%.1f passages/sec)\n",
		total, summary.Elapsed.Round(time.Millisecond), float64(total)/summary.Elapsed.Seconds())

	return summary, nil
}
