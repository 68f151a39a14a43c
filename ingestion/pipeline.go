package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/storage"
)

const (
	// DefaultBatchSize is the number of passages embedded per pool task.
	DefaultBatchSize = 32

	// DefaultMaxAttempts is the number of attempts per batch.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the base backoff between attempts.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Pipeline orchestrates the import of knowledge bases and the embedding of
// their passages.
type Pipeline struct {
	knowledgeRepository storage.KnowledgeRepository
	vectorRepository    storage.VectorRepository
	model               string
	embeddingPool       *ants.Pool
	embeddingProc       processor
	batchSize           int
	maxAttempts         int
	retryDelay          time.Duration
	logger              *slog.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	errs     []error
	released atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithBatchSize sets how many passages each pool task embeds.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive: %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts per batch and the base backoff delay.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return fmt.Errorf("max attempts must be positive: %d", maxAttempts)
		}
		if delay < 0 {
			return fmt.Errorf("retry delay cannot be negative: %v", delay)
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
// Vectors are stored under provider.ModelName().
func NewPipeline(
	knowledgeRepository storage.KnowledgeRepository,
	vectorRepository storage.VectorRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if knowledgeRepository == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if vectorRepository == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		knowledgeRepository: knowledgeRepository,
		vectorRepository:    vectorRepository,
		model:               provider.ModelName(),
		embeddingPool:       embeddingPool,
		batchSize:           DefaultBatchSize,
		maxAttempts:         DefaultMaxAttempts,
		retryDelay:          DefaultRetryDelay,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion", "model", p.model)

	// Create the processor after options are applied so it gets the final config
	embeddingProc, err := newEmbeddingProcessor(vectorRepository, provider.Embedder(), p.model,
		p.maxAttempts, p.retryDelay, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// importJob tracks the outstanding batches of one import.
type importJob struct {
	name      string
	passages  []string
	remaining atomic.Int32
	failed    atomic.Bool
}

// Import stores corpus under name and embeds its passages asynchronously.
// The returned record is the stored knowledge base. Embedding errors are
// logged and returned by Wait.
func (p *Pipeline) Import(ctx context.Context, name, source string, corpus core.Corpus) (*core.KnowledgeBase, error) {
	if p.released.Load() {
		return nil, ErrPipelineReleased
	}

	kb, err := p.knowledgeRepository.SaveCorpus(ctx, name, source, corpus)
	if err != nil {
		return nil, err
	}
	p.logger.Info("knowledge base saved", "name", kb.Name, "passages", len(kb.Passages))

	texts := kb.Passages
	batches := (len(texts) + p.batchSize - 1) / p.batchSize
	job := &importJob{name: kb.Name, passages: kb.Passages}
	job.remaining.Store(int32(batches))

	// Embedding outlives the request that triggered the import
	bgCtx := context.WithoutCancel(ctx)
	for i := 0; i < len(texts); i += p.batchSize {
		batch := texts[i:min(i+p.batchSize, len(texts))]

		p.wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer p.wg.Done()
			p.runBatch(bgCtx, job, batch)
		})
		if submitErr != nil {
			p.wg.Done()
			job.failed.Store(true)
			p.recordError(fmt.Errorf("knowledge base %q: %w", kb.Name, submitErr))
			return kb, fmt.Errorf("failed to schedule embeddings: %w", submitErr)
		}
	}

	return kb, nil
}

func (p *Pipeline) runBatch(ctx context.Context, job *importJob, batch []string) {
	n, err := p.embeddingProc.process(ctx, batch)
	if err != nil {
		job.failed.Store(true)
		p.recordError(fmt.Errorf("knowledge base %q: %w", job.name, err))
		p.logger.Error("error processing embeddings", "name", job.name, "err", err)
	} else {
		p.logger.Debug("batch embedded", "name", job.name, "embedded", n, "batch", len(batch))
	}

	if job.remaining.Add(-1) != 0 || job.failed.Load() {
		return
	}
	recorded, err := p.recordModel(ctx, job)
	if err != nil {
		p.recordError(fmt.Errorf("knowledge base %q: %w", job.name, err))
		p.logger.Error("error recording embedded model", "name", job.name, "err", err)
		return
	}
	if !recorded {
		p.logger.Info("knowledge base replaced while embedding, model not recorded", "name", job.name)
		return
	}
	p.logger.Info("knowledge base embedded", "name", job.name)
}

// recordModel marks the knowledge base as embedded with the pipeline model,
// unless its passages were replaced since the job was imported.
func (p *Pipeline) recordModel(ctx context.Context, job *importJob) (bool, error) {
	recorded := false
	err := p.knowledgeRepository.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := p.knowledgeRepository.GetKnowledgeBase(ctx, job.name)
		if err != nil {
			return err
		}
		if !slices.Equal(current.Passages, job.passages) {
			return nil
		}
		recorded = true
		return p.knowledgeRepository.SetEmbeddedModel(ctx, job.name, p.model)
	})
	return recorded, err
}

func (p *Pipeline) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

// Wait blocks until every submitted batch has finished and returns the batch
// errors collected since the previous Wait.
func (p *Pipeline) Wait() error {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	err := errors.Join(p.errs...)
	p.errs = nil
	return err
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.released.Store(true)
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
