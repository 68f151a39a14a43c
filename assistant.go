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


package educaia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/ai/cached"
	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/knowledge"
	"github.com/poiesic/educaia/search"
)

const (
	// FallbackMessage is shown when the knowledge base has no answer.
	FallbackMessage = "Desculpe, não encontrei uma resposta para sua pergunta. " +
		"Por favor, tente reformular ou pergunte sobre outro assunto relacionado à universidade."

	// WelcomeMessage greets a new conversation.
	WelcomeMessage = "Olá! Sou o EducaIA, assistente virtual da Universidade Católica de Moçambique. Como posso ajudar?"
)

// Assistant answers questions from the current knowledge base.
// It is safe for concurrent use; the corpus can be swapped while questions are answered.
type Assistant struct {
	mu     sync.RWMutex
	corpus core.Corpus
	status string

	lazy     *ai.LazyEmbedder
	embedder ai.Embedder
	model    string
	engine   *search.Engine
	logger   *slog.Logger
}

// NewAssistant creates an Assistant with an empty knowledge base.
// The embedding provider is built on first use.
func NewAssistant(opts ...Option) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	logger := options.logger.With("component", "assistant")

	a := &Assistant{
		status: "knowledge base not loaded",
		model:  options.model,
		logger: logger,
	}

	var embedder ai.Embedder
	switch {
	case options.embedder != nil:
		embedder = options.embedder
	default:
		factory := options.factory
		if factory == nil {
			var err error
			factory, a.model, err = NewProviderFactory(options.aiConfig, options.logger)
			if err != nil {
				return nil, err
			}
		}
		lazy, err := ai.NewLazyEmbedder(factory, options.logger)
		if err != nil {
			return nil, err
		}
		a.lazy = lazy
		embedder = lazy
	}

	cacheSize := options.aiConfig.CacheSize
	if cacheSize > 0 || options.vectorStore != nil {
		cacheOpts := []cached.Option{cached.WithCacheSize(cacheSize), cached.WithLogger(options.logger)}
		if options.vectorStore != nil {
			cacheOpts = append(cacheOpts, cached.WithStore(options.vectorStore))
		}
		cache, err := cached.New(embedder, a.model, cacheOpts...)
		if err != nil {
			a.Close()
			return nil, err
		}
		embedder = cache
	}
	a.embedder = embedder

	engineOpts := append([]search.Option{search.WithLogger(options.logger)}, options.engineOpts...)
	engine, err := search.NewEngine(embedder, engineOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = engine

	return a, nil
}

// LoadKnowledgeBase reads the knowledge base at path, makes sure the embedding
// model is available and swaps the corpus in. The status string is always set;
// on error the previous corpus stays in place.
func (a *Assistant) LoadKnowledgeBase(ctx context.Context, path string) (string, error) {
	corpus, err := knowledge.LoadFile(path)
	status := knowledge.Status(corpus, err)
	if err != nil {
		a.logger.Error("knowledge base load failed", "path", path, "err", err)
		return status, err
	}

	if a.lazy != nil {
		if _, err := a.lazy.Init(ctx); err != nil {
			status = fmt.Sprintf("failed to load embedding model: %v", err)
			a.logger.Error("embedding model unavailable", "err", err)
			return status, fmt.Errorf("%w: %w", core.ErrEmbeddingModel, err)
		}
	}

	a.swap(corpus, status)
	a.logger.Info("knowledge base loaded", "path", path, "passages", corpus.Len())
	return status, nil
}

// SetCorpus replaces the knowledge base.
func (a *Assistant) SetCorpus(corpus core.Corpus) error {
	if err := core.ValidateCorpus(corpus); err != nil {
		return err
	}
	a.swap(corpus, knowledge.Status(corpus, nil))
	return nil
}

func (a *Assistant) swap(corpus core.Corpus, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.corpus = corpus
	a.status = status
}

// Corpus returns the current knowledge base.
func (a *Assistant) Corpus() core.Corpus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.corpus
}

// Status returns the status of the last load.
func (a *Assistant) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Threshold returns the engine's default similarity threshold.
func (a *Assistant) Threshold() float64 {
	return a.engine.Threshold()
}

// ModelName returns the model naming cached vectors.
func (a *Assistant) ModelName() string {
	return a.model
}

// Embedder returns the embedder used for retrieval, including any cache layer.
func (a *Assistant) Embedder() ai.Embedder {
	return a.embedder
}

// Ask answers question from the current knowledge base.
func (a *Assistant) Ask(ctx context.Context, question string) core.Result {
	return a.engine.Answer(ctx, question, a.Corpus())
}

// AskWithThreshold answers question using threshold instead of the default.
func (a *Assistant) AskWithThreshold(ctx context.Context, question string, threshold float64) core.Result {
	return a.engine.AnswerWithThreshold(ctx, question, a.Corpus(), threshold)
}

// AskWithMonitor answers question and reports each stage to monitor.
func (a *Assistant) AskWithMonitor(ctx context.Context, question string, threshold float64, monitor search.Monitor) core.Result {
	return a.engine.AnswerWithMonitor(ctx, question, a.Corpus(), threshold, monitor)
}

// Rank scores every passage of the current knowledge base against question.
// The corpus the scores refer to is returned with them.
func (a *Assistant) Rank(ctx context.Context, question string, threshold float64) (core.Corpus, []search.Scored, error) {
	corpus := a.Corpus()
	scores, err := a.engine.Rank(ctx, question, corpus, threshold)
	return corpus, scores, err
}

// Reply renders the answer to question as chat text: the passage text, or
// FallbackMessage when nothing matches. Failures are returned as errors.
func (a *Assistant) Reply(ctx context.Context, question string) (string, error) {
	switch r := a.Ask(ctx, question).(type) {
	case core.Answer:
		return r.Text, nil
	case core.NoAnswer:
		return FallbackMessage, nil
	case core.Failure:
		return "", r.Err
	default:
		return "", errors.New("unexpected result")
	}
}

// Watch reloads the knowledge base at path whenever it changes, until ctx is
// done. A reload without passages keeps the current corpus.
func (a *Assistant) Watch(ctx context.Context, path string, opts ...knowledge.WatcherOption) error {
	opts = append([]knowledge.WatcherOption{knowledge.WithLogger(a.logger)}, opts...)
	w, err := knowledge.NewWatcher(path, a.reload, opts...)
	if err != nil {
		return err
	}
	defer w.Stop()

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, knowledge.ErrWatcherStopped) {
		return nil
	}
	return err
}

func (a *Assistant) reload(corpus core.Corpus, status string) {
	if corpus.IsEmpty() {
		a.logger.Warn("reload produced no passages, keeping current knowledge base", "status", status)
		return
	}
	a.swap(corpus, status)
}

// Close releases the embedding provider.
func (a *Assistant) Close() error {
	if a.lazy == nil {
		return nil
	}
	if err := a.lazy.Close(); err != nil {
		a.logger.Error("error closing embedding provider", "err", err)
		return err
	}
	return nil
}
