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


package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/educaia/ai"
)

// DefaultCacheSize is the default number of embeddings kept in memory.
const DefaultCacheSize = 1000

// ErrInnerRequired is returned by New when no inner embedder is given.
var ErrInnerRequired = errors.New("inner embedder is required")

// VectorStore persists embeddings between runs.
// GetVectors returns a slice aligned with texts; missing entries are nil.
type VectorStore interface {
	GetVectors(ctx context.Context, model string, texts []string) ([][]float32, error)
	PutVectors(ctx context.Context, model string, texts []string, vectors [][]float32) error
}

// Embedder wraps an ai.Embedder with an LRU cache and an optional VectorStore.
// Lookups go memory, then store, then inner. Only misses reach the inner embedder.
type Embedder struct {
	inner  ai.Embedder
	model  string
	size   int
	cache  *lru.Cache[string, []float32]
	store  VectorStore
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithCacheSize sets the LRU size. Zero disables the in-memory layer.
func WithCacheSize(size int) Option {
	return func(e *Embedder) error {
		if size < 0 {
			return errors.New("cache size cannot be negative")
		}
		e.size = size
		return nil
	}
}

// WithStore adds a persistent layer between the LRU and the inner embedder.
func WithStore(store VectorStore) Option {
	return func(e *Embedder) error {
		e.store = store
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates a caching embedder. model namespaces every key so vectors from
// different models are never mixed.
func New(inner ai.Embedder, model string, opts ...Option) (*Embedder, error) {
	if inner == nil {
		return nil, ErrInnerRequired
	}
	e := &Embedder{
		inner:  inner,
		model:  model,
		size:   DefaultCacheSize,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.size > 0 {
		cache, err := lru.New[string, []float32](e.size)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	e.logger = e.logger.With("component", "cached-embedder", "model", model)
	return e, nil
}

// cacheKey hashes text and model into a fixed-length key.
func (e *Embedder) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text + "\x00" + e.model))
	return hex.EncodeToString(hash[:])
}

// EmbedText returns a cached embedding if available, otherwise computes and caches it.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts resolves each text separately for maximum cache reuse.
// The result is index-aligned with texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))

	// First pass: memory
	for i, text := range texts {
		if e.cache != nil {
			if vec, ok := e.cache.Get(e.cacheKey(text)); ok {
				results[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return results, nil
	}

	// Second pass: store
	if e.store != nil {
		missing = e.fromStore(ctx, texts, missing, results)
		if len(missing) == 0 {
			return results, nil
		}
	}

	// Last pass: inner embedder
	pending := make([]string, len(missing))
	for j, idx := range missing {
		pending[j] = texts[idx]
	}
	computed, err := e.inner.EmbedTexts(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(pending) {
		return nil, ai.ErrEmbeddingMismatch
	}

	for j, idx := range missing {
		results[idx] = computed[j]
		e.remember(texts[idx], computed[j])
	}
	if e.store != nil {
		if err := e.store.PutVectors(ctx, e.model, pending, computed); err != nil {
			e.logger.Warn("failed to persist embeddings", "count", len(pending), "err", err)
		}
	}
	e.logger.Debug("embedded texts", "requested", len(texts), "computed", len(pending))
	return results, nil
}

// fromStore fills results from the store and returns the indices still missing.
// Store failures are logged and treated as misses.
func (e *Embedder) fromStore(ctx context.Context, texts []string, missing []int, results [][]float32) []int {
	lookup := make([]string, len(missing))
	for j, idx := range missing {
		lookup[j] = texts[idx]
	}
	stored, err := e.store.GetVectors(ctx, e.model, lookup)
	if err != nil || len(stored) != len(lookup) {
		if err != nil {
			e.logger.Warn("vector store lookup failed", "err", err)
		}
		return missing
	}

	still := missing[:0]
	for j, idx := range missing {
		if stored[j] == nil {
			still = append(still, idx)
			continue
		}
		results[idx] = stored[j]
		e.remember(texts[idx], stored[j])
	}
	return still
}

func (e *Embedder) remember(text string, vec []float32) {
	if e.cache != nil {
		e.cache.Add(e.cacheKey(text), vec)
	}
}

// Len returns the number of entries held in memory.
func (e *Embedder) Len() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// Purge empties the in-memory layer. The store is untouched.
func (e *Embedder) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Inner returns the wrapped embedder.
func (e *Embedder) Inner() ai.Embedder {
	return e.inner
}
