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


package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// State is the lifecycle state of a LazyEmbedder.
type State int

const (
	// StateUninitialized means the provider has not been built yet.
	StateUninitialized State = iota
	// StateReady means the provider was built and is serving requests.
	StateReady
	// StateFailed means building the provider failed. Terminal until Reset.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProviderFactory builds a provider. It is called at most once per LazyEmbedder
// lifecycle (again only after Reset).
type ProviderFactory func(ctx context.Context) (AIProvider, error)

// LazyEmbedder is an Embedder whose provider is built on first use and cached.
//
// Transitions:
//   - Uninitialized -> Ready on the first successful factory call
//   - Uninitialized -> Failed when the factory returns an error
//   - Failed and Ready -> Uninitialized on Reset
//
// Concurrent first calls block on the same initialization; the factory never
// runs twice for one lifecycle.
type LazyEmbedder struct {
	factory  ProviderFactory
	logger   *slog.Logger
	mu       sync.Mutex
	state    State
	provider AIProvider
	initErr  error
	closed   bool
}

var _ Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder creates a handle around factory. Nothing is built until the
// first call to Init, EmbedText or EmbedTexts.
func NewLazyEmbedder(factory ProviderFactory, logger *slog.Logger) (*LazyEmbedder, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LazyEmbedder{
		factory: factory,
		logger:  logger.With("component", "lazy-embedder"),
	}, nil
}

// Init builds the provider if needed and returns it.
// A failed handle returns an error wrapping ErrProviderFailed and the original cause.
func (l *LazyEmbedder) Init(ctx context.Context) (AIProvider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	switch l.state {
	case StateReady:
		return l.provider, nil
	case StateFailed:
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, l.initErr)
	}

	l.logger.Debug("initializing embedding provider")
	provider, err := l.factory(ctx)
	if err == nil && provider == nil {
		err = fmt.Errorf("factory returned no provider")
	}
	if err != nil {
		l.state = StateFailed
		l.initErr = err
		l.logger.Error("embedding provider initialization failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	l.state = StateReady
	l.provider = provider
	l.logger.Info("embedding provider ready", "model", provider.ModelName())
	return provider, nil
}

// State returns the current lifecycle state.
func (l *LazyEmbedder) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the initialization error of a failed handle, or nil.
func (l *LazyEmbedder) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initErr
}

// ModelName returns the model of a ready provider, or "" before initialization.
func (l *LazyEmbedder) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.provider == nil {
		return ""
	}
	return l.provider.ModelName()
}

// Reset closes any built provider and returns the handle to StateUninitialized,
// so the next call runs the factory again.
func (l *LazyEmbedder) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.provider != nil {
		err = l.provider.Close()
	}
	l.provider = nil
	l.initErr = nil
	l.state = StateUninitialized
	l.logger.Debug("embedding provider reset")
	return err
}

// Close releases the provider. The handle cannot be used afterwards.
func (l *LazyEmbedder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.provider == nil {
		return nil
	}
	err := l.provider.Close()
	l.provider = nil
	return err
}

// EmbedText initializes the provider if needed and embeds text.
func (l *LazyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	provider, err := l.Init(ctx)
	if err != nil {
		return nil, err
	}
	return provider.Embedder().EmbedText(ctx, text)
}

// EmbedTexts initializes the provider if needed and embeds texts.
func (l *LazyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	provider, err := l.Init(ctx)
	if err != nil {
		return nil, err
	}
	return provider.Embedder().EmbedTexts(ctx, texts)
}
