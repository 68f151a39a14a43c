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
	"log/slog"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/ai/cached"
	"github.com/poiesic/educaia/search"
)

// Option configures an Assistant.
type Option func(*assistantOptions) error

type assistantOptions struct {
	aiConfig    *ai.Config
	embedder    ai.Embedder
	model       string
	factory     ai.ProviderFactory
	engineOpts  []search.Option
	vectorStore cached.VectorStore
	logger      *slog.Logger
}

// WithAIConfig selects the embedding backend. Ignored when WithEmbedder or
// WithProviderFactory is used.
func WithAIConfig(config *ai.Config) Option {
	return func(o *assistantOptions) error {
		if config == nil {
			config = ai.DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		o.aiConfig = config
		return nil
	}
}

// WithEmbedder uses embedder directly. The Assistant does not close it.
// model names the vectors for the cache and vector store.
func WithEmbedder(embedder ai.Embedder, model string) Option {
	return func(o *assistantOptions) error {
		o.embedder = embedder
		o.model = model
		return nil
	}
}

// WithProviderFactory builds the embedding provider lazily from factory.
// model names the vectors for the cache and vector store.
func WithProviderFactory(factory ai.ProviderFactory, model string) Option {
	return func(o *assistantOptions) error {
		o.factory = factory
		o.model = model
		return nil
	}
}

// WithEngineOptions passes options to the retrieval engine.
func WithEngineOptions(opts ...search.Option) Option {
	return func(o *assistantOptions) error {
		o.engineOpts = append(o.engineOpts, opts...)
		return nil
	}
}

// WithVectorStore persists passage vectors between runs.
func WithVectorStore(store cached.VectorStore) Option {
	return func(o *assistantOptions) error {
		o.vectorStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *assistantOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}
