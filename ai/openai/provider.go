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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/educaia/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	return NewProviderWithLogger(config, nil)
}

// NewProviderWithLogger is NewProvider with an explicit logger.
func NewProviderWithLogger(config *ai.Config, logger *slog.Logger) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	embedder, err := newEmbedder(config, logger)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		logger:   logger.With("component", "openai-provider"),
	}, nil
}

// availabilityText is embedded once when a provider is built through Factory.
const availabilityText = "ping"

// Factory returns an ai.ProviderFactory that builds a Provider from config
// and checks that the host serves the configured model before returning it.
func Factory(config *ai.Config, logger *slog.Logger) ai.ProviderFactory {
	return func(ctx context.Context) (ai.AIProvider, error) {
		provider, err := NewProviderWithLogger(config, logger)
		if err != nil {
			return nil, err
		}
		if err := CheckModel(ctx, provider); err != nil {
			provider.Close()
			return nil, err
		}
		return provider, nil
	}
}

// CheckModel embeds a short text with provider and reports whether a usable
// vector came back.
func CheckModel(ctx context.Context, provider ai.AIProvider) error {
	vector, err := provider.Embedder().EmbedText(ctx, availabilityText)
	if err != nil {
		return fmt.Errorf("embedding model %q unavailable: %w", provider.ModelName(), err)
	}
	if len(vector) == 0 {
		return fmt.Errorf("embedding model %q returned an empty vector: %w", provider.ModelName(), ai.ErrEmbeddingMismatch)
	}
	return nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ModelName returns the configured embedding model.
func (p *Provider) ModelName() string {
	return p.config.EmbeddingModel
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
