package static

import (
	"context"
	"log/slog"

	"github.com/poiesic/educaia/ai"
)

// Provider implements ai.AIProvider around a static Embedder.
type Provider struct {
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider returns a provider backed by the offline hash embedder.
func NewProvider(logger *slog.Logger) ai.AIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		embedder: NewEmbedder(),
		logger:   logger.With("component", "static-provider"),
	}
}

// Factory returns an ai.ProviderFactory for the static provider.
func Factory(logger *slog.Logger) ai.ProviderFactory {
	return func(context.Context) (ai.AIProvider, error) {
		return NewProvider(logger), nil
	}
}

// Embedder returns the static embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ModelName returns ModelName.
func (p *Provider) ModelName() string {
	return ModelName
}

// Close closes the embedder.
func (p *Provider) Close() error {
	p.logger.Debug("closing static provider")
	return p.embedder.Close()
}
