package educaia

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/ai/openai"
	"github.com/poiesic/educaia/ai/static"
)

// NewProviderFactory returns the factory for the backend selected by config,
// along with the model name its vectors are stored under.
func NewProviderFactory(config *ai.Config, logger *slog.Logger) (ai.ProviderFactory, string, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	switch config.Backend {
	case ai.BackendStatic:
		return static.Factory(logger), static.ModelName, nil
	case ai.BackendOpenAI:
		return openai.Factory(config, logger), config.EmbeddingModel, nil
	default:
		return nil, "", fmt.Errorf("unsupported backend %q", config.Backend)
	}
}
