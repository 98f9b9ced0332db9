package embeddings

import (
	"context"
	"fmt"

	"github.com/formbricks/embedder/internal/config"
	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/googleai"
	"github.com/formbricks/embedder/internal/openai"
)

// NewClient builds the provider client selected by cfg.EmbeddingProvider.
// The credential is taken from cfg and handed to the provider SDK as-is; a bad key is
// not detected here, it surfaces as an AuthenticationError on the first request.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg == nil {
		return nil, embederrors.NewConfigurationError("", "embedding configuration is required")
	}

	switch cfg.EmbeddingProvider {
	case config.ProviderGoogle:
		opts := []googleai.ClientOption{
			googleai.WithModel(cfg.EmbeddingModel),
			googleai.WithDimensions(cfg.EmbeddingDimensions),
			googleai.WithTimeout(cfg.EmbeddingRequestTimeout),
		}
		if cfg.EmbeddingBaseURL != "" {
			opts = append(opts, googleai.WithBaseURL(cfg.EmbeddingBaseURL))
		}

		client, err := googleai.NewClient(ctx, cfg.EmbeddingProviderAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create google embedding client: %w", err)
		}

		return client, nil
	case config.ProviderOpenAI:
		opts := []openai.ClientOption{
			openai.WithModel(cfg.EmbeddingModel),
			openai.WithDimensions(cfg.EmbeddingDimensions),
			openai.WithTimeout(cfg.EmbeddingRequestTimeout),
		}
		if cfg.EmbeddingBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.EmbeddingBaseURL))
		}

		return openai.NewClient(cfg.EmbeddingProviderAPIKey, opts...), nil
	case config.ProviderMock:
		return NewMockClient(cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	default:
		return nil, embederrors.NewConfigurationError("EMBEDDING_PROVIDER",
			fmt.Sprintf("unsupported embedding provider %q", cfg.EmbeddingProvider))
	}
}
