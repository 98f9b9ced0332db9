package service

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/formbricks/embedder/internal/embeddings"
	"github.com/formbricks/embedder/internal/observability"
	"github.com/formbricks/embedder/pkg/cache"
)

// cachingClient wraps an embeddings.Client with an in-memory cache keyed by (model, text).
type cachingClient struct {
	inner   embeddings.Client
	cache   *cache.LoaderCache[[]float32]
	metrics observability.CacheMetrics
}

// NewCachingClient returns a client that serves repeated texts from vectors.
// Concurrent requests for the same text share one provider call. Failures are not cached.
// metrics may be nil (no cache metrics recorded).
func NewCachingClient(
	inner embeddings.Client,
	vectors *cache.LoaderCache[[]float32],
	metrics observability.CacheMetrics,
) embeddings.Client {
	return &cachingClient{inner: inner, cache: vectors, metrics: metrics}
}

func (c *cachingClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return c.inner.CreateEmbedding(ctx, input)
	}

	key := c.inner.Model() + "\x00" + input

	values, result, err := c.cache.Get(ctx, key, func(loadCtx context.Context) ([]float32, error) {
		return c.inner.CreateEmbedding(loadCtx, input)
	})

	trace.SpanFromContext(ctx).SetAttributes(attribute.String(observability.SpanAttrCache, result.String()))

	if c.metrics != nil {
		if result == cache.Miss {
			c.metrics.RecordMiss(ctx)
		} else {
			c.metrics.RecordHit(ctx)
		}
	}

	if err != nil {
		return nil, err
	}

	return slices.Clone(values), nil
}

func (c *cachingClient) Model() string { return c.inner.Model() }

func (c *cachingClient) Provider() string { return c.inner.Provider() }
