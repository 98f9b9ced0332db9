package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterScope is the instrumentation scope for embedder metrics.
const MeterScope = "github.com/formbricks/embedder/internal/observability"

// latencyHistogramBoundaries are second-based buckets for embedder_request_duration_seconds.
// Provider round trips sit between tens of milliseconds and a few seconds.
var latencyHistogramBoundaries = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// EmbeddingMetrics records embedding request metrics.
type EmbeddingMetrics interface {
	RecordRequest(ctx context.Context, provider, status string, duration time.Duration)
	RecordError(ctx context.Context, reason string)
}

type embeddingMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewEmbeddingMetrics creates EmbeddingMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewEmbeddingMetrics(meter metric.Meter) (EmbeddingMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	requests, err := meter.Int64Counter(
		MetricNameRequests,
		metric.WithDescription("Embedding requests by provider and status (success, error)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameRequestDuration,
		metric.WithDescription("Embedding request duration including the provider round trip (seconds)"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyHistogramBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create request duration histogram: %w", err)
	}

	errorsCounter, err := meter.Int64Counter(
		MetricNameErrors,
		metric.WithDescription("Failed embedding requests by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	return &embeddingMetrics{requests: requests, duration: duration, errors: errorsCounter}, nil
}

func (m *embeddingMetrics) RecordRequest(ctx context.Context, provider, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrProvider, NormalizeProvider(provider)),
		attribute.String(AttrStatus, NormalizeStatus(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}

func (m *embeddingMetrics) RecordError(ctx context.Context, reason string) {
	reason = NormalizeReason(reason, AllowedErrorReasons)
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

// CacheMetrics records embedding cache lookups.
type CacheMetrics interface {
	RecordHit(ctx context.Context)
	RecordMiss(ctx context.Context)
}

type cacheMetrics struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewCacheMetrics creates CacheMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewCacheMetrics(meter metric.Meter) (CacheMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	hits, err := meter.Int64Counter(
		MetricNameCacheHits,
		metric.WithDescription("Embedding lookups served from the in-memory cache or a shared in-flight request. "+
			"Hit ratio = rate(hits) / (rate(hits) + rate(misses))."),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache hits counter: %w", err)
	}

	misses, err := meter.Int64Counter(
		MetricNameCacheMisses,
		metric.WithDescription("Embedding lookups that called the provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache misses counter: %w", err)
	}

	return &cacheMetrics{hits: hits, misses: misses}, nil
}

func (c *cacheMetrics) RecordHit(ctx context.Context) {
	c.hits.Add(ctx, 1)
}

func (c *cacheMetrics) RecordMiss(ctx context.Context) {
	c.misses.Add(ctx, 1)
}
