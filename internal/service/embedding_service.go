// Package service implements embedding requests on top of a provider client.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/embeddings"
	"github.com/formbricks/embedder/internal/models"
	"github.com/formbricks/embedder/internal/observability"
	pkgembeddings "github.com/formbricks/embedder/pkg/embeddings"
)

// ErrTextRequired is returned when the text to embed is empty or whitespace-only.
var ErrTextRequired = embederrors.NewValidationError("text", "text is required")

// EmbeddingService turns one text into one embedding through the configured provider client.
// It validates input, optionally L2-normalizes the result and records spans and metrics.
type EmbeddingService struct {
	client    embeddings.Client
	normalize bool
	metrics   observability.EmbeddingMetrics
	tracer    trace.Tracer
}

// EmbeddingServiceOption configures the EmbeddingService.
type EmbeddingServiceOption func(*EmbeddingService)

// WithNormalize scales every returned vector to unit length.
func WithNormalize(normalize bool) EmbeddingServiceOption {
	return func(s *EmbeddingService) {
		s.normalize = normalize
	}
}

// WithMetrics sets the metrics recorder. nil disables metrics.
func WithMetrics(metrics observability.EmbeddingMetrics) EmbeddingServiceOption {
	return func(s *EmbeddingService) {
		s.metrics = metrics
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) EmbeddingServiceOption {
	return func(s *EmbeddingService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewEmbeddingService creates a service around client.
func NewEmbeddingService(client embeddings.Client, opts ...EmbeddingServiceOption) *EmbeddingService {
	s := &EmbeddingService{
		client: client,
		tracer: otel.Tracer(observability.TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Model returns the model of the underlying client.
func (s *EmbeddingService) Model() string { return s.client.Model() }

// Provider returns the provider of the underlying client.
func (s *EmbeddingService) Provider() string { return s.client.Provider() }

// Embed sends text to the provider once and returns the resulting embedding.
// Leading and trailing whitespace is trimmed; empty text fails with ErrTextRequired
// before any request is made. The returned vector is owned by the caller.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (*models.Embedding, error) {
	start := time.Now()
	provider := s.client.Provider()

	ctx, span := s.tracer.Start(ctx, observability.SpanNameEmbed, trace.WithAttributes(
		attribute.String(observability.SpanAttrProvider, provider),
		attribute.String(observability.SpanAttrModel, s.client.Model()),
		attribute.Int(observability.SpanAttrTextLength, len(text)),
	))
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		s.recordFailure(ctx, span, provider, start, ErrTextRequired)

		return nil, ErrTextRequired
	}

	values, err := s.client.CreateEmbedding(ctx, text)
	if err != nil {
		s.recordFailure(ctx, span, provider, start, err)

		return nil, fmt.Errorf("create embedding: %w", err)
	}

	values = slices.Clone(values)
	if s.normalize {
		pkgembeddings.NormalizeL2(values)
	}

	span.SetAttributes(attribute.Int(observability.SpanAttrDimensions, len(values)))

	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, provider, observability.StatusSuccess, time.Since(start))
	}

	slog.DebugContext(ctx, "embedding created",
		"provider", provider,
		"model", s.client.Model(),
		"dimensions", len(values),
		"duration", time.Since(start),
	)

	return models.NewEmbedding(provider, s.client.Model(), values), nil
}

func (s *EmbeddingService) recordFailure(ctx context.Context, span trace.Span, provider string, start time.Time, err error) {
	reason := ErrorReason(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, provider, observability.StatusError, time.Since(start))
		s.metrics.RecordError(ctx, reason)
	}
}

// ErrorReason returns the bounded metric reason for err.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, embederrors.ErrValidation):
		return observability.ReasonValidation
	case errors.Is(err, embederrors.ErrConfiguration):
		return observability.ReasonConfiguration
	case errors.Is(err, embederrors.ErrAuthentication):
		return observability.ReasonAuthentication
	case errors.Is(err, context.Canceled):
		return observability.ReasonCanceled
	}

	if reason := embederrors.Reason(err); reason != "" {
		return reason
	}

	return embederrors.ReasonUnknown
}
