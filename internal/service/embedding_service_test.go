package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/observability"
	pkgembeddings "github.com/formbricks/embedder/pkg/embeddings"
)

// fakeClient is an embeddings.Client returning fixed values and recording inputs.
type fakeClient struct {
	mu     sync.Mutex
	values []float32
	err    error
	inputs []string
}

func (f *fakeClient) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}

	return f.values, nil
}

func (f *fakeClient) Model() string    { return "fake-model" }
func (f *fakeClient) Provider() string { return "mock" }

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.inputs)
}

type recordedMetrics struct {
	requests []string
	errors   []string
}

func (m *recordedMetrics) RecordRequest(_ context.Context, provider, status string, _ time.Duration) {
	m.requests = append(m.requests, provider+"/"+status)
}

func (m *recordedMetrics) RecordError(_ context.Context, reason string) {
	m.errors = append(m.errors, reason)
}

func TestEmbeddingService_Embed_success(t *testing.T) {
	client := &fakeClient{values: []float32{3, 4}}
	metrics := &recordedMetrics{}
	svc := NewEmbeddingService(client, WithMetrics(metrics))

	got, err := svc.Embed(context.Background(), "  What is the meaning of life?  ")
	require.NoError(t, err)

	assert.Equal(t, "fake-model", got.Model)
	assert.Equal(t, "mock", got.Provider)
	assert.Equal(t, 2, got.Dimensions)
	assert.Equal(t, []float32{3, 4}, got.Values)
	assert.Equal(t, []string{"What is the meaning of life?"}, client.inputs)
	assert.Equal(t, []string{"mock/success"}, metrics.requests)
	assert.Empty(t, metrics.errors)

	got.Values[0] = 99
	assert.Equal(t, float32(3), client.values[0], "returned vector must not alias the client's")
}

func TestEmbeddingService_Embed_normalize(t *testing.T) {
	client := &fakeClient{values: []float32{3, 4}}
	svc := NewEmbeddingService(client, WithNormalize(true))

	got, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0.6, 0.8}, got.Values, 1e-6)
	assert.InDelta(t, 1.0, pkgembeddings.L2Norm(got.Values), 1e-6)
	assert.Equal(t, []float32{3, 4}, client.values)
}

func TestEmbeddingService_Embed_emptyText(t *testing.T) {
	client := &fakeClient{values: []float32{1}}
	metrics := &recordedMetrics{}
	svc := NewEmbeddingService(client, WithMetrics(metrics))

	for _, text := range []string{"", "   ", "\n"} {
		got, err := svc.Embed(context.Background(), text)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, embederrors.ErrValidation)
	}

	assert.Zero(t, client.calls(), "empty text must not reach the provider")
	assert.Equal(t, []string{"validation", "validation", "validation"}, metrics.errors)
}

func TestEmbeddingService_Embed_providerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{
			name:       "authentication",
			err:        &embederrors.AuthenticationError{Provider: "google", StatusCode: 401},
			wantReason: "authentication",
		},
		{
			name:       "invalid model",
			err:        &embederrors.RemoteServiceError{Provider: "google", Model: "nope", Reason: embederrors.ReasonInvalidModel},
			wantReason: embederrors.ReasonInvalidModel,
		},
		{
			name:       "canceled",
			err:        context.Canceled,
			wantReason: observability.ReasonCanceled,
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantReason: embederrors.ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordedMetrics{}
			svc := NewEmbeddingService(&fakeClient{err: tt.err}, WithMetrics(metrics))

			got, err := svc.Embed(context.Background(), "hello")

			assert.Nil(t, got)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, []string{"mock/error"}, metrics.requests)
			assert.Equal(t, []string{tt.wantReason}, metrics.errors)
		})
	}
}

func TestEmbeddingService_Embed_span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := NewEmbeddingService(&fakeClient{values: []float32{1, 0, 0}}, WithTracer(tp.Tracer("test")))

	_, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, observability.SpanNameEmbed, spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, "mock", attrs[observability.SpanAttrProvider].AsString())
	assert.Equal(t, "fake-model", attrs[observability.SpanAttrModel].AsString())
	assert.Equal(t, int64(3), attrs[observability.SpanAttrDimensions].AsInt64())
}

func TestErrorReason(t *testing.T) {
	assert.Equal(t, "configuration", ErrorReason(embederrors.NewConfigurationError("K", "bad")))
	assert.Equal(t, "validation", ErrorReason(ErrTextRequired))
	assert.Equal(t, "timeout", ErrorReason(embederrors.FromTransport("openai", "m", context.DeadlineExceeded)))
}
