package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbricks/embedder/internal/embederrors"
)

const testAPIKey = "sk-test-not-a-real-key"

type fakeOpenAI struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []map[string]any
	auth     []string
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)

	f.mu.Lock()
	f.requests = append(f.requests, payload)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func embeddingBody(values string) string {
	return `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":` +
		values + `}],"usage":{"prompt_tokens":3,"total_tokens":3}}`
}

func errorBody(message, typ string) string {
	return `{"error":{"message":"` + message + `","type":"` + typ + `","param":null,"code":null}}`
}

func newTestClient(t *testing.T, fake *fakeOpenAI, opts ...ClientOption) *Client {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewClient(testAPIKey, append([]ClientOption{WithBaseURL(srv.URL)}, opts...)...)
}

func TestNewClient_defaults(t *testing.T) {
	client := NewClient(testAPIKey, WithModel(""))

	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, ProviderName, client.Provider())
}

func TestCreateEmbedding_success(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusOK, body: embeddingBody("[0.5,-0.25,1]")}
	client := newTestClient(t, fake)

	vec, err := client.CreateEmbedding(context.Background(), " hello world ")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, -0.25, 1}, vec)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "hello world", fake.requests[0]["input"])
	assert.Equal(t, DefaultModel, fake.requests[0]["model"])
	assert.NotContains(t, fake.requests[0], "dimensions")
	assert.Equal(t, "Bearer "+testAPIKey, fake.auth[0])
}

func TestCreateEmbedding_dimensions(t *testing.T) {
	t.Run("sent when configured", func(t *testing.T) {
		fake := &fakeOpenAI{status: http.StatusOK, body: embeddingBody("[0.1,0.2]")}
		client := newTestClient(t, fake, WithDimensions(2), WithModel("text-embedding-3-large"))

		vec, err := client.CreateEmbedding(context.Background(), "hello")
		require.NoError(t, err)

		assert.Len(t, vec, 2)
		assert.InDelta(t, 2, fake.requests[0]["dimensions"], 0)
		assert.Equal(t, "text-embedding-3-large", fake.requests[0]["model"])
	})

	t.Run("mismatch is reported", func(t *testing.T) {
		fake := &fakeOpenAI{status: http.StatusOK, body: embeddingBody("[0.1,0.2,0.3]")}
		client := newTestClient(t, fake, WithDimensions(2))

		_, err := client.CreateEmbedding(context.Background(), "hello")

		assert.ErrorIs(t, err, embederrors.ErrRemoteService)
		assert.Equal(t, embederrors.ReasonDimensionMismatch, embederrors.Reason(err))
	})

	t.Run("negative is a configuration error", func(t *testing.T) {
		fake := &fakeOpenAI{status: http.StatusOK, body: embeddingBody("[0.1]")}
		client := newTestClient(t, fake, WithDimensions(-1))

		_, err := client.CreateEmbedding(context.Background(), "hello")

		assert.ErrorIs(t, err, embederrors.ErrConfiguration)
		assert.Empty(t, fake.requests)
	})
}

func TestCreateEmbedding_emptyInput(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusOK, body: embeddingBody("[1]")}
	client := newTestClient(t, fake)

	_, err := client.CreateEmbedding(context.Background(), "  ")

	assert.ErrorIs(t, err, embederrors.ErrValidation)
	assert.Empty(t, fake.requests)
}

func TestCreateEmbedding_emptyResponse(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusOK, body: `{"object":"list","data":[],"model":"m","usage":{"prompt_tokens":0,"total_tokens":0}}`}
	client := newTestClient(t, fake)

	_, err := client.CreateEmbedding(context.Background(), "hello")

	assert.Equal(t, embederrors.ReasonEmptyResponse, embederrors.Reason(err))
}

func TestCreateEmbedding_remoteErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAuth   bool
		wantReason string
	}{
		{"invalid key", http.StatusUnauthorized, errorBody("Incorrect API key provided", "invalid_request_error"), true, ""},
		{"unknown model", http.StatusNotFound, errorBody("The model does not exist", "invalid_request_error"), false, embederrors.ReasonInvalidModel},
		{"rate limited", http.StatusTooManyRequests, errorBody("Rate limit reached", "requests"), false, embederrors.ReasonQuotaExceeded},
		{"server error", http.StatusInternalServerError, errorBody("The server had an error", "server_error"), false, embederrors.ReasonServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeOpenAI{status: tt.status, body: tt.body}
			client := newTestClient(t, fake)

			vec, err := client.CreateEmbedding(context.Background(), "hello")

			assert.Nil(t, vec)
			assert.ErrorIs(t, err, embederrors.ErrRemoteService)
			assert.Len(t, fake.requests, 1, "requests are never retried")

			if tt.wantAuth {
				assert.ErrorIs(t, err, embederrors.ErrAuthentication)

				return
			}

			assert.Equal(t, tt.wantReason, embederrors.Reason(err))
		})
	}
}

func TestCreateEmbedding_networkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(testAPIKey, WithBaseURL(url))

	_, err := client.CreateEmbedding(context.Background(), "hello")

	assert.ErrorIs(t, err, embederrors.ErrRemoteService)
	assert.Equal(t, embederrors.ReasonNetwork, embederrors.Reason(err))
}
