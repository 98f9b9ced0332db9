// Package googleai provides a thin wrapper around the Google Gen AI SDK for embeddings (Gemini API).
package googleai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/formbricks/embedder/internal/embederrors"
)

const (
	// ProviderName identifies this provider in errors, logs and metrics.
	ProviderName = "google"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-embedding-001"
)

// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
var ErrEmptyInput = embederrors.NewValidationError("text", "googleai: input text is empty")

// Client calls the Gemini embeddings API via the Google Gen AI SDK.
type Client struct {
	client     *genai.Client
	model      string
	dimensions int
	baseURL    string
	timeout    time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions requests a reduced output dimensionality. 0 keeps the model's native size.
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the SDK at a different Gemini API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout bounds each request. 0 means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Gemini embeddings client. apiKey is passed to the SDK explicitly;
// the SDK's own environment lookup is never relied upon.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, embederrors.NewConfigurationError("EMBEDDING_PROVIDER_API_KEY", "googleai: API key is empty")
	}

	client := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(client)
	}

	if client.dimensions < 0 || client.dimensions > math.MaxInt32 {
		return nil, embederrors.NewConfigurationError("EMBEDDING_DIMENSIONS",
			fmt.Sprintf("googleai: invalid embedding dimensions %d", client.dimensions))
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: client.baseURL,
		},
	}
	if client.timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: client.timeout}
	}

	genaiClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client.client = genaiClient

	return client, nil
}

// CreateEmbedding returns the embedding vector for the given text using the configured model.
// When dimensions were configured the response length must match them.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}

	var embedConfig *genai.EmbedContentConfig
	if c.dimensions > 0 {
		//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32 in NewClient
		dimInt32 := int32(c.dimensions)
		embedConfig = &genai.EmbedContentConfig{OutputDimensionality: &dimInt32}
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, embedConfig)
	if err != nil {
		return nil, classifyError(c.model, err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, &embederrors.RemoteServiceError{
			Provider: ProviderName,
			Model:    c.model,
			Reason:   embederrors.ReasonEmptyResponse,
			Message:  "no embedding in response",
		}
	}

	emb := resp.Embeddings[0].Values
	if c.dimensions > 0 && len(emb) != c.dimensions {
		return nil, &embederrors.RemoteServiceError{
			Provider: ProviderName,
			Model:    c.model,
			Reason:   embederrors.ReasonDimensionMismatch,
			Message:  fmt.Sprintf("got %d, want %d", len(emb), c.dimensions),
		}
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}

// Model returns the model requests are sent with.
func (c *Client) Model() string { return c.model }

// Provider returns "google".
func (c *Client) Provider() string { return ProviderName }
