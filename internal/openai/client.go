// Package openai provides a thin wrapper around the official OpenAI Go SDK for embeddings.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/formbricks/embedder/internal/embederrors"
)

const (
	// ProviderName identifies this provider in errors, logs and metrics.
	ProviderName = "openai"
	// DefaultModel is used when no model is configured.
	DefaultModel = string(openaisdk.EmbeddingModelTextEmbedding3Small)
)

// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
var ErrEmptyInput = embederrors.NewValidationError("text", "openai: input text is empty")

// Client calls the OpenAI embeddings API via the official SDK.
type Client struct {
	sdk        openaisdk.Client
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

// WithModel sets the embedding model name (e.g. text-embedding-3-large). Empty uses default.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the default OpenAI API base URL.
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

// NewClient creates an OpenAI embeddings client using the official SDK.
// SDK retries are disabled: a failed request is reported, never repeated.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(client)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if client.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(client.baseURL))
	}

	if client.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: client.timeout}))
	}

	client.sdk = openaisdk.NewClient(reqOpts...)

	return client
}

// CreateEmbedding returns the embedding vector for the given text.
// When dimensions were configured the response length must match them.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions < 0 {
		return nil, embederrors.NewConfigurationError("EMBEDDING_DIMENSIONS", "openai: embedding dimensions must not be negative")
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model: openaisdk.EmbeddingModel(c.model),
	}
	if c.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(c.dimensions))
	}

	resp, err := c.sdk.Embeddings.New(ctx, params)
	if err != nil {
		return nil, classifyError(c.model, err)
	}

	if resp == nil || len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &embederrors.RemoteServiceError{
			Provider: ProviderName,
			Model:    c.model,
			Reason:   embederrors.ReasonEmptyResponse,
			Message:  "no embedding in response",
		}
	}

	emb := resp.Data[0].Embedding
	if c.dimensions > 0 && len(emb) != c.dimensions {
		return nil, &embederrors.RemoteServiceError{
			Provider: ProviderName,
			Model:    c.model,
			Reason:   embederrors.ReasonDimensionMismatch,
			Message:  fmt.Sprintf("got %d, want %d", len(emb), c.dimensions),
		}
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// Model returns the model requests are sent with.
func (c *Client) Model() string { return c.model }

// Provider returns "openai".
func (c *Client) Provider() string { return ProviderName }

// classifyError maps SDK errors onto the embederrors taxonomy.
func classifyError(model string, err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return embederrors.FromStatus(ProviderName, model, apiErr.StatusCode, apiErr.Message, err)
	}

	return embederrors.FromTransport(ProviderName, model, err)
}
