package embeddings

import (
	"context"
	"crypto/sha256"
	"strings"

	"github.com/formbricks/embedder/internal/embederrors"
	pkgembeddings "github.com/formbricks/embedder/pkg/embeddings"
)

const (
	mockProviderName      = "mock"
	mockDefaultModel      = "mock-embedding"
	mockDefaultDimensions = 768
)

// MockClient implements Client without any network access.
// It generates deterministic embeddings from the sha256 of the input text.
type MockClient struct {
	model      string
	dimensions int
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock client. Empty model and non-positive dimensions use the defaults.
func NewMockClient(model string, dimensions int) *MockClient {
	if model == "" {
		model = mockDefaultModel
	}

	if dimensions <= 0 {
		dimensions = mockDefaultDimensions
	}

	return &MockClient{model: model, dimensions: dimensions}
}

// CreateEmbedding returns a unit-length vector derived from the text hash.
func (c *MockClient) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, embederrors.NewValidationError("text", "text cannot be empty")
	}

	hash := sha256.Sum256([]byte(c.model + "\x00" + input))
	embedding := make([]float32, c.dimensions)

	for i := range embedding {
		// Cycle hash bytes, salted by position, into [-1, 1].
		b := hash[i%len(hash)] ^ byte(i/len(hash))
		embedding[i] = (float32(b) / 127.5) - 1.0
	}

	pkgembeddings.NormalizeL2(embedding)

	return embedding, nil
}

// Model returns the configured model name.
func (c *MockClient) Model() string { return c.model }

// Provider returns "mock".
func (c *MockClient) Provider() string { return mockProviderName }
