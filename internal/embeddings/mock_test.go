package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbricks/embedder/internal/embederrors"
	pkgembeddings "github.com/formbricks/embedder/pkg/embeddings"
)

func TestMockClient_defaults(t *testing.T) {
	client := NewMockClient("", 0)

	assert.Equal(t, mockDefaultModel, client.Model())
	assert.Equal(t, "mock", client.Provider())

	vec, err := client.CreateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, mockDefaultDimensions)
}

func TestMockClient_deterministic(t *testing.T) {
	client := NewMockClient("m", 64)

	first, err := client.CreateEmbedding(context.Background(), "What is the meaning of life?")
	require.NoError(t, err)

	second, err := client.CreateEmbedding(context.Background(), "What is the meaning of life?")
	require.NoError(t, err)

	other, err := client.CreateEmbedding(context.Background(), "something else")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestMockClient_modelChangesVector(t *testing.T) {
	a, err := NewMockClient("a", 16).CreateEmbedding(context.Background(), "text")
	require.NoError(t, err)

	b, err := NewMockClient("b", 16).CreateEmbedding(context.Background(), "text")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestMockClient_unitLength(t *testing.T) {
	vec, err := NewMockClient("m", 100).CreateEmbedding(context.Background(), "norm me")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, pkgembeddings.L2Norm(vec), 1e-5)
}

func TestMockClient_emptyInput(t *testing.T) {
	vec, err := NewMockClient("m", 8).CreateEmbedding(context.Background(), " \t ")

	assert.Nil(t, vec)
	assert.ErrorIs(t, err, embederrors.ErrValidation)
}
