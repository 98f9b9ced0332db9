// Package embeddings defines the embedding client contract and builds provider clients from configuration.
package embeddings

import "context"

// Client generates an embedding vector for one text.
// Implemented by provider-specific clients (Google Gemini, OpenAI) and MockClient.
type Client interface {
	// CreateEmbedding sends input to the provider and blocks until it answers.
	// No retry is attempted.
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)

	// Model returns the model identifier requests are sent with.
	Model() string

	// Provider returns the provider name (google, openai, mock).
	Provider() string
}
