package models

// Embedding is one embedding result: the vector the provider returned for a single input text.
type Embedding struct {
	Provider   string    `json:"-"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Values     []float32 `json:"values"`
}

// NewEmbedding builds an Embedding and sets Dimensions from the vector length.
func NewEmbedding(provider, model string, values []float32) *Embedding {
	return &Embedding{
		Provider:   provider,
		Model:      model,
		Dimensions: len(values),
		Values:     values,
	}
}

// CreateEmbeddingRequest is the body for POST /v1/embeddings.
type CreateEmbeddingRequest struct {
	Text string `json:"text"`
}
