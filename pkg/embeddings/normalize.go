// Package embeddings provides utilities for embedding vectors (e.g. L2 normalization).
package embeddings

import (
	"math"
)

// L2Norm returns the Euclidean length of vector.
func L2Norm(vector []float32) float64 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	return math.Sqrt(sumSquares)
}

// NormalizeL2 scales vector to unit length in place.
// A zero vector is left unchanged.
func NormalizeL2(vector []float32) {
	magnitude := L2Norm(vector)
	if magnitude == 0 {
		return
	}

	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}

// Normalized returns a unit-length copy of vector; the input is not modified.
func Normalized(vector []float32) []float32 {
	out := make([]float32, len(vector))
	copy(out, vector)
	NormalizeL2(out)

	return out
}
