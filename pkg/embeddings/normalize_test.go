package embeddings

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	t.Run("unit vector unchanged", func(t *testing.T) {
		v := []float32{1, 0, 0}
		NormalizeL2(v)

		if v[0] != 1 || v[1] != 0 || v[2] != 0 {
			t.Errorf("unit vector changed: got %v", v)
		}
	})

	t.Run("normalizes to unit length", func(t *testing.T) {
		vec := []float32{3, 4}
		NormalizeL2(vec)
		// 3-4-5 triangle => magnitude 5 => expected (0.6, 0.8)
		const tol = 1e-5
		if math.Abs(float64(vec[0])-0.6) > tol || math.Abs(float64(vec[1])-0.8) > tol {
			t.Errorf("expected (0.6, 0.8), got (%f, %f)", vec[0], vec[1])
		}

		if math.Abs(L2Norm(vec)-1) > tol {
			t.Errorf("magnitude should be 1, got %f", L2Norm(vec))
		}
	})

	t.Run("zero vector does not panic", func(t *testing.T) {
		v := []float32{0, 0, 0}
		NormalizeL2(v)

		if v[0] != 0 || v[1] != 0 || v[2] != 0 {
			t.Errorf("zero vector should remain unchanged: got %v", v)
		}
	})

	t.Run("empty vector", func(t *testing.T) {
		var v []float32
		NormalizeL2(v)

		if L2Norm(v) != 0 {
			t.Errorf("empty vector norm should be 0")
		}
	})
}

func TestNormalized_doesNotModifyInput(t *testing.T) {
	in := []float32{1, 1, 1}
	out := Normalized(in)

	if in[0] != 1 || in[1] != 1 || in[2] != 1 {
		t.Errorf("input modified: %v", in)
	}

	expected := float32(1 / math.Sqrt(3))

	const tol = 1e-5
	for i := range out {
		if math.Abs(float64(out[i]-expected)) > tol {
			t.Errorf("out[%d] = %f, want %f", i, out[i], expected)
		}
	}
}
