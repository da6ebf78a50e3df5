package search

import (
	"math"
	"testing"

	"github.com/khanglvm/capsearch/internal/registry"
)

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical vectors should score 1.0, got %f", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched dimensions should score 0, got %f", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector should score 0, got %f", got)
	}
}

func TestDenseScore(t *testing.T) {
	cap := &registry.Capability{Name: "tool", Embedding: []float32{-1, 0}}

	// Negative similarity clamps to zero.
	if got := DenseScore([]float32{1, 0}, cap); got != 0 {
		t.Errorf("negative similarity should clamp to 0, got %f", got)
	}

	if got := DenseScore([]float32{1, 0}, &registry.Capability{Name: "bare"}); got != 0 {
		t.Errorf("missing embedding should score 0, got %f", got)
	}
	if got := DenseScore(nil, cap); got != 0 {
		t.Errorf("missing query embedding should score 0, got %f", got)
	}
}
