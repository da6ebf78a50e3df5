package search

import (
	"math"

	"github.com/khanglvm/capsearch/internal/registry"
)

// DenseScore computes cosine similarity between the query embedding and a
// candidate's precomputed embedding. A missing embedding on either side
// contributes zero; this is the primary degradation path and never errors.
// Negative similarities are clamped to zero so the fused score stays
// non-negative.
func DenseScore(queryEmbedding []float32, cap *registry.Capability) float64 {
	if len(queryEmbedding) == 0 || cap == nil || len(cap.Embedding) == 0 {
		return 0
	}
	sim := CosineSimilarity(queryEmbedding, cap.Embedding)
	if sim < 0 {
		return 0
	}
	return sim
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched dimensions yield zero rather than an error: a model change
// mid-corpus degrades to lexical-only scoring for the stale records.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
