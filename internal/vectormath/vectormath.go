// Package vectormath provides the similarity arithmetic shared by the
// stores that rank vectors in-process (memory, sqlite). The Postgres
// store delegates the same computation to pgvector's <=> operator.
package vectormath

import "math"

// CosineSimilarity returns 1 - cosineDistance of two equal-length
// vectors, which is the cosine of the angle between them. A zero vector
// scores 0. Length checking is the caller's job; the stores reject
// mismatched dimensions before ranking.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
