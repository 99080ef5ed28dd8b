package vector

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1]: the dot product
// divided by the product of the magnitudes, accumulated in float64. A
// zero-magnitude vector or a length mismatch yields 0 rather than a division
// error.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
