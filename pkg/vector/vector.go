// Package vector provides utilities for embedding vectors (dot product,
// magnitude, cosine similarity, L2 normalization).
package vector

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two vectors have different lengths.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// ErrZeroMagnitude is returned when cosine similarity would divide by zero.
// Cosine similarity is defined only for vectors with nonzero magnitude; a
// zero vector is an error condition, not a similarity of 0.
var ErrZeroMagnitude = errors.New("vector: zero magnitude")

// Dot returns the dot product of a and b. Accumulates in float64 to limit
// rounding error over long vectors.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum, nil
}

// Magnitude returns the Euclidean (L2) norm of v.
func Magnitude(v []float32) float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}

	return math.Sqrt(sumSquares)
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}

	return true
}

// CosineSimilarity returns (a·b) / (|a| |b|), clamped to [-1, 1] to absorb
// floating-point drift. Returns ErrDimensionMismatch for unequal lengths and
// ErrZeroMagnitude when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}

	magA := Magnitude(a)
	magB := Magnitude(b)

	if magA == 0 || magB == 0 {
		return 0, ErrZeroMagnitude
	}

	sim := dot / (magA * magB)
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}

	return sim, nil
}

// NormalizeL2 normalizes v to unit length in place. A zero vector is left
// unchanged so the caller's zero-magnitude validation still sees it.
func NormalizeL2(v []float32) {
	magnitude := Magnitude(v)
	if magnitude == 0 {
		return
	}

	for i := range v {
		v[i] = float32(float64(v[i]) / magnitude)
	}
}
