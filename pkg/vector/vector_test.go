package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "scaled vectors keep similarity",
			a:    []float32{2, 0},
			b:    []float32{5, 0},
			want: 1,
		},
		{
			name: "45 degrees",
			a:    []float32{1, 0},
			b:    []float32{1, 1},
			want: 1 / math.Sqrt2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosineSimilarity_bounds(t *testing.T) {
	// Near-parallel vectors must never exceed 1 after clamping.
	a := []float32{0.1, 0.2, 0.3, 0.4}
	b := []float32{0.1, 0.2, 0.3, 0.4}

	got, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, -1.0)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCosineSimilarity_errors(t *testing.T) {
	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("zero magnitude left side", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
		assert.ErrorIs(t, err, ErrZeroMagnitude)
	})

	t.Run("zero magnitude right side", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{0, 0})
		assert.ErrorIs(t, err, ErrZeroMagnitude)
	})
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, Magnitude([]float32{3, 4}), 1e-9)
	assert.Equal(t, 0.0, Magnitude([]float32{0, 0, 0}))
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero([]float32{0, 0, 0}))
	assert.True(t, IsZero(nil))
	assert.False(t, IsZero([]float32{0, 0.0001, 0}))
}

func TestNormalizeL2(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		v := []float32{3, 4}
		NormalizeL2(v)
		assert.InDelta(t, 1.0, Magnitude(v), 1e-6)
		assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
		assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
	})

	t.Run("zero vector untouched", func(t *testing.T) {
		v := []float32{0, 0}
		NormalizeL2(v)
		assert.Equal(t, []float32{0, 0}, v)
	})
}
