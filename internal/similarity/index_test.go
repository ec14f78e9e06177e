package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
)

func buildIndex(entries ...models.UserVector) *LinearIndex {
	ix := NewLinearIndex()
	ix.Build(entries)

	return ix
}

func TestLinearIndex_Query_ranking(t *testing.T) {
	// Worked example: B and D near-identical to the query, C orthogonal,
	// E opposite. Expected order [B, D] for k=2.
	ix := buildIndex(
		models.UserVector{UserID: "B", Vector: []float32{1, 0}},
		models.UserVector{UserID: "C", Vector: []float32{0, 1}},
		models.UserVector{UserID: "D", Vector: []float32{0.9, 0.1}},
		models.UserVector{UserID: "E", Vector: []float32{-1, 0}},
	)

	results, err := ix.Query([]float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "B", results[0].UserID)
	assert.Equal(t, "D", results[1].UserID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestLinearIndex_Query_descendingWithDeterministicTies(t *testing.T) {
	// b and a score identically; ascending userID breaks the tie.
	ix := buildIndex(
		models.UserVector{UserID: "b", Vector: []float32{2, 0}},
		models.UserVector{UserID: "a", Vector: []float32{5, 0}},
		models.UserVector{UserID: "c", Vector: []float32{0, 1}},
	)

	results, err := ix.Query([]float32{1, 0}, 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].UserID)
	assert.Equal(t, "b", results[1].UserID)
	assert.Equal(t, "c", results[2].UserID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestLinearIndex_Query_capsAtK(t *testing.T) {
	ix := buildIndex(
		models.UserVector{UserID: "a", Vector: []float32{1, 0}},
		models.UserVector{UserID: "b", Vector: []float32{0.9, 0.1}},
		models.UserVector{UserID: "c", Vector: []float32{0.8, 0.2}},
	)

	results, err := ix.Query([]float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLinearIndex_Query_skipsMalformedCandidates(t *testing.T) {
	ix := buildIndex(
		models.UserVector{UserID: "zero", Vector: []float32{0, 0}},
		models.UserVector{UserID: "short", Vector: []float32{1}},
		models.UserVector{UserID: "ok", Vector: []float32{1, 1}},
	)

	results, err := ix.Query([]float32{1, 0}, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].UserID)
}

func TestLinearIndex_Query_errors(t *testing.T) {
	ix := buildIndex(models.UserVector{UserID: "a", Vector: []float32{1, 0}})

	t.Run("zero magnitude query", func(t *testing.T) {
		_, err := ix.Query([]float32{0, 0}, 5)
		assert.ErrorIs(t, err, pawerrors.ErrZeroMagnitude)
		assert.ErrorIs(t, err, pawerrors.ErrInvalidInput, "zero magnitude is a validation failure")
	})

	t.Run("non-positive k", func(t *testing.T) {
		_, err := ix.Query([]float32{1, 0}, 0)
		assert.ErrorIs(t, err, pawerrors.ErrInvalidInput)
	})
}

func TestLinearIndex_Query_emptyIndex(t *testing.T) {
	ix := NewLinearIndex()
	ix.Build(nil)

	results, err := ix.Query([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLinearIndex_Query_selfSimilarityIsOne(t *testing.T) {
	v := []float32{0.3, -0.2, 0.9, 0.1}
	ix := buildIndex(models.UserVector{UserID: "self", Vector: v})

	results, err := ix.Query(v, 1)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}
