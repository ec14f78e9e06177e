// Package similarity ranks users by cosine similarity of their embedding vectors.
package similarity

import (
	"sort"

	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
	"github.com/pawplates/engine/pkg/vector"
)

// Index answers top-k nearest-neighbor queries over a set of user vectors.
// Build then Query; an Index is not safe for concurrent Build calls. The
// interface is the seam for swapping the linear scan for an indexed or
// approximate structure without touching callers.
type Index interface {
	// Build replaces the index contents with entries.
	Build(entries []models.UserVector)

	// Query returns at most k results ordered by descending score, ties
	// broken by ascending userID. Candidates with zero magnitude or a
	// dimension different from the query are malformed records and are
	// skipped, not scored.
	Query(query []float32, k int) ([]models.SimilarityResult, error)
}

// LinearIndex is the reference Index: an O(n·D) scan over every entry.
// Fine at the target data scale.
type LinearIndex struct {
	entries []models.UserVector
}

// NewLinearIndex creates an empty linear-scan index.
func NewLinearIndex() *LinearIndex {
	return &LinearIndex{}
}

var _ Index = (*LinearIndex)(nil)

// Build replaces the index contents with entries.
func (ix *LinearIndex) Build(entries []models.UserVector) {
	ix.entries = entries
}

// Query scores every entry against query and returns the top k.
func (ix *LinearIndex) Query(query []float32, k int) ([]models.SimilarityResult, error) {
	if k <= 0 {
		return nil, pawerrors.NewInvalidInputError("k", "k must be positive")
	}

	if vector.IsZero(query) {
		return nil, pawerrors.NewZeroMagnitudeError("query vector")
	}

	results := make([]models.SimilarityResult, 0, len(ix.entries))

	for _, entry := range ix.entries {
		if len(entry.Vector) != len(query) {
			continue
		}

		score, err := vector.CosineSimilarity(query, entry.Vector)
		if err != nil {
			// Zero-magnitude candidate: malformed record, skip rather
			// than abort the whole scan.
			continue
		}

		results = append(results, models.SimilarityResult{UserID: entry.UserID, Score: score})
	}

	// Descending score; equal scores have no natural order, so ascending
	// userID keeps the ranking deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		return results[i].UserID < results[j].UserID
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}
