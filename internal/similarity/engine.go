package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
	"github.com/pawplates/engine/pkg/vector"
)

// EmbeddingLister provides the snapshot of current user vectors the engine scans.
type EmbeddingLister interface {
	ListAllLatest(ctx context.Context) ([]models.UserVector, error)
}

// Engine finds the users most similar to a query vector. It validates the
// query, snapshots the stored vectors, and delegates ranking to an Index
// built fresh per call (the snapshot is already a full read; rebuilding costs
// nothing extra for a linear index and keeps results consistent with it).
type Engine struct {
	lister      EmbeddingLister
	dimensions  int
	callTimeout time.Duration
	newIndex    func() Index
}

// defaultCallTimeout bounds the snapshot read when no timeout is configured.
const defaultCallTimeout = 10 * time.Second

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithIndexFactory overrides the Index implementation used per query.
func WithIndexFactory(factory func() Index) EngineOption {
	return func(e *Engine) {
		e.newIndex = factory
	}
}

// WithCallTimeout sets the deadline applied to the snapshot read.
func WithCallTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// NewEngine creates a similarity engine over lister with the deployment's
// fixed vector dimension.
func NewEngine(lister EmbeddingLister, dimensions int, opts ...EngineOption) *Engine {
	e := &Engine{
		lister:      lister,
		dimensions:  dimensions,
		callTimeout: defaultCallTimeout,
		newIndex:    func() Index { return NewLinearIndex() },
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// FindSimilar returns at most k users ranked by descending cosine similarity
// to query, excluding excludeUserID when non-empty. A wrong-dimension or
// zero-magnitude query and k <= 0 fail before any I/O.
func (e *Engine) FindSimilar(ctx context.Context, query []float32, k int, excludeUserID string) ([]models.SimilarityResult, error) {
	if k <= 0 {
		return nil, pawerrors.NewInvalidInputError("k", "k must be positive")
	}

	if len(query) != e.dimensions {
		return nil, pawerrors.NewInvalidInputError("query vector",
			fmt.Sprintf("expected %d dimensions, got %d", e.dimensions, len(query)))
	}

	if vector.IsZero(query) {
		return nil, pawerrors.NewZeroMagnitudeError("query vector")
	}

	listCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	entries, err := e.lister.ListAllLatest(listCtx)
	if err != nil {
		return nil, pawerrors.NewExternalServiceError("embedding store", "list embeddings", err)
	}

	// Filter into a fresh slice; the lister may hand out a snapshot it
	// still owns.
	if excludeUserID != "" {
		filtered := make([]models.UserVector, 0, len(entries))

		for _, entry := range entries {
			if entry.UserID != excludeUserID {
				filtered = append(filtered, entry)
			}
		}

		entries = filtered
	}

	index := e.newIndex()
	index.Build(entries)

	return index.Query(query, k)
}
