package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pawplates/engine/internal/embeddings"
	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
	"github.com/pawplates/engine/pkg/cache"
	"github.com/pawplates/engine/pkg/vector"
)

// EmbeddingsRepository defines the store operations for the append-only
// embedding log.
type EmbeddingsRepository interface {
	Append(ctx context.Context, userID string, embedding []float32) (int64, error)
	GetLatest(ctx context.Context, userID string) ([]float32, error)
	ListAllLatest(ctx context.Context) ([]models.UserVector, error)
}

// PreferencesReader provides the stored preferences for a user.
type PreferencesReader interface {
	Get(ctx context.Context, userID string) (models.Preferences, error)
}

// MealHistoryReader provides a user's recent meal history.
type MealHistoryReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]models.MealHistoryEntry, error)
}

// EmbeddingService validates and stores user embedding vectors, and
// regenerates them from preferences and meal history.
type EmbeddingService struct {
	repo           EmbeddingsRepository
	prefs          PreferencesReader
	history        MealHistoryReader
	embedder       embeddings.Client
	embeddingCache *cache.LoaderCache[[]float32]
	dimensions     int
	historyLimit   int
	callTimeout    time.Duration
	logger         *slog.Logger
}

// defaultRefreshHistoryLimit bounds the meal-history read during Refresh
// when no limit is configured.
const defaultRefreshHistoryLimit = 20

// EmbeddingServiceParams configures EmbeddingService. Embedder, Prefs,
// History, and EmbeddingCache may be nil when refresh is disabled
// (no OPENAI_API_KEY); Update and Get still work.
type EmbeddingServiceParams struct {
	Repo           EmbeddingsRepository
	Prefs          PreferencesReader
	History        MealHistoryReader
	Embedder       embeddings.Client
	EmbeddingCache *cache.LoaderCache[[]float32]
	Dimensions     int
	HistoryLimit   int
	CallTimeout    time.Duration
	Logger         *slog.Logger
}

// NewEmbeddingService creates an EmbeddingService.
func NewEmbeddingService(p EmbeddingServiceParams) *EmbeddingService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	historyLimit := p.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultRefreshHistoryLimit
	}

	return &EmbeddingService{
		repo:           p.Repo,
		prefs:          p.Prefs,
		history:        p.History,
		embedder:       p.Embedder,
		embeddingCache: p.EmbeddingCache,
		dimensions:     p.Dimensions,
		historyLimit:   historyLimit,
		callTimeout:    p.CallTimeout,
		logger:         logger,
	}
}

// ErrRefreshDisabled is returned by Refresh when no embedding client is configured.
var ErrRefreshDisabled = errors.New("embedding refresh disabled: no embedding client configured")

// validateVector rejects wrong-dimension and all-zero vectors before any I/O.
func (s *EmbeddingService) validateVector(vec []float32) error {
	if len(vec) != s.dimensions {
		return pawerrors.NewInvalidInputError("vector",
			fmt.Sprintf("expected %d dimensions, got %d", s.dimensions, len(vec)))
	}

	if vector.IsZero(vec) {
		return pawerrors.NewZeroMagnitudeError("vector")
	}

	return nil
}

// Update appends a new embedding record for userID. The record gets the next
// sequence number; earlier records are never touched.
func (s *EmbeddingService) Update(ctx context.Context, userID string, vec []float32) error {
	if userID == "" {
		return pawerrors.NewInvalidInputError("userId", "userId is required")
	}

	if err := s.validateVector(vec); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	sequence, err := s.repo.Append(ctx, userID, vec)
	if err != nil {
		return pawerrors.NewExternalServiceError("embedding store", "append embedding", err)
	}

	s.logger.Info("user embedding updated", "user_id", userID, "sequence", sequence)

	return nil
}

// Get returns the current (highest-sequence) embedding for userID.
// Returns pawerrors.NotFoundError when the user has no records.
func (s *EmbeddingService) Get(ctx context.Context, userID string) ([]float32, error) {
	if userID == "" {
		return nil, pawerrors.NewInvalidInputError("userId", "userId is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	vec, err := s.repo.GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, pawerrors.ErrNotFound) {
			return nil, err
		}

		return nil, pawerrors.NewExternalServiceError("embedding store", "get latest embedding", err)
	}

	return vec, nil
}

// Refresh regenerates userID's embedding from their stored preferences and
// meal history and appends it. Missing preferences are treated as defaults,
// not an error, so new users can be refreshed too. Identical profile text
// reuses the cached vector instead of calling the embedding API again.
func (s *EmbeddingService) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return pawerrors.NewInvalidInputError("userId", "userId is required")
	}

	if s.embedder == nil {
		return ErrRefreshDisabled
	}

	readCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	prefs, err := s.prefs.Get(readCtx, userID)
	if err != nil && !errors.Is(err, pawerrors.ErrNotFound) {
		return pawerrors.NewExternalServiceError("preferences store", "get preferences", err)
	}

	history, err := s.history.ListRecent(readCtx, userID, s.historyLimit)
	if err != nil {
		return pawerrors.NewExternalServiceError("meal history store", "list meal history", err)
	}

	text := buildProfileText(prefs, history)

	vec, err := s.embedText(ctx, text)
	if err != nil {
		return pawerrors.NewExternalServiceError("embedding api", "generate embedding", err)
	}

	if err := s.validateVector(vec); err != nil {
		return err
	}

	writeCtx, cancelWrite := context.WithTimeout(ctx, s.callTimeout)
	defer cancelWrite()

	sequence, err := s.repo.Append(writeCtx, userID, vec)
	if err != nil {
		return pawerrors.NewExternalServiceError("embedding store", "append embedding", err)
	}

	s.logger.Info("user embedding refreshed", "user_id", userID, "sequence", sequence)

	return nil
}

func (s *EmbeddingService) embedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if s.embeddingCache == nil {
		return s.embedder.GetEmbedding(ctx, text)
	}

	return s.embeddingCache.Get(ctx, text, func(ctx context.Context, key string) ([]float32, error) {
		return s.embedder.GetEmbedding(ctx, key)
	})
}
