package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pawplates/engine/internal/llm"
	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
)

// LatestEmbeddingGetter provides a user's current embedding vector.
type LatestEmbeddingGetter interface {
	GetLatest(ctx context.Context, userID string) ([]float32, error)
}

// SimilarityFinder ranks the stored users most similar to a query vector.
type SimilarityFinder interface {
	FindSimilar(ctx context.Context, query []float32, k int, excludeUserID string) ([]models.SimilarityResult, error)
}

// FavoritesLookup returns favorite recipes for an ordered list of users.
type FavoritesLookup interface {
	GetForUsers(ctx context.Context, userIDs []string) ([]models.Favorite, error)
}

// RecommendationService coordinates the recommendation flows: the
// profile-driven prompt to the text-generation capability, collaborative
// filtering over similar users' favorites, and free-form assistant answers.
// All are read-only with respect to this engine's own state.
type RecommendationService struct {
	embeddings       LatestEmbeddingGetter
	similarity       SimilarityFinder
	favorites        FavoritesLookup
	generator        llm.Client
	similarUserCount int
	maxResults       int
	historyLimit     int
	callTimeout      time.Duration
	logger           *slog.Logger
}

// RecommendationServiceParams configures RecommendationService.
type RecommendationServiceParams struct {
	Embeddings        LatestEmbeddingGetter
	Similarity        SimilarityFinder
	Favorites         FavoritesLookup
	Generator         llm.Client
	SimilarUserCount  int
	RecommendationCap int
	HistoryLimit      int
	CallTimeout       time.Duration
	Logger            *slog.Logger
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(p RecommendationServiceParams) *RecommendationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RecommendationService{
		embeddings:       p.Embeddings,
		similarity:       p.Similarity,
		favorites:        p.Favorites,
		generator:        p.Generator,
		similarUserCount: p.SimilarUserCount,
		maxResults:       p.RecommendationCap,
		historyLimit:     p.HistoryLimit,
		callTimeout:      p.CallTimeout,
		logger:           logger,
	}
}

// ErrGenerationDisabled is returned when no text-generation client is configured.
var ErrGenerationDisabled = errors.New("recommendation generation disabled: no text-generation client configured")

// RecommendFromProfile assembles a deterministic prompt from the profile,
// preferences, and capped recent history, invokes the text-generation
// capability exactly once, and returns its response unchanged. No retries;
// a failed or timed-out call surfaces as ExternalServiceError.
func (s *RecommendationService) RecommendFromProfile(
	ctx context.Context, profile models.DogProfile, prefs models.Preferences, history []models.MealHistoryEntry,
) (string, error) {
	if s.generator == nil {
		return "", ErrGenerationDisabled
	}

	prompt := buildRecommendationPrompt(profile, prefs, history, s.historyLimit)

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("profile recommendation: generate failed", "error", err)

		return "", pawerrors.NewExternalServiceError("text generation", "generate recommendation", err)
	}

	return text, nil
}

// AnswerQuestion sends a single free-form owner question to the
// text-generation capability and returns the answer unchanged. Like the
// profile flow it makes exactly one call, with no retries.
func (s *RecommendationService) AnswerQuestion(ctx context.Context, question string) (string, error) {
	if s.generator == nil {
		return "", ErrGenerationDisabled
	}

	if strings.TrimSpace(question) == "" {
		return "", pawerrors.NewInvalidInputError("question", "question is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	answer, err := s.generator.Generate(ctx, buildAssistantPrompt(question))
	if err != nil {
		s.logger.Error("assistant: generate failed", "error", err)

		return "", pawerrors.NewExternalServiceError("text generation", "answer question", err)
	}

	return answer, nil
}

// RecommendCollaborative returns up to the configured cap of recipe IDs
// favorited by the users most similar to userID. Steps run strictly in
// order: embedding fetch, similarity search, favorites lookup, merge; each
// step depends on the previous result. A user with no stored embedding gets
// NotFoundError before any similarity or favorites work ("not enough data
// yet", not a crash). Empty similars or favorites yield an empty list.
func (s *RecommendationService) RecommendCollaborative(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, pawerrors.NewInvalidInputError("userId", "userId is required")
	}

	embCtx, cancelEmb := context.WithTimeout(ctx, s.callTimeout)
	defer cancelEmb()

	embedding, err := s.embeddings.GetLatest(embCtx, userID)
	if err != nil {
		if errors.Is(err, pawerrors.ErrNotFound) {
			return nil, err
		}

		return nil, pawerrors.NewExternalServiceError("embedding store", "get latest embedding", err)
	}

	similar, err := s.similarity.FindSimilar(ctx, embedding, s.similarUserCount, userID)
	if err != nil {
		return nil, err
	}

	if len(similar) == 0 {
		return []string{}, nil
	}

	userIDs := make([]string, len(similar))
	for i, res := range similar {
		userIDs[i] = res.UserID
	}

	favCtx, cancelFav := context.WithTimeout(ctx, s.callTimeout)
	defer cancelFav()

	favorites, err := s.favorites.GetForUsers(favCtx, userIDs)
	if err != nil {
		return nil, pawerrors.NewExternalServiceError("favorites lookup", "get favorites for users", err)
	}

	return mergeFavorites(userIDs, favorites, s.maxResults), nil
}

// mergeFavorites walks similar users in rank order, appending each user's
// favorites in received order. The first occurrence of a recipe wins (the
// most similar contributing user), duplicates are dropped, and the output
// stops at cap.
func mergeFavorites(rankedUserIDs []string, favorites []models.Favorite, maxResults int) []string {
	byUser := make(map[string][]string, len(rankedUserIDs))
	for _, fav := range favorites {
		byUser[fav.UserID] = append(byUser[fav.UserID], fav.RecipeID)
	}

	seen := make(map[string]struct{})
	merged := []string{}

	for _, userID := range rankedUserIDs {
		for _, recipeID := range byUser[userID] {
			if _, dup := seen[recipeID]; dup {
				continue
			}

			seen[recipeID] = struct{}{}
			merged = append(merged, recipeID)

			if len(merged) >= maxResults {
				return merged
			}
		}
	}

	return merged
}
