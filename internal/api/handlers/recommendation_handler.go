package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pawplates/engine/internal/api/response"
	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/observability"
	"github.com/pawplates/engine/internal/service"
)

// Recommender is the service surface the recommendation handler needs.
type Recommender interface {
	RecommendFromProfile(ctx context.Context, profile models.DogProfile, prefs models.Preferences, history []models.MealHistoryEntry) (string, error)
	RecommendCollaborative(ctx context.Context, userID string) ([]string, error)
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// RecommendationHandler handles recommendation endpoints. metrics may be nil.
type RecommendationHandler struct {
	recommender Recommender
	metrics     observability.EngineMetrics
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(recommender Recommender, metrics observability.EngineMetrics) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender, metrics: metrics}
}

// ProfileRecommendationRequest is the body for POST /v1/recommendations/profile.
type ProfileRecommendationRequest struct {
	Profile       models.DogProfile        `json:"profile"`
	Preferences   models.Preferences       `json:"preferences"`
	RecentHistory []models.MealHistoryEntry `json:"recentHistory"`
}

// ProfileRecommendationResponse is the body for POST /v1/recommendations/profile.
type ProfileRecommendationResponse struct {
	Recommendation string `json:"recommendation"`
}

// CollaborativeRecommendationResponse is the body for
// GET /v1/users/{id}/recommendations/collaborative.
type CollaborativeRecommendationResponse struct {
	UserID    string   `json:"userId"`
	RecipeIDs []string `json:"recipeIds"`
}

// AssistantRequest is the body for POST /v1/assistant.
type AssistantRequest struct {
	Question string `json:"question"`
}

// AssistantResponse is the body for POST /v1/assistant.
type AssistantResponse struct {
	Answer string `json:"answer"`
}

// FromProfile handles POST /v1/recommendations/profile.
func (h *RecommendationHandler) FromProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}

	start := time.Now()
	text, err := h.recommender.RecommendFromProfile(r.Context(), req.Profile, req.Preferences, req.RecentHistory)
	h.recordFlow(r.Context(), "profile", err, time.Since(start))

	if err != nil {
		if errors.Is(err, service.ErrGenerationDisabled) {
			response.RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", "text generation is not configured")
			return
		}
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, ProfileRecommendationResponse{Recommendation: text})
}

// Collaborative handles GET /v1/users/{id}/recommendations/collaborative.
func (h *RecommendationHandler) Collaborative(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	start := time.Now()
	recipeIDs, err := h.recommender.RecommendCollaborative(r.Context(), userID)
	h.recordFlow(r.Context(), "collaborative", err, time.Since(start))

	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, CollaborativeRecommendationResponse{UserID: userID, RecipeIDs: recipeIDs})
}

// Assistant handles POST /v1/assistant: a free-form question answered by
// the text-generation capability.
func (h *RecommendationHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	var req AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}

	answer, err := h.recommender.AnswerQuestion(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, service.ErrGenerationDisabled) {
			response.RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", "text generation is not configured")
			return
		}
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, AssistantResponse{Answer: answer})
}

func (h *RecommendationHandler) recordFlow(ctx context.Context, flow string, err error, duration time.Duration) {
	if h.metrics == nil {
		return
	}

	h.metrics.RecordRecommendation(ctx, flow, outcomeForError(err), duration)
}
