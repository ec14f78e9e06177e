package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pawplates/engine/internal/api/response"
	"github.com/pawplates/engine/internal/models"
)

const defaultHistoryPageSize = 20

// MealHistoryStore persists and reads per-user meal history.
type MealHistoryStore interface {
	Add(ctx context.Context, userID, recipeID string, date time.Time) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.MealHistoryEntry, error)
}

// PreferencesStore persists and reads per-user owner preferences.
type PreferencesStore interface {
	Put(ctx context.Context, userID string, prefs models.Preferences) error
	Get(ctx context.Context, userID string) (models.Preferences, error)
}

// FavoritesStore persists per-user recipe favorites.
type FavoritesStore interface {
	Save(ctx context.Context, userID, recipeID string) error
}

// ProfileHandler handles the profile-data endpoints feeding the
// personalization pipeline: meal history, preferences, and favorites.
type ProfileHandler struct {
	history   MealHistoryStore
	prefs     PreferencesStore
	favorites FavoritesStore
}

// NewProfileHandler creates a new profile-data handler.
func NewProfileHandler(history MealHistoryStore, prefs PreferencesStore, favorites FavoritesStore) *ProfileHandler {
	return &ProfileHandler{history: history, prefs: prefs, favorites: favorites}
}

// AddMealRequest is the body for POST /v1/users/{id}/meal-history.
type AddMealRequest struct {
	RecipeID string    `json:"recipeId"`
	Date     time.Time `json:"date"`
}

// MealHistoryResponse is the body for GET /v1/users/{id}/meal-history.
type MealHistoryResponse struct {
	UserID  string                    `json:"userId"`
	Entries []models.MealHistoryEntry `json:"entries"`
}

// SaveFavoriteRequest is the body for POST /v1/users/{id}/favorites.
type SaveFavoriteRequest struct {
	RecipeID string `json:"recipeId"`
}

// AddMeal handles POST /v1/users/{id}/meal-history.
func (h *ProfileHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	var req AddMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}
	if req.RecipeID == "" {
		response.RespondBadRequest(w, "recipeId is required")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	if err := h.history.Add(r.Context(), userID, req.RecipeID, req.Date); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// ListMeals handles GET /v1/users/{id}/meal-history.
func (h *ProfileHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	limit := defaultHistoryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.RespondBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.history.ListRecent(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.MealHistoryEntry{}
	}

	response.RespondJSON(w, http.StatusOK, MealHistoryResponse{UserID: userID, Entries: entries})
}

// PutPreferences handles PUT /v1/users/{id}/preferences.
func (h *ProfileHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	var prefs models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}

	if err := h.prefs.Put(r.Context(), userID, prefs); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /v1/users/{id}/preferences.
func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	prefs, err := h.prefs.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, prefs)
}

// SaveFavorite handles POST /v1/users/{id}/favorites.
func (h *ProfileHandler) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	var req SaveFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}
	if req.RecipeID == "" {
		response.RespondBadRequest(w, "recipeId is required")
		return
	}

	if err := h.favorites.Save(r.Context(), userID, req.RecipeID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
