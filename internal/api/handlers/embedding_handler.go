package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawplates/engine/internal/api/response"
	"github.com/pawplates/engine/internal/observability"
	"github.com/pawplates/engine/internal/pawerrors"
	"github.com/pawplates/engine/internal/service"
)

// EmbeddingUpdater is the service surface the embedding handler needs.
type EmbeddingUpdater interface {
	Update(ctx context.Context, userID string, vec []float32) error
	Get(ctx context.Context, userID string) ([]float32, error)
	Refresh(ctx context.Context, userID string) error
}

// EmbeddingHandler handles per-user embedding endpoints. metrics may be nil.
type EmbeddingHandler struct {
	embeddings EmbeddingUpdater
	metrics    observability.EngineMetrics
}

// NewEmbeddingHandler creates a new embedding handler.
func NewEmbeddingHandler(embeddings EmbeddingUpdater, metrics observability.EngineMetrics) *EmbeddingHandler {
	return &EmbeddingHandler{embeddings: embeddings, metrics: metrics}
}

// UpdateEmbeddingRequest is the body for PUT /v1/users/{id}/embedding.
type UpdateEmbeddingRequest struct {
	Vector []float32 `json:"vector"`
}

// EmbeddingResponse is the body for GET /v1/users/{id}/embedding.
type EmbeddingResponse struct {
	UserID string    `json:"userId"`
	Vector []float32 `json:"vector"`
}

// Update handles PUT /v1/users/{id}/embedding.
func (h *EmbeddingHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	var req UpdateEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "invalid JSON body")
		return
	}

	if err := h.embeddings.Update(r.Context(), userID, req.Vector); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /v1/users/{id}/embedding.
func (h *EmbeddingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	vec, err := h.embeddings.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, EmbeddingResponse{UserID: userID, Vector: vec})
}

// Refresh handles POST /v1/users/{id}/embedding/refresh.
func (h *EmbeddingHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		response.RespondBadRequest(w, "user id is required")
		return
	}

	err := h.embeddings.Refresh(r.Context(), userID)
	if h.metrics != nil {
		h.metrics.RecordEmbeddingRefresh(r.Context(), outcomeForError(err))
	}

	if err != nil {
		if errors.Is(err, service.ErrRefreshDisabled) {
			response.RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", "embedding refresh is not configured")
			return
		}
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// outcomeForError maps a service-layer error to a bounded outcome label.
func outcomeForError(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, pawerrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, pawerrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, pawerrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, pawerrors.ErrExternalService):
		return "external_error"
	default:
		return "unknown"
	}
}

// respondServiceError maps service-layer errors to HTTP statuses. Zero
// magnitude vectors match the invalid-input sentinel, so they fall into
// the 400 branch without a dedicated case.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pawerrors.ErrInvalidInput):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, pawerrors.ErrNotFound):
		response.RespondNotFound(w, err.Error())
	case errors.Is(err, pawerrors.ErrRateLimited):
		response.RespondTooManyRequests(w, err.Error())
	case errors.Is(err, pawerrors.ErrExternalService):
		response.RespondBadGateway(w, err.Error())
	default:
		response.RespondInternalServerError(w, "internal error")
	}
}
