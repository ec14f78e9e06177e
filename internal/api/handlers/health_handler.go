package handlers

import (
	"net/http"

	"github.com/pawplates/engine/internal/api/response"
)

// HealthHandler handles liveness checks.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
