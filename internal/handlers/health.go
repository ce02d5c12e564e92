package handlers

import (
	"encoding/json"
	"net/http"

	"gptx-relay/internal/models"
)

type HealthHandler struct {
	version  string
	features []string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:  version,
		features: []string{"chat", "upload"},
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		OK:       true,
		Version:  h.version,
		Features: h.features,
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
