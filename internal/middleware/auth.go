package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"gptx-relay/internal/models"
)

// AppKeyHeader carries the shared secret issued to the mobile app.
const AppKeyHeader = "X-App-Key"

type AppKeyAuth struct {
	secret []byte
}

func NewAppKeyAuth(secret string) *AppKeyAuth {
	return &AppKeyAuth{secret: []byte(secret)}
}

// Middleware rejects requests whose X-App-Key header does not match the
// configured shared secret. Comparison is constant-time.
func (a *AppKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(AppKeyHeader)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing app key", r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), a.secret) != 1 {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid app key", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	})
}
