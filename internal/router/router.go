package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gptx-relay/internal/handlers"
	"gptx-relay/internal/middleware"
)

func New(
	appKeyAuth *middleware.AppKeyAuth,
	chatHandler *handlers.ChatHandler,
	uploadHandler *handlers.UploadHandler,
	healthHandler *handlers.HealthHandler,
	rateLimitPerMinute int,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.AppKeyHeader},
		MaxAge:         300,
	}))

	limiter := middleware.NewRateLimiter(rateLimitPerMinute, time.Minute)
	r.Use(limiter.Middleware)

	// Health check (public)
	r.Get("/health", healthHandler.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(appKeyAuth.Middleware)
		r.Post("/chat", chatHandler.Stream)
		r.Post("/upload", uploadHandler.Upload)
	})

	return r
}
