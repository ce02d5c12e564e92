package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gptx-relay/internal/config"
	"gptx-relay/internal/handlers"
	"gptx-relay/internal/middleware"
	"gptx-relay/internal/router"
	"gptx-relay/internal/services"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Exits immediately (via panic) if OPENAI_API_KEY or APP_KEY are absent
	cfg := config.Load()
	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("upstream", cfg.UpstreamURL),
		zap.String("model", cfg.DefaultModel))

	upstream := services.NewUpstreamClient(cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.DefaultModel, logger)

	appKeyAuth := middleware.NewAppKeyAuth(cfg.AppKey)
	chatHandler := handlers.NewChatHandler(upstream, logger)
	uploadHandler := handlers.NewUploadHandler(cfg.MaxUploadBytes, logger)
	healthHandler := handlers.NewHealthHandler(config.Version)

	r := router.New(
		appKeyAuth,
		chatHandler,
		uploadHandler,
		healthHandler,
		cfg.RateLimitPerMinute,
		cfg.AllowedOrigins,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: SSE responses stay open for the life of the stream
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("gptx relay listening", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
