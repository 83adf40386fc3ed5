package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sandria/chatvault/internal/api"
	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/config"
	"github.com/sandria/chatvault/internal/llm"
	"github.com/sandria/chatvault/internal/llm/gemini"
	"github.com/sandria/chatvault/internal/logger"
	"github.com/sandria/chatvault/internal/repository"
	"github.com/sandria/chatvault/internal/repository/redis"
	"github.com/sandria/chatvault/internal/tool"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger setup error: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting chatvault API server")

	repo, closeRepo, err := repository.Open(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open conversation store")
	}
	defer closeRepo()

	var weatherCache tool.WeatherCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, weather cache disabled")
		} else {
			defer redisClient.Close()
			weatherCache = redis.NewWeatherCache(redisClient)
		}
	}

	tools := tool.NewRegistry()
	tools.Register(tool.NewWeatherClient(cfg.Weather, weatherCache).Descriptor())

	llmRouter := llm.NewRouter("gemini")
	llmRouter.RegisterProvider(gemini.NewProvider(cfg.AI))

	sessions := chat.NewSessionManager(repo)
	messages := chat.NewMessageHandler(repo, llmRouter, tools, cfg.AI.Model, cfg.AI.HistoryLimit)

	router := api.NewRouter(repo, sessions, messages)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
