package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/cli"
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
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Please set the required environment variables.")
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger setup error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open conversation store")
	}
	defer closeRepo()

	// Weather cache is optional; the tool works uncached without Redis.
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

	router := llm.NewRouter("gemini")
	router.RegisterProvider(gemini.NewProvider(cfg.AI))

	sessions := chat.NewSessionManager(repo)
	handler := chat.NewMessageHandler(repo, router, tools, cfg.AI.Model, cfg.AI.HistoryLimit)

	storeDesc := cfg.Storage.Driver
	if cfg.Storage.Driver == "sqlite" {
		storeDesc = cfg.Storage.SQLite.Path
	}

	app := cli.New(repo, sessions, handler, os.Stdin, os.Stdout, storeDesc)
	if err := app.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\n👋 Goodbye!")
			return
		}
		log.Fatal().Err(err).Msg("Chat loop failed")
	}
}
