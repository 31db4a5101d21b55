package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/heretounderstand/ndole/internal/config"
	"github.com/heretounderstand/ndole/internal/database"
	"github.com/heretounderstand/ndole/internal/handler"
	"github.com/heretounderstand/ndole/internal/pkg/redisx"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is the session cache; the service degrades to history replay
	// without it.
	cache, err := redisx.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, chat sessions will replay from the database", "error", err)
		cache = nil
	}

	r, err := handler.SetupRouter(context.Background(), cfg, db, cache)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	addr := cfg.Host + ":" + cfg.Port
	slog.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
