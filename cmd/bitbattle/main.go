// BitBattle game server — serves the HTTP and WebSocket API and runs the
// matchmaker, AI problem generation, and retention loops.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bitbattle/bitbattle/pkg/aigen"
	"github.com/bitbattle/bitbattle/pkg/api"
	"github.com/bitbattle/bitbattle/pkg/auth"
	"github.com/bitbattle/bitbattle/pkg/cleanup"
	"github.com/bitbattle/bitbattle/pkg/config"
	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/game"
	"github.com/bitbattle/bitbattle/pkg/llm"
	"github.com/bitbattle/bitbattle/pkg/matchmaking"
	"github.com/bitbattle/bitbattle/pkg/problems"
	"github.com/bitbattle/bitbattle/pkg/services"
)

// retentionInterval is how often the cleanup loop sweeps idle rooms and
// expired refresh tokens.
const retentionInterval = time.Minute

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	// Load .env if present; a missing file is fine in containers.
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	slog.Info("Starting BitBattle", "addr", cfg.Addr(), "ai_problems", cfg.AIProblemsEnabled)

	ctx := context.Background()

	// 2. Database
	db, err := database.NewClient(ctx, database.Config{
		DatabaseURL:  cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()
	slog.Info("Connected to PostgreSQL database")

	// 3. Stores
	userStore := services.NewUserStore(db)
	resultStore := services.NewGameResultStore(db)
	sessionStore := services.NewRefreshTokenStore(db)
	leaderboardStore := services.NewLeaderboardStore(db)

	var aiStore *services.AIProblemStore
	if cfg.AIProblemsEnabled {
		aiStore = services.NewAIProblemStore(db)
	}

	// 4. Problem registry
	var registryAIStore problems.AIStore
	if aiStore != nil {
		registryAIStore = aiStore
	}
	registry := problems.NewRegistry(registryAIStore)

	// 5. Sandbox executor
	runner, err := executor.New(cfg.SandboxImage)
	if err != nil {
		slog.Error("Failed to initialize sandbox executor", "error", err)
		os.Exit(1)
	}
	slog.Info("Sandbox executor initialized", "image", cfg.SandboxImage)

	// 6. Rooms and matchmaker
	rooms := game.NewManager()
	queue := matchmaking.NewQueue(rooms.Exists)
	matchmaker := matchmaking.NewService(queue, rooms, registry)
	matchmaker.Start(ctx)

	// 7. AI problem generator (optional)
	var generator *aigen.Generator
	if cfg.AIProblemsEnabled {
		if cfg.LLMProvider != "openai" {
			slog.Error("Unsupported LLM provider", "provider", cfg.LLMProvider)
			os.Exit(1)
		}
		provider := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.LLMModel)
		floors := aigen.Floors{Easy: cfg.AIPoolEasy, Medium: cfg.AIPoolMedium, Hard: cfg.AIPoolHard}
		generator = aigen.NewGenerator(aiStore, provider, aigen.NewValidator(runner), floors, cfg.AITick)
		generator.Start(ctx)
	}

	// 8. Retention: idle rooms and expired refresh tokens
	retention := cleanup.NewService(rooms, sessionStore, cfg.RoomIdleTTL, retentionInterval)
	retention.Start(ctx)

	// 9. Identity and submission pipeline
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	google := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	var aiFinder services.AIProblemFinder
	if aiStore != nil {
		aiFinder = aiStore
	}
	submitter := services.NewSubmissionService(registry, aiFinder, runner, rooms, userStore, resultStore)

	// 10. HTTP server
	server := api.NewServer(api.Deps{
		Config:      cfg,
		DB:          db,
		Tokens:      tokens,
		Google:      google,
		Users:       userStore,
		Sessions:    sessionStore,
		History:     resultStore,
		Leaderboard: leaderboardStore,
		Registry:    registry,
		Rooms:       rooms,
		Queue:       queue,
		Submitter:   submitter,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Addr()
		slog.Info("HTTP server listening", "addr", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("BitBattle started successfully")

	// 11. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 12. Graceful shutdown: drain HTTP first, then stop background loops.
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	matchmaker.Stop()
	if generator != nil {
		generator.Stop()
	}
	retention.Stop()

	slog.Info("Shutdown complete")
}
