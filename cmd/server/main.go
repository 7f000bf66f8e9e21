package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/api"
	"github.com/Raunaq22/ChessMate-sub001/internal/factory"
	redisstorage "github.com/Raunaq22/ChessMate-sub001/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	signingKey := os.Getenv("CHESSMATE_SIGNING_KEY")
	if signingKey == "" {
		logger.Error("CHESSMATE_SIGNING_KEY is required")
		os.Exit(1)
	}

	// Build factory config from environment
	cfg := factory.Config{
		SigningKey:          []byte(signingKey),
		Logger:              logger,
		StorageType:         os.Getenv("STORAGE_TYPE"),
		RulesURL:            os.Getenv("RULES_URL"),
		AnalysisURL:         os.Getenv("ANALYSIS_URL"),
		GraceWindow:         durationEnv(logger, "CHESSMATE_GRACE_WINDOW"),
		ExternalCallTimeout: millisEnv(logger, "CHESSMATE_EXTERNAL_TIMEOUT_MS"),
		AllowedOrigins:      splitEnv("CHESSMATE_ALLOWED_ORIGINS"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	if cfg.RulesURL == "" {
		logger.Warn("RULES_URL not set, every move will be accepted")
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		Storage:         app.Storage,
		AnalysisService: app.AnalysisService,
		WSHandler:       app.WSHandler,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// durationEnv reads a duration from the environment. A bare integer is
// taken as seconds; anything else goes through time.ParseDuration.
func durationEnv(logger *slog.Logger, name string) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			logger.Warn("ignoring invalid duration", slog.String("env", name), slog.String("value", raw))
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("ignoring invalid duration", slog.String("env", name), slog.String("value", raw))
		return 0
	}
	return d
}

func millisEnv(logger *slog.Logger, name string) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		logger.Warn("ignoring invalid millisecond value", slog.String("env", name), slog.String("value", raw))
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func splitEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
