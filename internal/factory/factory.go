package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/clock"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/analysis"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/auth"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/registry"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/relay"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/room"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/rules"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/session"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage/memory"
	redisstorage "github.com/Raunaq22/ChessMate-sub001/internal/storage/redis"
	"github.com/Raunaq22/ChessMate-sub001/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService       *auth.Service
	Registry          *registry.Registry
	RoomService       *room.Service
	RulesEvaluator    rules.Evaluator
	SessionController *session.Controller
	Dispatcher        *relay.Dispatcher
	AnalysisService   *analysis.Service
	WSHandler         *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// SigningKey is the shared HMAC key connection credentials are
	// verified against (required)
	SigningKey []byte
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RulesURL is the base URL of the external rules evaluator
	// If empty, a permissive local evaluator is used
	RulesURL string
	// AnalysisURL is the base URL of the external analysis service
	// If empty, the analysis endpoint reports unavailability
	AnalysisURL string
	// GraceWindow is the reconnect window after a disconnect
	// If zero, defaults to session.DefaultConfig()
	GraceWindow time.Duration
	// ExternalCallTimeout bounds calls to the rules evaluator and
	// record persistence. If zero, defaults to session.DefaultConfig()
	ExternalCallTimeout time.Duration
	// AllowedOrigins restricts websocket browser origins; empty allows all
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("SigningKey is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sessionCfg := session.DefaultConfig()
	if cfg.GraceWindow > 0 {
		sessionCfg.GraceWindow = cfg.GraceWindow
	}
	if cfg.ExternalCallTimeout > 0 {
		sessionCfg.ExternalCallTimeout = cfg.ExternalCallTimeout
	}

	var evaluator rules.Evaluator
	if cfg.RulesURL != "" {
		evaluator = rules.NewHTTPEvaluator(cfg.RulesURL, sessionCfg.ExternalCallTimeout, logger)
	} else {
		evaluator = rules.NewPermissive()
	}

	analysisService := analysis.New(cfg.AnalysisURL, sessionCfg.ExternalCallTimeout, logger)

	return newWithDependencies(store, clock.New(), evaluator, analysisService, auth.Config{SigningKey: cfg.SigningKey}, sessionCfg, cfg.AllowedOrigins, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	evaluator rules.Evaluator,
	analysisService *analysis.Service,
	authCfg auth.Config,
	sessionCfg session.Config,
	allowedOrigins []string,
	logger *slog.Logger,
) *App {
	// Create services
	authService := auth.New(authCfg)
	reg := registry.New(logger)
	roomService := room.New(reg, clk, logger)
	sessionController := session.NewController(roomService, reg, store, evaluator, clk, sessionCfg, logger)
	dispatcher := relay.NewDispatcher(sessionController, logger)
	wsHandler := ws.NewHandler(authService, reg, sessionController, dispatcher, allowedOrigins, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		AuthService:       authService,
		Registry:          reg,
		RoomService:       roomService,
		RulesEvaluator:    evaluator,
		SessionController: sessionController,
		Dispatcher:        dispatcher,
		AnalysisService:   analysisService,
		WSHandler:         wsHandler,
	}
}

// Close releases all held resources: timers, sessions, and live
// connections
func (a *App) Close() {
	a.SessionController.Close()
	a.Registry.Close()
	a.RoomService.Close()
}
