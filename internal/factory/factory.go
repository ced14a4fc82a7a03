package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jbcacc/cpm-backend/internal/dependencies/clock"
	"github.com/jbcacc/cpm-backend/internal/dependencies/random"
	"github.com/jbcacc/cpm-backend/internal/gamebackend"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
	"github.com/jbcacc/cpm-backend/internal/services/mutation"
	"github.com/jbcacc/cpm-backend/internal/services/rewrite"
	"github.com/jbcacc/cpm-backend/internal/storage"
	"github.com/jbcacc/cpm-backend/internal/storage/memory"
	redisstorage "github.com/jbcacc/cpm-backend/internal/storage/redis"
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
	Clock  clock.Clock
	Random random.Random

	// Remote backend clients
	Relay    *gamebackend.Relay
	Identity *gamebackend.Identity
	Backend  *gamebackend.Client

	// Services
	RewriteService  *rewrite.Service
	MutationService *mutation.Service
	AuthService     *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// BackendConfig holds the remote identity/game backend settings
	BackendConfig gamebackend.Config

	// MutationConfig holds orchestrator settings (optional)
	MutationConfig mutation.Config

	// AuthConfig holds local auth settings (optional)
	AuthConfig auth.Config

	// AdminUsername/AdminPassword bootstrap an admin user when both are
	// set and the user does not exist yet
	AdminUsername string
	AdminPassword string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
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

	// External dependencies
	clk := clock.New()
	rnd := random.New()

	// Remote backend clients share one relay; the relay's own timeout is a
	// backstop, per-call timeouts come from the backend config
	relay := gamebackend.NewRelay(cfg.BackendConfig.SaveTimeout, logger)
	identity := gamebackend.NewIdentity(relay, cfg.BackendConfig, logger)
	backend := gamebackend.NewClient(relay, cfg.BackendConfig, logger)

	// Services
	rewriteService := rewrite.New(logger)
	mutationCfg := cfg.MutationConfig
	if mutationCfg == (mutation.Config{}) {
		mutationCfg = mutation.DefaultConfig()
	}
	mutationService := mutation.New(backend, identity, rewriteService, store, clk, rnd, mutationCfg, logger)
	authService := auth.New(store, clk, rnd, cfg.AuthConfig)

	app := &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Relay:           relay,
		Identity:        identity,
		Backend:         backend,
		RewriteService:  rewriteService,
		MutationService: mutationService,
		AuthService:     authService,
	}

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := app.bootstrapAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// bootstrapAdmin creates the initial admin user if it does not exist
func (a *App) bootstrapAdmin(username, password string) error {
	_, err := a.AuthService.CreateUser(context.Background(), username, password, true)
	if err != nil && !errors.Is(err, model.ErrUsernameExists) {
		return err
	}
	return nil
}
