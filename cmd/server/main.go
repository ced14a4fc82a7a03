package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jbcacc/cpm-backend/internal/api"
	"github.com/jbcacc/cpm-backend/internal/factory"
	"github.com/jbcacc/cpm-backend/internal/gamebackend"
	"github.com/jbcacc/cpm-backend/internal/services/mutation"
	redisstorage "github.com/jbcacc/cpm-backend/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Remote backend config from environment
	backendCfg := gamebackend.DefaultConfig()
	backendCfg.APIKey = os.Getenv("FIREBASE_API_KEY")
	backendCfg.BaseURL = os.Getenv("GAME_BACKEND_URL")
	backendCfg.DeviceToken = os.Getenv("DEVICE_TOKEN")
	if backendCfg.APIKey == "" || backendCfg.BaseURL == "" {
		logger.Error("FIREBASE_API_KEY and GAME_BACKEND_URL are required")
		os.Exit(1)
	}

	mutationCfg := mutation.DefaultConfig()
	if v := os.Getenv("CLONE_KEEP_EXTRA"); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			logger.Error("invalid CLONE_KEEP_EXTRA", slog.String("value", v))
			os.Exit(1)
		}
		mutationCfg.CloneKeepExtra = keep
	}
	if v := os.Getenv("VEHICLE_SAVE_DELAY"); v != "" {
		delay, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid VEHICLE_SAVE_DELAY", slog.String("value", v))
			os.Exit(1)
		}
		mutationCfg.VehicleSaveDelay = delay
	}

	// Build factory config from environment
	cfg := factory.Config{
		Logger:         logger,
		StorageType:    os.Getenv("STORAGE_TYPE"),
		BackendConfig:  backendCfg,
		MutationConfig: mutationCfg,
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
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

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		MutationService: app.MutationService,
		Backend:         app.Backend,
		Identity:        app.Identity,
		Storage:         app.Storage,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", router)

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverConfig.Port = parsed
	}
	server := api.NewServer(mux, serverConfig, logger)

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
