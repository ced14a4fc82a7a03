package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jbcacc/cpm-backend/internal/api/handler"
	apimiddleware "github.com/jbcacc/cpm-backend/internal/api/middleware"
	"github.com/jbcacc/cpm-backend/internal/middleware"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
	"github.com/jbcacc/cpm-backend/internal/services/mutation"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	MutationService *mutation.Service
	Backend         mutation.Backend
	Identity        mutation.IdentityProvider
	Storage         storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	localAuthHandler := handler.NewLocalAuthHandler(cfg.AuthService)
	accountHandler := handler.NewAccountHandler(cfg.Backend, cfg.Identity, cfg.MutationService)
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.Storage)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.AuthService)
	adminMiddleware := apimiddleware.RequireAdmin()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Local sessions (no auth required to open one)
	api.HandleFunc("/auth/login", localAuthHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/redeem", localAuthHandler.Redeem).Methods(http.MethodPost)

	// Game-account routes (all require a local session)
	game := api.NewRoute().Subrouter()
	game.Use(authMiddleware)
	game.HandleFunc("/auth/logout", localAuthHandler.Logout).Methods(http.MethodPost)
	game.HandleFunc("/login", accountHandler.Login).Methods(http.MethodPost)
	game.HandleFunc("/account", accountHandler.GetAccount).Methods(http.MethodPost)
	game.HandleFunc("/cars", accountHandler.GetCars).Methods(http.MethodPost)
	game.HandleFunc("/change-localid", accountHandler.ChangeLocalID).Methods(http.MethodPost)
	game.HandleFunc("/clone-account", accountHandler.CloneAccount).Methods(http.MethodPost)

	// Admin routes
	admin := api.NewRoute().Subrouter()
	admin.Use(authMiddleware)
	admin.Use(adminMiddleware)
	admin.HandleFunc("/keys", adminHandler.CreateKey).Methods(http.MethodPost)
	admin.HandleFunc("/keys", adminHandler.ListKeys).Methods(http.MethodGet)
	admin.HandleFunc("/keys/{code}", adminHandler.DeleteKey).Methods(http.MethodDelete)
	admin.HandleFunc("/operations", adminHandler.ListOperations).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
