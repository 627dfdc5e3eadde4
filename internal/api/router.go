package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jashanpreetsinghdod/bankroom/internal/api/handler"
	"github.com/jashanpreetsinghdod/bankroom/internal/api/middleware"
	basemw "github.com/jashanpreetsinghdod/bankroom/internal/middleware"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/auth"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/ledger"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/presence"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/registry"
	"github.com/jashanpreetsinghdod/bankroom/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Registry    *registry.Service
	Ledger      *ledger.Service
	Presence    *presence.Service
	HubManager  *ws.HubManager
	Broadcaster *ws.Broadcaster
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Presence, cfg.Ledger, cfg.Broadcaster)
	wsHandler := handler.NewWSHandler(cfg.AuthService, cfg.Presence, cfg.Ledger, cfg.HubManager, cfg.Broadcaster, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := basemw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for creating users/logging in)
	api.HandleFunc("/auth/guest", authHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Protected auth routes
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", authHandler.GetMe).Methods(http.MethodGet)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{room_id}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{room_id}", roomHandler.Delete).Methods(http.MethodDelete)
	rooms.HandleFunc("/{room_id}/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/{room_id}/transfer", roomHandler.Transfer).Methods(http.MethodPost)
	rooms.HandleFunc("/{room_id}/bank", roomHandler.BankAdjust).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// WebSocket endpoint outside /api/v1; it authenticates itself before
	// the upgrade
	r.HandleFunc("/ws", wsHandler.Serve).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
