package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jashanpreetsinghdod/bankroom/internal/api"
	"github.com/jashanpreetsinghdod/bankroom/internal/factory"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/presence"
	redisstorage "github.com/jashanpreetsinghdod/bankroom/internal/storage/redis"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:         logger,
		StorageType:    os.Getenv("STORAGE_TYPE"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		PresenceConfig: presenceConfigFromEnv(),
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
		Logger:      logger,
		AuthService: app.AuthService,
		Registry:    app.Registry,
		Ledger:      app.Ledger,
		Presence:    app.Presence,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			serverConfig.Port = p
		}
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

	// Start the room expiry sweeper
	go app.Presence.Run(ctx)

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

// presenceConfigFromEnv reads room lifecycle overrides from the environment
func presenceConfigFromEnv() presence.Config {
	cfg := presence.DefaultConfig()
	if d := durationEnv("ROOM_TTL"); d > 0 {
		cfg.RoomTTL = d
	}
	if d := durationEnv("EMPTY_GRACE_PERIOD"); d > 0 {
		cfg.EmptyGracePeriod = d
	}
	if d := durationEnv("SEAT_GRACE_PERIOD"); d > 0 {
		cfg.SeatGracePeriod = d
	}
	if d := durationEnv("SWEEP_INTERVAL"); d > 0 {
		cfg.SweepInterval = d
	}
	return cfg
}

func durationEnv(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
