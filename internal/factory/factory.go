package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/clock"
	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/random"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/auth"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/ledger"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/presence"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/registry"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage/memory"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage/postgres"
	redisstorage "github.com/jashanpreetsinghdod/bankroom/internal/storage/redis"
	"github.com/jashanpreetsinghdod/bankroom/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	Accounts storage.AccountStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Per-room transaction serialization, shared by every service that
	// mutates rooms
	Locks *storage.RoomLocks

	// Services
	AuthService *auth.Service
	Registry    *registry.Service
	Ledger      *ledger.Service
	Presence    *presence.Service
	HubManager  *ws.HubManager
	Broadcaster *ws.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// PresenceConfig holds room lifecycle timings (optional)
	// If zero value, defaults to presence.DefaultConfig()
	PresenceConfig presence.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN, if set, moves user accounts to Postgres while rooms
	// stay in the selected room store
	PostgresDSN string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Use default configs if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	presenceCfg := cfg.PresenceConfig
	if presenceCfg.SweepInterval == 0 {
		presenceCfg = presence.DefaultConfig()
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
		// The sweep must delete (and broadcast room_deleted) before the
		// Redis key can lapse on its own
		redisCfg := cfg.RedisConfig.WithRoomTTLFloor(presenceCfg.RoomTTL)
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var accounts storage.AccountStore = store
	if cfg.PostgresDSN != "" {
		pgAccounts, err := postgres.New(context.Background(), cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		accounts = pgAccounts
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, accounts, clk, rnd, authCfg, presenceCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	accounts storage.AccountStore,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	presenceCfg presence.Config,
	logger *slog.Logger,
) *App {
	locks := storage.NewRoomLocks()

	hubManager := ws.NewHubManager(logger)
	broadcaster := ws.NewBroadcaster(hubManager, logger)

	authService := auth.New(accounts, clk, authCfg)
	registryService := registry.New(store, locks, broadcaster, clk, rnd, logger)
	ledgerService := ledger.New(store, locks, clk, logger)
	presenceService := presence.New(store, locks, registryService, clk, presenceCfg, logger)

	return &App{
		Storage:     store,
		Accounts:    accounts,
		Clock:       clk,
		Random:      rnd,
		Locks:       locks,
		AuthService: authService,
		Registry:    registryService,
		Ledger:      ledgerService,
		Presence:    presenceService,
		HubManager:  hubManager,
		Broadcaster: broadcaster,
	}
}
