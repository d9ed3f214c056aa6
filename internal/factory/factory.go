package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wordduel/wordduel/internal/auth"
	"github.com/wordduel/wordduel/internal/coordinator"
	"github.com/wordduel/wordduel/internal/dependencies/clock"
	"github.com/wordduel/wordduel/internal/dependencies/random"
	"github.com/wordduel/wordduel/internal/directory"
	dirmemory "github.com/wordduel/wordduel/internal/directory/memory"
	dirredis "github.com/wordduel/wordduel/internal/directory/redis"
	"github.com/wordduel/wordduel/internal/keywords"
	kwmemory "github.com/wordduel/wordduel/internal/keywords/memory"
	kwredis "github.com/wordduel/wordduel/internal/keywords/redis"
	"github.com/wordduel/wordduel/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Backends
	Directory directory.Directory
	Keywords  keywords.Source

	// MemoryKeywords is set only with the memory backend, for loading
	// the keyword list from a file at startup
	MemoryKeywords *kwmemory.Source

	// Services
	Verifier    auth.Verifier
	Hub         *ws.Hub
	Coordinator *coordinator.Coordinator
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns sensible defaults for Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// Config holds configuration for the application factory
type Config struct {
	// JWTSecret signs and verifies connection credentials (required)
	JWTSecret string
	// GameConfig holds game timing policy (optional)
	// If zero value, defaults to coordinator.DefaultConfig()
	GameConfig coordinator.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *RedisConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWTSecret is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	app := &App{
		Clock:  clk,
		Random: rnd,
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		memKeywords := kwmemory.New(rnd)
		app.Directory = dirmemory.New()
		app.Keywords = memKeywords
		app.MemoryKeywords = memKeywords

	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		client, err := newRedisClient(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		app.Directory = dirredis.New(client)
		app.Keywords = kwredis.New(client)

	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	app.Verifier = auth.NewJWTVerifier(cfg.JWTSecret, clk)
	app.Hub = ws.NewHub(logger)
	app.Coordinator = coordinator.New(cfg.GameConfig, app.Directory, app.Keywords, clk, app.Hub, logger)

	return app, nil
}

// newRedisClient connects a shared client used by both Redis backends
func newRedisClient(cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
