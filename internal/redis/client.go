package redis

import (
	"context"
	"sync"

	"matchup-chat/internal/config"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
)

// Initialize creates the global Redis client singleton. Safe to call
// multiple times; only the first call takes effect.
func Initialize(cfg config.RedisConfig) {
	clientOnce.Do(func() {
		client = NewClient(cfg)
	})
}

// GetClient returns the singleton Redis client. Panics if Initialize()
// has not been called.
func GetClient() *redis.Client {
	if client == nil {
		panic("redis client not initialized. Call Initialize() first")
	}
	return client
}

func IsInitialized() bool {
	return client != nil
}

// NewClient creates a standalone client (use for tests or extra instances).
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies connectivity.
func Ping(ctx context.Context) error {
	return GetClient().Ping(ctx).Err()
}
