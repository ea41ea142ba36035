package cache

import (
	"go.uber.org/zap"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/infrastructure/config"
)

// NewIdempotencyStore builds a store from configuration. Redis is preferred
// when enabled; on connection failure the store falls back to in-memory so a
// missing Redis never blocks webhook processing, at the cost of dedupe being
// per-instance.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory idempotency store",
			zap.Error(err))
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("using redis idempotency store",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
	return store
}
