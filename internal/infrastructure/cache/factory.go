package cache

import (
	"fmt"
	"time"

	"github.com/pohub/backend/internal/domain/shared"
	"github.com/pohub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResultCacheFactory builds a result cache from configuration
type ResultCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	dialTimeout           time.Duration
}

// FactoryOption configures the factory
type FactoryOption func(*ResultCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *ResultCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *ResultCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithDialTimeout bounds the Redis connection check
func WithDialTimeout(d time.Duration) FactoryOption {
	return func(f *ResultCacheFactory) {
		f.dialTimeout = d
	}
}

// NewResultCacheFactory creates a new factory
func NewResultCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *ResultCacheFactory {
	f := &ResultCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects to the configured Redis
func (f *ResultCacheFactory) CreateRedisCache() (shared.ResultCache, error) {
	c, err := NewRedisResultCache(RedisConfig{
		Addr:        f.redisConfig.Addr(),
		Password:    f.redisConfig.Password,
		DB:          f.redisConfig.DB,
		DialTimeout: f.dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis result cache: %w", err)
	}
	return c, nil
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise the in-memory cache
func (f *ResultCacheFactory) CreateCache() (shared.ResultCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory result cache")
		return NewInMemoryResultCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis result cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for result cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory result cache. "+
		"Retried imports are only deduplicated per instance.",
		zap.Error(err),
	)
	return NewInMemoryResultCache(), nil
}
