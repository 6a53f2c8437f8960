package credstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/infrastructure/config"
)

// Factory creates credential stores based on configuration
type Factory struct {
	storageConfig       config.StorageConfig
	redisConfig         config.RedisConfig
	logger              *zap.Logger
	allowMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(storage config.StorageConfig, redis config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		storageConfig:       storage,
		redisConfig:         redis,
		logger:              zap.NewNop(),
		allowMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the credential store selected by storage.backend.
// A Redis backend falls back to the in-memory store when the server is
// unreachable and fallback is allowed.
// WARNING: the in-memory store loses all connections on restart.
func (f *Factory) CreateStore() (connect.Store, error) {
	switch f.storageConfig.Backend {
	case "memory":
		return NewMemoryStore(), nil

	case "file":
		store, err := NewFileStore(f.storageConfig.FilePath)
		if err != nil {
			return nil, fmt.Errorf("credstore: failed to open file store: %w", err)
		}
		return store, nil

	case "redis":
		store, err := NewRedisStore(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err != nil {
			if !f.allowMemoryFallback {
				return nil, err
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory credential store",
				zap.Error(err),
			)
			return NewMemoryStore(), nil
		}
		return store, nil

	default:
		return nil, fmt.Errorf("credstore: unknown backend %q", f.storageConfig.Backend)
	}
}
