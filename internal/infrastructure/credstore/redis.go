package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vesi/backend/internal/domain/connect"
)

// RedisStore implements connect.Store using Redis. This is suitable when the
// service runs as more than one instance sharing credential state.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStore creates a new Redis-backed credential store
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("credstore: failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		keyPrefix: "vesi:connect:",
	}, nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "vesi:connect:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the stored record, or (nil, nil) when none exists
func (s *RedisStore) Get(ctx context.Context, provider connect.ProviderCode) (*connect.TokenRecord, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+tokenKey(provider)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: failed to get token: %w", err)
	}
	return decodeToken(provider, data)
}

// Put overwrites any existing record for the provider
func (s *RedisStore) Put(ctx context.Context, record *connect.TokenRecord) error {
	data, err := encodeToken(record)
	if err != nil {
		return err
	}
	// Keep the record well past access-token expiry so the refresh token
	// survives; refresh rewrites the key and renews the TTL
	ttl := time.Until(record.ExpiresAt) + 90*24*time.Hour
	if err := s.client.Set(ctx, s.keyPrefix+tokenKey(record.ProviderID), data, ttl).Err(); err != nil {
		return fmt.Errorf("credstore: failed to save token: %w", err)
	}
	return nil
}

// Clear removes the record; clearing an absent record is not an error
func (s *RedisStore) Clear(ctx context.Context, provider connect.ProviderCode) error {
	if err := s.client.Del(ctx, s.keyPrefix+tokenKey(provider)).Err(); err != nil {
		return fmt.Errorf("credstore: failed to delete token: %w", err)
	}
	return nil
}

// PutPending stores the pending authorization with a TTL
func (s *RedisStore) PutPending(ctx context.Context, pending *connect.PendingAuthorization) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("credstore: failed to marshal pending authorization: %w", err)
	}
	key := s.keyPrefix + stateKey(pending.ProviderID)
	if err := s.client.Set(ctx, key, data, pendingAuthTTL).Err(); err != nil {
		return fmt.Errorf("credstore: failed to save pending authorization: %w", err)
	}
	return nil
}

// TakePending removes and returns the pending authorization, or (nil, nil)
// when none exists
func (s *RedisStore) TakePending(ctx context.Context, provider connect.ProviderCode) (*connect.PendingAuthorization, error) {
	key := s.keyPrefix + stateKey(provider)
	data, err := s.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: failed to take pending authorization: %w", err)
	}
	var pending connect.PendingAuthorization
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("credstore: failed to unmarshal pending authorization: %w", err)
	}
	return &pending, nil
}

// Close releases the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements the store ports
var _ connect.Store = (*RedisStore)(nil)
