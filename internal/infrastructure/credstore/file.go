package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vesi/backend/internal/domain/connect"
)

// credentialRow is the sqlite key-value row backing the file store
type credentialRow struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

// TableName returns the database table name
func (credentialRow) TableName() string {
	return "credential_rows"
}

// FileStore implements connect.Store on a local sqlite database, the durable
// equivalent of the original product's browser-local key-value storage.
type FileStore struct {
	db *gorm.DB
}

// NewFileStore opens (creating if needed) the sqlite database at path
func NewFileStore(path string) (*FileStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("credstore: failed to open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&credentialRow{}); err != nil {
		return nil, fmt.Errorf("credstore: failed to migrate sqlite store: %w", err)
	}
	return &FileStore{db: db}, nil
}

// get reads a raw value by key, returning (nil, nil) when absent
func (s *FileStore) get(ctx context.Context, key string) ([]byte, error) {
	var row credentialRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: failed to read %q: %w", key, err)
	}
	return []byte(row.Value), nil
}

// put upserts a raw value by key
func (s *FileStore) put(ctx context.Context, key string, value []byte) error {
	row := credentialRow{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("credstore: failed to write %q: %w", key, err)
	}
	return nil
}

// del removes a key; deleting an absent key is not an error
func (s *FileStore) del(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&credentialRow{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("credstore: failed to delete %q: %w", key, err)
	}
	return nil
}

// Get returns the stored record, or (nil, nil) when none exists
func (s *FileStore) Get(ctx context.Context, provider connect.ProviderCode) (*connect.TokenRecord, error) {
	data, err := s.get(ctx, tokenKey(provider))
	if err != nil || data == nil {
		return nil, err
	}
	return decodeToken(provider, data)
}

// Put overwrites any existing record for the provider
func (s *FileStore) Put(ctx context.Context, record *connect.TokenRecord) error {
	data, err := encodeToken(record)
	if err != nil {
		return err
	}
	return s.put(ctx, tokenKey(record.ProviderID), data)
}

// Clear removes the record; clearing an absent record is not an error
func (s *FileStore) Clear(ctx context.Context, provider connect.ProviderCode) error {
	return s.del(ctx, tokenKey(provider))
}

// PutPending stores the pending authorization, replacing any prior one
func (s *FileStore) PutPending(ctx context.Context, pending *connect.PendingAuthorization) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("credstore: failed to marshal pending authorization: %w", err)
	}
	return s.put(ctx, stateKey(pending.ProviderID), data)
}

// TakePending removes and returns the pending authorization, or (nil, nil)
// when none exists or it is older than the pending-auth TTL
func (s *FileStore) TakePending(ctx context.Context, provider connect.ProviderCode) (*connect.PendingAuthorization, error) {
	key := stateKey(provider)
	data, err := s.get(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	if err := s.del(ctx, key); err != nil {
		return nil, err
	}
	var pending connect.PendingAuthorization
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("credstore: failed to unmarshal pending authorization: %w", err)
	}
	if time.Since(pending.CreatedAt) > pendingAuthTTL {
		return nil, nil
	}
	return &pending, nil
}

// Ensure FileStore implements the store ports
var _ connect.Store = (*FileStore)(nil)
