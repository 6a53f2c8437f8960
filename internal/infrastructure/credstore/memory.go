package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/vesi/backend/internal/domain/connect"
)

// MemoryStore implements connect.Store using in-process maps.
// This is suitable for single-instance deployments and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	tokens  map[string][]byte
	pending map[string]pendingEntry
}

type pendingEntry struct {
	auth      connect.PendingAuthorization
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:  make(map[string][]byte),
		pending: make(map[string]pendingEntry),
	}
}

// Get returns the stored record, or (nil, nil) when none exists
func (s *MemoryStore) Get(ctx context.Context, provider connect.ProviderCode) (*connect.TokenRecord, error) {
	s.mu.RLock()
	data, ok := s.tokens[tokenKey(provider)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeToken(provider, data)
}

// Put overwrites any existing record for the provider
func (s *MemoryStore) Put(ctx context.Context, record *connect.TokenRecord) error {
	data, err := encodeToken(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tokens[tokenKey(record.ProviderID)] = data
	s.mu.Unlock()
	return nil
}

// Clear removes the record; clearing an absent record is not an error
func (s *MemoryStore) Clear(ctx context.Context, provider connect.ProviderCode) error {
	s.mu.Lock()
	delete(s.tokens, tokenKey(provider))
	s.mu.Unlock()
	return nil
}

// PutPending stores the pending authorization, replacing any prior one
func (s *MemoryStore) PutPending(ctx context.Context, pending *connect.PendingAuthorization) error {
	s.mu.Lock()
	s.pending[stateKey(pending.ProviderID)] = pendingEntry{
		auth:      *pending,
		expiresAt: time.Now().Add(pendingAuthTTL),
	}
	s.mu.Unlock()
	return nil
}

// TakePending removes and returns the pending authorization, or (nil, nil)
// when none exists or it has expired
func (s *MemoryStore) TakePending(ctx context.Context, provider connect.ProviderCode) (*connect.PendingAuthorization, error) {
	key := stateKey(provider)
	s.mu.Lock()
	entry, ok := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	auth := entry.auth
	return &auth, nil
}

// Ensure MemoryStore implements the store ports
var _ connect.Store = (*MemoryStore)(nil)
