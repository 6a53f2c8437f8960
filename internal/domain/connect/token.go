package connect

import (
	"context"
	"time"
)

// TokenRecord holds the credential issued by a provider for this user.
// A record exists for a provider iff at least one authorization or refresh
// has succeeded for it.
type TokenRecord struct {
	ProviderID   ProviderCode `json:"provider_id"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time    `json:"expires_at"`
	GrantedScope string       `json:"scope,omitempty"`
}

// IsExpired returns true if the access token has passed its expiry at the
// given instant
func (t *TokenRecord) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// PendingAuthorization is the ephemeral state for one in-flight authorize
// redirect. It is created when the user initiates a connect action and
// consumed, match or not, when the callback arrives.
type PendingAuthorization struct {
	ProviderID ProviderCode `json:"provider_id"`
	StateNonce string       `json:"state_nonce"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CredentialStore persists one TokenRecord per connected provider.
type CredentialStore interface {
	// Get returns the stored record, or (nil, nil) when none exists
	Get(ctx context.Context, provider ProviderCode) (*TokenRecord, error)
	// Put overwrites any existing record for the provider
	Put(ctx context.Context, record *TokenRecord) error
	// Clear removes the record; clearing an absent record is not an error
	Clear(ctx context.Context, provider ProviderCode) error
}

// AuthStateStore persists at most one PendingAuthorization per provider.
type AuthStateStore interface {
	// PutPending stores the pending authorization, replacing any prior one
	PutPending(ctx context.Context, pending *PendingAuthorization) error
	// TakePending removes and returns the pending authorization,
	// or (nil, nil) when none exists
	TakePending(ctx context.Context, provider ProviderCode) (*PendingAuthorization, error)
}

// Store combines credential and authorization-state persistence. Backends in
// the infrastructure layer implement both over the same keyspace.
type Store interface {
	CredentialStore
	AuthStateStore
}
