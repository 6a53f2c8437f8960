// Package credstore provides the credential store backends: an in-memory map
// for tests and single instances, a Redis keyspace, and a sqlite-backed file
// store for durable single-tenant storage. All backends share the same key
// layout: token_{provider} for credentials and oauth_state_{provider} for
// pending authorizations.
package credstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vesi/backend/internal/domain/connect"
)

// pendingAuthTTL bounds how long an in-flight authorize redirect stays valid
const pendingAuthTTL = 10 * time.Minute

// tokenKey returns the storage key for a provider's token record
func tokenKey(provider connect.ProviderCode) string {
	return "token_" + provider.String()
}

// stateKey returns the storage key for a provider's pending authorization
func stateKey(provider connect.ProviderCode) string {
	return "oauth_state_" + provider.String()
}

// storedToken is the persisted token layout
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope,omitempty"`
}

// encodeToken serializes a TokenRecord into its persisted layout
func encodeToken(record *connect.TokenRecord) ([]byte, error) {
	data, err := json.Marshal(storedToken{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.ExpiresAt,
		Scope:        record.GrantedScope,
	})
	if err != nil {
		return nil, fmt.Errorf("credstore: failed to marshal token: %w", err)
	}
	return data, nil
}

// decodeToken deserializes a persisted token for the given provider
func decodeToken(provider connect.ProviderCode, data []byte) (*connect.TokenRecord, error) {
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("credstore: failed to unmarshal token: %w", err)
	}
	return &connect.TokenRecord{
		ProviderID:   provider,
		AccessToken:  st.AccessToken,
		RefreshToken: st.RefreshToken,
		ExpiresAt:    st.ExpiresAt,
		GrantedScope: st.Scope,
	}, nil
}
