package credstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesi/backend/internal/domain/connect"
)

func TestMemoryStoreTokens(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("absent record reads as nil without error", func(t *testing.T) {
		record, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("put then get round trips", func(t *testing.T) {
		want := &connect.TokenRecord{
			ProviderID:   connect.ProviderStrava,
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresAt:    time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
			GrantedScope: "read",
		}
		require.NoError(t, store.Put(ctx, want))

		got, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.AccessToken, got.AccessToken)
		assert.Equal(t, want.RefreshToken, got.RefreshToken)
		assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
		assert.Equal(t, want.GrantedScope, got.GrantedScope)
	})

	t.Run("providers are isolated", func(t *testing.T) {
		record, err := store.Get(ctx, connect.ProviderSpotify)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &connect.TokenRecord{
			ProviderID:  connect.ProviderStrava,
			AccessToken: "newer",
		}))
		got, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Equal(t, "newer", got.AccessToken)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, connect.ProviderStrava))
		require.NoError(t, store.Clear(ctx, connect.ProviderStrava))

		record, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestMemoryStorePendingAuth(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("take without put yields nil", func(t *testing.T) {
		pending, err := store.TakePending(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("pending auth is single use", func(t *testing.T) {
		require.NoError(t, store.PutPending(ctx, &connect.PendingAuthorization{
			ProviderID: connect.ProviderStrava,
			StateNonce: "nonce-1",
			CreatedAt:  time.Now(),
		}))

		first, err := store.TakePending(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, "nonce-1", first.StateNonce)

		second, err := store.TakePending(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	t.Run("put replaces the prior pending auth", func(t *testing.T) {
		require.NoError(t, store.PutPending(ctx, &connect.PendingAuthorization{
			ProviderID: connect.ProviderStrava,
			StateNonce: "old",
		}))
		require.NoError(t, store.PutPending(ctx, &connect.PendingAuthorization{
			ProviderID: connect.ProviderStrava,
			StateNonce: "new",
		}))

		pending, err := store.TakePending(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.Equal(t, "new", pending.StateNonce)
	})
}
