package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/infrastructure/credstore"
)

// testClock returns a fixed-instant clock
func testClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testRegistry(tokenURL, apiBaseURL string) *connect.Registry {
	return connect.NewRegistry([]*connect.ProviderConfig{
		{
			ID:           connect.ProviderStrava,
			DisplayName:  "Strava",
			AuthorizeURL: "https://example.invalid/authorize",
			TokenURL:     tokenURL,
			APIBaseURL:   apiBaseURL,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{"read"},
			RedirectURI:  "https://app.example/api/v1/connect/callback",
		},
		{
			ID:          connect.ProviderSpotify,
			DisplayName: "Spotify",
			TokenURL:    tokenURL,
			APIBaseURL:  apiBaseURL,
		},
	})
}

func tokenEndpoint(t *testing.T, respond func(form map[string]string) (int, any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		status, body := respond(form)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestGatewayExchange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("sets expiry from expires_in and does not store", func(t *testing.T) {
		var gotForm map[string]string
		srv := tokenEndpoint(t, func(form map[string]string) (int, any) {
			gotForm = form
			return http.StatusOK, map[string]any{
				"access_token":  "at",
				"refresh_token": "rt",
				"expires_in":    3600,
				"scope":         "read",
			}
		})
		defer srv.Close()

		store := credstore.NewMemoryStore()
		gw := NewGateway(testRegistry(srv.URL, srv.URL), store, WithClock(testClock(now)))

		record, err := gw.Exchange(ctx, connect.ProviderStrava, "the-code")
		require.NoError(t, err)

		assert.Equal(t, "authorization_code", gotForm["grant_type"])
		assert.Equal(t, "client-id", gotForm["client_id"])
		assert.Equal(t, "client-secret", gotForm["client_secret"])
		assert.Equal(t, "the-code", gotForm["code"])

		assert.Equal(t, "at", record.AccessToken)
		assert.Equal(t, "rt", record.RefreshToken)
		assert.True(t, record.ExpiresAt.Equal(now.Add(3600*time.Second)))

		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, stored, "exchange must leave the store write to the flow")
	})

	t.Run("upstream rejection maps to token exchange failure", func(t *testing.T) {
		srv := tokenEndpoint(t, func(map[string]string) (int, any) {
			return http.StatusBadRequest, map[string]any{"error": "invalid_grant"}
		})
		defer srv.Close()

		gw := NewGateway(testRegistry(srv.URL, srv.URL), credstore.NewMemoryStore())

		_, err := gw.Exchange(ctx, connect.ProviderStrava, "bad-code")
		assert.ErrorIs(t, err, connect.ErrTokenExchangeFailed)
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		gw := NewGateway(testRegistry("http://unused", "http://unused"), credstore.NewMemoryStore())

		_, err := gw.Exchange(ctx, connect.ProviderSpotify, "code")
		assert.ErrorIs(t, err, connect.ErrNotConfigured)
	})
}

func TestGatewayRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	seed := func(store connect.Store) {
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:   connect.ProviderStrava,
			AccessToken:  "old-at",
			RefreshToken: "old-rt",
			ExpiresAt:    now.Add(-time.Hour),
		})
	}

	t.Run("success stores the fresh record", func(t *testing.T) {
		srv := tokenEndpoint(t, func(form map[string]string) (int, any) {
			assert.Equal(t, "refresh_token", form["grant_type"])
			assert.Equal(t, "old-rt", form["refresh_token"])
			return http.StatusOK, map[string]any{
				"access_token":  "new-at",
				"refresh_token": "new-rt",
				"expires_in":    3600,
			}
		})
		defer srv.Close()

		store := credstore.NewMemoryStore()
		seed(store)
		gw := NewGateway(testRegistry(srv.URL, srv.URL), store, WithClock(testClock(now)))

		record, err := gw.Refresh(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Equal(t, "new-at", record.AccessToken)
		assert.Equal(t, "new-rt", record.RefreshToken)

		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "new-at", stored.AccessToken)
	})

	t.Run("omitted refresh token keeps the stored one", func(t *testing.T) {
		srv := tokenEndpoint(t, func(map[string]string) (int, any) {
			return http.StatusOK, map[string]any{
				"access_token": "new-at",
				"expires_in":   3600,
			}
		})
		defer srv.Close()

		store := credstore.NewMemoryStore()
		seed(store)
		gw := NewGateway(testRegistry(srv.URL, srv.URL), store, WithClock(testClock(now)))

		record, err := gw.Refresh(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Equal(t, "old-rt", record.RefreshToken)
	})

	t.Run("upstream failure clears the record", func(t *testing.T) {
		srv := tokenEndpoint(t, func(map[string]string) (int, any) {
			return http.StatusBadRequest, map[string]any{"error": "invalid_grant"}
		})
		defer srv.Close()

		store := credstore.NewMemoryStore()
		seed(store)
		gw := NewGateway(testRegistry(srv.URL, srv.URL), store)

		_, err := gw.Refresh(ctx, connect.ProviderStrava)
		assert.ErrorIs(t, err, connect.ErrRefreshFailed)

		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, stored, "failed refresh must leave no partial state")
	})

	t.Run("no stored record", func(t *testing.T) {
		gw := NewGateway(testRegistry("http://unused", "http://unused"), credstore.NewMemoryStore())

		_, err := gw.Refresh(ctx, connect.ProviderStrava)
		assert.ErrorIs(t, err, connect.ErrRefreshFailed)
	})
}

func TestGatewayAuthorizedRequest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("no record", func(t *testing.T) {
		gw := NewGateway(testRegistry("http://unused", "http://unused"), credstore.NewMemoryStore())

		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		assert.ErrorIs(t, err, connect.ErrNotConnected)
	})

	t.Run("valid token sends bearer header", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer api.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:  connect.ProviderStrava,
			AccessToken: "at",
			ExpiresAt:   now.Add(time.Hour),
		})
		gw := NewGateway(testRegistry("http://unused", api.URL), store, WithClock(testClock(now)))

		body, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	})

	t.Run("token expired one millisecond past expiry triggers refresh", func(t *testing.T) {
		issued := now
		expiry := issued.Add(3600 * time.Second)
		at := expiry.Add(time.Millisecond)

		refreshed := false
		tokenSrv := tokenEndpoint(t, func(map[string]string) (int, any) {
			refreshed = true
			return http.StatusOK, map[string]any{
				"access_token": "fresh-at",
				"expires_in":   3600,
			}
		})
		defer tokenSrv.Close()

		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer fresh-at", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{}`))
		}))
		defer api.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:   connect.ProviderStrava,
			AccessToken:  "stale-at",
			RefreshToken: "rt",
			ExpiresAt:    expiry,
		})
		gw := NewGateway(testRegistry(tokenSrv.URL, api.URL), store, WithClock(testClock(at)))

		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		require.NoError(t, err)
		assert.True(t, refreshed)
	})

	t.Run("failed refresh of expired token requires reauthorization", func(t *testing.T) {
		tokenSrv := tokenEndpoint(t, func(map[string]string) (int, any) {
			return http.StatusBadRequest, map[string]any{"error": "invalid_grant"}
		})
		defer tokenSrv.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:   connect.ProviderStrava,
			AccessToken:  "stale-at",
			RefreshToken: "rt",
			ExpiresAt:    now.Add(-time.Hour),
		})
		gw := NewGateway(testRegistry(tokenSrv.URL, "http://unused"), store, WithClock(testClock(now)))

		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		assert.ErrorIs(t, err, connect.ErrReauthorizationRequired)

		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("upstream 401 clears the record", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer api.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:  connect.ProviderStrava,
			AccessToken: "revoked-at",
			ExpiresAt:   now.Add(time.Hour),
		})
		gw := NewGateway(testRegistry("http://unused", api.URL), store, WithClock(testClock(now)))

		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		assert.ErrorIs(t, err, connect.ErrReauthorizationRequired)

		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("other upstream failures carry their status", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer api.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:  connect.ProviderStrava,
			AccessToken: "at",
			ExpiresAt:   now.Add(time.Hour),
		})
		gw := NewGateway(testRegistry("http://unused", api.URL), store, WithClock(testClock(now)))

		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete", nil)
		status, ok := connect.IsUpstreamError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, status.Status)

		// Non-401 failures do not clear the credential
		stored, err := store.Get(ctx, connect.ProviderStrava)
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})

	t.Run("query parameters are appended", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "50", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer api.Close()

		store := credstore.NewMemoryStore()
		_ = store.Put(ctx, &connect.TokenRecord{
			ProviderID:  connect.ProviderStrava,
			AccessToken: "at",
			ExpiresAt:   now.Add(time.Hour),
		})
		gw := NewGateway(testRegistry("http://unused", api.URL), store, WithClock(testClock(now)))

		q := url.Values{}
		q.Set("per_page", "50")
		_, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, http.MethodGet, "/athlete/activities", q)
		require.NoError(t, err)
	})
}
