// Package provider implements the outbound side of the Connect context:
// the OAuth token endpoints, authenticated REST calls against provider APIs,
// and the per-provider adapters that normalize raw payloads into canonical
// wellness records.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vesi/backend/internal/domain/connect"
)

// maxResponseSize is the maximum allowed response size from a provider API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Gateway performs token exchanges and authenticated requests against
// provider APIs. Token exchange and refresh happen here, behind the trusted
// backend boundary; client secrets never leave this process.
type Gateway struct {
	registry   *connect.Registry
	store      connect.CredentialStore
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// GatewayOption is a functional option for configuring the gateway
type GatewayOption func(*Gateway)

// WithHTTPClient sets the HTTP client used for provider calls
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithLogger sets the gateway logger
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithClock overrides the gateway's time source. Tests use this to pin
// expiry decisions to a fixed instant.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway creates a gateway over the given provider registry and
// credential store
func NewGateway(registry *connect.Registry, store connect.CredentialStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		registry: registry,
		store:    store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// tokenResponse is the provider token endpoint's JSON shape
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// Exchange trades an authorization code for a token record. The record is
// returned, not stored; the authorization flow owns the store write.
func (g *Gateway) Exchange(ctx context.Context, provider connect.ProviderCode, code string) (*connect.TokenRecord, error) {
	cfg, err := g.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	if !cfg.IsConfigured() {
		return nil, connect.ErrNotConfigured
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", cfg.RedirectURI)

	tr, err := g.doTokenRequest(ctx, cfg.TokenURL, form)
	if err != nil {
		if _, ok := connect.IsUpstreamError(err); ok {
			return nil, fmt.Errorf("%w: %v", connect.ErrTokenExchangeFailed, err)
		}
		return nil, err
	}

	return g.recordFromResponse(provider, tr, ""), nil
}

// Refresh exchanges the stored refresh token for a new token record. On
// success the new record is written to the store and returned; on any
// failure the record is cleared and ErrRefreshFailed is returned, so no
// partial state is ever left standing.
func (g *Gateway) Refresh(ctx context.Context, provider connect.ProviderCode) (*connect.TokenRecord, error) {
	cfg, err := g.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	record, err := g.store.Get(ctx, provider)
	if err != nil {
		return nil, err
	}
	if record == nil || record.RefreshToken == "" {
		_ = g.store.Clear(ctx, provider)
		return nil, connect.ErrRefreshFailed
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", record.RefreshToken)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)

	tr, err := g.doTokenRequest(ctx, cfg.TokenURL, form)
	if err != nil {
		g.logger.Warn("token refresh failed, clearing credential",
			zap.String("provider", provider.String()),
			zap.Error(err),
		)
		_ = g.store.Clear(ctx, provider)
		return nil, fmt.Errorf("%w: %v", connect.ErrRefreshFailed, err)
	}

	// Providers may omit the refresh token on refresh; keep the stored one
	fresh := g.recordFromResponse(provider, tr, record.RefreshToken)
	if err := g.store.Put(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// AuthorizedRequest issues one authenticated call against the provider API.
// An expired token is refreshed synchronously first. A 401 means the token
// was revoked server-side: the record is cleared and the caller must
// reauthorize. Exactly one attempt per call; no retries, no backoff.
func (g *Gateway) AuthorizedRequest(ctx context.Context, provider connect.ProviderCode, method, path string, query url.Values) (json.RawMessage, error) {
	cfg, err := g.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	record, err := g.store.Get(ctx, provider)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, connect.ErrNotConnected
	}

	if record.IsExpired(g.now()) {
		record, err = g.Refresh(ctx, provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", connect.ErrReauthorizationRequired, err)
		}
	}

	reqURL := strings.TrimRight(cfg.APIBaseURL, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+record.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", connect.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Token revoked upstream; local expiry was not authoritative
		_ = g.store.Clear(ctx, provider)
		return nil, connect.ErrReauthorizationRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, connect.NewUpstreamError(resp.StatusCode)
	}

	return json.RawMessage(body), nil
}

// doTokenRequest posts a form to a token endpoint and decodes the response
func (g *Gateway) doTokenRequest(ctx context.Context, tokenURL string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", connect.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, connect.NewUpstreamError(resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("provider: failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("provider: token response missing access_token")
	}
	return &tr, nil
}

// recordFromResponse builds a TokenRecord from a token endpoint response.
// fallbackRefresh fills in when the response omits refresh_token.
func (g *Gateway) recordFromResponse(provider connect.ProviderCode, tr *tokenResponse, fallbackRefresh string) *connect.TokenRecord {
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	return &connect.TokenRecord{
		ProviderID:   provider,
		AccessToken:  tr.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    g.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		GrantedScope: tr.Scope,
	}
}
