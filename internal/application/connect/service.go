// Package connect implements the authorization flow: it drives a provider's
// OAuth dance from the initial redirect through the callback, and owns the
// lifecycle of the stored credential.
package connect

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vesi/backend/internal/domain/connect"
)

// TokenExchanger trades authorization codes and refresh tokens for token
// records. The provider gateway implements it.
type TokenExchanger interface {
	Exchange(ctx context.Context, provider connect.ProviderCode, code string) (*connect.TokenRecord, error)
	Refresh(ctx context.Context, provider connect.ProviderCode) (*connect.TokenRecord, error)
}

// FlowService manages the OAuth authorization flow for all providers
type FlowService struct {
	registry  *connect.Registry
	store     connect.Store
	exchanger TokenExchanger
	logger    *zap.Logger
	now       func() time.Time
}

// FlowOption is a functional option for configuring the flow service
type FlowOption func(*FlowService)

// WithLogger sets the flow service logger
func WithLogger(logger *zap.Logger) FlowOption {
	return func(s *FlowService) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for pending-auth timestamps
func WithClock(now func() time.Time) FlowOption {
	return func(s *FlowService) {
		s.now = now
	}
}

// NewFlowService creates a new FlowService
func NewFlowService(registry *connect.Registry, store connect.Store, exchanger TokenExchanger, opts ...FlowOption) *FlowService {
	s := &FlowService{
		registry:  registry,
		store:     store,
		exchanger: exchanger,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Authorization flow
// ---------------------------------------------------------------------------

// BeginAuthorization starts the authorize flow for a provider. It generates a
// state nonce, records the pending authorization, and returns the provider's
// authorize URL for the caller to redirect to. An unknown or unconfigured
// provider writes no state at all.
func (s *FlowService) BeginAuthorization(ctx context.Context, provider connect.ProviderCode) (string, error) {
	cfg, err := s.registry.Get(provider)
	if err != nil {
		return "", err
	}
	if !cfg.IsConfigured() {
		return "", connect.ErrNotConfigured
	}

	nonce := uuid.New().String()
	pending := &connect.PendingAuthorization{
		ProviderID: provider,
		StateNonce: nonce,
		CreatedAt:  s.now(),
	}
	if err := s.store.PutPending(ctx, pending); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", cfg.ScopeString())
	params.Set("state", nonce)

	s.logger.Info("authorization started",
		zap.String("provider", provider.String()),
	)
	return cfg.AuthorizeURL + "?" + params.Encode(), nil
}

// CompleteAuthorization handles the provider callback. The pending
// authorization is consumed whether or not the state matches, so a nonce can
// never be replayed. A token record is written only after the state matched
// and the code exchange succeeded.
func (s *FlowService) CompleteAuthorization(ctx context.Context, provider connect.ProviderCode, code, state string) (*ConnectionResult, error) {
	cfg, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	if code == "" || state == "" {
		return nil, connect.ErrMissingParameter
	}

	pending, err := s.store.TakePending(ctx, provider)
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.StateNonce != state {
		s.logger.Warn("state mismatch on callback",
			zap.String("provider", provider.String()),
		)
		return nil, connect.ErrStateMismatch
	}

	record, err := s.exchanger.Exchange(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("connect: failed to store token: %w", err)
	}

	s.logger.Info("provider connected",
		zap.String("provider", provider.String()),
	)
	return &ConnectionResult{
		ProviderID:          provider,
		ProviderDisplayName: cfg.DisplayName,
	}, nil
}

// Disconnect removes the stored credential for a provider. Disconnecting a
// provider that is not connected is not an error.
func (s *FlowService) Disconnect(ctx context.Context, provider connect.ProviderCode) error {
	if _, err := s.registry.Get(provider); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, provider); err != nil {
		return err
	}
	s.logger.Info("provider disconnected",
		zap.String("provider", provider.String()),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Connection state
// ---------------------------------------------------------------------------

// IsConnected reports whether a usable credential exists for the provider.
// An expired credential counts only if a synchronous refresh succeeds.
func (s *FlowService) IsConnected(ctx context.Context, provider connect.ProviderCode) bool {
	record, err := s.store.Get(ctx, provider)
	if err != nil || record == nil {
		return false
	}
	if !record.IsExpired(s.now()) {
		return true
	}
	if _, err := s.exchanger.Refresh(ctx, provider); err != nil {
		return false
	}
	return true
}

// Connections returns the connect-panel status for every known provider
func (s *FlowService) Connections(ctx context.Context) []ConnectionStatus {
	configs := s.registry.All()
	statuses := make([]ConnectionStatus, 0, len(configs))
	for _, cfg := range configs {
		connected := false
		if cfg.IsConfigured() {
			record, err := s.store.Get(ctx, cfg.ID)
			connected = err == nil && record != nil
		}
		statuses = append(statuses, ConnectionStatus{
			ProviderID:  cfg.ID,
			DisplayName: cfg.DisplayName,
			Configured:  cfg.IsConfigured(),
			Connected:   connected,
		})
	}
	return statuses
}
