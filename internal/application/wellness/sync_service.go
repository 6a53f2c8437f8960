// Package wellness implements the sync pipeline and the insight aggregator:
// authenticated provider fetches normalized into canonical records, with a
// deterministic fallback dataset per provider, and the derived weekly stats,
// achievements, and goal suggestions computed over those records.
package wellness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
	"github.com/vesi/backend/internal/infrastructure/provider"
)

// SyncService fetches and normalizes provider data. A failed fetch of any
// kind, auth, network, or parse, degrades to the provider's fallback dataset
// rather than surfacing the failure. Live and fallback records are never
// blended within one result.
type SyncService struct {
	gateway  *provider.Gateway
	adapters *provider.AdapterSet
	logger   *zap.Logger
}

// SyncOption is a functional option for configuring the sync service
type SyncOption func(*SyncService)

// WithLogger sets the sync service logger
func WithLogger(logger *zap.Logger) SyncOption {
	return func(s *SyncService) {
		s.logger = logger
	}
}

// NewSyncService creates a new SyncService
func NewSyncService(gateway *provider.Gateway, adapters *provider.AdapterSet, opts ...SyncOption) *SyncService {
	s := &SyncService{
		gateway:  gateway,
		adapters: adapters,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAndNormalize returns the canonical records for one provider and kind.
// On any fetch failure the adapter's fallback dataset is returned instead,
// with Source marking which one the caller got.
func (s *SyncService) FetchAndNormalize(ctx context.Context, providerCode connect.ProviderCode, kind connect.RecordKind) (*SyncResult, error) {
	if !providerCode.IsValid() {
		return nil, connect.ErrUnknownProvider
	}
	adapter, ok := s.adapters.Get(providerCode, kind)
	if !ok {
		return nil, fmt.Errorf("wellness: provider %s does not supply %s records", providerCode, kind)
	}

	records, err := adapter.Fetch(ctx, s.gateway)
	if err != nil {
		s.logger.Warn("provider fetch failed, serving fallback data",
			zap.String("provider", providerCode.String()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return &SyncResult{
			Provider: providerCode,
			Kind:     kind,
			Source:   SourceFallback,
			Records:  adapter.Fallback(),
		}, nil
	}

	wellness.SortByTimestamp(records)
	return &SyncResult{
		Provider: providerCode,
		Kind:     kind,
		Source:   SourceLive,
		Records:  records,
	}, nil
}

// FetchAll gathers records of every supported kind for a provider
func (s *SyncService) FetchAll(ctx context.Context, providerCode connect.ProviderCode) ([]*SyncResult, error) {
	kinds := s.adapters.Kinds(providerCode)
	if len(kinds) == 0 {
		return nil, connect.ErrUnknownProvider
	}
	results := make([]*SyncResult, 0, len(kinds))
	for _, kind := range kinds {
		result, err := s.FetchAndNormalize(ctx, providerCode, kind)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ProcessForPanel reduces a set of sync results into per-kind panel
// descriptors. The output is deterministic over the fallback datasets:
// repeated calls on fallback data yield identical descriptors.
func ProcessForPanel(results []*SyncResult) []PanelDescriptor {
	descriptors := make([]PanelDescriptor, 0, len(results))
	for _, r := range results {
		descriptors = append(descriptors, PanelDescriptor{
			Provider:    r.Provider,
			Kind:        r.Kind,
			Source:      r.Source,
			RecordCount: len(r.Records),
		})
	}
	return descriptors
}

// Records flattens sync results into one record slice, oldest first
func Records(results []*SyncResult) []wellness.Record {
	var out []wellness.Record
	for _, r := range results {
		out = append(out, r.Records...)
	}
	wellness.SortByTimestamp(out)
	return out
}
