package provider

import (
	"context"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// Adapter fetches one kind of record from one provider and maps the raw
// payload into canonical wellness records. Every adapter also carries a
// deterministic fallback dataset so panels can always render.
type Adapter interface {
	// Provider returns the provider this adapter talks to
	Provider() connect.ProviderCode
	// Kind returns the canonical record kind this adapter produces
	Kind() connect.RecordKind
	// Fetch performs the authenticated fetch and normalizes the payload
	Fetch(ctx context.Context, gw *Gateway) ([]wellness.Record, error)
	// Fallback returns the static sample dataset for this provider/kind.
	// Repeated calls yield identical records.
	Fallback() []wellness.Record
}

// AdapterSet indexes adapters by provider and kind
type AdapterSet struct {
	adapters map[connect.ProviderCode]map[connect.RecordKind]Adapter
}

// NewAdapterSet builds the set from the given adapters
func NewAdapterSet(adapters ...Adapter) *AdapterSet {
	s := &AdapterSet{
		adapters: make(map[connect.ProviderCode]map[connect.RecordKind]Adapter),
	}
	for _, a := range adapters {
		byKind, ok := s.adapters[a.Provider()]
		if !ok {
			byKind = make(map[connect.RecordKind]Adapter)
			s.adapters[a.Provider()] = byKind
		}
		byKind[a.Kind()] = a
	}
	return s
}

// DefaultAdapterSet returns the full adapter catalog
func DefaultAdapterSet() *AdapterSet {
	return NewAdapterSet(
		NewStravaAdapter(),
		NewGoogleCalendarAdapter(),
		NewSpotifyAdapter(),
		NewMyFitnessPalAdapter(),
		NewYouVersionAdapter(),
	)
}

// Get returns the adapter for a provider and kind, or false when the
// combination is not supported
func (s *AdapterSet) Get(provider connect.ProviderCode, kind connect.RecordKind) (Adapter, bool) {
	byKind, ok := s.adapters[provider]
	if !ok {
		return nil, false
	}
	a, ok := byKind[kind]
	return a, ok
}

// kindOrder fixes the iteration order for Kinds
var kindOrder = []connect.RecordKind{
	connect.KindActivity,
	connect.KindCalendarEvent,
	connect.KindListeningSession,
	connect.KindNutritionLog,
	connect.KindReadingProgress,
}

// Kinds returns the record kinds supported for a provider, in a stable order
func (s *AdapterSet) Kinds(provider connect.ProviderCode) []connect.RecordKind {
	byKind, ok := s.adapters[provider]
	if !ok {
		return nil
	}
	kinds := make([]connect.RecordKind, 0, len(byKind))
	for _, k := range kindOrder {
		if _, ok := byKind[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
