package wellness

import (
	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// DataSource identifies where a sync result came from
type DataSource string

const (
	// SourceLive means the records came from the provider API
	SourceLive DataSource = "live"
	// SourceFallback means the records are the static sample dataset
	SourceFallback DataSource = "fallback"
)

// ---------------------------------------------------------------------------
// Sync DTOs
// ---------------------------------------------------------------------------

// SyncResult carries the normalized records from one provider fetch along
// with their origin. Records are all live or all fallback, never blended.
type SyncResult struct {
	Provider connect.ProviderCode `json:"provider"`
	Kind     connect.RecordKind   `json:"kind"`
	Source   DataSource           `json:"source"`
	Records  []wellness.Record    `json:"records"`
}

// ---------------------------------------------------------------------------
// Insight DTOs
// ---------------------------------------------------------------------------

// PanelDescriptor summarizes one kind of synced data for a dashboard panel
type PanelDescriptor struct {
	Provider    connect.ProviderCode `json:"provider"`
	Kind        connect.RecordKind   `json:"kind"`
	Source      DataSource           `json:"source"`
	RecordCount int                  `json:"record_count"`
}
