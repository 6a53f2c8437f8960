package connect

import "github.com/vesi/backend/internal/domain/connect"

// ---------------------------------------------------------------------------
// Connection DTOs
// ---------------------------------------------------------------------------

// ConnectionStatus describes one provider for the connect panel
type ConnectionStatus struct {
	ProviderID  connect.ProviderCode `json:"provider_id"`
	DisplayName string               `json:"display_name"`
	Configured  bool                 `json:"configured"`
	Connected   bool                 `json:"connected"`
}

// ConnectionResult is the outcome of a completed authorization
type ConnectionResult struct {
	ProviderID          connect.ProviderCode `json:"provider_id"`
	ProviderDisplayName string               `json:"provider_display_name"`
}
