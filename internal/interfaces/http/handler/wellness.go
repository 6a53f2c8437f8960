package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	appwellness "github.com/vesi/backend/internal/application/wellness"
	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// Syncer is the sync pipeline surface the data handler drives
type Syncer interface {
	FetchAndNormalize(ctx context.Context, provider connect.ProviderCode, kind connect.RecordKind) (*appwellness.SyncResult, error)
}

// Aggregator is the insight surface the insight handler drives
type Aggregator interface {
	Insights(ctx context.Context, asOf time.Time) (*wellness.InsightSet, error)
	Panels(ctx context.Context) ([]appwellness.PanelDescriptor, error)
}

// WellnessHandler handles the data sync and insight endpoints
type WellnessHandler struct {
	BaseHandler
	sync     Syncer
	insights Aggregator
}

// NewWellnessHandler creates a new WellnessHandler
func NewWellnessHandler(sync Syncer, insights Aggregator) *WellnessHandler {
	return &WellnessHandler{sync: sync, insights: insights}
}

// RegisterRoutes registers data and insight routes
func (h *WellnessHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/data/:provider/:kind", h.GetData)
	rg.GET("/insights", h.GetInsights)
	rg.GET("/panels", h.GetPanels)
}

// GetData fetches and normalizes one provider's records of one kind
func (h *WellnessHandler) GetData(c *gin.Context) {
	provider := connect.ProviderCode(c.Param("provider"))
	kind := connect.RecordKind(c.Param("kind"))

	if !kind.IsValid() {
		h.BadRequest(c, "unknown record kind: "+kind.String())
		return
	}

	result, err := h.sync.FetchAndNormalize(c.Request.Context(), provider, kind)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}

// GetInsights computes the derived insight payload. An optional as_of query
// parameter (RFC3339) pins the aggregation window; it defaults to now.
func (h *WellnessHandler) GetInsights(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be RFC3339")
			return
		}
		asOf = parsed
	}

	set, err := h.insights.Insights(c.Request.Context(), asOf)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, set)
}

// GetPanels returns the per-kind panel descriptors for the dashboard
func (h *WellnessHandler) GetPanels(c *gin.Context) {
	panels, err := h.insights.Panels(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, panels)
}
