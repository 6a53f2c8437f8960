package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appconnect "github.com/vesi/backend/internal/application/connect"
	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/interfaces/http/dto"
)

// FlowManager is the authorization flow surface the connect handler drives
type FlowManager interface {
	BeginAuthorization(ctx context.Context, provider connect.ProviderCode) (string, error)
	CompleteAuthorization(ctx context.Context, provider connect.ProviderCode, code, state string) (*appconnect.ConnectionResult, error)
	Disconnect(ctx context.Context, provider connect.ProviderCode) error
	Connections(ctx context.Context) []appconnect.ConnectionStatus
}

// ConnectHandler handles the provider connect endpoints
type ConnectHandler struct {
	BaseHandler
	flow FlowManager
}

// NewConnectHandler creates a new ConnectHandler
func NewConnectHandler(flow FlowManager) *ConnectHandler {
	return &ConnectHandler{flow: flow}
}

// RegisterRoutes registers connect routes
func (h *ConnectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/connect")
	{
		group.GET("/providers", h.ListProviders)
		group.GET("/callback", h.Callback)
		group.POST("/:provider", h.Begin)
		group.DELETE("/:provider", h.Disconnect)
	}
}

// ListProviders returns the connect-panel status for every provider
func (h *ConnectHandler) ListProviders(c *gin.Context) {
	h.Success(c, h.flow.Connections(c.Request.Context()))
}

// beginResponse carries the authorize URL for SPA callers that follow it
// themselves instead of honoring the Location header
type beginResponse struct {
	AuthorizeURL string `json:"authorize_url"`
}

// Begin starts the authorize flow and redirects to the provider
func (h *ConnectHandler) Begin(c *gin.Context) {
	provider := connect.ProviderCode(c.Param("provider"))

	authorizeURL, err := h.flow.BeginAuthorization(c.Request.Context(), provider)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	c.Header("Location", authorizeURL)
	c.JSON(http.StatusFound, dto.NewSuccessResponse(beginResponse{AuthorizeURL: authorizeURL}))
}

// Callback completes the authorize flow from the provider redirect
func (h *ConnectHandler) Callback(c *gin.Context) {
	if denied := c.Query("error"); denied != "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeMissingParameter, "authorization denied: "+denied)
		return
	}

	provider := connect.ProviderCode(c.Query("provider"))
	if provider == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeMissingParameter, "provider query parameter is required")
		return
	}

	result, err := h.flow.CompleteAuthorization(
		c.Request.Context(),
		provider,
		c.Query("code"),
		c.Query("state"),
	)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Disconnect removes the stored credential for a provider
func (h *ConnectHandler) Disconnect(c *gin.Context) {
	provider := connect.ProviderCode(c.Param("provider"))

	if err := h.flow.Disconnect(c.Request.Context(), provider); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}
