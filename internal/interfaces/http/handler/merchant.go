package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/menusync/backend/internal/application/catalog"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"github.com/menusync/backend/internal/interfaces/http/dto"
)

// TokenManager connects merchants and renews their upstream credentials
type TokenManager interface {
	Connect(ctx context.Context, code string) (*merchant.Merchant, error)
	RefreshMerchant(ctx context.Context, merchantID uuid.UUID) (*merchant.Merchant, error)
}

// CatalogSynchronizer runs a full catalog synchronization for a merchant
type CatalogSynchronizer interface {
	Synchronize(ctx context.Context, merchantID uuid.UUID) (*catalogapp.SyncResult, error)
}

// MerchantHandler handles merchant onboarding and admin operations
type MerchantHandler struct {
	BaseHandler
	tokens TokenManager
	syncer CatalogSynchronizer
}

// NewMerchantHandler creates a new MerchantHandler
func NewMerchantHandler(tokens TokenManager, syncer CatalogSynchronizer) *MerchantHandler {
	return &MerchantHandler{
		tokens: tokens,
		syncer: syncer,
	}
}

// ConnectRequest carries the OAuth authorization code returned to the redirect URL
type ConnectRequest struct {
	Code string `json:"code" binding:"required,max=512"`
}

// MerchantResponse is the public view of a merchant. Credentials are never returned.
type MerchantResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ExternalMerchantID string     `json:"external_merchant_id"`
	Name               string     `json:"name"`
	Status             string     `json:"status"`
	TokenExpiresAt     time.Time  `json:"token_expires_at"`
	LastRefreshedAt    *time.Time `json:"last_refreshed_at,omitempty"`
}

func toMerchantResponse(m *merchant.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:                 m.ID,
		ExternalMerchantID: m.ExternalMerchantID,
		Name:               m.Name,
		Status:             string(m.Status),
		TokenExpiresAt:     m.Credential.ExpiresAt,
		LastRefreshedAt:    m.LastRefreshedAt,
	}
}

// Connect exchanges an authorization code and registers or reconnects the merchant
func (h *MerchantHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.tokens.Connect(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMerchantResponse(m))
}

// Sync runs a manual catalog synchronization and returns its result
func (h *MerchantHandler) Sync(c *gin.Context) {
	var req dto.IDRequest
	if !h.BindURI(c, &req) {
		return
	}
	merchantID := parseUUID(req.ID)

	ctx := logger.WithMerchantID(c.Request.Context(), merchantID.String())
	ctx = telemetry.WithTrigger(ctx, telemetry.TriggerManual)
	result, err := h.syncer.Synchronize(ctx, merchantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RefreshToken renews the merchant's upstream credential now
func (h *MerchantHandler) RefreshToken(c *gin.Context) {
	var req dto.IDRequest
	if !h.BindURI(c, &req) {
		return
	}
	merchantID := parseUUID(req.ID)

	ctx := logger.WithMerchantID(c.Request.Context(), merchantID.String())
	m, err := h.tokens.RefreshMerchant(ctx, merchantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMerchantResponse(m))
}
