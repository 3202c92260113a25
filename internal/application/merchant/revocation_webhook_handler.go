package merchant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Revoker disconnects a merchant
type Revoker interface {
	Revoke(ctx context.Context, merchantID uuid.UUID) error
}

// RevocationWebhookHandler clears the credential of a merchant that disconnected the
// application upstream
type RevocationWebhookHandler struct {
	revoker Revoker
	logger  *zap.Logger
}

// NewRevocationWebhookHandler creates a new handler for oauth.authorization.revoked webhooks
func NewRevocationWebhookHandler(revoker Revoker, logger *zap.Logger) *RevocationWebhookHandler {
	return &RevocationWebhookHandler{revoker: revoker, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RevocationWebhookHandler) EventTypes() []string {
	return []string{integration.WebhookOAuthRevoked}
}

// Handle revokes the merchant
func (h *RevocationWebhookHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	received, ok := event.(*integration.WebhookReceivedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %T", integration.WebhookOAuthRevoked, event)
	}
	if err := h.revoker.Revoke(ctx, event.MerchantID()); err != nil {
		return err
	}
	logger.Enrich(logger.WithMerchantID(ctx, event.MerchantID().String()), h.logger).Info("Merchant revoked by upstream",
		zap.String("event_id", received.UpstreamEventID),
	)
	return nil
}

var _ shared.EventHandler = (*RevocationWebhookHandler)(nil)
