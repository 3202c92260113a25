package location

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LocationRefresher re-reads one location from the upstream
type LocationRefresher interface {
	RefreshLocation(ctx context.Context, merchantID uuid.UUID, externalID string) (*location.Location, error)
}

// LocationWebhookHandler mirrors a location the upstream reports as created or updated
type LocationWebhookHandler struct {
	refresher LocationRefresher
	logger    *zap.Logger
}

// NewLocationWebhookHandler creates a new handler for location webhooks
func NewLocationWebhookHandler(refresher LocationRefresher, logger *zap.Logger) *LocationWebhookHandler {
	return &LocationWebhookHandler{refresher: refresher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LocationWebhookHandler) EventTypes() []string {
	return []string{integration.WebhookLocationCreated, integration.WebhookLocationUpdated}
}

// Handle refreshes the location named in the notification
func (h *LocationWebhookHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	received, ok := event.(*integration.WebhookReceivedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type for location webhook: %T", event)
	}
	if received.ObjectID == "" {
		return shared.Validationf("%s webhook %s carries no location id", event.EventType(), received.UpstreamEventID)
	}

	loc, err := h.refresher.RefreshLocation(ctx, event.MerchantID(), received.ObjectID)
	if err != nil {
		return err
	}
	logger.Enrich(logger.WithMerchantID(ctx, event.MerchantID().String()), h.logger).Debug("Location webhook handled",
		zap.String("event_id", received.UpstreamEventID),
		zap.String("location_id", loc.ID.String()),
	)
	return nil
}

var _ shared.EventHandler = (*LocationWebhookHandler)(nil)
