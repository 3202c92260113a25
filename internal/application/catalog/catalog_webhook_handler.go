package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Synchronizer runs a catalog sync for one merchant
type Synchronizer interface {
	Synchronize(ctx context.Context, merchantID uuid.UUID) (*SyncResult, error)
}

// CatalogWebhookHandler resyncs a merchant's catalog when the upstream reports a new
// catalog version
type CatalogWebhookHandler struct {
	syncer Synchronizer
	logger *zap.Logger
}

// NewCatalogWebhookHandler creates a new handler for catalog.version.updated webhooks
func NewCatalogWebhookHandler(syncer Synchronizer, logger *zap.Logger) *CatalogWebhookHandler {
	return &CatalogWebhookHandler{syncer: syncer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CatalogWebhookHandler) EventTypes() []string {
	return []string{integration.WebhookCatalogVersionUpdated}
}

// Handle runs a full sync. A run already in progress for the merchant absorbs the
// notification and is not an error.
func (h *CatalogWebhookHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	received, ok := event.(*integration.WebhookReceivedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %T",
			integration.WebhookCatalogVersionUpdated, event)
	}

	ctx = telemetry.WithTrigger(ctx, telemetry.TriggerWebhook)
	log := logger.Enrich(logger.WithMerchantID(ctx, event.MerchantID().String()), h.logger).
		With(zap.String("event_id", received.UpstreamEventID))

	result, err := h.syncer.Synchronize(ctx, event.MerchantID())
	if errors.Is(err, shared.ErrSyncInProgress) {
		log.Info("Catalog sync already running, webhook absorbed")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("Catalog resynced from webhook", zap.Int("writes", result.Writes))
	return nil
}

var _ shared.EventHandler = (*CatalogWebhookHandler)(nil)
