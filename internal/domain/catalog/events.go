package catalog

import (
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCatalog = "Catalog"

// Event type constants
const (
	EventTypeCatalogSynchronized = "CatalogSynchronized"
	EventTypeCatalogSyncFailed   = "CatalogSyncFailed"
)

// CatalogSynchronizedEvent is published after a sync pass completed
type CatalogSynchronizedEvent struct {
	shared.BaseDomainEvent
	CatalogID  uuid.UUID `json:"catalog_id"`
	Generation int64     `json:"generation"`
	Stats      SyncStats `json:"stats"`
}

// NewCatalogSynchronizedEvent creates a new CatalogSynchronizedEvent
func NewCatalogSynchronizedEvent(c *Catalog, stats SyncStats) *CatalogSynchronizedEvent {
	return &CatalogSynchronizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogSynchronized, AggregateTypeCatalog, c.ID, c.MerchantID),
		CatalogID:       c.ID,
		Generation:      c.SyncGeneration,
		Stats:           stats,
	}
}

// CatalogSyncFailedEvent is published when a sync pass aborted
type CatalogSyncFailedEvent struct {
	shared.BaseDomainEvent
	CatalogID uuid.UUID `json:"catalog_id"`
	Reason    string    `json:"reason"`
}

// NewCatalogSyncFailedEvent creates a new CatalogSyncFailedEvent
func NewCatalogSyncFailedEvent(merchantID, catalogID uuid.UUID, reason string) *CatalogSyncFailedEvent {
	return &CatalogSyncFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogSyncFailed, AggregateTypeCatalog, catalogID, merchantID),
		CatalogID:       catalogID,
		Reason:          reason,
	}
}
