package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// Catalog is the per-merchant root that owns every mirrored catalog row.
// A merchant gets exactly one, created lazily before the first sync.
type Catalog struct {
	shared.MerchantAggregateRoot
	LastSyncedAt   *time.Time
	SyncGeneration int64
}

// NewCatalog creates an empty catalog for a merchant
func NewCatalog(merchantID uuid.UUID) (*Catalog, error) {
	if merchantID == uuid.Nil {
		return nil, shared.NotFoundf("merchant is required to create a catalog")
	}
	return &Catalog{
		MerchantAggregateRoot: shared.NewMerchantAggregateRoot(merchantID),
	}, nil
}

// MarkSynchronized records a completed sync pass and bumps the generation
func (c *Catalog) MarkSynchronized(at time.Time, stats SyncStats) {
	c.SyncGeneration++
	c.LastSyncedAt = &at
	c.UpdatedAt = at
	c.IncrementVersion()

	c.AddDomainEvent(NewCatalogSynchronizedEvent(c, stats))
}

// NeverSynced returns true until the first successful sync completes
func (c *Catalog) NeverSynced() bool {
	return c.LastSyncedAt == nil
}
