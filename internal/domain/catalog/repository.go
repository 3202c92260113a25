package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CatalogRepository persists the per-merchant catalog root
type CatalogRepository interface {
	// FindByMerchant returns the merchant's catalog or shared.ErrNotFound
	FindByMerchant(ctx context.Context, merchantID uuid.UUID) (*Catalog, error)

	// Save creates or updates a catalog
	Save(ctx context.Context, c *Catalog) error
}

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*Category, error)

	// ListByCatalog returns categories ordered by ordinal then name
	ListByCatalog(ctx context.Context, catalogID uuid.UUID, onlyEnabled bool) ([]*Category, error)

	Save(ctx context.Context, c *Category) error
}

// ItemRepository persists items together with their presence rows
type ItemRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*Item, error)
	FindByID(ctx context.Context, catalogID, id uuid.UUID) (*Item, error)

	// ListByCatalog returns items ordered by ordinal then name
	ListByCatalog(ctx context.Context, catalogID uuid.UUID, onlyEnabled bool) ([]*Item, error)

	// Save writes the item row and replaces its presence rows in one transaction
	Save(ctx context.Context, item *Item) error
}

// VariationRepository persists variations together with their price overrides
type VariationRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*Variation, error)
	ListByItems(ctx context.Context, itemIDs []uuid.UUID) ([]*Variation, error)

	// Save writes the variation row and replaces its overrides in one transaction
	Save(ctx context.Context, v *Variation) error
}

// ModifierListRepository persists modifier lists
type ModifierListRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*ModifierList, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ModifierList, error)
	Save(ctx context.Context, l *ModifierList) error
}

// ModifierRepository persists modifiers together with presence rows and overrides
type ModifierRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*Modifier, error)
	ListByModifierLists(ctx context.Context, listIDs []uuid.UUID) ([]*Modifier, error)

	// Save writes the modifier row and replaces its presence rows and overrides in one transaction
	Save(ctx context.Context, m *Modifier) error
}

// LinkRepository persists item/modifier-list links
type LinkRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*ItemModifierListLink, error)
	ListByItems(ctx context.Context, itemIDs []uuid.UUID) ([]*ItemModifierListLink, error)
	Save(ctx context.Context, l *ItemModifierListLink) error
}

// ImageRepository persists image references
type ImageRepository interface {
	FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*CatalogImage, error)
	ListByParents(ctx context.Context, parentIDs []uuid.UUID) ([]*CatalogImage, error)
	Save(ctx context.Context, img *CatalogImage) error
}

// SyncLock serializes sync runs per merchant.
// Acquire returns shared.ErrSyncInProgress when another run holds the lock.
type SyncLock interface {
	Acquire(ctx context.Context, merchantID uuid.UUID, ttl time.Duration) (release func(), err error)
}
