package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// Variation is a priced option of an item (size, flavour).
// Its location overrides are replaced wholesale on every sync.
type Variation struct {
	SyncedEntity
	ItemID    uuid.UUID
	Name      string
	Price     valueobject.Money
	Overrides []LocationPriceOverride
}

// NewVariationFromUpstream creates a variation on first encounter of an external ID
func NewVariationFromUpstream(catalogID, itemID uuid.UUID, externalID string, upstreamOrdinal int, name string, price valueobject.Money) (*Variation, error) {
	base, err := newSyncedEntity(catalogID, externalID, upstreamOrdinal)
	if err != nil {
		return nil, err
	}
	v := &Variation{SyncedEntity: base, ItemID: itemID}
	v.ApplyUpstream(itemID, upstreamOrdinal, name, price)
	return v, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (v *Variation) ApplyUpstream(itemID uuid.UUID, ordinal int, name string, price valueobject.Money) bool {
	changed := assign(&v.ItemID, itemID)
	changed = assign(&v.Ordinal, ordinal) || changed
	changed = assign(&v.Name, strings.TrimSpace(name)) || changed
	if !v.Price.Equals(price) {
		v.Price = price
		changed = true
	}
	if changed {
		v.Touch()
	}
	return changed
}

// ReplaceOverrides swaps the full override set and reports whether it differs from the current one
func (v *Variation) ReplaceOverrides(overrides []LocationPriceOverride) (bool, error) {
	if err := validateOverrides(OverrideOwnerVariation, v.ID, v.Price, overrides); err != nil {
		return false, err
	}
	if SameOverrides(v.Overrides, overrides) {
		return false, nil
	}
	v.Overrides = overrides
	return true, nil
}

// PriceAt resolves the effective price of this variation at a location
func (v *Variation) PriceAt(locationID uuid.UUID) valueobject.Money {
	return ResolvePrice(v.Price, v.ID, locationID, v.Overrides)
}
