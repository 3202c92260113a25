package catalog

import (
	"slices"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// OverrideOwnerType names the kind of entity a price override belongs to
type OverrideOwnerType string

const (
	OverrideOwnerVariation OverrideOwnerType = "VARIATION"
	OverrideOwnerModifier  OverrideOwnerType = "MODIFIER"
)

// LocationPriceOverride replaces the base price of a variation or modifier at one location.
// The currency is stored per override and must equal the owner's base currency.
type LocationPriceOverride struct {
	ID         uuid.UUID
	OwnerType  OverrideOwnerType
	OwnerID    uuid.UUID
	LocationID uuid.UUID
	Price      valueobject.Money
}

// NewLocationPriceOverride creates an override for an owner at a location
func NewLocationPriceOverride(ownerType OverrideOwnerType, ownerID, locationID uuid.UUID, price valueobject.Money) LocationPriceOverride {
	return LocationPriceOverride{
		ID:         uuid.New(),
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		LocationID: locationID,
		Price:      price,
	}
}

type overrideKey struct {
	ownerID    uuid.UUID
	locationID uuid.UUID
}

// PriceOverrideIndex answers price lookups keyed by (owner, location)
type PriceOverrideIndex map[overrideKey]valueobject.Money

// NewPriceOverrideIndex indexes a set of overrides. A later duplicate replaces an earlier one.
func NewPriceOverrideIndex(overrides ...[]LocationPriceOverride) PriceOverrideIndex {
	idx := make(PriceOverrideIndex)
	for _, set := range overrides {
		for _, o := range set {
			idx[overrideKey{ownerID: o.OwnerID, locationID: o.LocationID}] = o.Price
		}
	}
	return idx
}

// ResolvePrice returns the override price for (owner, location) or the base price when none exists
func (idx PriceOverrideIndex) ResolvePrice(base valueobject.Money, ownerID, locationID uuid.UUID) valueobject.Money {
	if price, ok := idx[overrideKey{ownerID: ownerID, locationID: locationID}]; ok {
		return price
	}
	return base
}

// ResolvePrice is the single-owner form of PriceOverrideIndex.ResolvePrice
func ResolvePrice(base valueobject.Money, ownerID, locationID uuid.UUID, overrides []LocationPriceOverride) valueobject.Money {
	for _, o := range overrides {
		if o.OwnerID == ownerID && o.LocationID == locationID {
			return o.Price
		}
	}
	return base
}

// SameOverrides compares two override sets ignoring row IDs and order
func SameOverrides(a, b []LocationPriceOverride) bool {
	if len(a) != len(b) {
		return false
	}
	key := func(o LocationPriceOverride) string {
		return string(o.OwnerType) + o.OwnerID.String() + o.LocationID.String() + o.Price.String()
	}
	ka := make([]string, len(a))
	kb := make([]string, len(b))
	for i := range a {
		ka[i] = key(a[i])
		kb[i] = key(b[i])
	}
	slices.Sort(ka)
	slices.Sort(kb)
	return slices.Equal(ka, kb)
}

func validateOverrides(ownerType OverrideOwnerType, ownerID uuid.UUID, base valueobject.Money, overrides []LocationPriceOverride) error {
	seen := make(map[uuid.UUID]bool, len(overrides))
	for _, o := range overrides {
		if o.OwnerType != ownerType || o.OwnerID != ownerID {
			return shared.Validationf("price override %s does not belong to %s %s", o.ID, ownerType, ownerID)
		}
		if o.LocationID == uuid.Nil {
			return shared.NotFoundf("price override for %s %s has no location", ownerType, ownerID)
		}
		if seen[o.LocationID] {
			return shared.Validationf("duplicate price override for %s %s at location %s", ownerType, ownerID, o.LocationID)
		}
		seen[o.LocationID] = true
		if !o.Price.SameCurrency(base) {
			return shared.Validationf("price override currency %s does not match base currency %s for %s %s",
				o.Price.Currency(), base.Currency(), ownerType, ownerID)
		}
	}
	return nil
}
