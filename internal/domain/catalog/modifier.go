package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// Modifier is a priced add-on within a modifier list.
// Its presence is evaluated on its own fields, never inherited from the list.
type Modifier struct {
	SyncedEntity
	ModifierListID uuid.UUID
	Name           string
	Price          valueobject.Money
	Presence       Presence
	Overrides      []LocationPriceOverride
}

// ModifierFields are the upstream-owned values of a modifier
type ModifierFields struct {
	ModifierListID uuid.UUID
	Ordinal        int
	Name           string
	Price          valueobject.Money
	Presence       Presence
}

// NewModifierFromUpstream creates a modifier on first encounter of an external ID
func NewModifierFromUpstream(catalogID uuid.UUID, externalID string, fields ModifierFields) (*Modifier, error) {
	base, err := newSyncedEntity(catalogID, externalID, fields.Ordinal)
	if err != nil {
		return nil, err
	}
	m := &Modifier{SyncedEntity: base}
	m.ApplyUpstream(fields)
	return m, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (m *Modifier) ApplyUpstream(fields ModifierFields) bool {
	changed := assign(&m.ModifierListID, fields.ModifierListID)
	changed = assign(&m.Ordinal, fields.Ordinal) || changed
	changed = assign(&m.Name, strings.TrimSpace(fields.Name)) || changed
	if !m.Price.Equals(fields.Price) {
		m.Price = fields.Price
		changed = true
	}
	if !m.Presence.Equals(fields.Presence) {
		m.Presence = fields.Presence
		changed = true
	}
	if changed {
		m.Touch()
	}
	return changed
}

// ReplaceOverrides swaps the full override set and reports whether it differs from the current one
func (m *Modifier) ReplaceOverrides(overrides []LocationPriceOverride) (bool, error) {
	if err := validateOverrides(OverrideOwnerModifier, m.ID, m.Price, overrides); err != nil {
		return false, err
	}
	if SameOverrides(m.Overrides, overrides) {
		return false, nil
	}
	m.Overrides = overrides
	return true, nil
}

// VisibleAt applies the presence predicate to this modifier
func (m *Modifier) VisibleAt(locationID uuid.UUID) bool {
	return m.Presence.VisibleAt(locationID)
}

// PriceAt resolves the effective price of this modifier at a location
func (m *Modifier) PriceAt(locationID uuid.UUID) valueobject.Money {
	return ResolvePrice(m.Price, m.ID, locationID, m.Overrides)
}
