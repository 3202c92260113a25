package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Item is a sellable product. Its location presence decides where it can be ordered.
type Item struct {
	SyncedEntity
	CategoryID  *uuid.UUID
	Name        string
	Description string
	Presence    Presence
}

// ItemFields are the upstream-owned values of an item
type ItemFields struct {
	Name        string
	Description string
	CategoryID  *uuid.UUID
	Presence    Presence
}

// NewItemFromUpstream creates an item on first encounter of an external ID
func NewItemFromUpstream(catalogID uuid.UUID, externalID string, fields ItemFields) (*Item, error) {
	base, err := newSyncedEntity(catalogID, externalID, DefaultOrdinal)
	if err != nil {
		return nil, err
	}
	item := &Item{SyncedEntity: base}
	item.ApplyUpstream(fields)
	return item, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (i *Item) ApplyUpstream(fields ItemFields) bool {
	changed := assign(&i.Name, strings.TrimSpace(fields.Name))
	changed = assign(&i.Description, fields.Description) || changed
	changed = assignUUIDPtr(&i.CategoryID, fields.CategoryID) || changed
	if !i.Presence.Equals(fields.Presence) {
		i.Presence = fields.Presence
		changed = true
	}
	if changed {
		i.Touch()
	}
	return changed
}

// VisibleAt applies the presence predicate to this item
func (i *Item) VisibleAt(locationID uuid.UUID) bool {
	return i.Presence.VisibleAt(locationID)
}
