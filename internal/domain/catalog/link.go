package catalog

import (
	"slices"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// UnlimitedSelections marks a link without an upper bound on selected modifiers
const UnlimitedSelections = -1

// ItemModifierListLink attaches a modifier list to an item with selection limits.
// It is keyed by the (item, modifier list) pair; ExternalID is "<itemExt>:<listExt>".
type ItemModifierListLink struct {
	SyncedEntity
	ItemID             uuid.UUID
	ModifierListID     uuid.UUID
	MinSelected        int
	MaxSelected        int
	DefaultModifierIDs []uuid.UUID
}

// LinkExternalID derives the reconciliation key of a link from its two parents
func LinkExternalID(itemExternalID, modifierListExternalID string) string {
	return itemExternalID + ":" + modifierListExternalID
}

// LinkFields are the upstream-owned values of a link
type LinkFields struct {
	MinSelected        int
	MaxSelected        int
	DefaultModifierIDs []uuid.UUID
}

// NewItemModifierListLink creates a link on first encounter of an (item, list) pair
func NewItemModifierListLink(catalogID, itemID, modifierListID uuid.UUID, externalID string, fields LinkFields) (*ItemModifierListLink, error) {
	base, err := newSyncedEntity(catalogID, externalID, DefaultOrdinal)
	if err != nil {
		return nil, err
	}
	l := &ItemModifierListLink{
		SyncedEntity:   base,
		ItemID:         itemID,
		ModifierListID: modifierListID,
	}
	if _, err := l.ApplyUpstream(fields); err != nil {
		return nil, err
	}
	return l, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (l *ItemModifierListLink) ApplyUpstream(fields LinkFields) (bool, error) {
	if fields.MinSelected < 0 {
		fields.MinSelected = 0
	}
	if fields.MaxSelected < 0 {
		fields.MaxSelected = UnlimitedSelections
	}
	if fields.MaxSelected != UnlimitedSelections && fields.MaxSelected < fields.MinSelected {
		return false, shared.InvalidExternalResponsef("modifier list link %s: max selected %d is below min selected %d",
			l.ExternalIDValue(), fields.MaxSelected, fields.MinSelected)
	}

	defaults := slices.Clone(fields.DefaultModifierIDs)
	slices.SortFunc(defaults, compareUUID)
	defaults = slices.Compact(defaults)

	changed := assign(&l.MinSelected, fields.MinSelected)
	changed = assign(&l.MaxSelected, fields.MaxSelected) || changed
	if !slices.Equal(l.DefaultModifierIDs, defaults) {
		l.DefaultModifierIDs = defaults
		changed = true
	}
	if changed {
		l.Touch()
	}
	return changed, nil
}

// IsDefault reports whether a modifier is pre-selected for this link
func (l *ItemModifierListLink) IsDefault(modifierID uuid.UUID) bool {
	_, found := slices.BinarySearchFunc(l.DefaultModifierIDs, modifierID, compareUUID)
	return found
}
