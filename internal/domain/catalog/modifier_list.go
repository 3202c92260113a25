package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// SelectionType controls how many modifiers of a list a customer may pick
type SelectionType string

const (
	SelectionTypeSingle   SelectionType = "SINGLE"
	SelectionTypeMultiple SelectionType = "MULTIPLE"
)

// ParseSelectionType maps the upstream value, defaulting to MULTIPLE when absent
func ParseSelectionType(s string) (SelectionType, error) {
	switch SelectionType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", SelectionTypeMultiple:
		return SelectionTypeMultiple, nil
	case SelectionTypeSingle:
		return SelectionTypeSingle, nil
	default:
		return "", shared.InvalidExternalResponsef("unknown modifier list selection type %q", s)
	}
}

// ModifierList groups modifiers that can be attached to items
type ModifierList struct {
	SyncedEntity
	Name          string
	SelectionType SelectionType
}

// NewModifierListFromUpstream creates a modifier list on first encounter of an external ID
func NewModifierListFromUpstream(catalogID uuid.UUID, externalID string, upstreamOrdinal int, name string, selection SelectionType) (*ModifierList, error) {
	base, err := newSyncedEntity(catalogID, externalID, upstreamOrdinal)
	if err != nil {
		return nil, err
	}
	l := &ModifierList{SyncedEntity: base}
	l.ApplyUpstream(upstreamOrdinal, name, selection)
	return l, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (l *ModifierList) ApplyUpstream(ordinal int, name string, selection SelectionType) bool {
	changed := assign(&l.Ordinal, ordinal)
	changed = assign(&l.Name, strings.TrimSpace(name)) || changed
	changed = assign(&l.SelectionType, selection) || changed
	if changed {
		l.Touch()
	}
	return changed
}
