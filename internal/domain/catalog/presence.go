package catalog

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// Presence describes at which locations a catalog entity can be ordered.
// Location IDs are local location IDs, sorted and de-duplicated.
type Presence struct {
	PresentAtAllLocations bool
	PresentAt             []uuid.UUID
	AbsentAt              []uuid.UUID
}

// NewPresence normalizes the location sets so that equal presences compare equal
func NewPresence(presentAtAll bool, presentAt, absentAt []uuid.UUID) Presence {
	return Presence{
		PresentAtAllLocations: presentAtAll,
		PresentAt:             normalizeIDs(presentAt),
		AbsentAt:              normalizeIDs(absentAt),
	}
}

// PresentEverywhere is the presence of an entity with no location restrictions
func PresentEverywhere() Presence {
	return Presence{PresentAtAllLocations: true}
}

// VisibleAt reports whether the entity is orderable at the location.
// Explicit presence always wins; explicit absence only cancels the all-locations default.
//
// This is the only implementation of the rule. Stores load presence rows and
// callers filter in memory with it (see FilterVisible).
func (p Presence) VisibleAt(locationID uuid.UUID) bool {
	if containsID(p.PresentAt, locationID) {
		return true
	}
	return p.PresentAtAllLocations && !containsID(p.AbsentAt, locationID)
}

// Equals compares two normalized presences
func (p Presence) Equals(other Presence) bool {
	return p.PresentAtAllLocations == other.PresentAtAllLocations &&
		slices.Equal(p.PresentAt, other.PresentAt) &&
		slices.Equal(p.AbsentAt, other.AbsentAt)
}

// FilterVisible keeps the elements whose presence is visible at the location, preserving order
func FilterVisible[T any](items []T, presenceOf func(T) Presence, locationID uuid.UUID) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if presenceOf(item).VisibleAt(locationID) {
			out = append(out, item)
		}
	}
	return out
}

func normalizeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.SortFunc(out, compareUUID)
	return slices.Compact(out)
}

func containsID(sorted []uuid.UUID, id uuid.UUID) bool {
	_, found := slices.BinarySearchFunc(sorted, id, compareUUID)
	return found
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
