package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// DefaultOrdinal is the display position given to rows the merchant has not arranged yet
const DefaultOrdinal = 0

// SyncedEntity carries the columns every mirrored catalog row shares.
// ExternalID and the typed data of the embedding struct are owned by the upstream.
// Enabled is owned locally and never written by a sync pass. Ordinal is the merchant's
// manual position for categories and items; variations, modifier lists and modifiers
// take theirs from the upstream on every sync.
type SyncedEntity struct {
	shared.BaseEntity
	CatalogID  uuid.UUID
	ExternalID *string
	Ordinal    int
	Enabled    bool
}

func newSyncedEntity(catalogID uuid.UUID, externalID string, ordinal int) (SyncedEntity, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return SyncedEntity{}, shared.InvalidExternalResponsef("upstream object is missing its id")
	}
	if catalogID == uuid.Nil {
		return SyncedEntity{}, shared.NotFoundf("catalog is required")
	}
	return SyncedEntity{
		BaseEntity: shared.NewBaseEntity(),
		CatalogID:  catalogID,
		ExternalID: &externalID,
		Ordinal:    ordinal,
		Enabled:    true,
	}, nil
}

// ExternalIDValue returns the external ID or an empty string for local-only rows
func (e *SyncedEntity) ExternalIDValue() string {
	if e.ExternalID == nil {
		return ""
	}
	return *e.ExternalID
}

// SetOrdinal changes the merchant-controlled display position
func (e *SyncedEntity) SetOrdinal(ordinal int) {
	e.Ordinal = ordinal
	e.Touch()
}

// SetEnabled toggles the merchant-controlled visibility switch
func (e *SyncedEntity) SetEnabled(enabled bool) {
	e.Enabled = enabled
	e.Touch()
}

// assign writes v into *dst and reports whether the value changed
func assign[T comparable](dst *T, v T) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func assignUUIDPtr(dst **uuid.UUID, v *uuid.UUID) bool {
	switch {
	case *dst == nil && v == nil:
		return false
	case *dst != nil && v != nil && **dst == *v:
		return false
	}
	if v == nil {
		*dst = nil
	} else {
		id := *v
		*dst = &id
	}
	return true
}
