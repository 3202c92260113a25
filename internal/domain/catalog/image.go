package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// ImageParentType names the kind of entity an image is attached to
type ImageParentType string

const (
	ImageParentItem         ImageParentType = "ITEM"
	ImageParentVariation    ImageParentType = "VARIATION"
	ImageParentCategory     ImageParentType = "CATEGORY"
	ImageParentModifierList ImageParentType = "MODIFIER_LIST"
)

// CatalogImage is an image reference attached to exactly one parent entity.
// Only the URL is mirrored; binaries stay with the upstream.
type CatalogImage struct {
	SyncedEntity
	ParentType ImageParentType
	ParentID   uuid.UUID
	URL        string
	Caption    string
}

// ImageFields are the upstream-owned values of an image
type ImageFields struct {
	ParentType ImageParentType
	ParentID   uuid.UUID
	URL        string
	Caption    string
}

// NewCatalogImageFromUpstream creates an image on first encounter of an external ID
func NewCatalogImageFromUpstream(catalogID uuid.UUID, externalID string, fields ImageFields) (*CatalogImage, error) {
	base, err := newSyncedEntity(catalogID, externalID, DefaultOrdinal)
	if err != nil {
		return nil, err
	}
	img := &CatalogImage{SyncedEntity: base}
	if _, err := img.ApplyUpstream(fields); err != nil {
		return nil, err
	}
	return img, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (i *CatalogImage) ApplyUpstream(fields ImageFields) (bool, error) {
	if fields.ParentID == uuid.Nil || fields.ParentType == "" {
		return false, shared.NotFoundf("image %s has no parent", i.ExternalIDValue())
	}
	url := strings.TrimSpace(fields.URL)
	if url == "" {
		return false, shared.InvalidExternalResponsef("image %s is missing its url", i.ExternalIDValue())
	}

	changed := assign(&i.ParentType, fields.ParentType)
	changed = assign(&i.ParentID, fields.ParentID) || changed
	changed = assign(&i.URL, url) || changed
	changed = assign(&i.Caption, strings.TrimSpace(fields.Caption)) || changed
	if changed {
		i.Touch()
	}
	return changed, nil
}
