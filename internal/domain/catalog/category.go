package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Category groups items for display. Only the name comes from upstream.
type Category struct {
	SyncedEntity
	Name string
}

// NewCategoryFromUpstream creates a category on first encounter of an external ID
func NewCategoryFromUpstream(catalogID uuid.UUID, externalID, name string) (*Category, error) {
	base, err := newSyncedEntity(catalogID, externalID, DefaultOrdinal)
	if err != nil {
		return nil, err
	}
	c := &Category{SyncedEntity: base}
	c.ApplyUpstream(name)
	return c, nil
}

// ApplyUpstream overwrites the upstream-owned fields and reports whether anything changed
func (c *Category) ApplyUpstream(name string) bool {
	changed := assign(&c.Name, strings.TrimSpace(name))
	if changed {
		c.Touch()
	}
	return changed
}
