package catalog

import (
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// imageParent is the entity an image was referenced from
type imageParent struct {
	parentType catalog.ImageParentType
	parentID   uuid.UUID
}

// ReconcileState carries the external-to-local ID maps of one sync pass. Each map is
// filled while its type is reconciled, so parents must be reconciled before children.
type ReconcileState struct {
	CatalogID       uuid.UUID
	DefaultCurrency valueobject.Currency

	Locations     map[string]uuid.UUID
	Categories    map[string]uuid.UUID
	Items         map[string]uuid.UUID
	ModifierLists map[string]uuid.UUID
	Modifiers     map[string]uuid.UUID
	Variations    map[string]uuid.UUID

	Stats catalog.SyncStats

	imageParents map[string]imageParent
}

// NewReconcileState starts a pass for a catalog with its locations already mirrored
func NewReconcileState(catalogID uuid.UUID, defaultCurrency valueobject.Currency, locations map[string]uuid.UUID) *ReconcileState {
	if locations == nil {
		locations = map[string]uuid.UUID{}
	}
	return &ReconcileState{
		CatalogID:       catalogID,
		DefaultCurrency: defaultCurrency,
		Locations:       locations,
		Categories:      map[string]uuid.UUID{},
		Items:           map[string]uuid.UUID{},
		ModifierLists:   map[string]uuid.UUID{},
		Modifiers:       map[string]uuid.UUID{},
		Variations:      map[string]uuid.UUID{},
		Stats:           catalog.SyncStats{},
		imageParents:    map[string]imageParent{},
	}
}

func resolve(ids map[string]uuid.UUID, kind catalog.EntityType, externalID, referencedBy string) (uuid.UUID, error) {
	id, ok := ids[externalID]
	if !ok {
		return uuid.Nil, shared.NotFoundf("%s %s referenced by %s is unknown", kind, externalID, referencedBy).
			WithField(string(kind), externalID)
	}
	return id, nil
}

func resolveAll(ids map[string]uuid.UUID, kind catalog.EntityType, externalIDs []string, referencedBy string) ([]uuid.UUID, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(externalIDs))
	for _, ext := range externalIDs {
		id, err := resolve(ids, kind, ext, referencedBy)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// rememberImages records which entity referenced each image ID. The first reference wins.
func (s *ReconcileState) rememberImages(imageIDs []string, parentType catalog.ImageParentType, parentID uuid.UUID) {
	for _, imgID := range imageIDs {
		if _, seen := s.imageParents[imgID]; !seen {
			s.imageParents[imgID] = imageParent{parentType: parentType, parentID: parentID}
		}
	}
}
