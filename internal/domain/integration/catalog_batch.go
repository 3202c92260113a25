package integration

import (
	"context"
	"fmt"

	"github.com/menusync/backend/internal/domain/shared"
)

// DefaultMaxPages bounds FetchBatch against an upstream that never stops paginating
const DefaultMaxPages = 1000

// CatalogBatch is the full upstream catalog, indexed by type and ID
type CatalogBatch struct {
	byType map[ObjectType][]CatalogObject
	index  map[ObjectType]map[string]int
	count  int
}

// NewCatalogBatch creates an empty batch
func NewCatalogBatch() *CatalogBatch {
	return &CatalogBatch{
		byType: make(map[ObjectType][]CatalogObject),
		index:  make(map[ObjectType]map[string]int),
	}
}

// Add appends objects to the batch. Deleted objects are dropped; a repeated ID replaces
// the earlier object so the last page wins.
func (b *CatalogBatch) Add(objects ...CatalogObject) {
	for _, obj := range objects {
		if obj.Deleted {
			continue
		}
		ids, ok := b.index[obj.Type]
		if !ok {
			ids = make(map[string]int)
			b.index[obj.Type] = ids
		}
		if pos, exists := ids[obj.ID]; exists {
			b.byType[obj.Type][pos] = obj
			continue
		}
		ids[obj.ID] = len(b.byType[obj.Type])
		b.byType[obj.Type] = append(b.byType[obj.Type], obj)
		b.count++
	}
}

// Objects returns the objects of a type in upstream order
func (b *CatalogBatch) Objects(t ObjectType) []CatalogObject {
	return b.byType[t]
}

// Get looks up an object by type and ID
func (b *CatalogBatch) Get(t ObjectType, id string) (CatalogObject, bool) {
	pos, ok := b.index[t][id]
	if !ok {
		return CatalogObject{}, false
	}
	return b.byType[t][pos], true
}

// Has reports whether the batch contains the object
func (b *CatalogBatch) Has(t ObjectType, id string) bool {
	_, ok := b.index[t][id]
	return ok
}

// Len returns the number of objects in the batch
func (b *CatalogBatch) Len() int {
	return b.count
}

// Validate checks that every object carries the fields reconciliation depends on.
// Parent existence is not checked here; that is resolved against stored state.
func (b *CatalogBatch) Validate() error {
	for t, objs := range b.byType {
		for _, obj := range objs {
			if err := validateObject(obj); err != nil {
				return err.WithField("type", string(t))
			}
		}
	}
	return nil
}

func validateObject(obj CatalogObject) *shared.DomainError {
	if obj.ID == "" {
		return shared.InvalidExternalResponsef("catalog object without id")
	}
	missing := false
	switch obj.Type {
	case ObjectTypeCategory:
		missing = obj.Category == nil
	case ObjectTypeItem:
		missing = obj.Item == nil
	case ObjectTypeItemVariation:
		missing = obj.Variation == nil
		if !missing && obj.Variation.ItemID == "" {
			return shared.InvalidExternalResponsef("variation %s has no item_id", obj.ID)
		}
	case ObjectTypeModifierList:
		missing = obj.ModifierList == nil
	case ObjectTypeModifier:
		missing = obj.Modifier == nil
		if !missing && obj.Modifier.ModifierListID == "" {
			return shared.InvalidExternalResponsef("modifier %s has no modifier_list_id", obj.ID)
		}
	case ObjectTypeImage:
		missing = obj.Image == nil
	default:
		return shared.InvalidExternalResponsef("unsupported catalog object type %q", obj.Type)
	}
	if missing {
		return shared.InvalidExternalResponsef("%s %s has no data", obj.Type, obj.ID)
	}
	return nil
}

// FetchBatch reads every page of the catalog before returning.
// maxPages <= 0 uses DefaultMaxPages.
func FetchBatch(ctx context.Context, source CatalogSource, accessToken string, types []ObjectType, maxPages int) (*CatalogBatch, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	batch := NewCatalogBatch()
	seen := make(map[string]struct{})
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("%w: more than %d pages", ErrPaginationLoop, maxPages)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := source.ListCatalog(ctx, accessToken, cursor, types)
		if err != nil {
			return nil, fmt.Errorf("list catalog page %d: %w", page+1, err)
		}
		batch.Add(result.Objects...)
		if result.Cursor == "" {
			break
		}
		if _, dup := seen[result.Cursor]; dup {
			return nil, fmt.Errorf("%w: cursor %q repeated", ErrPaginationLoop, result.Cursor)
		}
		seen[result.Cursor] = struct{}{}
		cursor = result.Cursor
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return batch, nil
}
