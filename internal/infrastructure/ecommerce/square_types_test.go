package ecommerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenCatalogObject_ModifierListEnabledFlag(t *testing.T) {
	disabled, enabled := false, true
	obj := SquareCatalogObject{
		Type: "ITEM",
		ID:   "I1",
		ItemData: &SquareItemData{
			Name: "Latte",
			ModifierListInfo: []SquareModifierListInfo{
				{ModifierListID: "ML1"},
				{ModifierListID: "ML2", Enabled: &disabled},
				{ModifierListID: "ML3", Enabled: &enabled},
			},
		},
	}

	objects := flattenCatalogObject(obj)
	require.Len(t, objects, 1)
	infos := objects[0].Item.ModifierLists
	require.Len(t, infos, 3)

	got := map[string]bool{}
	for _, info := range infos {
		got[info.ModifierListID] = info.Enabled
	}
	assert.Equal(t, map[string]bool{"ML1": true, "ML2": false, "ML3": true}, got)
}
