package catalog

import (
	"slices"
	"sort"
)

// ModifierListGraph is a modifier list as attached to one item
type ModifierListGraph struct {
	Link      *ItemModifierListLink
	List      *ModifierList
	Modifiers []*Modifier
}

// ItemGraph is an item with everything a menu needs to render it
type ItemGraph struct {
	Item          *Item
	Variations    []*Variation
	ModifierLists []ModifierListGraph
	Images        []*CatalogImage
}

// SortItemGraph orders variations and, inside every linked list, modifiers by ordinal.
// Both sorts are stable. The input graph is left untouched.
func SortItemGraph(g ItemGraph) ItemGraph {
	out := ItemGraph{
		Item:       g.Item,
		Variations: slices.Clone(g.Variations),
		Images:     g.Images,
	}
	sort.SliceStable(out.Variations, func(i, j int) bool {
		return out.Variations[i].Ordinal < out.Variations[j].Ordinal
	})

	out.ModifierLists = make([]ModifierListGraph, len(g.ModifierLists))
	for i, ml := range g.ModifierLists {
		mods := slices.Clone(ml.Modifiers)
		sort.SliceStable(mods, func(a, b int) bool {
			return mods[a].Ordinal < mods[b].Ordinal
		})
		out.ModifierLists[i] = ModifierListGraph{Link: ml.Link, List: ml.List, Modifiers: mods}
	}
	return out
}
