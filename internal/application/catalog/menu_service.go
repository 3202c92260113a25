package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MenuService answers what can be ordered at a location, with overlays applied
type MenuService struct {
	catalogs  catalog.CatalogRepository
	repos     Repositories
	locations location.LocationRepository
	logger    *zap.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(
	catalogs catalog.CatalogRepository,
	repos Repositories,
	locations location.LocationRepository,
	logger *zap.Logger,
) *MenuService {
	return &MenuService{
		catalogs:  catalogs,
		repos:     repos,
		locations: locations,
		logger:    logger,
	}
}

// ListMenu returns the enabled categories of the merchant with the items visible at the
// location. Items of a disabled category are left out; items without a category are
// listed under Uncategorized.
func (s *MenuService) ListMenu(ctx context.Context, merchantID, locationID uuid.UUID) (*MenuResponse, error) {
	c, err := s.resolve(ctx, merchantID, locationID)
	if err != nil {
		return nil, err
	}

	categories, err := s.repos.Categories.ListByCatalog(ctx, c.ID, true)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Items.ListByCatalog(ctx, c.ID, true)
	if err != nil {
		return nil, err
	}
	items = catalog.FilterVisible(items, func(i *catalog.Item) catalog.Presence { return i.Presence }, locationID)

	rendered, err := s.render(ctx, items, locationID)
	if err != nil {
		return nil, err
	}

	resp := &MenuResponse{
		MerchantID:    merchantID,
		LocationID:    locationID,
		Generation:    c.SyncGeneration,
		Categories:    make([]CategoryResponse, 0, len(categories)),
		Uncategorized: []ItemResponse{},
	}
	byCategory := make(map[uuid.UUID][]ItemResponse, len(categories))
	for _, item := range rendered {
		if item.CategoryID == nil {
			resp.Uncategorized = append(resp.Uncategorized, item)
			continue
		}
		byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], item)
	}
	for _, cat := range categories {
		catItems := byCategory[cat.ID]
		if catItems == nil {
			catItems = []ItemResponse{}
		}
		resp.Categories = append(resp.Categories, CategoryResponse{
			ID:      cat.ID,
			Name:    cat.Name,
			Ordinal: cat.Ordinal,
			Items:   catItems,
		})
	}

	logger.Enrich(logger.WithMerchantID(ctx, merchantID.String()), s.logger).Debug("Menu listed",
		zap.String("location_id", locationID.String()),
		zap.Int("categories", len(resp.Categories)),
		zap.Int("items", len(rendered)),
	)
	return resp, nil
}

// GetItem returns one item as ListMenu would render it. An item that is disabled, sits
// in a disabled category or is not present at the location is NotFound.
func (s *MenuService) GetItem(ctx context.Context, merchantID, locationID, itemID uuid.UUID) (*ItemResponse, error) {
	c, err := s.resolve(ctx, merchantID, locationID)
	if err != nil {
		return nil, err
	}

	item, err := s.repos.Items.FindByID(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Enabled || !item.VisibleAt(locationID) {
		return nil, shared.NotFoundf("item %s is not available at location %s", itemID, locationID)
	}
	if item.CategoryID != nil {
		categories, err := s.repos.Categories.ListByCatalog(ctx, c.ID, true)
		if err != nil {
			return nil, err
		}
		if !containsCategory(categories, *item.CategoryID) {
			return nil, shared.NotFoundf("item %s is not available at location %s", itemID, locationID)
		}
	}

	rendered, err := s.render(ctx, []*catalog.Item{item}, locationID)
	if err != nil {
		return nil, err
	}
	return &rendered[0], nil
}

// resolve checks the location belongs to the merchant and loads the catalog
func (s *MenuService) resolve(ctx context.Context, merchantID, locationID uuid.UUID) (*catalog.Catalog, error) {
	if _, err := s.locations.FindByID(ctx, merchantID, locationID); err != nil {
		return nil, err
	}
	return s.catalogs.FindByMerchant(ctx, merchantID)
}

// render loads the children of items in bulk and returns one response per item, in input order
func (s *MenuService) render(ctx context.Context, items []*catalog.Item, locationID uuid.UUID) ([]ItemResponse, error) {
	if len(items) == 0 {
		return nil, nil
	}
	itemIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	variations, err := s.repos.Variations.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	links, err := s.repos.Links.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	images, err := s.repos.Images.ListByParents(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	listIDs := make([]uuid.UUID, 0, len(links))
	seen := make(map[uuid.UUID]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.ModifierListID]; ok || !l.Enabled {
			continue
		}
		seen[l.ModifierListID] = struct{}{}
		listIDs = append(listIDs, l.ModifierListID)
	}
	lists := map[uuid.UUID]*catalog.ModifierList{}
	modsByList := map[uuid.UUID][]*catalog.Modifier{}
	var modifiers []*catalog.Modifier
	if len(listIDs) > 0 {
		found, err := s.repos.ModifierLists.FindByIDs(ctx, listIDs)
		if err != nil {
			return nil, err
		}
		for _, l := range found {
			if l.Enabled {
				lists[l.ID] = l
			}
		}
		if modifiers, err = s.repos.Modifiers.ListByModifierLists(ctx, listIDs); err != nil {
			return nil, err
		}
		for _, m := range modifiers {
			if m.Enabled && m.VisibleAt(locationID) {
				modsByList[m.ModifierListID] = append(modsByList[m.ModifierListID], m)
			}
		}
	}

	var overrides [][]catalog.LocationPriceOverride
	varsByItem := map[uuid.UUID][]*catalog.Variation{}
	for _, v := range variations {
		if !v.Enabled {
			continue
		}
		varsByItem[v.ItemID] = append(varsByItem[v.ItemID], v)
		overrides = append(overrides, v.Overrides)
	}
	for _, m := range modifiers {
		overrides = append(overrides, m.Overrides)
	}
	idx := catalog.NewPriceOverrideIndex(overrides...)

	linksByItem := map[uuid.UUID][]*catalog.ItemModifierListLink{}
	for _, l := range links {
		if l.Enabled {
			linksByItem[l.ItemID] = append(linksByItem[l.ItemID], l)
		}
	}
	imagesByItem := map[uuid.UUID][]*catalog.CatalogImage{}
	for _, img := range images {
		if img.ParentType == catalog.ImageParentItem {
			imagesByItem[img.ParentID] = append(imagesByItem[img.ParentID], img)
		}
	}

	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		g := catalog.ItemGraph{
			Item:       item,
			Variations: varsByItem[item.ID],
			Images:     imagesByItem[item.ID],
		}
		for _, link := range linksByItem[item.ID] {
			list, ok := lists[link.ModifierListID]
			if !ok {
				continue
			}
			g.ModifierLists = append(g.ModifierLists, catalog.ModifierListGraph{
				Link:      link,
				List:      list,
				Modifiers: modsByList[list.ID],
			})
		}
		sort.SliceStable(g.ModifierLists, func(i, j int) bool {
			a, b := g.ModifierLists[i], g.ModifierLists[j]
			if a.Link.Ordinal != b.Link.Ordinal {
				return a.Link.Ordinal < b.Link.Ordinal
			}
			return a.List.Ordinal < b.List.Ordinal
		})
		out = append(out, toItemResponse(catalog.SortItemGraph(g), idx, locationID))
	}
	return out, nil
}

func containsCategory(categories []*catalog.Category, id uuid.UUID) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
