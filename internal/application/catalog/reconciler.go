package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// Repositories groups the catalog stores the reconciler writes to
type Repositories struct {
	Categories    catalog.CategoryRepository
	Items         catalog.ItemRepository
	Variations    catalog.VariationRepository
	ModifierLists catalog.ModifierListRepository
	Modifiers     catalog.ModifierRepository
	Links         catalog.LinkRepository
	Images        catalog.ImageRepository
}

// Reconciler upserts upstream objects into the local catalog. Every method finds the
// row by (catalog, external ID), creates it when absent and otherwise overwrites only
// upstream-owned fields. Rows whose fields did not change are not written.
type Reconciler struct {
	repos Repositories
}

// NewReconciler creates a reconciler over the given stores
func NewReconciler(repos Repositories) *Reconciler {
	return &Reconciler{repos: repos}
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// ReconcileCategory upserts a CATEGORY
func (r *Reconciler) ReconcileCategory(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.Category, error) {
	c, err := r.repos.Categories.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if c, err = catalog.NewCategoryFromUpstream(state.CatalogID, obj.ID, obj.Category.Name); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		if c.ApplyUpstream(obj.Category.Name) {
			outcome = catalog.OutcomeUpdated
		}
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Categories.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	state.Categories[obj.ID] = c.ID
	state.rememberImages(obj.ImageIDs, catalog.ImageParentCategory, c.ID)
	state.Stats.Record(catalog.EntityCategory, outcome)
	return c, nil
}

// ReconcileItem upserts an ITEM. Its category must already be reconciled.
func (r *Reconciler) ReconcileItem(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.Item, error) {
	data := obj.Item
	fields := catalog.ItemFields{Name: data.Name, Description: data.Description}
	if data.CategoryID != "" {
		categoryID, err := resolve(state.Categories, catalog.EntityCategory, data.CategoryID, "item "+obj.ID)
		if err != nil {
			return nil, err
		}
		fields.CategoryID = &categoryID
	}
	presence, err := translatePresence(state, obj)
	if err != nil {
		return nil, err
	}
	fields.Presence = presence

	item, err := r.repos.Items.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if item, err = catalog.NewItemFromUpstream(state.CatalogID, obj.ID, fields); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		if item.ApplyUpstream(fields) {
			outcome = catalog.OutcomeUpdated
		}
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Items.Save(ctx, item); err != nil {
			return nil, err
		}
	}
	state.Items[obj.ID] = item.ID
	state.rememberImages(obj.ImageIDs, catalog.ImageParentItem, item.ID)
	state.Stats.Record(catalog.EntityItem, outcome)
	return item, nil
}

// ReconcileModifierList upserts a MODIFIER_LIST
func (r *Reconciler) ReconcileModifierList(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.ModifierList, error) {
	data := obj.ModifierList
	selection, err := catalog.ParseSelectionType(data.SelectionType)
	if err != nil {
		return nil, err
	}

	list, err := r.repos.ModifierLists.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if list, err = catalog.NewModifierListFromUpstream(state.CatalogID, obj.ID, data.Ordinal, data.Name, selection); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		if list.ApplyUpstream(data.Ordinal, data.Name, selection) {
			outcome = catalog.OutcomeUpdated
		}
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.ModifierLists.Save(ctx, list); err != nil {
			return nil, err
		}
	}
	state.ModifierLists[obj.ID] = list.ID
	state.rememberImages(obj.ImageIDs, catalog.ImageParentModifierList, list.ID)
	state.Stats.Record(catalog.EntityModifierList, outcome)
	return list, nil
}

// ReconcileModifier upserts a MODIFIER with its presence and location overrides.
// Its modifier list must already be reconciled.
func (r *Reconciler) ReconcileModifier(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.Modifier, error) {
	data := obj.Modifier
	listID, err := resolve(state.ModifierLists, catalog.EntityModifierList, data.ModifierListID, "modifier "+obj.ID)
	if err != nil {
		return nil, err
	}
	price, err := toMoney(data.Price, state.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("modifier %s price: %w", obj.ID, err)
	}
	presence, err := translatePresence(state, obj)
	if err != nil {
		return nil, err
	}
	fields := catalog.ModifierFields{ModifierListID: listID, Ordinal: data.Ordinal, Name: data.Name, Price: price, Presence: presence}

	m, err := r.repos.Modifiers.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if m, err = catalog.NewModifierFromUpstream(state.CatalogID, obj.ID, fields); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		if m.ApplyUpstream(fields) {
			outcome = catalog.OutcomeUpdated
		}
	}

	overrides, err := translateOverrides(state, catalog.OverrideOwnerModifier, m.ID, data.LocationOverrides)
	if err != nil {
		return nil, fmt.Errorf("modifier %s: %w", obj.ID, err)
	}
	replaced, err := m.ReplaceOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if replaced && outcome == catalog.OutcomeUnchanged {
		outcome = catalog.OutcomeUpdated
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Modifiers.Save(ctx, m); err != nil {
			return nil, err
		}
	}
	state.Modifiers[obj.ID] = m.ID
	state.Stats.Record(catalog.EntityModifier, outcome)
	return m, nil
}

// ReconcileVariation upserts an ITEM_VARIATION with its location overrides.
// Its item must already be reconciled.
func (r *Reconciler) ReconcileVariation(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.Variation, error) {
	data := obj.Variation
	itemID, err := resolve(state.Items, catalog.EntityItem, data.ItemID, "variation "+obj.ID)
	if err != nil {
		return nil, err
	}
	price, err := toMoney(data.Price, state.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("variation %s price: %w", obj.ID, err)
	}

	v, err := r.repos.Variations.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if v, err = catalog.NewVariationFromUpstream(state.CatalogID, itemID, obj.ID, data.Ordinal, data.Name, price); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		if v.ApplyUpstream(itemID, data.Ordinal, data.Name, price) {
			outcome = catalog.OutcomeUpdated
		}
	}

	overrides, err := translateOverrides(state, catalog.OverrideOwnerVariation, v.ID, data.LocationOverrides)
	if err != nil {
		return nil, fmt.Errorf("variation %s: %w", obj.ID, err)
	}
	replaced, err := v.ReplaceOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if replaced && outcome == catalog.OutcomeUnchanged {
		outcome = catalog.OutcomeUpdated
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Variations.Save(ctx, v); err != nil {
			return nil, err
		}
	}
	state.Variations[obj.ID] = v.ID
	state.rememberImages(obj.ImageIDs, catalog.ImageParentVariation, v.ID)
	state.Stats.Record(catalog.EntityVariation, outcome)
	return v, nil
}

// ReconcileLinks upserts the modifier list links declared on an ITEM. The item, its
// lists and their modifiers must already be reconciled.
func (r *Reconciler) ReconcileLinks(ctx context.Context, state *ReconcileState, itemObj integration.CatalogObject) ([]*catalog.ItemModifierListLink, error) {
	links := make([]*catalog.ItemModifierListLink, 0, len(itemObj.Item.ModifierLists))
	for _, info := range itemObj.Item.ModifierLists {
		link, err := r.ReconcileLink(ctx, state, itemObj.ID, info)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// ReconcileLink upserts one item/modifier-list link keyed by the pair of external IDs
func (r *Reconciler) ReconcileLink(ctx context.Context, state *ReconcileState, itemExternalID string, info integration.ModifierListInfo) (*catalog.ItemModifierListLink, error) {
	externalID := catalog.LinkExternalID(itemExternalID, info.ModifierListID)
	itemID, err := resolve(state.Items, catalog.EntityItem, itemExternalID, "link "+externalID)
	if err != nil {
		return nil, err
	}
	listID, err := resolve(state.ModifierLists, catalog.EntityModifierList, info.ModifierListID, "item "+itemExternalID)
	if err != nil {
		return nil, err
	}
	defaults, err := resolveAll(state.Modifiers, catalog.EntityModifier, info.DefaultModifierIDs, "link "+externalID)
	if err != nil {
		return nil, err
	}
	fields := catalog.LinkFields{MinSelected: info.MinSelected, MaxSelected: info.MaxSelected, DefaultModifierIDs: defaults}

	link, err := r.repos.Links.FindByExternalID(ctx, state.CatalogID, externalID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if link, err = catalog.NewItemModifierListLink(state.CatalogID, itemID, listID, externalID, fields); err != nil {
			return nil, err
		}
		// the upstream flag only seeds visibility; it is locally owned afterwards
		if !info.Enabled {
			link.Enabled = false
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		changed, err := link.ApplyUpstream(fields)
		if err != nil {
			return nil, err
		}
		if changed {
			outcome = catalog.OutcomeUpdated
		}
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Links.Save(ctx, link); err != nil {
			return nil, err
		}
	}
	state.Stats.Record(catalog.EntityLink, outcome)
	return link, nil
}

// ReconcileImage upserts an IMAGE onto the entity that referenced it. An image no
// reconciled entity references is skipped and nil is returned.
func (r *Reconciler) ReconcileImage(ctx context.Context, state *ReconcileState, obj integration.CatalogObject) (*catalog.CatalogImage, error) {
	parent, ok := state.imageParents[obj.ID]
	if !ok {
		return nil, nil
	}
	fields := catalog.ImageFields{
		ParentType: parent.parentType,
		ParentID:   parent.parentID,
		URL:        obj.Image.URL,
		Caption:    obj.Image.Caption,
	}

	img, err := r.repos.Images.FindByExternalID(ctx, state.CatalogID, obj.ID)
	outcome := catalog.OutcomeUnchanged
	switch {
	case isNotFound(err):
		if img, err = catalog.NewCatalogImageFromUpstream(state.CatalogID, obj.ID, fields); err != nil {
			return nil, err
		}
		outcome = catalog.OutcomeCreated
	case err != nil:
		return nil, err
	default:
		changed, err := img.ApplyUpstream(fields)
		if err != nil {
			return nil, err
		}
		if changed {
			outcome = catalog.OutcomeUpdated
		}
	}

	if outcome != catalog.OutcomeUnchanged {
		if err := r.repos.Images.Save(ctx, img); err != nil {
			return nil, err
		}
	}
	state.Stats.Record(catalog.EntityImage, outcome)
	return img, nil
}

func translatePresence(state *ReconcileState, obj integration.CatalogObject) (catalog.Presence, error) {
	ref := string(obj.Type) + " " + obj.ID
	present, err := resolveAll(state.Locations, catalog.EntityLocation, obj.Presence.PresentAt, ref)
	if err != nil {
		return catalog.Presence{}, err
	}
	absent, err := resolveAll(state.Locations, catalog.EntityLocation, obj.Presence.AbsentAt, ref)
	if err != nil {
		return catalog.Presence{}, err
	}
	return catalog.NewPresence(obj.Presence.AllLocations, present, absent), nil
}

func translateOverrides(state *ReconcileState, ownerType catalog.OverrideOwnerType, ownerID uuid.UUID, upstream []integration.LocationOverride) ([]catalog.LocationPriceOverride, error) {
	if len(upstream) == 0 {
		return nil, nil
	}
	out := make([]catalog.LocationPriceOverride, 0, len(upstream))
	for _, o := range upstream {
		if o.Price == nil {
			continue
		}
		locationID, err := resolve(state.Locations, catalog.EntityLocation, o.LocationID, string(ownerType)+" override")
		if err != nil {
			return nil, err
		}
		price, err := toMoney(o.Price, state.DefaultCurrency)
		if err != nil {
			return nil, err
		}
		out = append(out, catalog.NewLocationPriceOverride(ownerType, ownerID, locationID, price))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// toMoney converts an upstream amount. A missing price is zero in the default currency.
func toMoney(m *integration.UpstreamMoney, defaultCurrency valueobject.Currency) (valueobject.Money, error) {
	if m == nil {
		return valueobject.Zero(defaultCurrency), nil
	}
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	money, err := valueobject.NewMoneyFromMinor(m.Amount, currency)
	if err != nil {
		return valueobject.Money{}, shared.InvalidExternalResponsef("invalid money: %v", err)
	}
	return money, nil
}
