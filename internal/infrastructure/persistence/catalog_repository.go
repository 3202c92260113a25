package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCatalogRepository implements CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindByMerchant returns the merchant's catalog
func (r *GormCatalogRepository) FindByMerchant(ctx context.Context, merchantID uuid.UUID) (*catalog.Catalog, error) {
	var model models.CatalogModel
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a catalog
func (r *GormCatalogRepository) Save(ctx context.Context, c *catalog.Catalog) error {
	model := &models.CatalogModel{}
	model.FromDomain(c)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// ----------------------------------------------------------------------------
// Categories
// ----------------------------------------------------------------------------

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByExternalID finds a category by its upstream ID within a catalog
func (r *GormCategoryRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByCatalog returns categories ordered by ordinal then name
func (r *GormCategoryRepository) ListByCatalog(ctx context.Context, catalogID uuid.UUID, onlyEnabled bool) ([]*catalog.Category, error) {
	var rows []models.CategoryModel
	if err := listByCatalog(ctx, r.db, catalogID, onlyEnabled).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Category, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(c)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// ----------------------------------------------------------------------------
// Items
// ----------------------------------------------------------------------------

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByExternalID finds an item by its upstream ID within a catalog
func (r *GormItemRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.Item, error) {
	var model models.ItemModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	return r.one(ctx, &model)
}

// FindByID finds an item by its ID within a catalog
func (r *GormItemRepository) FindByID(ctx context.Context, catalogID, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("catalog_id = ? AND id = ?", catalogID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.one(ctx, &model)
}

func (r *GormItemRepository) one(ctx context.Context, model *models.ItemModel) (*catalog.Item, error) {
	presence, err := loadPresence(ctx, r.db, models.PresenceOwnerItem, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(presence[model.ID]), nil
}

// ListByCatalog returns items ordered by ordinal then name
func (r *GormItemRepository) ListByCatalog(ctx context.Context, catalogID uuid.UUID, onlyEnabled bool) ([]*catalog.Item, error) {
	var rows []models.ItemModel
	if err := listByCatalog(ctx, r.db, catalogID, onlyEnabled).Find(&rows).Error; err != nil {
		return nil, err
	}
	presence, err := loadPresence(ctx, r.db, models.PresenceOwnerItem, modelIDs(rows, func(m models.ItemModel) uuid.UUID { return m.ID }))
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Item, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain(presence[rows[i].ID]))
	}
	return out, nil
}

// Save writes the item row and replaces its presence rows in one transaction
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	model := &models.ItemModel{}
	model.FromDomain(item)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return translateError(err)
		}
		return replacePresence(tx, models.PresenceOwnerItem, item.ID, item.Presence)
	})
}

// ----------------------------------------------------------------------------
// Variations
// ----------------------------------------------------------------------------

// GormVariationRepository implements VariationRepository using GORM
type GormVariationRepository struct {
	db *gorm.DB
}

// NewGormVariationRepository creates a new GormVariationRepository
func NewGormVariationRepository(db *gorm.DB) *GormVariationRepository {
	return &GormVariationRepository{db: db}
}

// FindByExternalID finds a variation by its upstream ID within a catalog
func (r *GormVariationRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.Variation, error) {
	var model models.VariationModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	overrides, err := loadOverrides(ctx, r.db, catalog.OverrideOwnerVariation, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(overrides[model.ID])
}

// ListByItems returns the variations of the given items ordered by ordinal then name
func (r *GormVariationRepository) ListByItems(ctx context.Context, itemIDs []uuid.UUID) ([]*catalog.Variation, error) {
	if len(itemIDs) == 0 {
		return []*catalog.Variation{}, nil
	}
	var rows []models.VariationModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("ordinal ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	overrides, err := loadOverrides(ctx, r.db, catalog.OverrideOwnerVariation, modelIDs(rows, func(m models.VariationModel) uuid.UUID { return m.ID }))
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Variation, 0, len(rows))
	for i := range rows {
		v, err := rows[i].ToDomain(overrides[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Save writes the variation row and replaces its overrides in one transaction
func (r *GormVariationRepository) Save(ctx context.Context, v *catalog.Variation) error {
	model := &models.VariationModel{}
	model.FromDomain(v)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return translateError(err)
		}
		return replaceOverrides(tx, catalog.OverrideOwnerVariation, v.ID, v.Overrides)
	})
}

// ----------------------------------------------------------------------------
// Modifier lists
// ----------------------------------------------------------------------------

// GormModifierListRepository implements ModifierListRepository using GORM
type GormModifierListRepository struct {
	db *gorm.DB
}

// NewGormModifierListRepository creates a new GormModifierListRepository
func NewGormModifierListRepository(db *gorm.DB) *GormModifierListRepository {
	return &GormModifierListRepository{db: db}
}

// FindByExternalID finds a modifier list by its upstream ID within a catalog
func (r *GormModifierListRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.ModifierList, error) {
	var model models.ModifierListModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the modifier lists with the given IDs ordered by ordinal then name
func (r *GormModifierListRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.ModifierList, error) {
	if len(ids) == 0 {
		return []*catalog.ModifierList{}, nil
	}
	var rows []models.ModifierListModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("ordinal ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.ModifierList, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a modifier list
func (r *GormModifierListRepository) Save(ctx context.Context, l *catalog.ModifierList) error {
	model := &models.ModifierListModel{}
	model.FromDomain(l)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// ----------------------------------------------------------------------------
// Modifiers
// ----------------------------------------------------------------------------

// GormModifierRepository implements ModifierRepository using GORM
type GormModifierRepository struct {
	db *gorm.DB
}

// NewGormModifierRepository creates a new GormModifierRepository
func NewGormModifierRepository(db *gorm.DB) *GormModifierRepository {
	return &GormModifierRepository{db: db}
}

// FindByExternalID finds a modifier by its upstream ID within a catalog
func (r *GormModifierRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.Modifier, error) {
	var model models.ModifierModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	mods, err := r.hydrate(ctx, []models.ModifierModel{model})
	if err != nil {
		return nil, err
	}
	return mods[0], nil
}

// ListByModifierLists returns the modifiers of the given lists ordered by ordinal then name
func (r *GormModifierRepository) ListByModifierLists(ctx context.Context, listIDs []uuid.UUID) ([]*catalog.Modifier, error) {
	if len(listIDs) == 0 {
		return []*catalog.Modifier{}, nil
	}
	var rows []models.ModifierModel
	if err := r.db.WithContext(ctx).
		Where("modifier_list_id IN ?", listIDs).
		Order("ordinal ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

func (r *GormModifierRepository) hydrate(ctx context.Context, rows []models.ModifierModel) ([]*catalog.Modifier, error) {
	ids := modelIDs(rows, func(m models.ModifierModel) uuid.UUID { return m.ID })
	presence, err := loadPresence(ctx, r.db, models.PresenceOwnerModifier, ids)
	if err != nil {
		return nil, err
	}
	overrides, err := loadOverrides(ctx, r.db, catalog.OverrideOwnerModifier, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Modifier, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain(presence[rows[i].ID], overrides[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Save writes the modifier row and replaces its presence rows and overrides in one transaction
func (r *GormModifierRepository) Save(ctx context.Context, m *catalog.Modifier) error {
	model := &models.ModifierModel{}
	model.FromDomain(m)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return translateError(err)
		}
		if err := replacePresence(tx, models.PresenceOwnerModifier, m.ID, m.Presence); err != nil {
			return err
		}
		return replaceOverrides(tx, catalog.OverrideOwnerModifier, m.ID, m.Overrides)
	})
}

// ----------------------------------------------------------------------------
// Item / modifier list links
// ----------------------------------------------------------------------------

// GormLinkRepository implements LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a new GormLinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// FindByExternalID finds a link by its composite external ID within a catalog
func (r *GormLinkRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.ItemModifierListLink, error) {
	var model models.ItemModifierListModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByItems returns the links of the given items ordered by ordinal
func (r *GormLinkRepository) ListByItems(ctx context.Context, itemIDs []uuid.UUID) ([]*catalog.ItemModifierListLink, error) {
	if len(itemIDs) == 0 {
		return []*catalog.ItemModifierListLink{}, nil
	}
	var rows []models.ItemModifierListModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("ordinal ASC, external_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.ItemModifierListLink, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a link
func (r *GormLinkRepository) Save(ctx context.Context, l *catalog.ItemModifierListLink) error {
	model := &models.ItemModifierListModel{}
	model.FromDomain(l)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// ----------------------------------------------------------------------------
// Images
// ----------------------------------------------------------------------------

// GormImageRepository implements ImageRepository using GORM
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// FindByExternalID finds an image by its upstream ID within a catalog
func (r *GormImageRepository) FindByExternalID(ctx context.Context, catalogID uuid.UUID, externalID string) (*catalog.CatalogImage, error) {
	var model models.ImageModel
	if err := findByExternalID(ctx, r.db, catalogID, externalID, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByParents returns the images attached to any of the given parents
func (r *GormImageRepository) ListByParents(ctx context.Context, parentIDs []uuid.UUID) ([]*catalog.CatalogImage, error) {
	if len(parentIDs) == 0 {
		return []*catalog.CatalogImage{}, nil
	}
	var rows []models.ImageModel
	if err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("ordinal ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.CatalogImage, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates an image reference
func (r *GormImageRepository) Save(ctx context.Context, img *catalog.CatalogImage) error {
	model := &models.ImageModel{}
	model.FromDomain(img)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func findByExternalID(ctx context.Context, db *gorm.DB, catalogID uuid.UUID, externalID string, dest any) error {
	if externalID == "" {
		return shared.ErrNotFound
	}
	err := db.WithContext(ctx).
		Where("catalog_id = ? AND external_id = ?", catalogID, externalID).
		First(dest).Error
	return translateError(err)
}

func listByCatalog(ctx context.Context, db *gorm.DB, catalogID uuid.UUID, onlyEnabled bool) *gorm.DB {
	query := db.WithContext(ctx).Where("catalog_id = ?", catalogID)
	if onlyEnabled {
		query = query.Where("enabled = ?", true)
	}
	return query.Order("ordinal ASC, name ASC")
}

func modelIDs[T any](rows []T, id func(T) uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, id(row))
	}
	return ids
}
