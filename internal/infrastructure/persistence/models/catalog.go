package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// CatalogModel is the persistence model for the per-merchant Catalog root
type CatalogModel struct {
	MerchantAggregateModel
	LastSyncedAt   *time.Time
	SyncGeneration int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CatalogModel) TableName() string {
	return "catalogs"
}

// ToDomain converts the persistence model to a domain Catalog
func (m *CatalogModel) ToDomain() *catalog.Catalog {
	return &catalog.Catalog{
		MerchantAggregateRoot: m.ToDomainMerchantAggregateRoot(),
		LastSyncedAt:          m.LastSyncedAt,
		SyncGeneration:        m.SyncGeneration,
	}
}

// FromDomain populates the persistence model from a domain Catalog
func (m *CatalogModel) FromDomain(c *catalog.Catalog) {
	m.FromDomainMerchantAggregateRoot(c.MerchantAggregateRoot)
	m.LastSyncedAt = c.LastSyncedAt
	m.SyncGeneration = c.SyncGeneration
}

// CategoryModel is the persistence model for Category
type CategoryModel struct {
	SyncedModel
	Name string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "catalog_categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{SyncedEntity: m.ToDomainSyncedEntity(), Name: m.Name}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainSyncedEntity(c.SyncedEntity)
	m.Name = c.Name
}

// ItemModel is the persistence model for Item. Presence sets live in PresenceModel rows.
type ItemModel struct {
	SyncedModel
	CategoryID            *uuid.UUID `gorm:"type:uuid;index"`
	Name                  string     `gorm:"type:varchar(255);not null"`
	Description           string     `gorm:"type:text;not null;default:''"`
	PresentAtAllLocations bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "catalog_items"
}

// ToDomain converts the persistence model and its presence rows to a domain Item
func (m *ItemModel) ToDomain(presence []PresenceModel) *catalog.Item {
	return &catalog.Item{
		SyncedEntity: m.ToDomainSyncedEntity(),
		CategoryID:   m.CategoryID,
		Name:         m.Name,
		Description:  m.Description,
		Presence:     PresenceToDomain(m.PresentAtAllLocations, presence),
	}
}

// FromDomain populates the persistence model from a domain Item
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainSyncedEntity(i.SyncedEntity)
	m.CategoryID = i.CategoryID
	m.Name = i.Name
	m.Description = i.Description
	m.PresentAtAllLocations = i.Presence.PresentAtAllLocations
}

// VariationModel is the persistence model for Variation
type VariationModel struct {
	SyncedModel
	ItemID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	PriceAmount   int64     `gorm:"not null;default:0"`
	PriceCurrency string    `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (VariationModel) TableName() string {
	return "catalog_item_variations"
}

// ToDomain converts the persistence model and its overrides to a domain Variation
func (m *VariationModel) ToDomain(overrides []PriceOverrideModel) (*catalog.Variation, error) {
	price, err := moneyFromColumns(m.PriceAmount, m.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("variation %s: %w", m.ID, err)
	}
	converted, err := PriceOverridesToDomain(overrides)
	if err != nil {
		return nil, fmt.Errorf("variation %s: %w", m.ID, err)
	}
	return &catalog.Variation{
		SyncedEntity: m.ToDomainSyncedEntity(),
		ItemID:       m.ItemID,
		Name:         m.Name,
		Price:        price,
		Overrides:    converted,
	}, nil
}

// FromDomain populates the persistence model from a domain Variation
func (m *VariationModel) FromDomain(v *catalog.Variation) {
	m.FromDomainSyncedEntity(v.SyncedEntity)
	m.ItemID = v.ItemID
	m.Name = v.Name
	m.PriceAmount = v.Price.Minor()
	m.PriceCurrency = string(v.Price.Currency())
}

// ModifierListModel is the persistence model for ModifierList
type ModifierListModel struct {
	SyncedModel
	Name          string                `gorm:"type:varchar(255);not null"`
	SelectionType catalog.SelectionType `gorm:"type:varchar(16);not null;default:'MULTIPLE'"`
}

// TableName returns the table name for GORM
func (ModifierListModel) TableName() string {
	return "catalog_modifier_lists"
}

// ToDomain converts the persistence model to a domain ModifierList
func (m *ModifierListModel) ToDomain() *catalog.ModifierList {
	return &catalog.ModifierList{
		SyncedEntity:  m.ToDomainSyncedEntity(),
		Name:          m.Name,
		SelectionType: m.SelectionType,
	}
}

// FromDomain populates the persistence model from a domain ModifierList
func (m *ModifierListModel) FromDomain(l *catalog.ModifierList) {
	m.FromDomainSyncedEntity(l.SyncedEntity)
	m.Name = l.Name
	m.SelectionType = l.SelectionType
}

// ModifierModel is the persistence model for Modifier
type ModifierModel struct {
	SyncedModel
	ModifierListID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                  string    `gorm:"type:varchar(255);not null"`
	PriceAmount           int64     `gorm:"not null;default:0"`
	PriceCurrency         string    `gorm:"type:varchar(3);not null"`
	PresentAtAllLocations bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ModifierModel) TableName() string {
	return "catalog_modifiers"
}

// ToDomain converts the persistence model with its presence rows and overrides to a domain Modifier
func (m *ModifierModel) ToDomain(presence []PresenceModel, overrides []PriceOverrideModel) (*catalog.Modifier, error) {
	price, err := moneyFromColumns(m.PriceAmount, m.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("modifier %s: %w", m.ID, err)
	}
	converted, err := PriceOverridesToDomain(overrides)
	if err != nil {
		return nil, fmt.Errorf("modifier %s: %w", m.ID, err)
	}
	return &catalog.Modifier{
		SyncedEntity:   m.ToDomainSyncedEntity(),
		ModifierListID: m.ModifierListID,
		Name:           m.Name,
		Price:          price,
		Presence:       PresenceToDomain(m.PresentAtAllLocations, presence),
		Overrides:      converted,
	}, nil
}

// FromDomain populates the persistence model from a domain Modifier
func (m *ModifierModel) FromDomain(mod *catalog.Modifier) {
	m.FromDomainSyncedEntity(mod.SyncedEntity)
	m.ModifierListID = mod.ModifierListID
	m.Name = mod.Name
	m.PriceAmount = mod.Price.Minor()
	m.PriceCurrency = string(mod.Price.Currency())
	m.PresentAtAllLocations = mod.Presence.PresentAtAllLocations
}

// ItemModifierListModel is the persistence model for ItemModifierListLink
type ItemModifierListModel struct {
	SyncedModel
	ItemID             uuid.UUID   `gorm:"type:uuid;not null;index"`
	ModifierListID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	MinSelected        int         `gorm:"not null;default:0"`
	MaxSelected        int         `gorm:"not null"`
	DefaultModifierIDs []uuid.UUID `gorm:"serializer:json;type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (ItemModifierListModel) TableName() string {
	return "catalog_item_modifier_lists"
}

// ToDomain converts the persistence model to a domain ItemModifierListLink
func (m *ItemModifierListModel) ToDomain() *catalog.ItemModifierListLink {
	return &catalog.ItemModifierListLink{
		SyncedEntity:       m.ToDomainSyncedEntity(),
		ItemID:             m.ItemID,
		ModifierListID:     m.ModifierListID,
		MinSelected:        m.MinSelected,
		MaxSelected:        m.MaxSelected,
		DefaultModifierIDs: m.DefaultModifierIDs,
	}
}

// FromDomain populates the persistence model from a domain ItemModifierListLink
func (m *ItemModifierListModel) FromDomain(l *catalog.ItemModifierListLink) {
	m.FromDomainSyncedEntity(l.SyncedEntity)
	m.ItemID = l.ItemID
	m.ModifierListID = l.ModifierListID
	m.MinSelected = l.MinSelected
	m.MaxSelected = l.MaxSelected
	m.DefaultModifierIDs = l.DefaultModifierIDs
	if m.DefaultModifierIDs == nil {
		m.DefaultModifierIDs = []uuid.UUID{}
	}
}

// ImageModel is the persistence model for CatalogImage
type ImageModel struct {
	SyncedModel
	ParentType catalog.ImageParentType `gorm:"type:varchar(16);not null"`
	ParentID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	URL        string                  `gorm:"type:text;not null"`
	Caption    string                  `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ImageModel) TableName() string {
	return "catalog_images"
}

// ToDomain converts the persistence model to a domain CatalogImage
func (m *ImageModel) ToDomain() *catalog.CatalogImage {
	return &catalog.CatalogImage{
		SyncedEntity: m.ToDomainSyncedEntity(),
		ParentType:   m.ParentType,
		ParentID:     m.ParentID,
		URL:          m.URL,
		Caption:      m.Caption,
	}
}

// FromDomain populates the persistence model from a domain CatalogImage
func (m *ImageModel) FromDomain(i *catalog.CatalogImage) {
	m.FromDomainSyncedEntity(i.SyncedEntity)
	m.ParentType = i.ParentType
	m.ParentID = i.ParentID
	m.URL = i.URL
	m.Caption = i.Caption
}

func moneyFromColumns(minor int64, currency string) (valueobject.Money, error) {
	return valueobject.NewMoneyFromMinor(minor, valueobject.Currency(currency))
}
