package models

import (
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
)

// PresenceOwnerType names the table a presence row belongs to
type PresenceOwnerType string

const (
	PresenceOwnerItem     PresenceOwnerType = "ITEM"
	PresenceOwnerModifier PresenceOwnerType = "MODIFIER"
)

// PresenceModel is one explicit presence or absence of an entity at a location.
// A location may appear once with Present=true and once with Present=false.
type PresenceModel struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key"`
	OwnerType  PresenceOwnerType `gorm:"type:varchar(16);not null"`
	OwnerID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID         `gorm:"type:uuid;not null"`
	Present    bool              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PresenceModel) TableName() string {
	return "catalog_location_presence"
}

// PresenceModelsFromDomain expands a presence value into rows
func PresenceModelsFromDomain(ownerType PresenceOwnerType, ownerID uuid.UUID, p catalog.Presence) []PresenceModel {
	rows := make([]PresenceModel, 0, len(p.PresentAt)+len(p.AbsentAt))
	for _, loc := range p.PresentAt {
		rows = append(rows, PresenceModel{ID: uuid.New(), OwnerType: ownerType, OwnerID: ownerID, LocationID: loc, Present: true})
	}
	for _, loc := range p.AbsentAt {
		rows = append(rows, PresenceModel{ID: uuid.New(), OwnerType: ownerType, OwnerID: ownerID, LocationID: loc, Present: false})
	}
	return rows
}

// PresenceToDomain rebuilds a presence value from the owner flag and its rows
func PresenceToDomain(presentAtAll bool, rows []PresenceModel) catalog.Presence {
	var present, absent []uuid.UUID
	for _, r := range rows {
		if r.Present {
			present = append(present, r.LocationID)
		} else {
			absent = append(absent, r.LocationID)
		}
	}
	return catalog.NewPresence(presentAtAll, present, absent)
}

// PriceOverrideModel is a per-location price of a variation or modifier
type PriceOverrideModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primary_key"`
	OwnerType     catalog.OverrideOwnerType `gorm:"type:varchar(16);not null"`
	OwnerID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	LocationID    uuid.UUID                 `gorm:"type:uuid;not null"`
	PriceAmount   int64                     `gorm:"not null"`
	PriceCurrency string                    `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (PriceOverrideModel) TableName() string {
	return "catalog_location_price_overrides"
}

// ToDomain converts the row to a domain override
func (m *PriceOverrideModel) ToDomain() (catalog.LocationPriceOverride, error) {
	price, err := moneyFromColumns(m.PriceAmount, m.PriceCurrency)
	if err != nil {
		return catalog.LocationPriceOverride{}, err
	}
	return catalog.LocationPriceOverride{
		ID:         m.ID,
		OwnerType:  m.OwnerType,
		OwnerID:    m.OwnerID,
		LocationID: m.LocationID,
		Price:      price,
	}, nil
}

// PriceOverrideModelFromDomain creates a row from a domain override
func PriceOverrideModelFromDomain(o catalog.LocationPriceOverride) PriceOverrideModel {
	id := o.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return PriceOverrideModel{
		ID:            id,
		OwnerType:     o.OwnerType,
		OwnerID:       o.OwnerID,
		LocationID:    o.LocationID,
		PriceAmount:   o.Price.Minor(),
		PriceCurrency: string(o.Price.Currency()),
	}
}

// PriceOverridesToDomain converts override rows
func PriceOverridesToDomain(rows []PriceOverrideModel) ([]catalog.LocationPriceOverride, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]catalog.LocationPriceOverride, 0, len(rows))
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&MerchantModel{},
		&LocationModel{},
		&BusinessHoursModel{},
		&CatalogModel{},
		&CategoryModel{},
		&ItemModel{},
		&VariationModel{},
		&ModifierListModel{},
		&ModifierModel{},
		&ItemModifierListModel{},
		&ImageModel{},
		&PresenceModel{},
		&PriceOverrideModel{},
	}
}
