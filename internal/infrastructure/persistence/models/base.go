package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain(), Version: m.Version}
}

// MerchantAggregateModel provides common persistence fields for merchant-scoped aggregate roots
type MerchantAggregateModel struct {
	AggregateModel
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainMerchantAggregateRoot populates MerchantAggregateModel from the domain root
func (m *MerchantAggregateModel) FromDomainMerchantAggregateRoot(r shared.MerchantAggregateRoot) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.MerchantID = r.MerchantID
}

// ToDomainMerchantAggregateRoot converts MerchantAggregateModel to the domain root
func (m *MerchantAggregateModel) ToDomainMerchantAggregateRoot() shared.MerchantAggregateRoot {
	return shared.MerchantAggregateRoot{BaseAggregateRoot: m.ToDomainAggregateRoot(), MerchantID: m.MerchantID}
}

// SyncedModel holds the columns every mirrored catalog row shares.
// (catalog_id, external_id) is unique per table; the indexes live in the migrations
// because an embedded tag would give every table the same index name.
type SyncedModel struct {
	BaseModel
	CatalogID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalID *string   `gorm:"type:varchar(255)"`
	Ordinal    int       `gorm:"not null;default:0"`
	Enabled    bool      `gorm:"not null"`
}

// FromDomainSyncedEntity populates SyncedModel from the domain entity
func (m *SyncedModel) FromDomainSyncedEntity(e catalog.SyncedEntity) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.CatalogID = e.CatalogID
	m.ExternalID = e.ExternalID
	m.Ordinal = e.Ordinal
	m.Enabled = e.Enabled
}

// ToDomainSyncedEntity converts SyncedModel to the domain entity
func (m *SyncedModel) ToDomainSyncedEntity() catalog.SyncedEntity {
	return catalog.SyncedEntity{
		BaseEntity: m.BaseModel.ToDomain(),
		CatalogID:  m.CatalogID,
		ExternalID: m.ExternalID,
		Ordinal:    m.Ordinal,
		Enabled:    m.Enabled,
	}
}
