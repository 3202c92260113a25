package models

import (
	"time"

	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
)

// MerchantModel is the persistence model for the Merchant aggregate
type MerchantModel struct {
	AggregateModel
	ExternalMerchantID string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_merchants_external_id"`
	Name               string          `gorm:"type:varchar(255);not null;default:''"`
	Status             merchant.Status `gorm:"type:varchar(20);not null;default:'active'"`
	AccessToken        string          `gorm:"type:text;not null;default:''"`
	RefreshToken       string          `gorm:"type:text;not null;default:''"`
	TokenExpiresAt     *time.Time
	LastRefreshedAt    *time.Time
}

// TableName returns the table name for GORM
func (MerchantModel) TableName() string {
	return "merchants"
}

// ToDomain converts the persistence model to a domain Merchant
func (m *MerchantModel) ToDomain() *merchant.Merchant {
	credential := merchant.Credential{AccessToken: m.AccessToken, RefreshToken: m.RefreshToken}
	if m.TokenExpiresAt != nil {
		credential.ExpiresAt = *m.TokenExpiresAt
	}
	return &merchant.Merchant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ExternalMerchantID: m.ExternalMerchantID,
		Name:               m.Name,
		Status:             m.Status,
		Credential:         credential,
		LastRefreshedAt:    m.LastRefreshedAt,
	}
}

// FromDomain populates the persistence model from a domain Merchant
func (m *MerchantModel) FromDomain(mer *merchant.Merchant) {
	m.FromDomainAggregateRoot(mer.BaseAggregateRoot)
	m.ExternalMerchantID = mer.ExternalMerchantID
	m.Name = mer.Name
	m.Status = mer.Status
	m.AccessToken = mer.Credential.AccessToken
	m.RefreshToken = mer.Credential.RefreshToken
	m.TokenExpiresAt = nil
	if !mer.Credential.ExpiresAt.IsZero() {
		expires := mer.Credential.ExpiresAt
		m.TokenExpiresAt = &expires
	}
	m.LastRefreshedAt = mer.LastRefreshedAt
}

// MerchantModelFromDomain creates a new persistence model from a domain Merchant
func MerchantModelFromDomain(mer *merchant.Merchant) *MerchantModel {
	m := &MerchantModel{}
	m.FromDomain(mer)
	return m
}
