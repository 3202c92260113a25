package models

import (
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// LocationModel is the persistence model for the Location aggregate
type LocationModel struct {
	MerchantAggregateModel
	ExternalID   *string         `gorm:"type:varchar(255)"`
	Name         string          `gorm:"type:varchar(255);not null"`
	Timezone     string          `gorm:"type:varchar(64);not null;default:'UTC'"`
	IsMain       bool            `gorm:"not null;default:false"`
	Status       location.Status `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	AddressLine1 string          `gorm:"type:varchar(255);not null;default:''"`
	AddressLine2 string          `gorm:"type:varchar(255);not null;default:''"`
	Locality     string          `gorm:"type:varchar(128);not null;default:''"`
	Region       string          `gorm:"type:varchar(128);not null;default:''"`
	PostalCode   string          `gorm:"type:varchar(32);not null;default:''"`
	Country      string          `gorm:"type:varchar(2);not null;default:''"`

	BusinessHours []BusinessHoursModel `gorm:"foreignKey:LocationID"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location
func (m *LocationModel) ToDomain() *location.Location {
	l := &location.Location{
		MerchantAggregateRoot: m.ToDomainMerchantAggregateRoot(),
		ExternalID:            m.ExternalID,
		Name:                  m.Name,
		Timezone:              m.Timezone,
		IsMain:                m.IsMain,
		Status:                m.Status,
		Address:               valueobject.NewAddress(m.AddressLine1, m.AddressLine2, m.Locality, m.Region, m.PostalCode, m.Country),
	}
	for _, h := range m.BusinessHours {
		l.BusinessHours = append(l.BusinessHours, h.ToDomain())
	}
	return l
}

// FromDomain populates the persistence model from a domain Location.
// Business hours are written separately by the repository.
func (m *LocationModel) FromDomain(l *location.Location) {
	m.FromDomainMerchantAggregateRoot(l.MerchantAggregateRoot)
	m.ExternalID = l.ExternalID
	m.Name = l.Name
	m.Timezone = l.Timezone
	m.IsMain = l.IsMain
	m.Status = l.Status
	m.AddressLine1 = l.Address.Line1
	m.AddressLine2 = l.Address.Line2
	m.Locality = l.Address.Locality
	m.Region = l.Address.Region
	m.PostalCode = l.Address.PostalCode
	m.Country = l.Address.Country
}

// BusinessHoursModel is one weekly opening period of a location
type BusinessHoursModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	LocationID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Position       int              `gorm:"not null"`
	DayOfWeek      location.DayCode `gorm:"type:varchar(3);not null"`
	StartLocalTime string           `gorm:"type:varchar(8);not null"`
	EndLocalTime   string           `gorm:"type:varchar(8);not null"`
}

// TableName returns the table name for GORM
func (BusinessHoursModel) TableName() string {
	return "location_business_hours"
}

// ToDomain converts the row to a domain period
func (m *BusinessHoursModel) ToDomain() location.BusinessHoursPeriod {
	return location.BusinessHoursPeriod{
		DayOfWeek:      m.DayOfWeek,
		StartLocalTime: m.StartLocalTime,
		EndLocalTime:   m.EndLocalTime,
	}
}

// BusinessHoursModelsFromDomain creates one row per period, keeping their order
func BusinessHoursModelsFromDomain(locationID uuid.UUID, periods []location.BusinessHoursPeriod) []BusinessHoursModel {
	rows := make([]BusinessHoursModel, 0, len(periods))
	for i, p := range periods {
		rows = append(rows, BusinessHoursModel{
			ID:             uuid.New(),
			LocationID:     locationID,
			Position:       i,
			DayOfWeek:      p.DayOfWeek,
			StartLocalTime: p.StartLocalTime,
			EndLocalTime:   p.EndLocalTime,
		})
	}
	return rows
}
