package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) withHours(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("BusinessHours", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a location of a merchant by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, merchantID, id uuid.UUID) (*location.Location, error) {
	var model models.LocationModel
	if err := r.withHours(ctx).
		Where("merchant_id = ? AND id = ?", merchantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a location of a merchant by its upstream ID
func (r *GormLocationRepository) FindByExternalID(ctx context.Context, merchantID uuid.UUID, externalID string) (*location.Location, error) {
	if externalID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.LocationModel
	if err := r.withHours(ctx).
		Where("merchant_id = ? AND external_id = ?", merchantID, externalID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ListByMerchant returns a merchant's locations, main location first
func (r *GormLocationRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*location.Location, error) {
	var locationModels []models.LocationModel
	if err := r.withHours(ctx).
		Where("merchant_id = ?", merchantID).
		Order("is_main DESC, name ASC").
		Find(&locationModels).Error; err != nil {
		return nil, err
	}
	out := make([]*location.Location, 0, len(locationModels))
	for i := range locationModels {
		out = append(out, locationModels[i].ToDomain())
	}
	return out, nil
}

// Save writes the location row and replaces its business hours in one transaction
func (r *GormLocationRepository) Save(ctx context.Context, l *location.Location) error {
	model := &models.LocationModel{}
	model.FromDomain(l)
	hours := models.BusinessHoursModelsFromDomain(l.ID, l.BusinessHours)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("BusinessHours").Save(model).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("location_id = ?", l.ID).Delete(&models.BusinessHoursModel{}).Error; err != nil {
			return err
		}
		if len(hours) == 0 {
			return nil
		}
		return tx.Create(&hours).Error
	})
}
