package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// replacePresence swaps the owner's presence rows for the given set
func replacePresence(tx *gorm.DB, ownerType models.PresenceOwnerType, ownerID uuid.UUID, p catalog.Presence) error {
	if err := tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&models.PresenceModel{}).Error; err != nil {
		return err
	}
	rows := models.PresenceModelsFromDomain(ownerType, ownerID, p)
	if len(rows) == 0 {
		return nil
	}
	return translateError(tx.Create(&rows).Error)
}

// loadPresence groups presence rows by owner
func loadPresence(ctx context.Context, db *gorm.DB, ownerType models.PresenceOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]models.PresenceModel, error) {
	grouped := make(map[uuid.UUID][]models.PresenceModel, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return grouped, nil
	}
	var rows []models.PresenceModel
	if err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		grouped[row.OwnerID] = append(grouped[row.OwnerID], row)
	}
	return grouped, nil
}

// replaceOverrides swaps the owner's price overrides for the given set.
// Overrides missing from the set are gone afterwards, which reverts those
// locations to the base price.
func replaceOverrides(tx *gorm.DB, ownerType catalog.OverrideOwnerType, ownerID uuid.UUID, overrides []catalog.LocationPriceOverride) error {
	if err := tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&models.PriceOverrideModel{}).Error; err != nil {
		return err
	}
	if len(overrides) == 0 {
		return nil
	}
	rows := make([]models.PriceOverrideModel, 0, len(overrides))
	for _, o := range overrides {
		rows = append(rows, models.PriceOverrideModelFromDomain(o))
	}
	return translateError(tx.Create(&rows).Error)
}

// loadOverrides groups override rows by owner
func loadOverrides(ctx context.Context, db *gorm.DB, ownerType catalog.OverrideOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]models.PriceOverrideModel, error) {
	grouped := make(map[uuid.UUID][]models.PriceOverrideModel, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return grouped, nil
	}
	var rows []models.PriceOverrideModel
	if err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs).
		Order("location_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		grouped[row.OwnerID] = append(grouped[row.OwnerID], row)
	}
	return grouped, nil
}
