package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMerchantRepository implements MerchantRepository using GORM
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewGormMerchantRepository creates a new GormMerchantRepository
func NewGormMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// FindByID finds a merchant by its ID
func (r *GormMerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a merchant by its upstream merchant ID
func (r *GormMerchantRepository) FindByExternalID(ctx context.Context, externalMerchantID string) (*merchant.Merchant, error) {
	if externalMerchantID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).
		Where("external_merchant_id = ?", externalMerchantID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ListActive returns every active merchant ordered by creation time
func (r *GormMerchantRepository) ListActive(ctx context.Context) ([]*merchant.Merchant, error) {
	var merchantModels []models.MerchantModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", merchant.StatusActive).
		Order("created_at ASC").
		Find(&merchantModels).Error; err != nil {
		return nil, err
	}
	return merchantsToDomain(merchantModels), nil
}

// ListExpiringBefore returns active merchants holding a refresh token whose access token expires at or before t
func (r *GormMerchantRepository) ListExpiringBefore(ctx context.Context, t time.Time) ([]*merchant.Merchant, error) {
	var merchantModels []models.MerchantModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND refresh_token <> '' AND token_expires_at IS NOT NULL AND token_expires_at <= ?", merchant.StatusActive, t).
		Order("token_expires_at ASC").
		Find(&merchantModels).Error; err != nil {
		return nil, err
	}
	return merchantsToDomain(merchantModels), nil
}

// Save creates or updates a merchant with optimistic locking.
// Every mutation of a merchant bumps its version, so the stored row must
// still carry the previous one.
func (r *GormMerchantRepository) Save(ctx context.Context, m *merchant.Merchant) error {
	model := models.MerchantModelFromDomain(m)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.MerchantModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version-1).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.MerchantModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrConcurrencyConflict
		}
		if err := tx.Create(model).Error; err != nil {
			return translateError(err)
		}
		return nil
	})
}

func merchantsToDomain(rows []models.MerchantModel) []*merchant.Merchant {
	out := make([]*merchant.Merchant, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}
