package merchant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MerchantRepository persists merchants and their credentials
type MerchantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Merchant, error)
	FindByExternalID(ctx context.Context, externalMerchantID string) (*Merchant, error)

	// ListActive returns every merchant with status active
	ListActive(ctx context.Context) ([]*Merchant, error)

	// ListExpiringBefore returns active merchants whose credential expires at or before t
	ListExpiringBefore(ctx context.Context, t time.Time) ([]*Merchant, error)

	Save(ctx context.Context, m *Merchant) error
}
