package location

import (
	"context"

	"github.com/google/uuid"
)

// LocationRepository persists locations with their business hours
type LocationRepository interface {
	FindByID(ctx context.Context, merchantID, id uuid.UUID) (*Location, error)
	FindByExternalID(ctx context.Context, merchantID uuid.UUID, externalID string) (*Location, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*Location, error)

	// Save writes the location row and replaces its business hours in one transaction
	Save(ctx context.Context, l *Location) error
}
