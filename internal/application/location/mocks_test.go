package location

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/stretchr/testify/mock"
)

// MockLocationRepository is a mock implementation of location.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindByID(ctx context.Context, merchantID, id uuid.UUID) (*location.Location, error) {
	args := m.Called(ctx, merchantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByExternalID(ctx context.Context, merchantID uuid.UUID, externalID string) (*location.Location, error) {
	args := m.Called(ctx, merchantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*location.Location, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).([]*location.Location), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, l *location.Location) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

// MockMerchantRepository is a mock implementation of merchant.MerchantRepository
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) FindByExternalID(ctx context.Context, externalID string) (*merchant.Merchant, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) ListActive(ctx context.Context) ([]*merchant.Merchant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) ListExpiringBefore(ctx context.Context, t time.Time) ([]*merchant.Merchant, error) {
	args := m.Called(ctx, t)
	return args.Get(0).([]*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) Save(ctx context.Context, mer *merchant.Merchant) error {
	args := m.Called(ctx, mer)
	return args.Error(0)
}

// MockLocationSource is a mock implementation of LocationSource
type MockLocationSource struct {
	mock.Mock
}

func (m *MockLocationSource) ListLocations(ctx context.Context, accessToken string) ([]integration.UpstreamLocation, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.UpstreamLocation), args.Error(1)
}

func (m *MockLocationSource) RetrieveLocation(ctx context.Context, accessToken, locationID string) (*integration.UpstreamLocation, error) {
	args := m.Called(ctx, accessToken, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.UpstreamLocation), args.Error(1)
}
