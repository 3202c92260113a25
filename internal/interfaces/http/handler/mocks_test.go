package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/menusync/backend/internal/application/catalog"
	integrationapp "github.com/menusync/backend/internal/application/integration"
	locationapp "github.com/menusync/backend/internal/application/location"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/stretchr/testify/mock"
)

// MockTokenManager is a mock implementation of TokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Connect(ctx context.Context, code string) (*merchant.Merchant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockTokenManager) RefreshMerchant(ctx context.Context, merchantID uuid.UUID) (*merchant.Merchant, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

// MockCatalogSynchronizer is a mock implementation of CatalogSynchronizer
type MockCatalogSynchronizer struct {
	mock.Mock
}

func (m *MockCatalogSynchronizer) Synchronize(ctx context.Context, merchantID uuid.UUID) (*catalogapp.SyncResult, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.SyncResult), args.Error(1)
}

// MockMenuReader is a mock implementation of MenuReader
type MockMenuReader struct {
	mock.Mock
}

func (m *MockMenuReader) ListMenu(ctx context.Context, merchantID, locationID uuid.UUID) (*catalogapp.MenuResponse, error) {
	args := m.Called(ctx, merchantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.MenuResponse), args.Error(1)
}

func (m *MockMenuReader) GetItem(ctx context.Context, merchantID, locationID, itemID uuid.UUID) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, merchantID, locationID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

// MockPickupQuoter is a mock implementation of PickupQuoter
type MockPickupQuoter struct {
	mock.Mock
}

func (m *MockPickupQuoter) QuotePickup(ctx context.Context, merchantID, locationID uuid.UUID, requested *time.Time) (*locationapp.PickupQuote, error) {
	args := m.Called(ctx, merchantID, locationID, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*locationapp.PickupQuote), args.Error(1)
}

// MockWebhookAcceptor is a mock implementation of WebhookAcceptor
type MockWebhookAcceptor struct {
	mock.Mock
}

func (m *MockWebhookAcceptor) Accept(ctx context.Context, body []byte, signature string) (*integrationapp.IntakeOutcome, error) {
	args := m.Called(ctx, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.IntakeOutcome), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}
