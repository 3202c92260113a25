package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type syncFixture struct {
	svc       *SyncService
	store     *fakeStore
	catalogs  *fakeCatalogRepo
	merchants *fakeMerchantRepo
	source    *MockCatalogSource
	locations *fakeLocationSync
	lock      *fakeLock
	publisher *recordingPublisher
	merchant  *merchant.Merchant
	l1, l2    uuid.UUID
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	m, err := merchant.NewMerchant("EXT-M1", "Corner Cafe")
	require.NoError(t, err)
	require.NoError(t, m.ApplyTokens("access-1", "refresh-1", time.Now().Add(24*time.Hour)))
	m.ClearDomainEvents()

	f := &syncFixture{
		store:     newFakeStore(),
		catalogs:  newFakeCatalogRepo(),
		merchants: &fakeMerchantRepo{merchants: map[uuid.UUID]*merchant.Merchant{m.ID: m}},
		source:    new(MockCatalogSource),
		lock:      newFakeLock(),
		publisher: &recordingPublisher{},
		merchant:  m,
		l1:        uuid.New(),
		l2:        uuid.New(),
	}
	f.locations = &fakeLocationSync{byExternalID: map[string]uuid.UUID{"L1": f.l1, "L2": f.l2}}
	f.svc = NewSyncService(
		f.merchants,
		f.catalogs,
		f.store.repositories(),
		f.lock,
		f.source,
		f.locations,
		f.publisher,
		nil,
		DefaultSyncServiceConfig(),
		zap.NewNop(),
	)
	return f
}

// expectPage queues one single-page ListCatalog response
func (f *syncFixture) expectPage(objects ...integration.CatalogObject) {
	f.source.On("ListCatalog", mock.Anything, "access-1", "", mock.Anything).
		Return(&integration.CatalogPage{Objects: objects}, nil).Once()
}

func cafeCatalog() []integration.CatalogObject {
	item := itemObj("ITEM1", "Latte", "CAT1", integration.ModifierListInfo{
		ModifierListID:     "ML1",
		MaxSelected:        2,
		DefaultModifierIDs: []string{"MOD1"},
		Enabled:            true,
	})
	item.ImageIDs = []string{"IMG1"}
	return []integration.CatalogObject{
		categoryObj("CAT1", "Drinks"),
		item,
		variationObj("VAR1", "ITEM1", "Small", 1, 350, integration.LocationOverride{LocationID: "L2", Price: usd(400)}),
		variationObj("VAR2", "ITEM1", "Large", 2, 450),
		modifierListObj("ML1", "Milk"),
		modifierObj("MOD1", "ML1", "Oat", 1, 50),
		modifierObj("MOD2", "ML1", "Soy", 2, 60),
		imageObj("IMG1", "https://cdn.example.com/latte.png"),
	}
}

func TestSyncService_Synchronize(t *testing.T) {
	ctx := context.Background()

	t.Run("first run creates the mirror and publishes CatalogSynchronized", func(t *testing.T) {
		f := newSyncFixture(t)
		f.expectPage(cafeCatalog()...)

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), result.Generation)
		assert.Equal(t, 1, result.Stats[catalog.EntityCategory].Created)
		assert.Equal(t, 1, result.Stats[catalog.EntityItem].Created)
		assert.Equal(t, 2, result.Stats[catalog.EntityVariation].Created)
		assert.Equal(t, 1, result.Stats[catalog.EntityModifierList].Created)
		assert.Equal(t, 2, result.Stats[catalog.EntityModifier].Created)
		assert.Equal(t, 1, result.Stats[catalog.EntityLink].Created)
		assert.Equal(t, 1, result.Stats[catalog.EntityImage].Created)
		assert.Equal(t, 2, result.Stats[catalog.EntityLocation].Created)
		assert.Equal(t, 11, result.Writes)

		item, err := f.store.items.findExt("ITEM1")
		require.NoError(t, err)
		category, err := f.store.categories.findExt("CAT1")
		require.NoError(t, err)
		require.NotNil(t, item.CategoryID)
		assert.Equal(t, category.ID, *item.CategoryID)

		img, err := f.store.images.findExt("IMG1")
		require.NoError(t, err)
		assert.Equal(t, catalog.ImageParentItem, img.ParentType)
		assert.Equal(t, item.ID, img.ParentID)

		link, err := f.store.links.findExt("ITEM1:ML1")
		require.NoError(t, err)
		oat, err := f.store.modifiers.findExt("MOD1")
		require.NoError(t, err)
		assert.True(t, link.IsDefault(oat.ID))

		c, err := f.catalogs.FindByMerchant(ctx, f.merchant.ID)
		require.NoError(t, err)
		assert.False(t, c.NeverSynced())
		assert.Equal(t, []string{catalog.EventTypeCatalogSynchronized}, f.publisher.types())
		f.source.AssertExpectations(t)
	})

	t.Run("second run with unchanged upstream performs zero writes", func(t *testing.T) {
		f := newSyncFixture(t)
		f.expectPage(cafeCatalog()...)
		f.expectPage(cafeCatalog()...)

		_, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)
		writesAfterFirst := f.store.totalWrites()

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Writes)
		assert.Equal(t, writesAfterFirst, f.store.totalWrites())
		assert.Equal(t, 2, result.Stats[catalog.EntityVariation].Unchanged)
		assert.Equal(t, int64(2), result.Generation)
	})

	t.Run("renamed category keeps its local ordinal", func(t *testing.T) {
		f := newSyncFixture(t)
		f.expectPage(cafeCatalog()...)
		renamed := cafeCatalog()
		renamed[0] = categoryObj("CAT1", "Beverages")
		f.expectPage(renamed...)

		_, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		category, err := f.store.categories.findExt("CAT1")
		require.NoError(t, err)
		category.SetOrdinal(5)
		require.NoError(t, f.store.categories.Save(ctx, category))

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		category, err = f.store.categories.findExt("CAT1")
		require.NoError(t, err)
		assert.Equal(t, "Beverages", category.Name)
		assert.Equal(t, 5, category.Ordinal)
		assert.Equal(t, 1, result.Stats[catalog.EntityCategory].Updated)
		assert.Equal(t, 1, result.Writes)
	})

	t.Run("dropped override reverts the location to the base price", func(t *testing.T) {
		f := newSyncFixture(t)
		f.expectPage(cafeCatalog()...)
		withoutOverride := cafeCatalog()
		withoutOverride[2] = variationObj("VAR1", "ITEM1", "Small", 1, 350)
		f.expectPage(withoutOverride...)

		_, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)
		small, err := f.store.variations.findExt("VAR1")
		require.NoError(t, err)
		assert.Equal(t, int64(400), small.PriceAt(f.l2).Minor())
		assert.Equal(t, int64(350), small.PriceAt(f.l1).Minor())

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		small, err = f.store.variations.findExt("VAR1")
		require.NoError(t, err)
		assert.Equal(t, int64(350), small.PriceAt(f.l2).Minor())
		assert.Equal(t, 1, result.Stats[catalog.EntityVariation].Updated)
	})

	t.Run("accumulates every page before reconciling", func(t *testing.T) {
		f := newSyncFixture(t)
		objects := cafeCatalog()
		f.source.On("ListCatalog", mock.Anything, "access-1", "", mock.Anything).
			Return(&integration.CatalogPage{Objects: objects[:3], Cursor: "page-2"}, nil).Once()
		f.source.On("ListCatalog", mock.Anything, "access-1", "page-2", mock.Anything).
			Return(&integration.CatalogPage{Objects: objects[3:]}, nil).Once()

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Stats[catalog.EntityVariation].Created)
		assert.Equal(t, 2, result.Stats[catalog.EntityModifier].Created)
		f.source.AssertNumberOfCalls(t, "ListCatalog", 2)
	})

	t.Run("missing parent aborts the run and publishes CatalogSyncFailed", func(t *testing.T) {
		f := newSyncFixture(t)
		f.expectPage(categoryObj("CAT1", "Drinks"), itemObj("ITEM1", "Latte", "CAT404"))

		result, err := f.svc.Synchronize(ctx, f.merchant.ID)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Contains(t, err.Error(), "ITEM1")

		c, err := f.catalogs.FindByMerchant(ctx, f.merchant.ID)
		require.NoError(t, err)
		assert.True(t, c.NeverSynced())
		assert.Equal(t, []string{catalog.EventTypeCatalogSyncFailed}, f.publisher.types())
		assert.Equal(t, 0, f.store.items.writes())
	})

	t.Run("held lock returns ErrSyncInProgress without calling upstream", func(t *testing.T) {
		f := newSyncFixture(t)
		release, err := f.lock.Acquire(ctx, f.merchant.ID, time.Minute)
		require.NoError(t, err)
		defer release()

		_, err = f.svc.Synchronize(ctx, f.merchant.ID)
		assert.ErrorIs(t, err, shared.ErrSyncInProgress)
		f.source.AssertNotCalled(t, "ListCatalog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.locations.calls)
	})

	t.Run("unknown merchant is NotFound", func(t *testing.T) {
		f := newSyncFixture(t)
		_, err := f.svc.Synchronize(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("revoked merchant is Unauthorized", func(t *testing.T) {
		f := newSyncFixture(t)
		f.merchant.Revoke()

		_, err := f.svc.Synchronize(ctx, f.merchant.ID)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("location sync failure aborts before the catalog is fetched", func(t *testing.T) {
		f := newSyncFixture(t)
		f.locations.err = integration.ErrUpstreamUnavailable

		_, err := f.svc.Synchronize(ctx, f.merchant.ID)
		assert.ErrorIs(t, err, integration.ErrUpstreamUnavailable)
		f.source.AssertNotCalled(t, "ListCatalog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSyncService_EnsureCatalog(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	first, err := f.svc.EnsureCatalog(ctx, f.merchant.ID)
	require.NoError(t, err)
	second, err := f.svc.EnsureCatalog(ctx, f.merchant.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(0), second.SyncGeneration)
}

func TestToMoney(t *testing.T) {
	t.Run("missing price is zero in the default currency", func(t *testing.T) {
		m, err := toMoney(nil, valueobject.EUR)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
		assert.Equal(t, valueobject.EUR, m.Currency())
	})

	t.Run("missing currency falls back to the default", func(t *testing.T) {
		m, err := toMoney(&integration.UpstreamMoney{Amount: 125}, valueobject.USD)
		require.NoError(t, err)
		assert.Equal(t, int64(125), m.Minor())
		assert.Equal(t, valueobject.USD, m.Currency())
	})
}
