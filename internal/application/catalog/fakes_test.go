package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	locationapp "github.com/menusync/backend/internal/application/location"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type syncedRow interface {
	GetID() uuid.UUID
	ExternalIDValue() string
}

// memTable is an in-memory table of synced rows that counts writes
type memTable[P syncedRow] struct {
	mu    sync.Mutex
	rows  []P
	saves int
}

func (t *memTable[P]) findExt(ext string) (P, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.ExternalIDValue() == ext {
			return r, nil
		}
	}
	var zero P
	return zero, shared.NotFoundf("external id %s not found", ext)
}

func (t *memTable[P]) findID(id uuid.UUID) (P, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.GetID() == id {
			return r, nil
		}
	}
	var zero P
	return zero, shared.NotFoundf("id %s not found", id)
}

func (t *memTable[P]) save(row P) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saves++
	for i, r := range t.rows {
		if r.GetID() == row.GetID() {
			t.rows[i] = row
			return nil
		}
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *memTable[P]) all() []P {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rows)
}

func (t *memTable[P]) writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saves
}

type fakeCategoryRepo struct{ memTable[*catalog.Category] }

func (r *fakeCategoryRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.Category, error) {
	return r.findExt(ext)
}

func (r *fakeCategoryRepo) ListByCatalog(_ context.Context, _ uuid.UUID, onlyEnabled bool) ([]*catalog.Category, error) {
	out := []*catalog.Category{}
	for _, c := range r.all() {
		if !onlyEnabled || c.Enabled {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *catalog.Category) error { return r.save(c) }

type fakeItemRepo struct{ memTable[*catalog.Item] }

func (r *fakeItemRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.Item, error) {
	return r.findExt(ext)
}

func (r *fakeItemRepo) FindByID(_ context.Context, _, id uuid.UUID) (*catalog.Item, error) {
	return r.findID(id)
}

func (r *fakeItemRepo) ListByCatalog(_ context.Context, _ uuid.UUID, onlyEnabled bool) ([]*catalog.Item, error) {
	out := []*catalog.Item{}
	for _, i := range r.all() {
		if !onlyEnabled || i.Enabled {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Ordinal < out[b].Ordinal })
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, i *catalog.Item) error { return r.save(i) }

type fakeVariationRepo struct{ memTable[*catalog.Variation] }

func (r *fakeVariationRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.Variation, error) {
	return r.findExt(ext)
}

func (r *fakeVariationRepo) ListByItems(_ context.Context, itemIDs []uuid.UUID) ([]*catalog.Variation, error) {
	out := []*catalog.Variation{}
	for _, v := range r.all() {
		if slices.Contains(itemIDs, v.ItemID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVariationRepo) Save(_ context.Context, v *catalog.Variation) error { return r.save(v) }

type fakeModifierListRepo struct{ memTable[*catalog.ModifierList] }

func (r *fakeModifierListRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.ModifierList, error) {
	return r.findExt(ext)
}

func (r *fakeModifierListRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.ModifierList, error) {
	out := []*catalog.ModifierList{}
	for _, l := range r.all() {
		if slices.Contains(ids, l.ID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeModifierListRepo) Save(_ context.Context, l *catalog.ModifierList) error {
	return r.save(l)
}

type fakeModifierRepo struct{ memTable[*catalog.Modifier] }

func (r *fakeModifierRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.Modifier, error) {
	return r.findExt(ext)
}

func (r *fakeModifierRepo) ListByModifierLists(_ context.Context, listIDs []uuid.UUID) ([]*catalog.Modifier, error) {
	out := []*catalog.Modifier{}
	for _, m := range r.all() {
		if slices.Contains(listIDs, m.ModifierListID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeModifierRepo) Save(_ context.Context, m *catalog.Modifier) error { return r.save(m) }

type fakeLinkRepo struct {
	memTable[*catalog.ItemModifierListLink]
}

func (r *fakeLinkRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.ItemModifierListLink, error) {
	return r.findExt(ext)
}

func (r *fakeLinkRepo) ListByItems(_ context.Context, itemIDs []uuid.UUID) ([]*catalog.ItemModifierListLink, error) {
	out := []*catalog.ItemModifierListLink{}
	for _, l := range r.all() {
		if slices.Contains(itemIDs, l.ItemID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) Save(_ context.Context, l *catalog.ItemModifierListLink) error {
	return r.save(l)
}

type fakeImageRepo struct{ memTable[*catalog.CatalogImage] }

func (r *fakeImageRepo) FindByExternalID(_ context.Context, _ uuid.UUID, ext string) (*catalog.CatalogImage, error) {
	return r.findExt(ext)
}

func (r *fakeImageRepo) ListByParents(_ context.Context, parentIDs []uuid.UUID) ([]*catalog.CatalogImage, error) {
	out := []*catalog.CatalogImage{}
	for _, img := range r.all() {
		if slices.Contains(parentIDs, img.ParentID) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) Save(_ context.Context, img *catalog.CatalogImage) error {
	return r.save(img)
}

// fakeStore bundles the catalog tables
type fakeStore struct {
	categories    *fakeCategoryRepo
	items         *fakeItemRepo
	variations    *fakeVariationRepo
	modifierLists *fakeModifierListRepo
	modifiers     *fakeModifierRepo
	links         *fakeLinkRepo
	images        *fakeImageRepo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories:    &fakeCategoryRepo{},
		items:         &fakeItemRepo{},
		variations:    &fakeVariationRepo{},
		modifierLists: &fakeModifierListRepo{},
		modifiers:     &fakeModifierRepo{},
		links:         &fakeLinkRepo{},
		images:        &fakeImageRepo{},
	}
}

func (s *fakeStore) repositories() Repositories {
	return Repositories{
		Categories:    s.categories,
		Items:         s.items,
		Variations:    s.variations,
		ModifierLists: s.modifierLists,
		Modifiers:     s.modifiers,
		Links:         s.links,
		Images:        s.images,
	}
}

func (s *fakeStore) totalWrites() int {
	return s.categories.writes() + s.items.writes() + s.variations.writes() +
		s.modifierLists.writes() + s.modifiers.writes() + s.links.writes() + s.images.writes()
}

type fakeCatalogRepo struct {
	mu       sync.Mutex
	catalogs map[uuid.UUID]*catalog.Catalog
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{catalogs: map[uuid.UUID]*catalog.Catalog{}}
}

func (r *fakeCatalogRepo) FindByMerchant(_ context.Context, merchantID uuid.UUID) (*catalog.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.catalogs[merchantID]
	if !ok {
		return nil, shared.NotFoundf("catalog for merchant %s not found", merchantID)
	}
	return c, nil
}

func (r *fakeCatalogRepo) Save(_ context.Context, c *catalog.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[c.MerchantID] = c
	return nil
}

type fakeMerchantRepo struct {
	merchants map[uuid.UUID]*merchant.Merchant
}

func (r *fakeMerchantRepo) FindByID(_ context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	m, ok := r.merchants[id]
	if !ok {
		return nil, shared.NotFoundf("merchant %s not found", id)
	}
	return m, nil
}

func (r *fakeMerchantRepo) FindByExternalID(_ context.Context, ext string) (*merchant.Merchant, error) {
	for _, m := range r.merchants {
		if m.ExternalMerchantID == ext {
			return m, nil
		}
	}
	return nil, shared.NotFoundf("merchant %s not found", ext)
}

func (r *fakeMerchantRepo) ListActive(context.Context) ([]*merchant.Merchant, error) {
	return nil, nil
}

func (r *fakeMerchantRepo) ListExpiringBefore(context.Context, time.Time) ([]*merchant.Merchant, error) {
	return nil, nil
}

func (r *fakeMerchantRepo) Save(_ context.Context, m *merchant.Merchant) error {
	r.merchants[m.ID] = m
	return nil
}

type fakeLocationRepo struct {
	locations []*location.Location
}

func (r *fakeLocationRepo) FindByID(_ context.Context, merchantID, id uuid.UUID) (*location.Location, error) {
	for _, l := range r.locations {
		if l.ID == id && l.MerchantID == merchantID {
			return l, nil
		}
	}
	return nil, shared.NotFoundf("location %s not found", id)
}

func (r *fakeLocationRepo) FindByExternalID(_ context.Context, merchantID uuid.UUID, ext string) (*location.Location, error) {
	for _, l := range r.locations {
		if l.ExternalIDValue() == ext && l.MerchantID == merchantID {
			return l, nil
		}
	}
	return nil, shared.NotFoundf("location %s not found", ext)
}

func (r *fakeLocationRepo) ListByMerchant(_ context.Context, merchantID uuid.UUID) ([]*location.Location, error) {
	return r.locations, nil
}

func (r *fakeLocationRepo) Save(_ context.Context, l *location.Location) error {
	r.locations = append(r.locations, l)
	return nil
}

// fakeLocationSync reports a fixed external-to-local location mapping
type fakeLocationSync struct {
	byExternalID map[string]uuid.UUID
	calls        int
	err          error
}

func (f *fakeLocationSync) SyncLocations(context.Context, *merchant.Merchant, string) (*locationapp.SyncResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	stats := catalog.EntityStats{Unchanged: len(f.byExternalID)}
	if f.calls == 1 {
		stats = catalog.EntityStats{Created: len(f.byExternalID)}
	}
	return &locationapp.SyncResult{ByExternalID: f.byExternalID, Stats: stats}, nil
}

type fakeLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newFakeLock() *fakeLock { return &fakeLock{held: map[uuid.UUID]bool{}} }

func (l *fakeLock) Acquire(_ context.Context, merchantID uuid.UUID, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[merchantID] {
		return nil, shared.ErrSyncInProgress
	}
	l.held[merchantID] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, merchantID)
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// MockCatalogSource is a mock implementation of integration.CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) ListCatalog(ctx context.Context, accessToken, cursor string, types []integration.ObjectType) (*integration.CatalogPage, error) {
	args := m.Called(ctx, accessToken, cursor, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CatalogPage), args.Error(1)
}

func (m *MockCatalogSource) ListLocations(ctx context.Context, accessToken string) ([]integration.UpstreamLocation, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.UpstreamLocation), args.Error(1)
}

func (m *MockCatalogSource) RetrieveLocation(ctx context.Context, accessToken, locationID string) (*integration.UpstreamLocation, error) {
	args := m.Called(ctx, accessToken, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.UpstreamLocation), args.Error(1)
}

func (m *MockCatalogSource) ExchangeCode(ctx context.Context, code string) (*integration.TokenGrant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenGrant), args.Error(1)
}

func (m *MockCatalogSource) RefreshToken(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenGrant), args.Error(1)
}

// catalog object builders

func usd(minor int64) *integration.UpstreamMoney {
	return &integration.UpstreamMoney{Amount: minor, Currency: "USD"}
}

func categoryObj(id, name string) integration.CatalogObject {
	return integration.CatalogObject{
		Type:     integration.ObjectTypeCategory,
		ID:       id,
		Category: &integration.CategoryData{Name: name},
	}
}

func itemObj(id, name, categoryID string, lists ...integration.ModifierListInfo) integration.CatalogObject {
	return integration.CatalogObject{
		Type:     integration.ObjectTypeItem,
		ID:       id,
		Presence: integration.UpstreamPresence{AllLocations: true},
		Item:     &integration.ItemData{Name: name, CategoryID: categoryID, ModifierLists: lists},
	}
}

func variationObj(id, itemID, name string, ordinal int, price int64, overrides ...integration.LocationOverride) integration.CatalogObject {
	return integration.CatalogObject{
		Type: integration.ObjectTypeItemVariation,
		ID:   id,
		Variation: &integration.VariationData{
			ItemID:            itemID,
			Name:              name,
			Ordinal:           ordinal,
			Price:             usd(price),
			LocationOverrides: overrides,
		},
	}
}

func modifierListObj(id, name string) integration.CatalogObject {
	return integration.CatalogObject{
		Type:         integration.ObjectTypeModifierList,
		ID:           id,
		ModifierList: &integration.ModifierListData{Name: name, SelectionType: "MULTIPLE"},
	}
}

func modifierObj(id, listID, name string, ordinal int, price int64) integration.CatalogObject {
	return integration.CatalogObject{
		Type:     integration.ObjectTypeModifier,
		ID:       id,
		Presence: integration.UpstreamPresence{AllLocations: true},
		Modifier: &integration.ModifierData{ModifierListID: listID, Name: name, Ordinal: ordinal, Price: usd(price)},
	}
}

func imageObj(id, url string) integration.CatalogObject {
	return integration.CatalogObject{
		Type:  integration.ObjectTypeImage,
		ID:    id,
		Image: &integration.ImageData{URL: url},
	}
}
