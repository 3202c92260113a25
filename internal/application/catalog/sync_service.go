package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	locationapp "github.com/menusync/backend/internal/application/location"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LocationSynchronizer mirrors a merchant's locations ahead of the catalog
type LocationSynchronizer interface {
	SyncLocations(ctx context.Context, m *merchant.Merchant, accessToken string) (*locationapp.SyncResult, error)
}

// SyncServiceConfig contains configuration for the sync service
type SyncServiceConfig struct {
	// LockTTL bounds how long a crashed run can block the next one
	LockTTL time.Duration
	// MaxPages bounds catalog pagination
	MaxPages int
	// DefaultCurrency prices objects the upstream sent without an amount
	DefaultCurrency valueobject.Currency
}

// DefaultSyncServiceConfig returns default configuration
func DefaultSyncServiceConfig() SyncServiceConfig {
	return SyncServiceConfig{
		LockTTL:         10 * time.Minute,
		MaxPages:        integration.DefaultMaxPages,
		DefaultCurrency: valueobject.USD,
	}
}

// SyncResult summarizes one completed Synchronize run
type SyncResult struct {
	MerchantID uuid.UUID         `json:"merchant_id"`
	CatalogID  uuid.UUID         `json:"catalog_id"`
	Generation int64             `json:"generation"`
	Stats      catalog.SyncStats `json:"stats"`
	Writes     int               `json:"writes"`
	StartedAt  time.Time         `json:"started_at"`
	Duration   time.Duration     `json:"duration"`
}

// SyncService mirrors a merchant's upstream catalog into the local store
type SyncService struct {
	merchants  merchant.MerchantRepository
	catalogs   catalog.CatalogRepository
	lock       catalog.SyncLock
	source     integration.CatalogSource
	locations  LocationSynchronizer
	reconciler *Reconciler
	publisher  shared.EventPublisher
	metrics    *telemetry.Metrics
	config     SyncServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewSyncService creates a new sync service. metrics may be nil.
func NewSyncService(
	merchants merchant.MerchantRepository,
	catalogs catalog.CatalogRepository,
	repos Repositories,
	lock catalog.SyncLock,
	source integration.CatalogSource,
	locations LocationSynchronizer,
	publisher shared.EventPublisher,
	metrics *telemetry.Metrics,
	config SyncServiceConfig,
	logger *zap.Logger,
) *SyncService {
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = valueobject.USD
	}
	return &SyncService{
		merchants:  merchants,
		catalogs:   catalogs,
		lock:       lock,
		source:     source,
		locations:  locations,
		reconciler: NewReconciler(repos),
		publisher:  publisher,
		metrics:    metrics,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Synchronize pulls the full upstream catalog of a merchant and reconciles it into the
// local mirror. Runs for the same merchant never overlap: a second caller gets
// shared.ErrSyncInProgress. The run is not transactional; the first failing entity
// aborts it and rows written before stay written.
func (s *SyncService) Synchronize(ctx context.Context, merchantID uuid.UUID) (*SyncResult, error) {
	ctx = logger.WithMerchantID(ctx, merchantID.String())
	ctx, span := telemetry.StartSpan(ctx, "catalog", "Synchronize",
		telemetry.AttrMerchantID, merchantID.String(),
		telemetry.AttrSyncTrigger, telemetry.TriggerFrom(ctx),
	)
	defer span.End()

	log := logger.Enrich(ctx, s.logger)
	startedAt := s.now()

	m, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	token, err := m.AccessToken(startedAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	release, err := s.lock.Acquire(ctx, merchantID, s.config.LockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	c, err := s.EnsureCatalog(ctx, merchantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.AttrCatalogID, c.ID.String())

	stats, err := s.run(ctx, m, c, token)
	duration := s.now().Sub(startedAt)
	s.metrics.RecordSyncRun(ctx, duration, err)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Catalog sync failed", zap.Error(err), zap.Duration("duration", duration))
		s.publish(ctx, catalog.NewCatalogSyncFailedEvent(merchantID, c.ID, err.Error()))
		return nil, err
	}

	c.MarkSynchronized(s.now(), stats)
	if err := s.catalogs.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	s.publish(ctx, c.GetDomainEvents()...)
	c.ClearDomainEvents()

	for entityType, st := range stats {
		s.metrics.RecordEntities(ctx, string(entityType), st.Created, st.Updated, st.Unchanged)
	}

	result := &SyncResult{
		MerchantID: merchantID,
		CatalogID:  c.ID,
		Generation: c.SyncGeneration,
		Stats:      stats,
		Writes:     stats.Writes(),
		StartedAt:  startedAt,
		Duration:   duration,
	}
	log.Info("Catalog synchronized",
		zap.Int64("generation", result.Generation),
		zap.Int("writes", result.Writes),
		zap.Duration("duration", duration),
	)
	return result, nil
}

// EnsureCatalog returns the merchant's catalog, creating an empty one on first use
func (s *SyncService) EnsureCatalog(ctx context.Context, merchantID uuid.UUID) (*catalog.Catalog, error) {
	c, err := s.catalogs.FindByMerchant(ctx, merchantID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if c, err = catalog.NewCatalog(merchantID); err != nil {
		return nil, err
	}
	if err := s.catalogs.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create catalog: %w", err)
	}
	logger.Enrich(ctx, s.logger).Info("Catalog created", zap.String("catalog_id", c.ID.String()))
	return c, nil
}

func (s *SyncService) run(ctx context.Context, m *merchant.Merchant, c *catalog.Catalog, token string) (catalog.SyncStats, error) {
	locs, err := s.locations.SyncLocations(ctx, m, token)
	if err != nil {
		return nil, fmt.Errorf("sync locations: %w", err)
	}

	batch, err := integration.FetchBatch(ctx, s.source, token, integration.SyncedObjectTypes, s.config.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	state := NewReconcileState(c.ID, s.config.DefaultCurrency, locs.ByExternalID)
	state.Stats[catalog.EntityLocation] = locs.Stats

	if err := s.reconcileBatch(ctx, state, batch); err != nil {
		return nil, err
	}
	return state.Stats, nil
}

// reconcileBatch applies the batch parents first so every reference resolves against
// rows reconciled earlier in the same pass.
func (s *SyncService) reconcileBatch(ctx context.Context, state *ReconcileState, batch *integration.CatalogBatch) error {
	r := s.reconciler
	for _, obj := range batch.Objects(integration.ObjectTypeCategory) {
		if _, err := r.ReconcileCategory(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	items := batch.Objects(integration.ObjectTypeItem)
	for _, obj := range items {
		if _, err := r.ReconcileItem(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	for _, obj := range batch.Objects(integration.ObjectTypeModifierList) {
		if _, err := r.ReconcileModifierList(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	for _, obj := range batch.Objects(integration.ObjectTypeModifier) {
		if _, err := r.ReconcileModifier(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	for _, obj := range batch.Objects(integration.ObjectTypeItemVariation) {
		if _, err := r.ReconcileVariation(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	for _, obj := range items {
		if _, err := r.ReconcileLinks(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	for _, obj := range batch.Objects(integration.ObjectTypeImage) {
		if _, err := r.ReconcileImage(ctx, state, obj); err != nil {
			return wrapEntityErr(obj, err)
		}
	}
	return nil
}

func wrapEntityErr(obj integration.CatalogObject, err error) error {
	return fmt.Errorf("reconcile %s %s: %w", obj.Type, obj.ID, err)
}

func (s *SyncService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Failed to publish catalog events", zap.Error(err))
	}
}
