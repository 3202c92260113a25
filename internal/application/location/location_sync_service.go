package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LocationSource is the location half of the upstream client
type LocationSource interface {
	ListLocations(ctx context.Context, accessToken string) ([]integration.UpstreamLocation, error)
	RetrieveLocation(ctx context.Context, accessToken, locationID string) (*integration.UpstreamLocation, error)
}

// SyncResult maps upstream location IDs to local ones after a location sync
type SyncResult struct {
	ByExternalID map[string]uuid.UUID
	Stats        catalog.EntityStats
}

// LocationSyncService mirrors a merchant's locations and their business hours
type LocationSyncService struct {
	locations location.LocationRepository
	merchants merchant.MerchantRepository
	source    LocationSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocationSyncService creates a new location sync service
func NewLocationSyncService(
	locations location.LocationRepository,
	merchants merchant.MerchantRepository,
	source LocationSource,
	logger *zap.Logger,
) *LocationSyncService {
	return &LocationSyncService{
		locations: locations,
		merchants: merchants,
		source:    source,
		logger:    logger,
		now:       time.Now,
	}
}

// SyncLocations reconciles every upstream location of the merchant. The main location is
// identified with a RetrieveLocation of the "main" alias.
func (s *LocationSyncService) SyncLocations(ctx context.Context, m *merchant.Merchant, accessToken string) (*SyncResult, error) {
	upstream, err := s.source.ListLocations(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	main, err := s.source.RetrieveLocation(ctx, accessToken, integration.MainLocationID)
	if err != nil {
		return nil, fmt.Errorf("retrieve main location: %w", err)
	}

	result := &SyncResult{ByExternalID: make(map[string]uuid.UUID, len(upstream))}
	for _, up := range upstream {
		loc, outcome, err := s.ReconcileLocation(ctx, m.ID, up, up.ID == main.ID)
		if err != nil {
			return nil, fmt.Errorf("reconcile location %s: %w", up.ID, err)
		}
		result.ByExternalID[up.ID] = loc.ID
		switch outcome {
		case catalog.OutcomeCreated:
			result.Stats.Created++
		case catalog.OutcomeUpdated:
			result.Stats.Updated++
		default:
			result.Stats.Unchanged++
		}
	}

	logger.Enrich(logger.WithMerchantID(ctx, m.ID.String()), s.logger).Debug("Locations synchronized",
		zap.Int("locations", len(upstream)),
		zap.Int("created", result.Stats.Created),
		zap.Int("updated", result.Stats.Updated),
	)
	return result, nil
}

// RefreshLocation re-reads one location after a location webhook. An existing location
// keeps its main flag; a new one is created as a secondary location.
func (s *LocationSyncService) RefreshLocation(ctx context.Context, merchantID uuid.UUID, externalID string) (*location.Location, error) {
	m, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	token, err := m.AccessToken(s.now())
	if err != nil {
		return nil, err
	}
	up, err := s.source.RetrieveLocation(ctx, token, externalID)
	if err != nil {
		return nil, fmt.Errorf("retrieve location %s: %w", externalID, err)
	}

	isMain := false
	existing, err := s.locations.FindByExternalID(ctx, merchantID, up.ID)
	switch {
	case err == nil:
		isMain = existing.IsMain
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	loc, outcome, err := s.ReconcileLocation(ctx, merchantID, *up, isMain)
	if err != nil {
		return nil, err
	}
	logger.Enrich(logger.WithMerchantID(ctx, merchantID.String()), s.logger).Info("Location refreshed",
		zap.String("external_id", up.ID),
		zap.String("outcome", outcome.String()),
	)
	return loc, nil
}

// ReconcileLocation upserts one upstream location keyed by (merchant, external ID).
// The row is written only when an upstream-owned field changed.
func (s *LocationSyncService) ReconcileLocation(ctx context.Context, merchantID uuid.UUID, up integration.UpstreamLocation, isMain bool) (*location.Location, catalog.Outcome, error) {
	fields, err := locationFields(up, isMain)
	if err != nil {
		return nil, catalog.OutcomeUnchanged, err
	}

	loc, err := s.locations.FindByExternalID(ctx, merchantID, up.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		loc, err = location.NewLocationFromUpstream(merchantID, up.ID, fields)
		if err != nil {
			return nil, catalog.OutcomeUnchanged, err
		}
		if err := s.locations.Save(ctx, loc); err != nil {
			return nil, catalog.OutcomeUnchanged, err
		}
		return loc, catalog.OutcomeCreated, nil
	case err != nil:
		return nil, catalog.OutcomeUnchanged, err
	}

	changed, err := loc.ApplyUpstream(fields)
	if err != nil {
		return nil, catalog.OutcomeUnchanged, err
	}
	if !changed {
		return loc, catalog.OutcomeUnchanged, nil
	}
	if err := s.locations.Save(ctx, loc); err != nil {
		return nil, catalog.OutcomeUnchanged, err
	}
	return loc, catalog.OutcomeUpdated, nil
}

func locationFields(up integration.UpstreamLocation, isMain bool) (location.Fields, error) {
	hours := make([]location.BusinessHoursPeriod, 0, len(up.BusinessHours))
	for _, h := range up.BusinessHours {
		p, err := location.NewBusinessHoursPeriod(h.DayOfWeek, h.StartLocalTime, h.EndLocalTime)
		if err != nil {
			return location.Fields{}, err
		}
		hours = append(hours, p)
	}
	status := location.StatusActive
	if strings.EqualFold(up.Status, string(location.StatusInactive)) {
		status = location.StatusInactive
	}
	return location.Fields{
		Name:     up.Name,
		Timezone: up.Timezone,
		IsMain:   isMain,
		Status:   status,
		Address: valueobject.NewAddress(
			up.Address.Line1, up.Address.Line2, up.Address.Locality,
			up.Address.Region, up.Address.PostalCode, up.Address.Country,
		),
		BusinessHours: hours,
	}, nil
}
