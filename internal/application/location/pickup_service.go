package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared"
)

// PickupQuote answers whether a pickup time is accepted at a location and, when it
// is not, the next time that would be
type PickupQuote struct {
	LocationID    uuid.UUID
	Timezone      string
	Accepted      bool
	PickupAt      *time.Time
	NextAvailable *time.Time
	Reason        string
}

// PickupService validates customer pickup requests against location business hours
type PickupService struct {
	locations   location.LocationRepository
	policy      location.PickupPolicy
	leadMinutes int
}

// NewPickupService creates a new pickup service. leadMinutes is added to the next
// opening when a request falls outside business hours.
func NewPickupService(locations location.LocationRepository, policy location.PickupPolicy, leadMinutes int) *PickupService {
	return &PickupService{locations: locations, policy: policy, leadMinutes: leadMinutes}
}

// ValidatePickup returns the accepted pickup instant or a validation error.
// A nil request means the earliest possible pickup.
func (s *PickupService) ValidatePickup(ctx context.Context, merchantID, locationID uuid.UUID, requested *time.Time) (time.Time, error) {
	loc, tz, err := s.load(ctx, merchantID, locationID)
	if err != nil {
		return time.Time{}, err
	}
	return s.policy.ValidatePickupTime(tz, loc.BusinessHours, requested)
}

// QuotePickup validates a request and, when it is rejected, suggests the next opening
func (s *PickupService) QuotePickup(ctx context.Context, merchantID, locationID uuid.UUID, requested *time.Time) (*PickupQuote, error) {
	loc, tz, err := s.load(ctx, merchantID, locationID)
	if err != nil {
		return nil, err
	}
	quote := &PickupQuote{LocationID: loc.ID, Timezone: tz.String()}

	at, err := s.policy.ValidatePickupTime(tz, loc.BusinessHours, requested)
	if err == nil {
		quote.Accepted = true
		quote.PickupAt = &at
		return quote, nil
	}
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != shared.CodeValidation {
		return nil, err
	}
	quote.Reason = domainErr.Message

	now := time.Now
	if s.policy.Now != nil {
		now = s.policy.Now
	}
	from := now().Add(s.policy.LeadTime)
	if requested != nil && requested.After(from) {
		from = *requested
	}
	next, err := location.FirstPickupDateAfter(from, tz, loc.BusinessHours, s.leadMinutes)
	switch {
	case err == nil:
		quote.NextAvailable = &next
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	return quote, nil
}

func (s *PickupService) load(ctx context.Context, merchantID, locationID uuid.UUID) (*location.Location, *time.Location, error) {
	loc, err := s.locations.FindByID(ctx, merchantID, locationID)
	if err != nil {
		return nil, nil, err
	}
	if !loc.IsActive() {
		return nil, nil, shared.Validationf("location %s is not taking orders", loc.ID).WithField("location_id", "inactive")
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return nil, nil, err
	}
	return loc, tz, nil
}
