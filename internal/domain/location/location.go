package location

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// Status is the upstream operating status of a location
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Location is a merchant's physical selling location mirrored from the upstream
type Location struct {
	shared.MerchantAggregateRoot
	ExternalID    *string
	Name          string
	Timezone      string
	IsMain        bool
	Status        Status
	Address       valueobject.Address
	BusinessHours []BusinessHoursPeriod
}

// Fields are the upstream-owned values of a location
type Fields struct {
	Name          string
	Timezone      string
	IsMain        bool
	Status        Status
	Address       valueobject.Address
	BusinessHours []BusinessHoursPeriod
}

// NewLocationFromUpstream creates a location on first encounter of an external ID
func NewLocationFromUpstream(merchantID uuid.UUID, externalID string, fields Fields) (*Location, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, shared.InvalidExternalResponsef("upstream location is missing its id")
	}
	l := &Location{
		MerchantAggregateRoot: shared.NewMerchantAggregateRoot(merchantID),
		ExternalID:            &externalID,
	}
	if _, err := l.ApplyUpstream(fields); err != nil {
		return nil, err
	}
	return l, nil
}

// ApplyUpstream replaces every upstream-owned field, business hours included,
// and reports whether anything changed
func (l *Location) ApplyUpstream(f Fields) (bool, error) {
	tz := strings.TrimSpace(f.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return false, shared.InvalidExternalResponsef("location %s has unknown timezone %q", l.ExternalIDValue(), tz)
	}
	for _, p := range f.BusinessHours {
		if err := p.Validate(); err != nil {
			return false, err
		}
	}
	status := f.Status
	if status != StatusInactive {
		status = StatusActive
	}

	changed := false
	set := func(dst *string, v string) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&l.Name, strings.TrimSpace(f.Name))
	set(&l.Timezone, tz)
	if l.IsMain != f.IsMain {
		l.IsMain = f.IsMain
		changed = true
	}
	if l.Status != status {
		l.Status = status
		changed = true
	}
	if !l.Address.Equals(f.Address) {
		l.Address = f.Address
		changed = true
	}
	if !slices.Equal(l.BusinessHours, f.BusinessHours) {
		l.BusinessHours = slices.Clone(f.BusinessHours)
		changed = true
	}
	if changed {
		l.UpdatedAt = time.Now()
		l.IncrementVersion()
	}
	return changed, nil
}

// ExternalIDValue returns the external ID or an empty string
func (l *Location) ExternalIDValue() string {
	if l.ExternalID == nil {
		return ""
	}
	return *l.ExternalID
}

// TimeLocation loads the IANA zone of the location
func (l *Location) TimeLocation() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, shared.Validationf("location %s has unknown timezone %q", l.ID, l.Timezone)
	}
	return loc, nil
}

// IsActive returns true if the location takes orders
func (l *Location) IsActive() bool {
	return l.Status == StatusActive
}
