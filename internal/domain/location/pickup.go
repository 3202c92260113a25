package location

import (
	"sort"
	"time"

	"github.com/menusync/backend/internal/domain/shared"
)

const (
	// DefaultPickupLead is added to "now" when a customer asks for the earliest pickup
	DefaultPickupLead = 15 * time.Minute
	// DefaultMaxPickupAhead is the furthest into the future a pickup may be scheduled
	DefaultMaxPickupAhead = 7 * 24 * time.Hour
	// scanDays is how many days past the given date FirstPickupDateAfter looks for an opening
	scanDays = 7
)

// PickupPolicy bounds the pickup times customers may request
type PickupPolicy struct {
	LeadTime time.Duration
	MaxAhead time.Duration
	Now      func() time.Time
}

// NewPickupPolicy returns a policy using the wall clock, falling back to defaults for zero values
func NewPickupPolicy(lead, maxAhead time.Duration) PickupPolicy {
	if lead <= 0 {
		lead = DefaultPickupLead
	}
	if maxAhead <= 0 {
		maxAhead = DefaultMaxPickupAhead
	}
	return PickupPolicy{LeadTime: lead, MaxAhead: maxAhead, Now: time.Now}
}

func (p PickupPolicy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// ValidatePickupTime checks a requested pickup instant against the policy window and
// the location's weekly hours. A nil request means "as soon as possible" (now + lead).
// It returns the accepted pickup instant.
func (p PickupPolicy) ValidatePickupTime(tz *time.Location, hours []BusinessHoursPeriod, requested *time.Time) (time.Time, error) {
	now := p.now()
	at := now.Add(p.LeadTime)
	if requested != nil {
		at = *requested
	}

	if at.Before(now) {
		return time.Time{}, shared.Validationf("pickup time %s is in the past", at.Format(time.RFC3339)).
			WithField("pickup_at", "must not be in the past")
	}
	if at.After(now.Add(p.MaxAhead)) {
		return time.Time{}, shared.Validationf("pickup time %s is too far in the future", at.Format(time.RFC3339)).
			WithField("pickup_at", "must be within the scheduling window")
	}

	if tz == nil {
		tz = time.UTC
	}
	local := at.In(tz)

	dayHasHours := false
	for _, period := range hours {
		if period.Weekday() != local.Weekday() {
			continue
		}
		dayHasHours = true
		if period.Contains(local) {
			return at, nil
		}
	}

	if !dayHasHours {
		return time.Time{}, shared.Validationf("location is closed on %s", DayCodeFor(local.Weekday())).
			WithField("pickup_at", "location is closed that day")
	}
	return time.Time{}, shared.Validationf("pickup time %s is outside business hours", local.Format("Mon 15:04")).
		WithField("pickup_at", "must be within business hours")
}

// FirstPickupDateAfter returns date itself when it already falls inside a period of its
// weekday. Otherwise it scans forward, wrapping the week, for the next period start and
// returns that start plus leadMinutes. It fails with NOT_FOUND when no period exists
// within seven days.
func FirstPickupDateAfter(date time.Time, tz *time.Location, hours []BusinessHoursPeriod, leadMinutes int) (time.Time, error) {
	if tz == nil {
		tz = time.UTC
	}
	local := date.In(tz)

	for _, period := range hours {
		if period.Weekday() == local.Weekday() && period.Contains(local) {
			return date, nil
		}
	}

	sorted := make([]BusinessHoursPeriod, len(hours))
	copy(sorted, hours)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMinute() < sorted[j].StartMinute()
	})

	lead := time.Duration(leadMinutes) * time.Minute
	y, m, d := local.Date()
	for offset := 0; offset <= scanDays; offset++ {
		day := time.Date(y, m, d+offset, 0, 0, 0, 0, tz)
		for _, period := range sorted {
			if period.Weekday() != day.Weekday() {
				continue
			}
			startMin := period.StartMinute()
			start := time.Date(y, m, d+offset, startMin/60, startMin%60, 0, 0, tz)
			if offset == 0 && !start.After(local) {
				continue
			}
			return start.Add(lead), nil
		}
	}

	return time.Time{}, shared.NotFoundf("no business hours within %d days after %s", scanDays, local.Format(time.RFC3339))
}
