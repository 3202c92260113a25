package location

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessHoursPeriod(t *testing.T) {
	t.Run("derives weekday and minutes", func(t *testing.T) {
		p, err := NewBusinessHoursPeriod("fri", "08:30:00", "22:15")
		require.NoError(t, err)
		assert.Equal(t, time.Friday, p.Weekday())
		assert.Equal(t, 510, p.StartMinute())
		assert.Equal(t, 1335, p.EndMinute())
		assert.Equal(t, "FRI 08:30:00-22:15", p.String())
	})

	t.Run("rejects unknown day", func(t *testing.T) {
		_, err := NewBusinessHoursPeriod("FUNDAY", "08:00", "09:00")
		assert.Error(t, err)
	})

	t.Run("rejects malformed time", func(t *testing.T) {
		_, err := NewBusinessHoursPeriod("MON", "8am", "09:00")
		assert.Error(t, err)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewBusinessHoursPeriod("MON", "18:00", "09:00")
		assert.Error(t, err)
	})
}

func TestLocation_ApplyUpstream(t *testing.T) {
	hours := []BusinessHoursPeriod{{DayOfWeek: DayMonday, StartLocalTime: "09:00", EndLocalTime: "17:00"}}
	fields := Fields{
		Name:          "Downtown",
		Timezone:      "America/Chicago",
		IsMain:        true,
		Status:        StatusActive,
		Address:       valueobject.NewAddress("1 Main", "", "Chicago", "IL", "60601", "US"),
		BusinessHours: hours,
	}

	loc, err := NewLocationFromUpstream(uuid.New(), "L1", fields)
	require.NoError(t, err)
	assert.Equal(t, "L1", loc.ExternalIDValue())
	assert.True(t, loc.IsActive())

	t.Run("same fields are not a change", func(t *testing.T) {
		changed, err := loc.ApplyUpstream(fields)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("hours change is a change", func(t *testing.T) {
		updated := fields
		updated.BusinessHours = append([]BusinessHoursPeriod{}, hours...)
		updated.BusinessHours = append(updated.BusinessHours, BusinessHoursPeriod{DayOfWeek: DayTuesday, StartLocalTime: "09:00", EndLocalTime: "12:00"})
		changed, err := loc.ApplyUpstream(updated)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Len(t, loc.BusinessHours, 2)
	})

	t.Run("unknown timezone is rejected", func(t *testing.T) {
		bad := fields
		bad.Timezone = "Mars/Olympus"
		_, err := loc.ApplyUpstream(bad)
		assert.Error(t, err)
	})

	t.Run("time location loads the zone", func(t *testing.T) {
		tz, err := loc.TimeLocation()
		require.NoError(t, err)
		assert.Equal(t, "America/Chicago", tz.String())
	})
}
