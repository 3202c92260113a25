package location

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/menusync/backend/internal/domain/shared"
)

// DayCode is the upstream day-of-week code of a business hours period
type DayCode string

const (
	DayMonday    DayCode = "MON"
	DayTuesday   DayCode = "TUE"
	DayWednesday DayCode = "WED"
	DayThursday  DayCode = "THU"
	DayFriday    DayCode = "FRI"
	DaySaturday  DayCode = "SAT"
	DaySunday    DayCode = "SUN"
)

var dayCodeWeekdays = map[DayCode]time.Weekday{
	DaySunday:    time.Sunday,
	DayMonday:    time.Monday,
	DayTuesday:   time.Tuesday,
	DayWednesday: time.Wednesday,
	DayThursday:  time.Thursday,
	DayFriday:    time.Friday,
	DaySaturday:  time.Saturday,
}

// DayCodeFor returns the code of a weekday
func DayCodeFor(wd time.Weekday) DayCode {
	for code, day := range dayCodeWeekdays {
		if day == wd {
			return code
		}
	}
	return ""
}

// BusinessHoursPeriod is one opening window on one day of the week, in the location's local time
type BusinessHoursPeriod struct {
	DayOfWeek      DayCode
	StartLocalTime string
	EndLocalTime   string
}

// NewBusinessHoursPeriod validates the day code and both times of day
func NewBusinessHoursPeriod(day, start, end string) (BusinessHoursPeriod, error) {
	p := BusinessHoursPeriod{
		DayOfWeek:      DayCode(strings.ToUpper(strings.TrimSpace(day))),
		StartLocalTime: strings.TrimSpace(start),
		EndLocalTime:   strings.TrimSpace(end),
	}
	if err := p.Validate(); err != nil {
		return BusinessHoursPeriod{}, err
	}
	return p, nil
}

// Validate checks the period is well formed
func (p BusinessHoursPeriod) Validate() error {
	if _, ok := dayCodeWeekdays[p.DayOfWeek]; !ok {
		return shared.InvalidExternalResponsef("unknown business hours day %q", p.DayOfWeek)
	}
	start, err := parseMinuteOfDay(p.StartLocalTime)
	if err != nil {
		return err
	}
	end, err := parseMinuteOfDay(p.EndLocalTime)
	if err != nil {
		return err
	}
	if end < start {
		return shared.InvalidExternalResponsef("business hours on %s end (%s) before they start (%s)",
			p.DayOfWeek, p.EndLocalTime, p.StartLocalTime)
	}
	return nil
}

// Weekday returns the numeric day of week of the period
func (p BusinessHoursPeriod) Weekday() time.Weekday {
	return dayCodeWeekdays[p.DayOfWeek]
}

// StartMinute returns the opening time as minutes after local midnight
func (p BusinessHoursPeriod) StartMinute() int {
	m, _ := parseMinuteOfDay(p.StartLocalTime)
	return m
}

// EndMinute returns the closing time as minutes after local midnight
func (p BusinessHoursPeriod) EndMinute() int {
	m, _ := parseMinuteOfDay(p.EndLocalTime)
	return m
}

// Contains reports whether the wall-clock time of t falls within [start, end], both
// inclusive. The end is an exact instant: 17:00:01 is outside a period ending at 17:00.
func (p BusinessHoursPeriod) Contains(t time.Time) bool {
	since := sinceMidnight(t)
	return since >= time.Duration(p.StartMinute())*time.Minute &&
		since <= time.Duration(p.EndMinute())*time.Minute
}

// parseMinuteOfDay accepts "HH:MM" and "HH:MM:SS"; seconds are truncated
func parseMinuteOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, shared.InvalidExternalResponsef("invalid local time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, shared.InvalidExternalResponsef("invalid hour in local time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, shared.InvalidExternalResponsef("invalid minute in local time %q", s)
	}
	if h == 24 && m != 0 {
		return 0, shared.InvalidExternalResponsef("invalid local time %q", s)
	}
	return h*60 + m, nil
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// String renders the period like "MON 09:00-17:00"
func (p BusinessHoursPeriod) String() string {
	return fmt.Sprintf("%s %s-%s", p.DayOfWeek, p.StartLocalTime, p.EndLocalTime)
}
