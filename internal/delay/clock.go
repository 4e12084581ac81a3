package delay

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day as entered by the operator
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "HH:MM", "H:MM" and "HHMM"
func ParseClock(raw string) (Clock, error) {
	s := strings.TrimSpace(raw)
	var hh, mm string
	if i := strings.Index(s, ":"); i >= 0 {
		hh, mm = s[:i], s[i+1:]
	} else if len(s) == 4 {
		hh, mm = s[:2], s[2:]
	} else {
		return Clock{}, fmt.Errorf("invalid time of day %q", raw)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// String formats as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Before compares two clocks numerically
func (c Clock) Before(o Clock) bool {
	return c.Hour*60+c.Minute < o.Hour*60+o.Minute
}

// On places the clock on a calendar date in loc
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// DepartureInstants combines off-blocks and airborne clocks with the operating
// date. An airborne clock earlier than off-blocks is taken to be the next day.
func DepartureInstants(date time.Time, offBlocks, airborne Clock, loc *time.Location) (time.Time, time.Time) {
	off := offBlocks.On(date, loc)
	air := airborne.On(date, loc)
	if airborne.Before(offBlocks) {
		air = air.AddDate(0, 0, 1)
	}
	return off, air
}

// ArrivalInstants combines landing and on-chocks clocks with the operating
// date. A landing clock later than on-chocks is taken to be the previous day.
func ArrivalInstants(date time.Time, landing, onChocks Clock, loc *time.Location) (time.Time, time.Time) {
	land := landing.On(date, loc)
	chocks := onChocks.On(date, loc)
	if onChocks.Before(landing) {
		land = land.AddDate(0, 0, -1)
	}
	return land, chocks
}

// LocalISO formats an instant in loc as a zone-less ISO timestamp
func LocalISO(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02T15:04:05")
}
